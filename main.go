package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yemenflix/src/auth"
	"yemenflix/src/cache"
	"yemenflix/src/config"
	"yemenflix/src/database"
	"yemenflix/src/middleware"
	contentsvc "yemenflix/src/modules/content/services"
	filesvc "yemenflix/src/modules/files/services"
	"yemenflix/src/routes"
	"yemenflix/src/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	config.SetupLogger(cfg.Logging)
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	db, err := config.ConnectDatabase(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	manager := database.NewManager(db, database.WithAdminPassword(cfg.Auth.AdminPassword, cfg.Auth.BcryptCost))
	if err := manager.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("database initialization failed")
	}

	// Response cache: redis when configured, memory otherwise
	var store cache.Store = cache.NewMemoryStore()
	if cfg.Redis.Enabled() {
		rdb, err := config.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		store = cache.NewRedisStore(rdb, "yemenflix:")
	}
	responseCache := cache.New(store, cfg.Cache.TTL)

	jwt, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, store)
	if err != nil {
		log.Fatal().Err(err).Msg("auth setup failed")
	}

	var files *filesvc.FileService
	if cfg.Minio.Enabled() {
		client, err := config.ConnectMinio(ctx, cfg.Minio)
		if err != nil {
			log.Fatal().Err(err).Msg("minio connection failed")
		}
		files = filesvc.NewFileService(manager, filesvc.NewMinioBucket(client, cfg.Minio.Bucket), store)
	} else {
		log.Warn().Msg("MINIO_ENDPOINT not set, file uploads are disabled")
	}

	hub := services.NewHub()
	go hub.Run(ctx)

	limiter := middleware.NewRateLimiter(cfg.Limit.RPS, cfg.Limit.Burst)

	router := gin.New()
	// Enable CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, middleware.CacheHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.Metrics())

	routes.RegisterRoutes(router, &routes.Deps{
		DB:         manager,
		Cache:      responseCache,
		JWT:        jwt,
		Files:      files,
		Hub:        hub,
		Limiter:    limiter,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	scheduler, err := services.SetupBackgroundJobs(&services.Jobs{
		DB:             manager,
		Cache:          responseCache,
		Content:        contentsvc.NewContentService(manager, responseCache, nil),
		Files:          files,
		Limiter:        limiter,
		BackupDir:      cfg.Backup.Dir,
		BackupSchedule: cfg.Backup.Schedule,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("background jobs setup failed")
	}

	// Start API and WebSocket server
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("could not start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	<-scheduler.Stop().Done()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
