package routes

import (
	"net/http"

	"yemenflix/src/auth"
	"yemenflix/src/cache"
	"yemenflix/src/config"
	"yemenflix/src/database"
	"yemenflix/src/middleware"
	adminctl "yemenflix/src/modules/admin/controllers"
	adminsvc "yemenflix/src/modules/admin/services"
	contentctl "yemenflix/src/modules/content/controllers"
	contentsvc "yemenflix/src/modules/content/services"
	enhancedctl "yemenflix/src/modules/enhanced/controllers"
	enhancedsvc "yemenflix/src/modules/enhanced/services"
	filesctl "yemenflix/src/modules/files/controllers"
	filesvc "yemenflix/src/modules/files/services"
	reviewsctl "yemenflix/src/modules/reviews/controllers"
	reviewsvc "yemenflix/src/modules/reviews/services"
	usersctl "yemenflix/src/modules/users/controllers"
	usersvc "yemenflix/src/modules/users/services"
	"yemenflix/src/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs. Files, Hub and Limiter are optional.
type Deps struct {
	DB         *database.Manager
	Cache      *cache.Cache
	JWT        *auth.JWTManager
	Files      *filesvc.FileService
	Hub        *services.Hub
	Limiter    *middleware.RateLimiter
	BcryptCost int
}

// NewRouter builds the engine with the shared middleware and every route.
func NewRouter(d *Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.Metrics())
	RegisterRoutes(router, d)
	return router
}

func RegisterRoutes(router *gin.Engine, d *Deps) {
	var pusher usersvc.Pusher
	if d.Hub != nil {
		pusher = d.Hub
	}
	notifications := usersvc.NewNotificationService(d.DB, pusher)
	contentService := contentsvc.NewContentService(d.DB, d.Cache, notifications)

	contentCtl := contentctl.NewContentController(contentService)
	episodeCtl := contentctl.NewEpisodeController(contentsvc.NewEpisodeService(d.DB, d.Cache))
	reviewCtl := reviewsctl.NewReviewController(reviewsvc.NewReviewService(d.DB, d.Cache, notifications))
	enhancedCtl := enhancedctl.NewEnhancedController(enhancedsvc.NewEnhancedService(d.DB, d.Cache))
	authCtl := usersctl.NewAuthController(usersvc.NewAuthService(d.DB, d.JWT, d.BcryptCost))
	userCtl := usersctl.NewUserController(usersvc.NewUserService(d.DB, d.Cache, d.BcryptCost))
	notificationCtl := usersctl.NewNotificationController(notifications)
	adminCtl := adminctl.NewAdminController(adminsvc.NewAdminService(d.DB, d.Cache), adminsvc.NewReportService(d.DB))

	requireAuth := middleware.RequireAuth(d.JWT)
	optionalAuth := middleware.OptionalAuth(d.JWT)
	requireAdmin := middleware.RequireAdmin()
	adminOnly := []gin.HandlerFunc{requireAuth, requireAdmin}
	owner := middleware.RequireOwner("id")
	cached := middleware.ResponseCache(d.Cache)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if config.CheckConnection(d.DB.DB()) {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
		} else {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		}
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if d.Hub != nil {
		router.GET("/ws", requireAuth, d.Hub.WebSocketHandler)
	}

	api := router.Group("/api")

	// Auth Routes
	authRoutes := api.Group("/auth")
	if d.Limiter != nil {
		authRoutes.Use(d.Limiter.Handler())
	}
	{
		authRoutes.POST("/register", authCtl.Register)
		authRoutes.POST("/login", authCtl.Login)
		authRoutes.GET("/me", requireAuth, authCtl.Me)
		authRoutes.POST("/logout", requireAuth, authCtl.Logout)
	}

	// Catalog Routes
	contentRoutes := api.Group("/content", optionalAuth, cached)
	{
		contentRoutes.GET("", contentCtl.ListContent)
		contentRoutes.GET("/featured", contentCtl.FeaturedContent)
		contentRoutes.GET("/latest", contentCtl.LatestContent)
		contentRoutes.GET("/trending", contentCtl.TrendingContent)
		contentRoutes.GET("/recent", contentCtl.RecentContent)
		contentRoutes.GET("/stats", contentCtl.ContentStats)
		contentRoutes.GET("/:id", contentCtl.GetContent)
		contentRoutes.POST("/:id/view", contentCtl.RecordView)

		contentRoutes.POST("", append(adminOnly, contentCtl.CreateContent)...)
		contentRoutes.PUT("/:id", append(adminOnly, contentCtl.UpdateContent)...)
		contentRoutes.DELETE("/:id", append(adminOnly, contentCtl.DeleteContent)...)

		contentRoutes.GET("/:id/reviews", reviewCtl.ListReviews)
		contentRoutes.POST("/:id/reviews", requireAuth, reviewCtl.CreateReview)
		contentRoutes.GET("/:id/comments", reviewCtl.ListComments)
		contentRoutes.POST("/:id/comments", requireAuth, reviewCtl.CreateComment)
	}

	lookupRoutes := api.Group("", optionalAuth, cached)
	{
		lookupRoutes.GET("/categories", contentCtl.ListCategories)
		lookupRoutes.GET("/genres", contentCtl.ListGenres)
		lookupRoutes.GET("/search", contentCtl.SearchContent)
		lookupRoutes.GET("/episodes/:contentId", episodeCtl.ListEpisodes)
	}

	episodeRoutes := api.Group("/episodes", requireAuth, requireAdmin)
	{
		episodeRoutes.POST("", episodeCtl.CreateEpisode)
		episodeRoutes.PUT("/:id", episodeCtl.UpdateEpisode)
		episodeRoutes.DELETE("/:id", episodeCtl.DeleteEpisode)
	}

	// Reviews & Comments Routes
	reviewRoutes := api.Group("", requireAuth)
	{
		reviewRoutes.PUT("/reviews/:id", reviewCtl.UpdateReview)
		reviewRoutes.DELETE("/reviews/:id", reviewCtl.DeleteReview)
		reviewRoutes.POST("/reviews/:id/like", reviewCtl.LikeReview)
		reviewRoutes.DELETE("/comments/:id", reviewCtl.DeleteComment)
	}

	// Enhanced Content Routes
	enhancedRoutes := api.Group("/enhanced", optionalAuth, cached)
	{
		enhancedRoutes.GET("/cast-members", enhancedCtl.ListCastMembers)
		enhancedRoutes.GET("/cast-members/:id", enhancedCtl.GetCastMember)
		enhancedRoutes.GET("/content/:id/cast", enhancedCtl.ListContentCast)
		enhancedRoutes.GET("/content/:id/images", enhancedCtl.ListImages)
		enhancedRoutes.GET("/content/:id/external-ratings", enhancedCtl.ListExternalRatings)

		enhancedRoutes.POST("/cast-members", append(adminOnly, enhancedCtl.CreateCastMember)...)
		enhancedRoutes.PUT("/cast-members/:id", append(adminOnly, enhancedCtl.UpdateCastMember)...)
		enhancedRoutes.DELETE("/cast-members/:id", append(adminOnly, enhancedCtl.DeleteCastMember)...)
		enhancedRoutes.POST("/content/:id/cast", append(adminOnly, enhancedCtl.AddContentCast)...)
		enhancedRoutes.DELETE("/content/:id/cast/:castId", append(adminOnly, enhancedCtl.RemoveContentCast)...)
		enhancedRoutes.POST("/content/:id/images", append(adminOnly, enhancedCtl.AddImage)...)
		enhancedRoutes.DELETE("/images/:id", append(adminOnly, enhancedCtl.DeleteImage)...)
		enhancedRoutes.POST("/content/:id/external-ratings", append(adminOnly, enhancedCtl.UpsertExternalRating)...)
		enhancedRoutes.DELETE("/external-ratings/:id", append(adminOnly, enhancedCtl.DeleteExternalRating)...)
	}

	// User Routes
	userRoutes := api.Group("/users/:id", requireAuth, owner)
	{
		userRoutes.GET("/profile", userCtl.GetProfile)
		userRoutes.PUT("/profile", userCtl.UpdateProfile)
		userRoutes.GET("/stats", userCtl.GetStats)

		userRoutes.GET("/favorites", userCtl.ListFavorites)
		userRoutes.POST("/favorites", userCtl.AddFavorite)
		userRoutes.DELETE("/favorites/:contentId", userCtl.RemoveFavorite)

		userRoutes.GET("/watch-history", userCtl.ListHistory)
		userRoutes.POST("/watch-history", userCtl.RecordProgress)
		userRoutes.DELETE("/watch-history/:contentId", userCtl.RemoveHistory)

		userRoutes.POST("/watchlists", userCtl.CreateWatchlist)
		userRoutes.GET("/reviews/content/:contentId", reviewCtl.GetUserReview)

		userRoutes.GET("/notifications", notificationCtl.ListNotifications)
		userRoutes.PUT("/notifications/read-all", notificationCtl.MarkAllRead)
		userRoutes.GET("/notification-settings", notificationCtl.GetSettings)
		userRoutes.PUT("/notification-settings", notificationCtl.UpdateSettings)
	}
	// public lists of another user are visible without signing in
	api.GET("/users/:id/watchlists", optionalAuth, userCtl.ListWatchlists)

	watchlistRoutes := api.Group("/watchlists/:id")
	{
		watchlistRoutes.GET("/items", optionalAuth, cached, userCtl.GetWatchlistItems)
		watchlistRoutes.POST("/items", requireAuth, userCtl.AddWatchlistItem)
		watchlistRoutes.DELETE("/items/:contentId", requireAuth, userCtl.RemoveWatchlistItem)
		watchlistRoutes.DELETE("", requireAuth, userCtl.DeleteWatchlist)
	}

	notificationRoutes := api.Group("/notifications/:id", requireAuth)
	{
		notificationRoutes.PUT("/read", notificationCtl.MarkRead)
		notificationRoutes.DELETE("", notificationCtl.DeleteNotification)
	}

	// Reports Routes
	api.POST("/reports", optionalAuth, adminCtl.CreateReport)

	// Admin Routes
	adminRoutes := api.Group("/admin", requireAuth, requireAdmin)
	{
		adminRoutes.GET("/stats", adminCtl.GetStats)
		adminRoutes.GET("/settings", adminCtl.GetSettings)
		adminRoutes.PUT("/settings", adminCtl.UpdateSettings)
		adminRoutes.GET("/users", userCtl.AdminListUsers)
		adminRoutes.PUT("/users/:id", userCtl.AdminUpdateUser)
		adminRoutes.POST("/clear-cache", adminCtl.ClearCache)
		adminRoutes.POST("/database/backup", adminCtl.BackupDatabase)
		adminRoutes.POST("/database/restore", adminCtl.RestoreDatabase)
		adminRoutes.GET("/reports", adminCtl.ListReports)
		adminRoutes.PUT("/reports/:id", adminCtl.UpdateReport)
	}

	// Files & Static Proxy Routes
	if d.Files != nil {
		fileCtl := filesctl.NewFileController(d.Files)
		api.POST("/files", append(adminOnly, fileCtl.Upload)...)
		api.GET("/static/*filepath", fileCtl.Serve)
	}
}
