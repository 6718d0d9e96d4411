package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"yemenflix/src/cache"
	"yemenflix/src/database"
	"yemenflix/src/middleware"
	contentmodels "yemenflix/src/modules/content/models"
	content "yemenflix/src/modules/content/services"
	files "yemenflix/src/modules/files/services"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	backupsKept     = 7
	limiterIdle     = 10 * time.Minute
	jobTimeout      = 5 * time.Minute
	mirrorBatchSize = 50
)

// Jobs holds what the scheduled tasks work on. Files is nil when object
// storage is not configured; Limiter may be nil too.
type Jobs struct {
	DB             *database.Manager
	Cache          *cache.Cache
	Content        *content.ContentService
	Files          *files.FileService
	Limiter        *middleware.RateLimiter
	BackupDir      string
	BackupSchedule string
}

// cronLogger adapts zerolog to the cron.Logger interface.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

// SetupBackgroundJobs registers and starts the scheduled jobs. The caller
// stops the returned scheduler on shutdown.
func SetupBackgroundJobs(j *Jobs) (*cron.Cron, error) {
	logger := cronLogger{}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	schedule := map[string]func(context.Context){
		"@every 10m": j.sweepCache,
		"@every 15m": j.warmLookups,
	}
	if j.Limiter != nil {
		schedule["@every 5m"] = j.cleanupLimiter
	}
	if j.Files != nil {
		schedule["@every 30m"] = func(ctx context.Context) {
			if _, err := j.MirrorPosters(ctx); err != nil {
				log.Warn().Err(err).Msg("[Cron] poster mirror failed")
			}
		}
	}
	if j.BackupSchedule != "" {
		schedule[j.BackupSchedule] = func(ctx context.Context) {
			if _, err := j.RunBackup(ctx); err != nil {
				log.Error().Err(err).Msg("[Cron] scheduled backup failed")
			}
		}
	}

	for expr, fn := range schedule {
		fn := fn
		if _, err := c.AddFunc(expr, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			fn(ctx)
		}); err != nil {
			return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
		}
	}

	c.Start()
	log.Info().Int("jobs", len(schedule)).Msg("[Cron] background jobs started")
	return c, nil
}

func (j *Jobs) sweepCache(ctx context.Context) {
	n, err := j.Cache.Store().Sweep(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("[Cron] cache sweep failed")
		return
	}
	log.Debug().Int("removed", n).Msg("[Cron] cache swept")
}

func (j *Jobs) cleanupLimiter(context.Context) {
	if n := j.Limiter.Cleanup(limiterIdle); n > 0 {
		log.Debug().Int("removed", n).Msg("[Cron] rate limiter buckets dropped")
	}
}

// warmLookups refills the category and genre lists so a cold cache never
// reaches the database on a page load.
func (j *Jobs) warmLookups(ctx context.Context) {
	if _, err := j.Content.Categories(ctx); err != nil {
		log.Warn().Err(err).Msg("[Cron] category warmup failed")
	}
	if _, err := j.Content.Genres(ctx); err != nil {
		log.Warn().Err(err).Msg("[Cron] genre warmup failed")
	}
}

// RunBackup writes a timestamped dump into BackupDir and prunes old ones.
func (j *Jobs) RunBackup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(j.BackupDir, 0o755); err != nil {
		return "", err
	}
	name := filepath.Join(j.BackupDir, fmt.Sprintf("yemenflix-%s.sql", time.Now().UTC().Format("20060102-150405")))
	tmp := name + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if err := j.DB.CreateBackup(ctx, f); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, name); err != nil {
		return "", err
	}
	log.Info().Str("file", name).Msg("[Cron] backup written")

	if err := pruneBackups(j.BackupDir, backupsKept); err != nil {
		log.Warn().Err(err).Msg("[Cron] backup prune failed")
	}
	return name, nil
}

func pruneBackups(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "yemenflix-") && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	// timestamped names sort chronologically
	sort.Strings(names)
	for len(names) > keep {
		if err := os.Remove(filepath.Join(dir, names[0])); err != nil {
			return err
		}
		names = names[1:]
	}
	return nil
}

// MirrorPosters copies remote poster images into object storage and points
// the content rows at the local copies. It returns how many were moved.
func (j *Jobs) MirrorPosters(ctx context.Context) (int, error) {
	db := j.DB.DB().WithContext(ctx)
	var items []contentmodels.Content
	if err := db.Select("id", "poster_url").
		Where("poster_url LIKE ? OR poster_url LIKE ?", "http://%", "https://%").
		Limit(mirrorBatchSize).
		Find(&items).Error; err != nil {
		return 0, err
	}

	moved := 0
	for _, item := range items {
		local, err := j.Files.Mirror(ctx, item.PosterURL)
		if err != nil {
			log.Warn().Err(err).Uint("content_id", item.ID).Str("url", item.PosterURL).Msg("[Cron] poster download failed")
			continue
		}
		if err := db.Model(&contentmodels.Content{}).Where("id = ?", item.ID).UpdateColumn("poster_url", local).Error; err != nil {
			return moved, err
		}
		moved++
	}
	if moved > 0 {
		j.Cache.Invalidate(ctx, content.CatalogPrefixes...)
		log.Info().Int("count", moved).Msg("[Cron] posters mirrored")
	}
	return moved, nil
}
