package admin

import (
	"context"
	"errors"
	"io"
	"strings"

	"yemenflix/src/cache"
	"yemenflix/src/database"
	models "yemenflix/src/modules/admin/models"
	"yemenflix/src/utils"

	"github.com/rs/zerolog/log"
)

// DefaultCachePrefix covers every cached API response. Revoked tokens live
// in the same store under another prefix and survive a clear.
const DefaultCachePrefix = "/api"

type AdminService struct {
	db    *database.Manager
	cache *cache.Cache
}

func NewAdminService(db *database.Manager, c *cache.Cache) *AdminService {
	return &AdminService{db: db, cache: c}
}

func (s *AdminService) Stats(ctx context.Context) (*database.DashboardStats, error) {
	return s.db.GetDashboardStats(ctx)
}

func (s *AdminService) Settings(ctx context.Context) ([]models.SiteSetting, error) {
	return s.db.GetSiteSettings(ctx)
}

// UpdateSettings applies the batch atomically and returns the new values.
func (s *AdminService) UpdateSettings(ctx context.Context, updates []database.SettingUpdate) ([]models.SiteSetting, error) {
	if len(updates) == 0 {
		return nil, utils.BadRequest("no settings to update")
	}
	if err := s.db.UpdateSiteSettings(ctx, updates); err != nil {
		if errors.Is(err, database.ErrUnknownSetting) || errors.Is(err, database.ErrInvalidSettingValue) {
			return nil, utils.BadRequest(err.Error())
		}
		return nil, err
	}
	log.Ctx(ctx).Info().Int("count", len(updates)).Msg("site settings updated")
	return s.db.GetSiteSettings(ctx)
}

// ClearCache drops cached responses under prefix and reports how many.
func (s *AdminService) ClearCache(ctx context.Context, prefix string) (int, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultCachePrefix
	}
	if !strings.HasPrefix(prefix, "/api") && !strings.HasPrefix(prefix, "lookup:") {
		return 0, utils.BadRequest("prefix must start with /api or lookup:")
	}
	n, err := s.cache.Store().InvalidatePrefix(ctx, prefix)
	if err != nil {
		return 0, err
	}
	log.Ctx(ctx).Info().Str("prefix", prefix).Int("keys", n).Msg("cache cleared")
	return n, nil
}

func (s *AdminService) Backup(ctx context.Context, w io.Writer) error {
	return s.db.CreateBackup(ctx, w)
}

// Restore replaces every row with the backup and drops all cached views.
func (s *AdminService) Restore(ctx context.Context, r io.Reader) error {
	if err := s.db.RestoreBackup(ctx, r); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, DefaultCachePrefix, "lookup:")
	return nil
}
