// Package database owns schema setup, default data and the catalog queries
// shared by the admin and browsing endpoints.
package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	admin "yemenflix/src/modules/admin/models"
	content "yemenflix/src/modules/content/models"
	enhanced "yemenflix/src/modules/enhanced/models"
	reviews "yemenflix/src/modules/reviews/models"
	users "yemenflix/src/modules/users/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrUnknownSetting      = errors.New("unknown setting")
	ErrInvalidSettingValue = errors.New("invalid setting value")
)

// Manager wraps the gorm handle with the catalog level operations.
type Manager struct {
	db            *gorm.DB
	bcryptCost    int
	adminPassword string
}

type Option func(*Manager)

// WithAdminPassword sets the password of the seeded admin account.
func WithAdminPassword(password string, cost int) Option {
	return func(m *Manager) {
		m.adminPassword = password
		m.bcryptCost = cost
	}
}

func NewManager(db *gorm.DB, opts ...Option) *Manager {
	m := &Manager{db: db, bcryptCost: 10, adminPassword: "admin123"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) DB() *gorm.DB {
	return m.db
}

func (m *Manager) isSQLite() bool {
	return m.db.Dialector.Name() == "sqlite"
}

var migrations = []func(*gorm.DB) error{
	content.MigrateContent,
	content.MigrateEpisodes,
	users.MigrateUsers,
	users.MigrateNotifications,
	enhanced.MigrateEnhanced,
	reviews.MigrateReviews,
	admin.MigrateAdmin,
}

// Initialize enables foreign keys, creates the schema and seeds default rows.
// Seeding is idempotent.
func (m *Manager) Initialize(ctx context.Context) error {
	db := m.db.WithContext(ctx)

	if m.isSQLite() {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	for _, migrate := range migrations {
		if err := migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	if err := m.seed(ctx); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	log.Info().Msg("database initialized")
	return nil
}

// ContentFilter narrows GetContent. Empty fields do not filter.
type ContentFilter struct {
	Type       string
	Query      string
	Category   string
	Genre      string
	Year       int
	Language   string
	Quality    string
	Resolution string
	MinRating  float64
	// Status is "active" (default), "inactive" or "all".
	Status    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type ContentPage struct {
	Content []content.Content `json:"content"`
	Total   int64             `json:"total"`
}

var sortColumns = map[string]string{
	"":            "created_at",
	"createdAt":   "created_at",
	"created_at":  "created_at",
	"title":       "title",
	"rating":      "rating",
	"year":        "year",
	"releaseDate": "release_date",
	"views":       "view_count",
	"viewCount":   "view_count",
	"updatedAt":   "updated_at",
}

func (f ContentFilter) scope(db *gorm.DB) *gorm.DB {
	switch f.Status {
	case "all":
	case "inactive":
		db = db.Where("content.is_active = ?", false)
	default:
		db = db.Where("content.is_active = ?", true)
	}

	if f.Type != "" {
		db = db.Where("content.type = ?", f.Type)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + q + "%"
		db = db.Where("(content.title LIKE ? OR content.title_arabic LIKE ?)", like, like)
	}
	if f.Category != "" {
		db = db.Where(`content.id IN (SELECT cc.content_id FROM content_categories cc
			JOIN categories cat ON cat.id = cc.category_id
			WHERE cat.name = ? OR cat.name_arabic = ? OR CAST(cat.id AS TEXT) = ?)`,
			f.Category, f.Category, f.Category)
	}
	if f.Genre != "" {
		db = db.Where(`content.id IN (SELECT cg.content_id FROM content_genres cg
			JOIN genres g ON g.id = cg.genre_id
			WHERE g.name = ? OR g.name_arabic = ? OR CAST(g.id AS TEXT) = ?)`,
			f.Genre, f.Genre, f.Genre)
	}
	if f.Year > 0 {
		db = db.Where("content.year = ?", f.Year)
	}
	if f.Language != "" {
		db = db.Where("content.language = ?", f.Language)
	}
	if f.Quality != "" {
		db = db.Where("content.quality = ?", f.Quality)
	}
	if f.Resolution != "" {
		db = db.Where("content.resolution = ?", f.Resolution)
	}
	if f.MinRating > 0 {
		db = db.Where("content.rating >= ?", f.MinRating)
	}
	return db
}

func (f ContentFilter) order() string {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("content.%s %s, content.id %s", col, dir, dir)
}

func preloadNames(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Categories", func(tx *gorm.DB) *gorm.DB { return tx.Order("categories.order_index, categories.id") }).
		Preload("Genres", func(tx *gorm.DB) *gorm.DB { return tx.Order("genres.id") })
}

// GetContent lists content with category and genre names joined into
// comma separated strings. Total counts every row matching the filter.
func (m *Manager) GetContent(ctx context.Context, f ContentFilter) (*ContentPage, error) {
	db := m.db.WithContext(ctx)

	var total int64
	if err := db.Model(&content.Content{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return nil, err
	}

	q := db.Model(&content.Content{}).Scopes(f.scope, preloadNames).Order(f.order())
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
		if f.Page > 1 {
			q = q.Offset((f.Page - 1) * f.Limit)
		}
	}

	items := make([]content.Content, 0)
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	for i := range items {
		items[i].FillNames()
	}
	return &ContentPage{Content: items, Total: total}, nil
}

// GetContentByID returns an active content item with its episodes, download
// links and streaming links, or nil when missing or inactive.
func (m *Manager) GetContentByID(ctx context.Context, id uint) (*content.ContentDetails, error) {
	return m.getContentDetails(ctx, id, false)
}

// GetContentByIDAny is GetContentByID without the active filter, for admins.
func (m *Manager) GetContentByIDAny(ctx context.Context, id uint) (*content.ContentDetails, error) {
	return m.getContentDetails(ctx, id, true)
}

func (m *Manager) getContentDetails(ctx context.Context, id uint, includeInactive bool) (*content.ContentDetails, error) {
	db := m.db.WithContext(ctx)

	var c content.Content
	q := db.Scopes(preloadNames).Where("id = ?", id)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	c.FillNames()

	details := &content.ContentDetails{
		Content:        c,
		EpisodeList:    make([]content.Episode, 0),
		DownloadLinks:  make([]content.DownloadLink, 0),
		StreamingLinks: make([]content.StreamingLink, 0),
	}
	if err := db.Where("content_id = ? AND is_active = ?", id, true).
		Order("season_number, episode_number").Find(&details.EpisodeList).Error; err != nil {
		return nil, err
	}
	if err := db.Where("content_id = ? AND is_active = ?", id, true).
		Order("id").Find(&details.DownloadLinks).Error; err != nil {
		return nil, err
	}
	if err := db.Where("content_id = ? AND is_active = ?", id, true).
		Order("id").Find(&details.StreamingLinks).Error; err != nil {
		return nil, err
	}
	return details, nil
}

type SystemHealth struct {
	Status      string `json:"status"`
	Uptime      int    `json:"uptime"`
	DiskUsage   int    `json:"diskUsage"`
	MemoryUsage int    `json:"memoryUsage"`
}

type DashboardStats struct {
	TotalContent   int64             `json:"totalContent"`
	TotalUsers     int64             `json:"totalUsers"`
	TotalViews     int64             `json:"totalViews"`
	TotalDownloads int64             `json:"totalDownloads"`
	TotalReviews   int64             `json:"totalReviews"`
	TotalComments  int64             `json:"totalComments"`
	ActiveUsers    int64             `json:"activeUsers"`
	RecentContent  []content.Content `json:"recentContent"`
	TopRated       []content.Content `json:"topRated"`
	MostViewed     []content.Content `json:"mostViewed"`
	RecentUsers    []users.User      `json:"recentUsers"`
	SystemHealth   SystemHealth      `json:"systemHealth"`
}

// GetDashboardStats aggregates the admin dashboard. SystemHealth is a fixed
// "healthy" block; real health checks live behind /readyz.
func (m *Manager) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := m.db.WithContext(ctx)
	s := &DashboardStats{}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&s.TotalContent, db.Model(&content.Content{}).Where("is_active = ?", true)},
		{&s.TotalUsers, db.Model(&users.User{}).Where("is_active = ?", true)},
		{&s.TotalReviews, db.Model(&reviews.Review{}).Where("is_active = ?", true)},
		{&s.TotalComments, db.Model(&reviews.Comment{}).Where("is_active = ?", true)},
		{&s.ActiveUsers, db.Model(&users.User{}).
			Where("is_active = ? AND last_login >= ?", true, time.Now().AddDate(0, 0, -30))},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Model(&content.Content{}).Select("COALESCE(SUM(view_count), 0)").Scan(&s.TotalViews).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&content.Content{}).Select("COALESCE(SUM(download_count), 0)").Scan(&s.TotalDownloads).Error; err != nil {
		return nil, err
	}

	tops := []struct {
		dst   *[]content.Content
		order string
	}{
		{&s.RecentContent, "created_at DESC, id DESC"},
		{&s.TopRated, "rating DESC, id DESC"},
		{&s.MostViewed, "view_count DESC, id DESC"},
	}
	for _, t := range tops {
		*t.dst = make([]content.Content, 0, 5)
		if err := db.Where("is_active = ?", true).Order(t.order).Limit(5).Find(t.dst).Error; err != nil {
			return nil, err
		}
	}

	s.RecentUsers = make([]users.User, 0, 5)
	if err := db.Order("created_at DESC, id DESC").Limit(5).Find(&s.RecentUsers).Error; err != nil {
		return nil, err
	}

	s.SystemHealth = SystemHealth{Status: "healthy", Uptime: 100, DiskUsage: 45, MemoryUsage: 60}
	return s, nil
}

func (m *Manager) GetSiteSettings(ctx context.Context) ([]admin.SiteSetting, error) {
	settings := make([]admin.SiteSetting, 0)
	err := m.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("category, setting_key").
		Find(&settings).Error
	return settings, err
}

type SettingUpdate struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

// UpdateSiteSettings applies every update in one transaction. An unknown key
// or a value that does not fit the setting type rolls the whole batch back.
func (m *Manager) UpdateSiteSettings(ctx context.Context, updates []SettingUpdate) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, u := range updates {
			var setting admin.SiteSetting
			if err := tx.Where("setting_key = ?", u.Key).First(&setting).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrUnknownSetting, u.Key)
				}
				return err
			}
			if err := checkSettingValue(setting.Type, u.Value); err != nil {
				return fmt.Errorf("setting %s: %w", u.Key, err)
			}
			if err := tx.Model(&admin.SiteSetting{}).
				Where("id = ?", setting.ID).
				Updates(map[string]interface{}{"value": u.Value, "updated_at": now}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func checkSettingValue(kind, value string) error {
	switch kind {
	case "number":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidSettingValue, value)
		}
	case "boolean":
		if value != "true" && value != "false" {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidSettingValue, value)
		}
	}
	return nil
}

// SettingEnabled reads a boolean site setting. A missing or inactive
// setting yields def.
func (m *Manager) SettingEnabled(ctx context.Context, key string, def bool) (bool, error) {
	var setting admin.SiteSetting
	err := m.db.WithContext(ctx).Where("setting_key = ? AND is_active = ?", key, true).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return def, nil
	}
	if err != nil {
		return false, err
	}
	return setting.Value == "true", nil
}

// SettingInt reads a numeric site setting, falling back to def.
func (m *Manager) SettingInt(ctx context.Context, key string, def int64) (int64, error) {
	var setting admin.SiteSetting
	err := m.db.WithContext(ctx).Where("setting_key = ? AND is_active = ?", key, true).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return def, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil {
		return def, nil
	}
	return int64(n), nil
}

type UserPage struct {
	Users []users.User `json:"users"`
	Total int64        `json:"total"`
}

// GetUsers pages users newest first. page and limit default to 1 and 24.
func (m *Manager) GetUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 24
	}
	db := m.db.WithContext(ctx)

	var total int64
	if err := db.Model(&users.User{}).Count(&total).Error; err != nil {
		return nil, err
	}

	list := make([]users.User, 0, limit)
	if err := db.Order("created_at DESC, id DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return &UserPage{Users: list, Total: total}, nil
}

// Close releases the underlying connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
