package content

import (
	"context"
	"errors"
	"fmt"
	"math"

	"yemenflix/src/cache"
	"yemenflix/src/database"
	lib "yemenflix/src/modules/content/lib"
	models "yemenflix/src/modules/content/models"
	"yemenflix/src/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CatalogPrefixes are the response cache prefixes a catalog write touches.
var CatalogPrefixes = []string{"/api/content", "/api/search", "/api/episodes", "/api/enhanced/content", "/api/watchlists/"}

// Notifier fans a notification out to every user that opted in to kind.
type Notifier interface {
	NotifyAll(ctx context.Context, kind, title, message string, data map[string]interface{}) (int, error)
}

type ContentService struct {
	db       *database.Manager
	cache    *cache.Cache
	notifier Notifier
}

func NewContentService(db *database.Manager, c *cache.Cache, notifier Notifier) *ContentService {
	return &ContentService{db: db, cache: c, notifier: notifier}
}

type ListResponse struct {
	Content    []models.Content `json:"content"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
	Pagination utils.Pagination `json:"pagination"`
}

func filterFromQuery(q lib.ListQuery) database.ContentFilter {
	return database.ContentFilter{
		Type:       q.Type,
		Query:      q.Query,
		Category:   q.Category,
		Genre:      q.Genre,
		Year:       q.Year,
		Language:   q.Language,
		Quality:    q.Quality,
		Resolution: q.Resolution,
		MinRating:  q.Rating,
		Status:     q.Status,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
		Page:       q.Page,
		Limit:      q.Limit,
	}
}

// List expects q to be normalized.
func (s *ContentService) List(ctx context.Context, q lib.ListQuery) (*ListResponse, error) {
	page, err := s.db.GetContent(ctx, filterFromQuery(q))
	if err != nil {
		return nil, err
	}
	return &ListResponse{
		Content:    page.Content,
		Total:      page.Total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: int(math.Ceil(float64(page.Total) / float64(q.Limit))),
		Pagination: utils.Paginate(page.Total, q.Page, q.Limit),
	}, nil
}

// Search is List with a mandatory text query.
func (s *ContentService) Search(ctx context.Context, q lib.ListQuery) (*ListResponse, error) {
	if q.Query == "" {
		return nil, utils.BadRequest("query parameter is required")
	}
	return s.List(ctx, q)
}

// Recent is List ordered by creation date regardless of sortBy.
func (s *ContentService) Recent(ctx context.Context, q lib.ListQuery) (*ListResponse, error) {
	q.SortBy = "createdAt"
	q.SortOrder = "desc"
	return s.List(ctx, q)
}

const curatedLimit = 10

func (s *ContentService) curated(ctx context.Context, sortBy string) ([]models.Content, error) {
	page, err := s.db.GetContent(ctx, database.ContentFilter{SortBy: sortBy, SortOrder: "desc", Limit: curatedLimit})
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

// Featured returns the best rated active content.
func (s *ContentService) Featured(ctx context.Context) ([]models.Content, error) {
	return s.curated(ctx, "rating")
}

// Trending returns the most viewed active content.
func (s *ContentService) Trending(ctx context.Context) ([]models.Content, error) {
	return s.curated(ctx, "viewCount")
}

func (s *ContentService) Latest(ctx context.Context) ([]models.Content, error) {
	return s.curated(ctx, "createdAt")
}

// Get returns content with episodes and links. Inactive content is only
// visible to admins.
func (s *ContentService) Get(ctx context.Context, id uint, isAdmin bool) (*models.ContentDetails, error) {
	var (
		details *models.ContentDetails
		err     error
	)
	if isAdmin {
		details, err = s.db.GetContentByIDAny(ctx, id)
	} else {
		details, err = s.db.GetContentByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, utils.NotFound("Content not found")
	}
	return details, nil
}

func (s *ContentService) lookups(tx *gorm.DB, categoryIDs, genreIDs []uint) ([]models.Category, []models.Genre, error) {
	var (
		categories []models.Category
		genres     []models.Genre
	)
	if len(categoryIDs) > 0 {
		if err := tx.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
			return nil, nil, err
		}
		if len(categories) != len(unique(categoryIDs)) {
			return nil, nil, utils.BadRequest("unknown category id")
		}
	}
	if len(genreIDs) > 0 {
		if err := tx.Where("id IN ?", genreIDs).Find(&genres).Error; err != nil {
			return nil, nil, err
		}
		if len(genres) != len(unique(genreIDs)) {
			return nil, nil, utils.BadRequest("unknown genre id")
		}
	}
	return categories, genres, nil
}

func unique(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s *ContentService) Create(ctx context.Context, in lib.ContentInput) (*models.Content, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	item := in.ToModel()
	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories, genres, err := s.lookups(tx, in.CategoryIDs, in.GenreIDs)
		if err != nil {
			return err
		}
		item.Categories = categories
		item.Genres = genres
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	item.FillNames()

	s.cache.Invalidate(ctx, CatalogPrefixes...)
	log.Ctx(ctx).Info().Uint("content_id", item.ID).Str("type", item.Type).Msg("content created")

	if item.IsActive && s.notifier != nil {
		data := map[string]interface{}{"contentId": item.ID, "type": item.Type}
		msg := fmt.Sprintf("تمت إضافة %s", item.TitleArabic)
		if _, err := s.notifier.NotifyAll(ctx, "new_content", "محتوى جديد", msg, data); err != nil {
			log.Ctx(ctx).Warn().Err(err).Uint("content_id", item.ID).Msg("new content notification failed")
		}
	}
	return &item, nil
}

func (s *ContentService) find(tx *gorm.DB, id uint) (*models.Content, error) {
	var item models.Content
	if err := tx.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Content not found")
		}
		return nil, err
	}
	return &item, nil
}

// Update applies a partial update. Any subset of fields may be sent.
func (s *ContentService) Update(ctx context.Context, id uint, p lib.ContentPatch) (*models.Content, error) {
	db := s.db.DB().WithContext(ctx)
	current, err := s.find(db, id)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(current.Type); err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, utils.BadRequest("no fields to update")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if updates := p.Updates(current.Type); updates != nil {
			if err := tx.Model(&models.Content{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if p.CategoryIDs == nil && p.GenreIDs == nil {
			return nil
		}
		categories, genres, err := s.lookups(tx, p.CategoryIDs, p.GenreIDs)
		if err != nil {
			return err
		}
		if p.CategoryIDs != nil {
			if err := tx.Model(current).Association("Categories").Replace(categories); err != nil {
				return err
			}
		}
		if p.GenreIDs != nil {
			if err := tx.Model(current).Association("Genres").Replace(genres); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, CatalogPrefixes...)

	var updated models.Content
	if err := db.Preload("Categories").Preload("Genres").First(&updated, id).Error; err != nil {
		return nil, err
	}
	updated.FillNames()
	return &updated, nil
}

// contentChildren are removed before the content row, children first.
var contentChildren = []string{
	"DELETE FROM review_likes WHERE review_id IN (SELECT id FROM reviews WHERE content_id = ?)",
	"DELETE FROM reviews WHERE content_id = ?",
	"DELETE FROM comments WHERE content_id = ?",
	"DELETE FROM watchlist_items WHERE content_id = ?",
	"DELETE FROM user_favorites WHERE content_id = ?",
	"DELETE FROM user_watch_history WHERE content_id = ?",
	"DELETE FROM external_ratings WHERE content_id = ?",
	"DELETE FROM content_images WHERE content_id = ?",
	"DELETE FROM content_casts WHERE content_id = ?",
	"DELETE FROM download_links WHERE content_id = ?",
	"DELETE FROM streaming_links WHERE content_id = ?",
	"DELETE FROM episodes WHERE content_id = ?",
	"DELETE FROM content_categories WHERE content_id = ?",
	"DELETE FROM content_genres WHERE content_id = ?",
	"UPDATE reports SET content_id = NULL, episode_id = NULL WHERE content_id = ?",
}

// Delete removes the content and every row that hangs off it.
func (s *ContentService) Delete(ctx context.Context, id uint) error {
	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.find(tx, id); err != nil {
			return err
		}
		for _, stmt := range contentChildren {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Content{}, id).Error
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, CatalogPrefixes...)
	log.Ctx(ctx).Info().Uint("content_id", id).Msg("content deleted")
	return nil
}

// RecordView bumps the view counter of active content.
func (s *ContentService) RecordView(ctx context.Context, id uint) error {
	res := s.db.DB().WithContext(ctx).Model(&models.Content{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("Content not found")
	}
	return nil
}

type ContentStats struct {
	TotalContent    int64 `json:"totalContent"`
	MovieCount      int64 `json:"movieCount"`
	SeriesCount     int64 `json:"seriesCount"`
	TVCount         int64 `json:"tvCount"`
	MiscCount       int64 `json:"miscCount"`
	TotalCategories int64 `json:"totalCategories"`
	TotalGenres     int64 `json:"totalGenres"`
	TotalViews      int64 `json:"totalViews"`
}

func (s *ContentService) Stats(ctx context.Context) (*ContentStats, error) {
	db := s.db.DB().WithContext(ctx)
	stats := &ContentStats{}

	var rows []struct {
		Type  string
		Count int64
	}
	if err := db.Model(&models.Content{}).
		Select("type, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.TotalContent += r.Count
		switch r.Type {
		case models.TypeMovie:
			stats.MovieCount = r.Count
		case models.TypeSeries:
			stats.SeriesCount = r.Count
		case models.TypeTV:
			stats.TVCount = r.Count
		case models.TypeMisc:
			stats.MiscCount = r.Count
		}
	}

	if err := db.Model(&models.Category{}).Count(&stats.TotalCategories).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Genre{}).Count(&stats.TotalGenres).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Content{}).
		Where("is_active = ?", true).
		Select("COALESCE(SUM(view_count), 0)").
		Scan(&stats.TotalViews).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *ContentService) Categories(ctx context.Context) ([]models.Category, error) {
	return cache.Remember(ctx, s.cache, "lookup:categories", func(ctx context.Context) ([]models.Category, error) {
		out := make([]models.Category, 0)
		err := s.db.DB().WithContext(ctx).Order("order_index, id").Find(&out).Error
		return out, err
	})
}

func (s *ContentService) Genres(ctx context.Context) ([]models.Genre, error) {
	return cache.Remember(ctx, s.cache, "lookup:genres", func(ctx context.Context) ([]models.Genre, error) {
		out := make([]models.Genre, 0)
		err := s.db.DB().WithContext(ctx).Order("id").Find(&out).Error
		return out, err
	})
}
