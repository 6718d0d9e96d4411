package enhanced

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yemenflix/src/cache"
	"yemenflix/src/database"
	content "yemenflix/src/modules/content/models"
	lib "yemenflix/src/modules/enhanced/lib"
	models "yemenflix/src/modules/enhanced/models"
	"yemenflix/src/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	castMembersPrefix = "/api/enhanced/cast-members"
	lookupCastMembers = "lookup:cast-members"
)

type EnhancedService struct {
	db    *database.Manager
	cache *cache.Cache
}

func NewEnhancedService(db *database.Manager, c *cache.Cache) *EnhancedService {
	return &EnhancedService{db: db, cache: c}
}

func contentPrefix(contentID uint) string {
	return fmt.Sprintf("/api/enhanced/content/%d/", contentID)
}

// invalidateContent drops the enhanced listings and the detail view, which
// embeds cast and images.
func (s *EnhancedService) invalidateContent(ctx context.Context, contentID uint) {
	s.cache.Invalidate(ctx, contentPrefix(contentID), fmt.Sprintf("/api/content/%d", contentID))
}

func contentExists(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&content.Content{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return utils.NotFound("Content not found")
	}
	return nil
}

func (s *EnhancedService) CastMembers(ctx context.Context) ([]models.CastMember, error) {
	return cache.Remember(ctx, s.cache, lookupCastMembers, func(ctx context.Context) ([]models.CastMember, error) {
		out := make([]models.CastMember, 0)
		err := s.db.DB().WithContext(ctx).Order("name, id").Find(&out).Error
		return out, err
	})
}

func (s *EnhancedService) CastMember(ctx context.Context, id uint) (*models.CastMember, error) {
	var m models.CastMember
	if err := s.db.DB().WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Cast member not found")
		}
		return nil, err
	}
	return &m, nil
}

func (s *EnhancedService) invalidatePeople(ctx context.Context) {
	s.cache.Invalidate(ctx, lookupCastMembers, castMembersPrefix, "/api/enhanced/content")
}

func (s *EnhancedService) CreateCastMember(ctx context.Context, req lib.CastMemberRequest) (*models.CastMember, error) {
	req.Trim()
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	m := models.CastMember{
		Name:        req.Name,
		NameArabic:  req.NameArabic,
		Role:        req.Role,
		Biography:   req.Biography,
		BirthDate:   req.BirthDate,
		Nationality: req.Nationality,
		ImageURL:    req.ImageURL,
		IMDBID:      req.IMDBID,
	}
	if err := s.db.DB().WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	s.invalidatePeople(ctx)
	return &m, nil
}

func (s *EnhancedService) UpdateCastMember(ctx context.Context, id uint, p lib.CastMemberPatch) (*models.CastMember, error) {
	if err := utils.ValidateStruct(p); err != nil {
		return nil, err
	}
	updates := p.Updates()
	if len(updates) == 0 {
		return nil, utils.BadRequest("no fields to update")
	}
	if _, err := s.CastMember(ctx, id); err != nil {
		return nil, err
	}
	if err := s.db.DB().WithContext(ctx).Model(&models.CastMember{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.invalidatePeople(ctx)
	return s.CastMember(ctx, id)
}

// DeleteCastMember also removes the person from every content item.
func (s *EnhancedService) DeleteCastMember(ctx context.Context, id uint) error {
	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cast_member_id = ?", id).Delete(&models.ContentCast{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.CastMember{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NotFound("Cast member not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidatePeople(ctx)
	return nil
}

func (s *EnhancedService) ContentCast(ctx context.Context, contentID uint) ([]models.ContentCast, error) {
	db := s.db.DB().WithContext(ctx)
	if err := contentExists(db, contentID); err != nil {
		return nil, err
	}
	out := make([]models.ContentCast, 0)
	err := db.Preload("CastMember").
		Where("content_id = ?", contentID).
		Order("display_order, id").
		Find(&out).Error
	return out, err
}

func (s *EnhancedService) AddContentCast(ctx context.Context, contentID uint, req lib.ContentCastRequest) (*models.ContentCast, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	db := s.db.DB().WithContext(ctx)
	if err := contentExists(db, contentID); err != nil {
		return nil, err
	}
	if _, err := s.CastMember(ctx, req.CastMemberID); err != nil {
		return nil, err
	}
	var count int64
	if err := db.Model(&models.ContentCast{}).
		Where("content_id = ? AND cast_member_id = ?", contentID, req.CastMemberID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Conflict("cast member already linked to this content")
	}
	link := models.ContentCast{ContentID: contentID, CastMemberID: req.CastMemberID, Character: req.Character, Order: req.Order}
	if err := db.Create(&link).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("CastMember").First(&link, link.ID).Error; err != nil {
		return nil, err
	}
	s.invalidateContent(ctx, contentID)
	return &link, nil
}

func (s *EnhancedService) RemoveContentCast(ctx context.Context, contentID, castMemberID uint) error {
	res := s.db.DB().WithContext(ctx).
		Where("content_id = ? AND cast_member_id = ?", contentID, castMemberID).
		Delete(&models.ContentCast{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("Content cast relation not found")
	}
	s.invalidateContent(ctx, contentID)
	return nil
}

// Images lists a content item's images, optionally of a single type.
func (s *EnhancedService) Images(ctx context.Context, contentID uint, kind string) ([]models.ContentImage, error) {
	db := s.db.DB().WithContext(ctx)
	if err := contentExists(db, contentID); err != nil {
		return nil, err
	}
	q := db.Where("content_id = ?", contentID)
	if kind != "" {
		q = q.Where("type = ?", kind)
	}
	out := make([]models.ContentImage, 0)
	err := q.Order("display_order, id").Find(&out).Error
	return out, err
}

func (s *EnhancedService) AddImage(ctx context.Context, contentID uint, req lib.ImageRequest) (*models.ContentImage, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	db := s.db.DB().WithContext(ctx)
	if err := contentExists(db, contentID); err != nil {
		return nil, err
	}
	img := models.ContentImage{
		ContentID:         contentID,
		ImageURL:          req.ImageURL,
		Type:              req.Type,
		Description:       req.Description,
		DescriptionArabic: req.DescriptionArabic,
		Order:             req.Order,
	}
	if err := db.Create(&img).Error; err != nil {
		return nil, err
	}
	s.invalidateContent(ctx, contentID)
	return &img, nil
}

func (s *EnhancedService) DeleteImage(ctx context.Context, id uint) error {
	db := s.db.DB().WithContext(ctx)
	var img models.ContentImage
	if err := db.First(&img, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("Content image not found")
		}
		return err
	}
	if err := db.Delete(&img).Error; err != nil {
		return err
	}
	s.invalidateContent(ctx, img.ContentID)
	return nil
}

func (s *EnhancedService) ExternalRatings(ctx context.Context, contentID uint) ([]models.ExternalRating, error) {
	db := s.db.DB().WithContext(ctx)
	if err := contentExists(db, contentID); err != nil {
		return nil, err
	}
	out := make([]models.ExternalRating, 0)
	err := db.Where("content_id = ?", contentID).Order("source").Find(&out).Error
	return out, err
}

// UpsertExternalRating keeps a single row per (content, source).
func (s *EnhancedService) UpsertExternalRating(ctx context.Context, contentID uint, req lib.ExternalRatingRequest) (*models.ExternalRating, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	db := s.db.DB().WithContext(ctx)
	if err := contentExists(db, contentID); err != nil {
		return nil, err
	}
	rating := models.ExternalRating{
		ContentID:   contentID,
		Source:      req.Source,
		Rating:      req.Rating,
		MaxRating:   req.MaxRating,
		URL:         req.URL,
		LastUpdated: time.Now(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_id"}, {Name: "source"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "max_rating", "url", "last_updated"}),
	}).Create(&rating).Error
	if err != nil {
		return nil, err
	}
	var saved models.ExternalRating
	if err := db.Where("content_id = ? AND source = ?", contentID, req.Source).First(&saved).Error; err != nil {
		return nil, err
	}
	s.invalidateContent(ctx, contentID)
	return &saved, nil
}

func (s *EnhancedService) DeleteExternalRating(ctx context.Context, id uint) error {
	db := s.db.DB().WithContext(ctx)
	var r models.ExternalRating
	if err := db.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("External rating not found")
		}
		return err
	}
	if err := db.Delete(&r).Error; err != nil {
		return err
	}
	s.invalidateContent(ctx, r.ContentID)
	return nil
}
