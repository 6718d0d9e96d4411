package content

import (
	"context"
	"errors"

	"yemenflix/src/cache"
	"yemenflix/src/database"
	lib "yemenflix/src/modules/content/lib"
	models "yemenflix/src/modules/content/models"
	"yemenflix/src/utils"

	"gorm.io/gorm"
)

type EpisodeService struct {
	db    *database.Manager
	cache *cache.Cache
}

func NewEpisodeService(db *database.Manager, c *cache.Cache) *EpisodeService {
	return &EpisodeService{db: db, cache: c}
}

// List returns the active episodes of active content, optionally for one
// season only.
func (s *EpisodeService) List(ctx context.Context, contentID uint, season int) ([]models.Episode, error) {
	db := s.db.DB().WithContext(ctx)

	var count int64
	if err := db.Model(&models.Content{}).Where("id = ? AND is_active = ?", contentID, true).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, utils.NotFound("Content not found")
	}

	q := db.Where("content_id = ? AND is_active = ?", contentID, true)
	if season > 0 {
		q = q.Where("season_number = ?", season)
	}
	episodes := make([]models.Episode, 0)
	err := q.Order("season_number, episode_number").Find(&episodes).Error
	return episodes, err
}

func (s *EpisodeService) checkSlot(tx *gorm.DB, contentID uint, season, number int, exclude uint) error {
	var count int64
	q := tx.Model(&models.Episode{}).
		Where("content_id = ? AND season_number = ? AND episode_number = ?", contentID, season, number)
	if exclude != 0 {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return utils.Conflict("episode already exists for this season")
	}
	return nil
}

// syncCount keeps Content.Episodes equal to the number of active episodes
// for series.
func syncCount(tx *gorm.DB, contentID uint) error {
	var kinds []string
	if err := tx.Model(&models.Content{}).Where("id = ?", contentID).Pluck("type", &kinds).Error; err != nil {
		return err
	}
	if len(kinds) == 0 || kinds[0] != models.TypeSeries {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Episode{}).Where("content_id = ? AND is_active = ?", contentID, true).Count(&count).Error; err != nil {
		return err
	}
	return tx.Model(&models.Content{}).Where("id = ?", contentID).UpdateColumn("episodes", count).Error
}

func (s *EpisodeService) Create(ctx context.Context, in lib.EpisodeInput) (*models.Episode, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.SeasonNumber == 0 {
		in.SeasonNumber = 1
	}

	ep := models.Episode{
		ContentID:         in.ContentID,
		SeasonNumber:      in.SeasonNumber,
		EpisodeNumber:     in.EpisodeNumber,
		Title:             in.Title,
		TitleArabic:       in.TitleArabic,
		Description:       in.Description,
		DescriptionArabic: in.DescriptionArabic,
		Duration:          in.Duration,
		Quality:           in.Quality,
		Resolution:        in.Resolution,
		Language:          in.Language,
		Subtitle:          in.Subtitle,
		VideoURL:          in.VideoURL,
		DownloadURL:       in.DownloadURL,
		ThumbnailURL:      in.ThumbnailURL,
		IsActive:          in.IsActive == nil || *in.IsActive,
	}

	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent models.Content
		if err := tx.First(&parent, in.ContentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Content not found")
			}
			return err
		}
		if parent.Type == models.TypeMovie {
			return utils.BadRequest("movies do not have episodes")
		}
		if err := s.checkSlot(tx, in.ContentID, in.SeasonNumber, in.EpisodeNumber, 0); err != nil {
			return err
		}
		if err := tx.Create(&ep).Error; err != nil {
			return err
		}
		return syncCount(tx, in.ContentID)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, CatalogPrefixes...)
	return &ep, nil
}

func (s *EpisodeService) find(tx *gorm.DB, id uint) (*models.Episode, error) {
	var ep models.Episode
	if err := tx.First(&ep, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Episode not found")
		}
		return nil, err
	}
	return &ep, nil
}

func (s *EpisodeService) Update(ctx context.Context, id uint, p lib.EpisodePatch) (*models.Episode, error) {
	if err := utils.ValidateStruct(p); err != nil {
		return nil, err
	}
	updates := p.Updates()
	if len(updates) == 0 {
		return nil, utils.BadRequest("no fields to update")
	}

	var ep *models.Episode
	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.find(tx, id)
		if err != nil {
			return err
		}
		season, number := current.SeasonNumber, current.EpisodeNumber
		if p.SeasonNumber != nil {
			season = *p.SeasonNumber
		}
		if p.EpisodeNumber != nil {
			number = *p.EpisodeNumber
		}
		if err := s.checkSlot(tx, current.ContentID, season, number, id); err != nil {
			return err
		}
		if err := tx.Model(&models.Episode{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := syncCount(tx, current.ContentID); err != nil {
			return err
		}
		ep, err = s.find(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, CatalogPrefixes...)
	return ep, nil
}

func (s *EpisodeService) Delete(ctx context.Context, id uint) error {
	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ep, err := s.find(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Exec("UPDATE reports SET episode_id = NULL WHERE episode_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("episode_id = ?", id).Delete(&models.DownloadLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("episode_id = ?", id).Delete(&models.StreamingLink{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Episode{}, id).Error; err != nil {
			return err
		}
		return syncCount(tx, ep.ContentID)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, CatalogPrefixes...)
	return nil
}
