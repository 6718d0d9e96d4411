package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"yemenflix/src/auth"
	"yemenflix/src/cache"
	"yemenflix/src/database"
	content "yemenflix/src/modules/content/models"
	reviews "yemenflix/src/modules/reviews/models"
	lib "yemenflix/src/modules/users/lib"
	models "yemenflix/src/modules/users/models"
	"yemenflix/src/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserService struct {
	db         *database.Manager
	cache      *cache.Cache
	bcryptCost int
}

func NewUserService(db *database.Manager, c *cache.Cache, bcryptCost int) *UserService {
	return &UserService{db: db, cache: c, bcryptCost: bcryptCost}
}

// UserPrefix is the response cache prefix of everything under a user.
func UserPrefix(userID uint) string {
	return fmt.Sprintf("/api/users/%d/", userID)
}

func (s *UserService) invalidate(ctx context.Context, userID uint, extra ...string) {
	s.cache.Invalidate(ctx, append([]string{UserPrefix(userID)}, extra...)...)
}

func (s *UserService) user(db *gorm.DB, id uint) (*models.User, error) {
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("User not found")
		}
		return nil, err
	}
	return &u, nil
}

const activeContentIDs = "content_id IN (SELECT id FROM content WHERE is_active = ?)"

func activeContent(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&content.Content{}).Where("id = ? AND is_active = ?", id, true).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return utils.NotFound("Content not found")
	}
	return nil
}

func (s *UserService) Profile(ctx context.Context, id uint) (*models.User, error) {
	return s.user(s.db.DB().WithContext(ctx), id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, p lib.ProfilePatch) (*models.User, error) {
	if err := utils.ValidateStruct(p); err != nil {
		return nil, err
	}
	db := s.db.DB().WithContext(ctx)
	u, err := s.user(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if p.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*p.LastName)
	}
	if p.ProfileImageURL != nil {
		updates["profile_image_url"] = *p.ProfileImageURL
	}
	if p.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*p.Email))
		var taken int64
		if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", email, id).Count(&taken).Error; err != nil {
			return nil, err
		}
		if taken > 0 {
			return nil, utils.Conflict("email already registered")
		}
		updates["email"] = email
	}
	if p.NewPassword != "" {
		if err := auth.CheckPassword(u.PasswordHash, p.CurrentPassword); err != nil {
			return nil, utils.BadRequest("current password is incorrect")
		}
		hash, err := auth.HashPassword(p.NewPassword, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		return nil, utils.BadRequest("no fields to update")
	}

	if err := db.Model(u).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return s.user(db, id)
}

type UserStats struct {
	Favorites           int64   `json:"favorites"`
	Watched             int64   `json:"watched"`
	Watchlists          int64   `json:"watchlists"`
	Reviews             int64   `json:"reviews"`
	Comments            int64   `json:"comments"`
	UnreadNotifications int64   `json:"unreadNotifications"`
	WatchMinutes        float64 `json:"watchMinutes"`
}

func (s *UserService) Stats(ctx context.Context, id uint) (*UserStats, error) {
	db := s.db.DB().WithContext(ctx)
	if _, err := s.user(db, id); err != nil {
		return nil, err
	}

	st := &UserStats{}
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&st.Favorites, db.Model(&models.Favorite{}).Where("user_id = ?", id)},
		{&st.Watched, db.Model(&models.WatchHistory{}).Where("user_id = ?", id)},
		{&st.Watchlists, db.Model(&models.Watchlist{}).Where("user_id = ?", id)},
		{&st.Reviews, db.Model(&reviews.Review{}).Where("user_id = ? AND is_active = ?", id, true)},
		{&st.Comments, db.Model(&reviews.Comment{}).Where("user_id = ? AND is_active = ?", id, true)},
		{&st.UnreadNotifications, db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", id, false)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var seconds float64
	if err := db.Model(&models.WatchHistory{}).
		Where("user_id = ?", id).
		Select("COALESCE(SUM(progress_seconds), 0)").
		Scan(&seconds).Error; err != nil {
		return nil, err
	}
	st.WatchMinutes = seconds / 60
	return st, nil
}

func (s *UserService) Favorites(ctx context.Context, userID uint) ([]models.Favorite, error) {
	out := make([]models.Favorite, 0)
	err := s.db.DB().WithContext(ctx).
		Preload("Content").
		Where("user_id = ?", userID).
		Where(activeContentIDs, true).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (s *UserService) AddFavorite(ctx context.Context, userID, contentID uint) (*models.Favorite, error) {
	db := s.db.DB().WithContext(ctx)
	if err := activeContent(db, contentID); err != nil {
		return nil, err
	}
	var count int64
	if err := db.Model(&models.Favorite{}).Where("user_id = ? AND content_id = ?", userID, contentID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Conflict("content already in favorites")
	}
	fav := models.Favorite{UserID: userID, ContentID: contentID}
	if err := db.Create(&fav).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return &fav, nil
}

func (s *UserService) RemoveFavorite(ctx context.Context, userID, contentID uint) error {
	res := s.db.DB().WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("Favorite not found")
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *UserService) WatchHistory(ctx context.Context, userID uint, limit int) ([]models.WatchHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	out := make([]models.WatchHistory, 0)
	err := s.db.DB().WithContext(ctx).
		Preload("Content").
		Where("user_id = ?", userID).
		Where(activeContentIDs, true).
		Order("watched_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// RecordProgress upserts the position for (user, content).
func (s *UserService) RecordProgress(ctx context.Context, userID uint, req lib.ProgressRequest) (*models.WatchHistory, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.Duration > 0 && req.ProgressSeconds > req.Duration {
		return nil, utils.BadRequest("progressSeconds exceeds duration")
	}
	db := s.db.DB().WithContext(ctx)
	if err := activeContent(db, req.ContentID); err != nil {
		return nil, err
	}

	entry := models.WatchHistory{
		UserID:          userID,
		ContentID:       req.ContentID,
		ProgressSeconds: req.ProgressSeconds,
		ProgressMinutes: int(req.ProgressSeconds / 60),
		Duration:        req.Duration,
		WatchedAt:       time.Now(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"progress_seconds", "progress_minutes", "duration", "watched_at"}),
	}).Create(&entry).Error
	if err != nil {
		return nil, err
	}

	var saved models.WatchHistory
	if err := db.Where("user_id = ? AND content_id = ?", userID, req.ContentID).First(&saved).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return &saved, nil
}

func (s *UserService) RemoveHistory(ctx context.Context, userID, contentID uint) error {
	res := s.db.DB().WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Delete(&models.WatchHistory{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("History entry not found")
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, page, limit int) (*database.UserPage, error) {
	return s.db.GetUsers(ctx, page, limit)
}

// AdminUpdate toggles the active and admin flags of another account.
func (s *UserService) AdminUpdate(ctx context.Context, id, actorID uint, p lib.AdminUserPatch) (*models.User, error) {
	if p.IsActive == nil && p.IsAdmin == nil {
		return nil, utils.BadRequest("no fields to update")
	}
	if id == actorID {
		return nil, utils.BadRequest("cannot change your own account status")
	}
	db := s.db.DB().WithContext(ctx)
	u, err := s.user(db, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if p.IsActive != nil {
		updates["is_active"] = *p.IsActive
	}
	if p.IsAdmin != nil {
		updates["is_admin"] = *p.IsAdmin
	}
	if err := db.Model(u).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return s.user(db, id)
}
