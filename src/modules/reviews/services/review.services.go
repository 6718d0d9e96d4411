package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yemenflix/src/cache"
	"yemenflix/src/database"
	content "yemenflix/src/modules/content/models"
	lib "yemenflix/src/modules/reviews/lib"
	models "yemenflix/src/modules/reviews/models"
	users "yemenflix/src/modules/users/models"
	usersvc "yemenflix/src/modules/users/services"
	"yemenflix/src/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Notifier delivers a notification to one user, subject to their settings.
type Notifier interface {
	Notify(ctx context.Context, userID uint, kind, title, message string, data map[string]interface{}) (bool, error)
}

type ReviewService struct {
	db       *database.Manager
	cache    *cache.Cache
	notifier Notifier
}

func NewReviewService(db *database.Manager, c *cache.Cache, notifier Notifier) *ReviewService {
	return &ReviewService{db: db, cache: c, notifier: notifier}
}

func reviewsPrefix(contentID uint) string {
	return fmt.Sprintf("/api/content/%d/reviews", contentID)
}

func commentsPrefix(contentID uint) string {
	return fmt.Sprintf("/api/content/%d/comments", contentID)
}

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

func (s *ReviewService) requireSetting(ctx context.Context, key, msg string) error {
	on, err := s.db.SettingEnabled(ctx, key, true)
	if err != nil {
		return err
	}
	if !on {
		return utils.Forbidden(msg)
	}
	return nil
}

// notify never fails the caller; delivery problems are only logged.
func (s *ReviewService) notify(ctx context.Context, userID uint, kind, title, message string, data map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, userID, kind, title, message, data); err != nil {
		log.Ctx(ctx).Warn().Err(err).Uint("user_id", userID).Str("kind", kind).Msg("notification failed")
	}
}

func username(db *gorm.DB, id uint) string {
	var u users.User
	if err := db.Select("id", "username").First(&u, id).Error; err != nil {
		return ""
	}
	return u.Username
}

type ReviewList struct {
	Reviews       []models.Review `json:"reviews"`
	Total         int             `json:"total"`
	AverageRating float64         `json:"averageRating"`
}

func (s *ReviewService) ListReviews(ctx context.Context, contentID uint) (*ReviewList, error) {
	db := s.db.DB().WithContext(ctx)
	if err := activeContent(db, contentID); err != nil {
		return nil, err
	}
	out := &ReviewList{Reviews: make([]models.Review, 0)}
	if err := db.Preload("User").
		Where("content_id = ? AND is_active = ?", contentID, true).
		Order("created_at DESC, id DESC").
		Find(&out.Reviews).Error; err != nil {
		return nil, err
	}
	out.Total = len(out.Reviews)
	if out.Total > 0 {
		sum := 0
		for _, r := range out.Reviews {
			sum += r.Rating
		}
		out.AverageRating = float64(sum) / float64(out.Total)
	}
	return out, nil
}

// UserReview returns the review userID wrote for contentID.
func (s *ReviewService) UserReview(ctx context.Context, userID, contentID uint) (*models.Review, error) {
	var r models.Review
	err := s.db.DB().WithContext(ctx).
		Where("user_id = ? AND content_id = ? AND is_active = ?", userID, contentID, true).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("Review not found")
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReview allows one review per user and content.
func (s *ReviewService) CreateReview(ctx context.Context, userID, contentID uint, req lib.ReviewRequest) (*models.Review, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Review = strings.TrimSpace(req.Review)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := s.requireSetting(ctx, "enable_reviews", "reviews are disabled"); err != nil {
		return nil, err
	}
	db := s.db.DB().WithContext(ctx)
	if err := activeContent(db, contentID); err != nil {
		return nil, err
	}
	var count int64
	if err := db.Model(&models.Review{}).Where("user_id = ? AND content_id = ?", userID, contentID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Conflict("you already reviewed this content")
	}

	review := models.Review{
		UserID:    userID,
		ContentID: contentID,
		Rating:    req.Rating,
		Title:     req.Title,
		Body:      req.Review,
		IsActive:  true,
	}
	if err := db.Create(&review).Error; err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, reviewsPrefix(contentID), usersvc.UserPrefix(userID))
	return s.review(db, review.ID)
}

func (s *ReviewService) review(db *gorm.DB, id uint) (*models.Review, error) {
	var r models.Review
	if err := db.Preload("User").First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Review not found")
		}
		return nil, err
	}
	return &r, nil
}

func (s *ReviewService) ownedReview(db *gorm.DB, id, viewerID uint, isAdmin bool) (*models.Review, error) {
	r, err := s.review(db, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != viewerID && !isAdmin {
		return nil, utils.Forbidden("access denied")
	}
	return r, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, id, viewerID uint, isAdmin bool, p lib.ReviewPatch) (*models.Review, error) {
	if err := utils.ValidateStruct(p); err != nil {
		return nil, err
	}
	updates := p.Updates()
	if len(updates) == 0 {
		return nil, utils.BadRequest("no fields to update")
	}
	db := s.db.DB().WithContext(ctx)
	r, err := s.ownedReview(db, id, viewerID, isAdmin)
	if err != nil {
		return nil, err
	}
	if err := db.Model(&models.Review{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, reviewsPrefix(r.ContentID))
	return s.review(db, id)
}

func (s *ReviewService) DeleteReview(ctx context.Context, id, viewerID uint, isAdmin bool) error {
	db := s.db.DB().WithContext(ctx)
	r, err := s.ownedReview(db, id, viewerID, isAdmin)
	if err != nil {
		return err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&models.ReviewLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Review{}, id).Error
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, reviewsPrefix(r.ContentID), usersvc.UserPrefix(r.UserID))
	return nil
}

// LikeReview records one vote per user. Voting again with the other value
// moves the vote between the like and dislike counters.
func (s *ReviewService) LikeReview(ctx context.Context, reviewID, userID uint, isLike bool) (*models.Review, error) {
	db := s.db.DB().WithContext(ctx)
	var (
		review  models.Review
		created bool
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_active = ?", reviewID, true).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Review not found")
			}
			return err
		}

		var existing models.ReviewLike
		err := tx.Where("user_id = ? AND review_id = ?", userID, reviewID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.ReviewLike{UserID: userID, ReviewID: reviewID, IsLike: isLike}).Error; err != nil {
				return err
			}
			created = true
			return tx.Model(&models.Review{}).Where("id = ?", reviewID).
				UpdateColumn(counter(isLike), gorm.Expr(counter(isLike)+" + 1")).Error
		case err != nil:
			return err
		case existing.IsLike == isLike:
			return nil
		}

		if err := tx.Model(&existing).UpdateColumn("is_like", isLike).Error; err != nil {
			return err
		}
		return tx.Model(&models.Review{}).Where("id = ?", reviewID).UpdateColumns(map[string]interface{}{
			counter(isLike):  gorm.Expr(counter(isLike) + " + 1"),
			counter(!isLike): gorm.Expr(counter(!isLike) + " - 1"),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, reviewsPrefix(review.ContentID))

	if created && isLike && review.UserID != userID {
		s.notify(ctx, review.UserID, users.NotifyReviewLike, "إعجاب جديد",
			fmt.Sprintf("أعجب %s بمراجعتك", username(db, userID)),
			map[string]interface{}{"reviewId": reviewID, "contentId": review.ContentID})
	}
	return s.review(db, reviewID)
}

func counter(isLike bool) string {
	if isLike {
		return "likes"
	}
	return "dislikes"
}
