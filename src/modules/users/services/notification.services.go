package users

import (
	"context"
	"errors"

	"yemenflix/src/database"
	lib "yemenflix/src/modules/users/lib"
	models "yemenflix/src/modules/users/models"
	"yemenflix/src/utils"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Pusher delivers a live message to a signed-in user.
type Pusher interface {
	SendToUser(userID uint, msgType string, data interface{})
}

type NotificationService struct {
	db   *database.Manager
	push Pusher
}

func NewNotificationService(db *database.Manager, push Pusher) *NotificationService {
	return &NotificationService{db: db, push: push}
}

type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
}

func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, limit int) (*NotificationList, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	db := s.db.DB().WithContext(ctx)

	q := db.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	out := &NotificationList{Notifications: make([]models.Notification, 0)}
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&out.Notifications).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&out.UnreadCount).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *NotificationService) owned(tx *gorm.DB, id, viewerID uint, isAdmin bool) (*models.Notification, error) {
	var n models.Notification
	if err := tx.First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Notification not found")
		}
		return nil, err
	}
	if n.UserID != viewerID && !isAdmin {
		return nil, utils.Forbidden("access denied")
	}
	return &n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, viewerID uint, isAdmin bool) error {
	db := s.db.DB().WithContext(ctx)
	n, err := s.owned(db, id, viewerID, isAdmin)
	if err != nil {
		return err
	}
	return db.Model(n).UpdateColumn("is_read", true).Error
}

// MarkAllRead returns how many notifications changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.DB().WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		UpdateColumn("is_read", true)
	return res.RowsAffected, res.Error
}

func (s *NotificationService) Delete(ctx context.Context, id, viewerID uint, isAdmin bool) error {
	db := s.db.DB().WithContext(ctx)
	n, err := s.owned(db, id, viewerID, isAdmin)
	if err != nil {
		return err
	}
	return db.Delete(n).Error
}

// Settings returns the stored settings or the defaults when none were saved.
func (s *NotificationService) Settings(ctx context.Context, userID uint) (*models.NotificationSettings, error) {
	var settings models.NotificationSettings
	err := s.db.DB().WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.DefaultNotificationSettings(userID)
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *NotificationService) UpdateSettings(ctx context.Context, userID uint, p lib.NotificationSettingsPatch) (*models.NotificationSettings, error) {
	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}
	apply := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&settings.NewContent, p.NewContent)
	apply(&settings.FavoriteUpdates, p.FavoriteUpdates)
	apply(&settings.CommentReplies, p.CommentReplies)
	apply(&settings.ReviewLikes, p.ReviewLikes)
	apply(&settings.SystemNotifications, p.SystemNotifications)
	apply(&settings.EmailNotifications, p.EmailNotifications)

	if err := s.db.DB().WithContext(ctx).Save(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func encodeData(data map[string]interface{}) string {
	if len(data) == 0 {
		return ""
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return string(raw)
}

// Notify stores a notification for one user if their settings allow kind,
// and pushes it to their open connections. It reports whether one was sent.
func (s *NotificationService) Notify(ctx context.Context, userID uint, kind, title, message string, data map[string]interface{}) (bool, error) {
	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return false, err
	}
	if !settings.Allows(kind) {
		return false, nil
	}
	n := models.Notification{UserID: userID, Type: kind, Title: title, Message: message, Data: encodeData(data)}
	if err := s.db.DB().WithContext(ctx).Create(&n).Error; err != nil {
		return false, err
	}
	if s.push != nil {
		s.push.SendToUser(userID, "notification", n)
	}
	return true, nil
}

// NotifyAll sends to every active user that allows kind. Users without a
// settings row get the defaults.
func (s *NotificationService) NotifyAll(ctx context.Context, kind, title, message string, data map[string]interface{}) (int, error) {
	db := s.db.DB().WithContext(ctx)

	var ids []uint
	if err := db.Model(&models.User{}).Where("is_active = ?", true).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	var stored []models.NotificationSettings
	if err := db.Where("user_id IN ?", ids).Find(&stored).Error; err != nil {
		return 0, err
	}
	byUser := make(map[uint]models.NotificationSettings, len(stored))
	for _, st := range stored {
		byUser[st.UserID] = st
	}

	payload := encodeData(data)
	batch := make([]models.Notification, 0, len(ids))
	for _, id := range ids {
		st, ok := byUser[id]
		if !ok {
			st = models.DefaultNotificationSettings(id)
		}
		if st.Allows(kind) {
			batch = append(batch, models.Notification{UserID: id, Type: kind, Title: title, Message: message, Data: payload})
		}
	}
	if len(batch) == 0 {
		return 0, nil
	}
	if err := db.CreateInBatches(&batch, 100).Error; err != nil {
		return 0, err
	}
	if s.push != nil {
		for _, n := range batch {
			s.push.SendToUser(n.UserID, "notification", n)
		}
	}
	log.Ctx(ctx).Debug().Str("kind", kind).Int("recipients", len(batch)).Msg("notification broadcast")
	return len(batch), nil
}
