package users

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotifyNewContent     = "new_content"
	NotifyFavoriteUpdate = "favorite_update"
	NotifyCommentReply   = "comment_reply"
	NotifyReviewLike     = "review_like"
	NotifySystem         = "system"
)

type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"not null;index"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Type      string    `json:"type" gorm:"type:varchar(32);not null"`
	Title     string    `json:"title" gorm:"not null"`
	Message   string    `json:"message" gorm:"type:text"`
	IsRead    bool      `json:"isRead" gorm:"not null;index"`
	Data      string    `json:"data,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// NotificationSettings holds per-user opt-ins, one row per user.
type NotificationSettings struct {
	UserID              uint      `json:"userId" gorm:"primaryKey;autoIncrement:false"`
	User                *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	NewContent          bool      `json:"newContent" gorm:"not null"`
	FavoriteUpdates     bool      `json:"favoriteUpdates" gorm:"not null"`
	CommentReplies      bool      `json:"commentReplies" gorm:"not null"`
	ReviewLikes         bool      `json:"reviewLikes" gorm:"not null"`
	SystemNotifications bool      `json:"systemNotifications" gorm:"not null"`
	EmailNotifications  bool      `json:"emailNotifications" gorm:"not null"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// DefaultNotificationSettings has every in-app channel on and email off.
func DefaultNotificationSettings(userID uint) NotificationSettings {
	return NotificationSettings{
		UserID:              userID,
		NewContent:          true,
		FavoriteUpdates:     true,
		CommentReplies:      true,
		ReviewLikes:         true,
		SystemNotifications: true,
	}
}

// Allows reports whether the settings accept a notification of kind.
func (s NotificationSettings) Allows(kind string) bool {
	switch kind {
	case NotifyNewContent:
		return s.NewContent
	case NotifyFavoriteUpdate:
		return s.FavoriteUpdates
	case NotifyCommentReply:
		return s.CommentReplies
	case NotifyReviewLike:
		return s.ReviewLikes
	case NotifySystem:
		return s.SystemNotifications
	}
	return false
}

func MigrateNotifications(db *gorm.DB) error {
	return db.AutoMigrate(&Notification{}, &NotificationSettings{})
}
