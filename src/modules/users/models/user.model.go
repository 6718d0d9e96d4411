package users

import (
	"time"

	content "yemenflix/src/modules/content/models"

	"gorm.io/gorm"
)

type User struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Username        string     `json:"username" gorm:"not null;uniqueIndex"`
	Email           string     `json:"email" gorm:"not null;uniqueIndex"`
	PasswordHash    string     `json:"-" gorm:"not null"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	ProfileImageURL string     `json:"profileImageUrl"`
	IsAdmin         bool       `json:"isAdmin" gorm:"not null"`
	IsActive        bool       `json:"isActive" gorm:"not null;index"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`
	CreatedAt       time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type Favorite struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"userId" gorm:"not null;uniqueIndex:idx_favorite_user_content"`
	User      *User            `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ContentID uint             `json:"contentId" gorm:"not null;uniqueIndex:idx_favorite_user_content"`
	Content   *content.Content `json:"content,omitempty" gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (Favorite) TableName() string {
	return "user_favorites"
}

// WatchHistory keeps the last known position per (user, content).
type WatchHistory struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	UserID          uint             `json:"userId" gorm:"not null;uniqueIndex:idx_history_user_content"`
	User            *User            `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ContentID       uint             `json:"contentId" gorm:"not null;uniqueIndex:idx_history_user_content"`
	Content         *content.Content `json:"content,omitempty" gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE"`
	ProgressMinutes int              `json:"progressMinutes" gorm:"not null;default:0"`
	ProgressSeconds float64          `json:"progressSeconds" gorm:"not null;default:0"`
	Duration        float64          `json:"duration" gorm:"not null;default:0"`
	WatchedAt       time.Time        `json:"watchedAt" gorm:"index"`
}

func (WatchHistory) TableName() string {
	return "user_watch_history"
}

type Watchlist struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"userId" gorm:"not null;index"`
	User        *User           `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Name        string          `json:"name" gorm:"not null"`
	Description string          `json:"description"`
	IsPublic    bool            `json:"isPublic" gorm:"not null"`
	ItemCount   int64           `json:"itemCount" gorm:"-"`
	Items       []WatchlistItem `json:"-" gorm:"foreignKey:WatchlistID"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type WatchlistItem struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	WatchlistID uint             `json:"watchlistId" gorm:"not null;uniqueIndex:idx_watchlist_content"`
	Watchlist   *Watchlist       `json:"-" gorm:"foreignKey:WatchlistID;constraint:OnDelete:CASCADE"`
	ContentID   uint             `json:"contentId" gorm:"not null;uniqueIndex:idx_watchlist_content"`
	Content     *content.Content `json:"content,omitempty" gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE"`
	AddedAt     time.Time        `json:"addedAt"`
}

func MigrateUsers(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Favorite{}, &WatchHistory{}, &Watchlist{}, &WatchlistItem{})
}
