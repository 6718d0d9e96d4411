package reviews

import (
	"time"

	content "yemenflix/src/modules/content/models"
	users "yemenflix/src/modules/users/models"

	"gorm.io/gorm"
)

type Review struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"userId" gorm:"not null;index"`
	User      *users.User      `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ContentID uint             `json:"contentId" gorm:"not null;index"`
	Content   *content.Content `json:"-" gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE"`
	Rating    int              `json:"rating" gorm:"not null"`
	Title     string           `json:"title" gorm:"not null"`
	Body      string           `json:"review" gorm:"column:review;type:text;not null"`
	Likes     int              `json:"likes" gorm:"not null;default:0"`
	Dislikes  int              `json:"dislikes" gorm:"not null;default:0"`
	IsActive  bool             `json:"isActive" gorm:"not null"`
	CreatedAt time.Time        `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ReviewLike is one vote per (user, review); a new vote replaces the old.
type ReviewLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"not null;uniqueIndex:idx_review_like_user"`
	ReviewID  uint      `json:"reviewId" gorm:"not null;uniqueIndex:idx_review_like_user"`
	Review    *Review   `json:"-" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
	IsLike    bool      `json:"isLike" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"userId" gorm:"not null;index"`
	User      *users.User      `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ContentID uint             `json:"contentId" gorm:"not null;index"`
	Content   *content.Content `json:"-" gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE"`
	ParentID  *uint            `json:"parentId,omitempty" gorm:"index"`
	Body      string           `json:"comment" gorm:"column:comment;type:text;not null"`
	IsActive  bool             `json:"isActive" gorm:"not null"`
	CreatedAt time.Time        `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func MigrateReviews(db *gorm.DB) error {
	return db.AutoMigrate(&Review{}, &ReviewLike{}, &Comment{})
}
