package enhanced

import (
	"time"

	content "yemenflix/src/modules/content/models"

	"gorm.io/gorm"
)

var (
	CastRoles    = []string{"actor", "director", "writer", "producer", "crew"}
	ImageTypes   = []string{"poster", "backdrop", "still", "behind_scenes"}
	RatingSource = []string{"imdb", "rotten_tomatoes", "metacritic", "letterboxd"}
)

type CastMember struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;index"`
	NameArabic  string    `json:"nameArabic"`
	Role        string    `json:"role" gorm:"type:varchar(16);not null"`
	Biography   string    `json:"biography" gorm:"type:text"`
	BirthDate   string    `json:"birthDate" gorm:"type:varchar(10)"`
	Nationality string    `json:"nationality"`
	ImageURL    string    `json:"imageUrl"`
	IMDBID      string    `json:"imdbId" gorm:"column:imdb_id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ContentCast links a person to a content item. Order drives display.
type ContentCast struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	ContentID    uint             `json:"contentId" gorm:"not null;uniqueIndex:idx_content_cast_member"`
	Content      *content.Content `json:"-" gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE"`
	CastMemberID uint             `json:"castMemberId" gorm:"not null;uniqueIndex:idx_content_cast_member"`
	CastMember   *CastMember      `json:"castMember,omitempty" gorm:"foreignKey:CastMemberID;constraint:OnDelete:CASCADE"`
	Character    string           `json:"character"`
	Order        int              `json:"order" gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time        `json:"createdAt"`
}

type ContentImage struct {
	ID                uint             `json:"id" gorm:"primaryKey"`
	ContentID         uint             `json:"contentId" gorm:"not null;index"`
	Content           *content.Content `json:"-" gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE"`
	ImageURL          string           `json:"imageUrl" gorm:"not null"`
	Type              string           `json:"type" gorm:"type:varchar(16);not null"`
	Description       string           `json:"description"`
	DescriptionArabic string           `json:"descriptionArabic"`
	Order             int              `json:"order" gorm:"column:display_order;not null;default:0"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// ExternalRating is unique per (content, source).
type ExternalRating struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	ContentID   uint             `json:"contentId" gorm:"not null;uniqueIndex:idx_rating_content_source"`
	Content     *content.Content `json:"-" gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE"`
	Source      string           `json:"source" gorm:"type:varchar(32);not null;uniqueIndex:idx_rating_content_source"`
	Rating      string           `json:"rating" gorm:"not null"`
	MaxRating   string           `json:"maxRating"`
	URL         string           `json:"url"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

func MigrateEnhanced(db *gorm.DB) error {
	return db.AutoMigrate(&CastMember{}, &ContentCast{}, &ContentImage{}, &ExternalRating{})
}
