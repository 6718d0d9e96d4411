package content

import (
	"time"

	"gorm.io/gorm"
)

type Episode struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	ContentID         uint      `json:"contentId" gorm:"not null;index"`
	Content           *Content  `json:"-" gorm:"foreignKey:ContentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	SeasonNumber      int       `json:"seasonNumber" gorm:"not null;default:1"`
	EpisodeNumber     int       `json:"episodeNumber" gorm:"not null"`
	Title             string    `json:"title" gorm:"not null"`
	TitleArabic       string    `json:"titleArabic"`
	Description       string    `json:"description" gorm:"type:text"`
	DescriptionArabic string    `json:"descriptionArabic" gorm:"type:text"`
	Duration          int       `json:"duration"`
	Quality           string    `json:"quality"`
	Resolution        string    `json:"resolution"`
	Language          string    `json:"language"`
	Subtitle          string    `json:"subtitle"`
	VideoURL          string    `json:"videoUrl"`
	DownloadURL       string    `json:"downloadUrl"`
	ThumbnailURL      string    `json:"thumbnailUrl"`
	IsActive          bool      `json:"isActive" gorm:"not null"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type DownloadLink struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ContentID  uint      `json:"contentId" gorm:"not null;index"`
	Content    *Content  `json:"-" gorm:"foreignKey:ContentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	EpisodeID  *uint     `json:"episodeId,omitempty"`
	ServerName string    `json:"serverName"`
	URL        string    `json:"url" gorm:"not null"`
	Quality    string    `json:"quality"`
	Size       string    `json:"size"`
	IsActive   bool      `json:"isActive" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

type StreamingLink struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ContentID  uint      `json:"contentId" gorm:"not null;index"`
	Content    *Content  `json:"-" gorm:"foreignKey:ContentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	EpisodeID  *uint     `json:"episodeId,omitempty"`
	ServerName string    `json:"serverName"`
	URL        string    `json:"url" gorm:"not null"`
	Quality    string    `json:"quality"`
	IsActive   bool      `json:"isActive" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ContentDetails is a content row composed with its playable children.
type ContentDetails struct {
	Content
	EpisodeList    []Episode       `json:"episodeList"`
	DownloadLinks  []DownloadLink  `json:"downloadLinks"`
	StreamingLinks []StreamingLink `json:"streamingLinks"`
}

func MigrateEpisodes(db *gorm.DB) error {
	return db.AutoMigrate(&Episode{}, &DownloadLink{}, &StreamingLink{})
}
