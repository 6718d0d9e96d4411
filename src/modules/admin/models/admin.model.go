package admin

import (
	"time"

	"gorm.io/gorm"
)

type SiteSetting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"column:setting_key;type:varchar(64);not null;uniqueIndex"`
	Value     string    `json:"value" gorm:"type:text"`
	Type      string    `json:"type" gorm:"type:varchar(16);not null"`
	Category  string    `json:"category" gorm:"type:varchar(16);not null"`
	IsActive  bool      `json:"isActive" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	ReportPending    = "pending"
	ReportInProgress = "in_progress"
	ReportResolved   = "resolved"
	ReportRejected   = "rejected"
)

var ReportErrorTypes = []string{
	"download_link", "streaming_link", "subtitle_issue",
	"audio_video_issue", "content_issue", "quality_request", "other",
}

type Report struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ContentID     *uint     `json:"contentId,omitempty" gorm:"index"`
	EpisodeID     *uint     `json:"episodeId,omitempty"`
	ReporterEmail string    `json:"reporterEmail"`
	ErrorType     string    `json:"errorType" gorm:"type:varchar(32);not null"`
	Description   string    `json:"description" gorm:"type:text;not null"`
	PageURL       string    `json:"pageUrl" gorm:"not null"`
	Status        string    `json:"status" gorm:"type:varchar(16);not null;index"`
	AdminNotes    string    `json:"adminNotes" gorm:"type:text"`
	CreatedAt     time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func MigrateAdmin(db *gorm.DB) error {
	return db.AutoMigrate(&SiteSetting{}, &Report{})
}
