package admin

import "yemenflix/src/database"

type SettingsRequest struct {
	Settings []database.SettingUpdate `json:"settings" binding:"required,min=1,dive"`
}

// ClearCacheRequest drops every cached response under Prefix, "/api" when empty.
type ClearCacheRequest struct {
	Prefix string `json:"prefix"`
}

type ReportRequest struct {
	ContentID     *uint  `json:"contentId,omitempty"`
	EpisodeID     *uint  `json:"episodeId,omitempty"`
	ReporterEmail string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	ErrorType     string `json:"errorType" validate:"required,oneof=download_link streaming_link subtitle_issue audio_video_issue content_issue quality_request other"`
	Description   string `json:"description" validate:"required,min=10,max=5000"`
	PageURL       string `json:"pageUrl" validate:"required,max=1024"`
}

type ReportPatch struct {
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress resolved rejected"`
	AdminNotes *string `json:"adminNotes,omitempty" validate:"omitempty,max=5000"`
}

type ReportQuery struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}
