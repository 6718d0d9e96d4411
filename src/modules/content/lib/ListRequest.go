package content

import "strings"

// ListQuery binds the query string of GET /api/content.
type ListQuery struct {
	Type       string  `form:"type"`
	Page       int     `form:"page"`
	Limit      int     `form:"limit"`
	Status     string  `form:"status"`
	SortBy     string  `form:"sortBy"`
	SortOrder  string  `form:"sortOrder"`
	Category   string  `form:"category"`
	Section    string  `form:"section"`
	Genre      string  `form:"genre"`
	Rating     float64 `form:"rating"`
	Year       int     `form:"year"`
	Language   string  `form:"language"`
	Quality    string  `form:"quality"`
	Resolution string  `form:"resolution"`
	Query      string  `form:"query"`
	Q          string  `form:"q"`
}

const (
	DefaultLimit = 24
	MaxLimit     = 100
)

// Normalize applies defaults and drops values the listing does not accept.
// Only admins may look at inactive content.
func (q *ListQuery) Normalize(isAdmin bool) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
	if q.Query == "" {
		q.Query = q.Q
	}
	q.Query = strings.TrimSpace(q.Query)
	if q.Category == "" {
		q.Category = q.Section
	}
	if q.Type == "all" {
		q.Type = ""
	}
	if !isAdmin || (q.Status != "inactive" && q.Status != "all") {
		q.Status = "active"
	}
}

// EpisodeInput is the body of POST /api/episodes.
type EpisodeInput struct {
	ContentID         uint   `json:"contentId" validate:"required"`
	SeasonNumber      int    `json:"seasonNumber" validate:"omitempty,min=1"`
	EpisodeNumber     int    `json:"episodeNumber" validate:"required,min=1"`
	Title             string `json:"title" validate:"required,max=255"`
	TitleArabic       string `json:"titleArabic,omitempty"`
	Description       string `json:"description,omitempty"`
	DescriptionArabic string `json:"descriptionArabic,omitempty"`
	Duration          int    `json:"duration,omitempty" validate:"min=0"`
	Quality           string `json:"quality,omitempty" validate:"omitempty,oneof=4K FHD HD SD CAM"`
	Resolution        string `json:"resolution,omitempty"`
	Language          string `json:"language,omitempty"`
	Subtitle          string `json:"subtitle,omitempty"`
	VideoURL          string `json:"videoUrl,omitempty"`
	DownloadURL       string `json:"downloadUrl,omitempty"`
	ThumbnailURL      string `json:"thumbnailUrl,omitempty"`
	IsActive          *bool  `json:"isActive,omitempty"`
}

// EpisodePatch is the body of PUT /api/episodes/:id.
type EpisodePatch struct {
	SeasonNumber  *int    `json:"seasonNumber,omitempty" validate:"omitempty,min=1"`
	EpisodeNumber *int    `json:"episodeNumber,omitempty" validate:"omitempty,min=1"`
	Title         *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	TitleArabic   *string `json:"titleArabic,omitempty"`
	Description   *string `json:"description,omitempty"`
	Duration      *int    `json:"duration,omitempty" validate:"omitempty,min=0"`
	Quality       *string `json:"quality,omitempty" validate:"omitempty,oneof=4K FHD HD SD CAM"`
	VideoURL      *string `json:"videoUrl,omitempty"`
	DownloadURL   *string `json:"downloadUrl,omitempty"`
	ThumbnailURL  *string `json:"thumbnailUrl,omitempty"`
	IsActive      *bool   `json:"isActive,omitempty"`
}

func (p EpisodePatch) Updates() map[string]interface{} {
	u := map[string]interface{}{}
	if p.SeasonNumber != nil {
		u["season_number"] = *p.SeasonNumber
	}
	if p.EpisodeNumber != nil {
		u["episode_number"] = *p.EpisodeNumber
	}
	if p.Title != nil {
		u["title"] = strings.TrimSpace(*p.Title)
	}
	if p.TitleArabic != nil {
		u["title_arabic"] = *p.TitleArabic
	}
	if p.Description != nil {
		u["description"] = *p.Description
	}
	if p.Duration != nil {
		u["duration"] = *p.Duration
	}
	if p.Quality != nil {
		u["quality"] = *p.Quality
	}
	if p.VideoURL != nil {
		u["video_url"] = *p.VideoURL
	}
	if p.DownloadURL != nil {
		u["download_url"] = *p.DownloadURL
	}
	if p.ThumbnailURL != nil {
		u["thumbnail_url"] = *p.ThumbnailURL
	}
	if p.IsActive != nil {
		u["is_active"] = *p.IsActive
	}
	return u
}
