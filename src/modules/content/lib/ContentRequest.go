package content

import (
	"fmt"
	"strings"

	models "yemenflix/src/modules/content/models"
	"yemenflix/src/utils"
)

var (
	Qualities   = []string{"4K", "FHD", "HD", "SD", "CAM"}
	Resolutions = []string{"240p", "360p", "480p", "720p", "1080p", "1440p", "2160p", "4K"}
)

// ContentInput is the full body of POST /api/content. Which of Duration and
// Episodes may be set depends on Type.
type ContentInput struct {
	Title             string  `json:"title" validate:"required,max=255"`
	TitleArabic       string  `json:"titleArabic" validate:"required,max=255"`
	Description       string  `json:"description,omitempty"`
	DescriptionArabic string  `json:"descriptionArabic,omitempty"`
	Type              string  `json:"type" validate:"required,oneof=movie series tv misc"`
	Year              int     `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
	ReleaseDate       string  `json:"releaseDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Language          string  `json:"language,omitempty" validate:"max=32"`
	Quality           string  `json:"quality,omitempty" validate:"omitempty,oneof=4K FHD HD SD CAM"`
	Resolution        string  `json:"resolution,omitempty" validate:"omitempty,oneof=240p 360p 480p 720p 1080p 1440p 2160p 4K"`
	Rating            float64 `json:"rating" validate:"gte=0,lte=10"`
	Duration          *int    `json:"duration,omitempty" validate:"omitempty,min=1"`
	Episodes          *int    `json:"episodes,omitempty" validate:"omitempty,min=0"`
	PosterURL         string  `json:"posterUrl,omitempty"`
	TrailerURL        string  `json:"trailerUrl,omitempty"`
	VideoURL          string  `json:"videoUrl,omitempty"`
	DownloadURL       string  `json:"downloadUrl,omitempty"`
	IMDBID            string  `json:"imdbId,omitempty"`
	TMDBID            string  `json:"tmdbId,omitempty"`
	Country           string  `json:"country,omitempty"`
	IsActive          *bool   `json:"isActive,omitempty"`
	CategoryIDs       []uint  `json:"categoryIds,omitempty"`
	GenreIDs          []uint  `json:"genreIds,omitempty"`
}

// Validate checks field rules and the per-type rules.
func (in ContentInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.TitleArabic = strings.TrimSpace(in.TitleArabic)
	if err := utils.ValidateStruct(in); err != nil {
		return err
	}
	return checkTypeFields(in.Type, in.Duration, in.Episodes)
}

func checkTypeFields(kind string, duration, episodes *int) error {
	if duration != nil && kind != models.TypeMovie {
		return utils.BadRequest(fmt.Sprintf("duration is only allowed for %s content", models.TypeMovie))
	}
	if episodes != nil && kind != models.TypeSeries {
		return utils.BadRequest(fmt.Sprintf("episodes is only allowed for %s content", models.TypeSeries))
	}
	return nil
}

// ToModel builds a new row. Content is active unless IsActive is false.
func (in ContentInput) ToModel() models.Content {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return models.Content{
		Title:             strings.TrimSpace(in.Title),
		TitleArabic:       strings.TrimSpace(in.TitleArabic),
		Description:       in.Description,
		DescriptionArabic: in.DescriptionArabic,
		Type:              in.Type,
		Year:              in.Year,
		ReleaseDate:       in.ReleaseDate,
		Language:          in.Language,
		Quality:           in.Quality,
		Resolution:        in.Resolution,
		Rating:            in.Rating,
		Duration:          in.Duration,
		Episodes:          in.Episodes,
		PosterURL:         in.PosterURL,
		TrailerURL:        in.TrailerURL,
		VideoURL:          in.VideoURL,
		DownloadURL:       in.DownloadURL,
		IMDBID:            in.IMDBID,
		TMDBID:            in.TMDBID,
		Country:           in.Country,
		IsActive:          active,
	}
}

// ContentPatch is the body of PUT /api/content/:id. Nil fields are left as is.
type ContentPatch struct {
	Title             *string  `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	TitleArabic       *string  `json:"titleArabic,omitempty" validate:"omitempty,min=1,max=255"`
	Description       *string  `json:"description,omitempty"`
	DescriptionArabic *string  `json:"descriptionArabic,omitempty"`
	Type              *string  `json:"type,omitempty" validate:"omitempty,oneof=movie series tv misc"`
	Year              *int     `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
	ReleaseDate       *string  `json:"releaseDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Language          *string  `json:"language,omitempty" validate:"omitempty,max=32"`
	Quality           *string  `json:"quality,omitempty" validate:"omitempty,oneof=4K FHD HD SD CAM"`
	Resolution        *string  `json:"resolution,omitempty" validate:"omitempty,oneof=240p 360p 480p 720p 1080p 1440p 2160p 4K"`
	Rating            *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=10"`
	Duration          *int     `json:"duration,omitempty" validate:"omitempty,min=1"`
	Episodes          *int     `json:"episodes,omitempty" validate:"omitempty,min=0"`
	PosterURL         *string  `json:"posterUrl,omitempty"`
	TrailerURL        *string  `json:"trailerUrl,omitempty"`
	VideoURL          *string  `json:"videoUrl,omitempty"`
	DownloadURL       *string  `json:"downloadUrl,omitempty"`
	IMDBID            *string  `json:"imdbId,omitempty"`
	TMDBID            *string  `json:"tmdbId,omitempty"`
	Country           *string  `json:"country,omitempty"`
	IsActive          *bool    `json:"isActive,omitempty"`
	CategoryIDs       []uint   `json:"categoryIds,omitempty"`
	GenreIDs          []uint   `json:"genreIds,omitempty"`
}

// Validate checks field rules and, against the resulting type, the per-type
// rules for the fields the patch sets.
func (p ContentPatch) Validate(current string) error {
	if err := utils.ValidateStruct(p); err != nil {
		return err
	}
	kind := current
	if p.Type != nil {
		kind = *p.Type
	}
	return checkTypeFields(kind, p.Duration, p.Episodes)
}

// Empty reports whether the patch changes nothing.
func (p ContentPatch) Empty() bool {
	return p.updates() == nil && p.CategoryIDs == nil && p.GenreIDs == nil
}

// Updates returns the column map for gorm. When the type changes, the
// field that no longer applies is cleared.
func (p ContentPatch) Updates(current string) map[string]interface{} {
	u := p.updates()
	if p.Type != nil && *p.Type != current {
		if u == nil {
			u = map[string]interface{}{}
		}
		if *p.Type != models.TypeMovie {
			u["duration"] = nil
		}
		if *p.Type != models.TypeSeries {
			u["episodes"] = nil
		}
	}
	return u
}

func (p ContentPatch) updates() map[string]interface{} {
	u := map[string]interface{}{}
	set := func(col string, ok bool, v interface{}) {
		if ok {
			u[col] = v
		}
	}
	set("title", p.Title != nil, deref(p.Title))
	set("title_arabic", p.TitleArabic != nil, deref(p.TitleArabic))
	set("description", p.Description != nil, deref(p.Description))
	set("description_arabic", p.DescriptionArabic != nil, deref(p.DescriptionArabic))
	set("type", p.Type != nil, deref(p.Type))
	set("release_date", p.ReleaseDate != nil, deref(p.ReleaseDate))
	set("language", p.Language != nil, deref(p.Language))
	set("quality", p.Quality != nil, deref(p.Quality))
	set("resolution", p.Resolution != nil, deref(p.Resolution))
	set("poster_url", p.PosterURL != nil, deref(p.PosterURL))
	set("trailer_url", p.TrailerURL != nil, deref(p.TrailerURL))
	set("video_url", p.VideoURL != nil, deref(p.VideoURL))
	set("download_url", p.DownloadURL != nil, deref(p.DownloadURL))
	set("imdb_id", p.IMDBID != nil, deref(p.IMDBID))
	set("tmdb_id", p.TMDBID != nil, deref(p.TMDBID))
	set("country", p.Country != nil, deref(p.Country))
	if p.Year != nil {
		u["year"] = *p.Year
	}
	if p.Rating != nil {
		u["rating"] = *p.Rating
	}
	if p.Duration != nil {
		u["duration"] = *p.Duration
	}
	if p.Episodes != nil {
		u["episodes"] = *p.Episodes
	}
	if p.IsActive != nil {
		u["is_active"] = *p.IsActive
	}
	if len(u) == 0 {
		return nil
	}
	return u
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
