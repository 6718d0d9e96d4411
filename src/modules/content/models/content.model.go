package content

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	TypeMovie  = "movie"
	TypeSeries = "series"
	TypeTV     = "tv"
	TypeMisc   = "misc"
)

// Content is one catalog entry. Duration is only meaningful for movies and
// Episodes (a count) only for series.
type Content struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Title             string    `json:"title" gorm:"not null;index"`
	TitleArabic       string    `json:"titleArabic" gorm:"not null;index"`
	Description       string    `json:"description" gorm:"type:text"`
	DescriptionArabic string    `json:"descriptionArabic" gorm:"type:text"`
	Type              string    `json:"type" gorm:"type:varchar(16);not null;index"`
	Year              int       `json:"year" gorm:"index"`
	ReleaseDate       string    `json:"releaseDate" gorm:"type:varchar(10)"`
	Language          string    `json:"language" gorm:"type:varchar(32);index"`
	Quality           string    `json:"quality" gorm:"type:varchar(8)"`
	Resolution        string    `json:"resolution" gorm:"type:varchar(8)"`
	Rating            float64   `json:"rating" gorm:"not null;default:0"`
	Duration          *int      `json:"duration,omitempty"`
	Episodes          *int      `json:"episodes,omitempty"`
	PosterURL         string    `json:"posterUrl"`
	TrailerURL        string    `json:"trailerUrl"`
	VideoURL          string    `json:"videoUrl"`
	DownloadURL       string    `json:"downloadUrl"`
	IMDBID            string    `json:"imdbId" gorm:"column:imdb_id"`
	TMDBID            string    `json:"tmdbId" gorm:"column:tmdb_id"`
	Country           string    `json:"country"`
	IsActive          bool      `json:"isActive" gorm:"not null;index"`
	ViewCount         int64     `json:"viewCount" gorm:"not null;default:0"`
	LikeCount         int64     `json:"likeCount" gorm:"not null;default:0"`
	DownloadCount     int64     `json:"downloadCount" gorm:"not null;default:0"`
	CreatedAt         time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt         time.Time `json:"updatedAt"`

	Categories []Category `json:"-" gorm:"many2many:content_categories;constraint:OnDelete:CASCADE"`
	Genres     []Genre    `json:"-" gorm:"many2many:content_genres;constraint:OnDelete:CASCADE"`

	CategoryNames string `json:"categories" gorm:"-"`
	GenreNames    string `json:"genres" gorm:"-"`
}

func (Content) TableName() string {
	return "content"
}

// FillNames joins preloaded category and genre names (Arabic first, as
// the catalog is rendered in Arabic) into comma separated strings.
func (c *Content) FillNames() {
	cats := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		cats = append(cats, cat.DisplayName())
	}
	genres := make([]string, 0, len(c.Genres))
	for _, g := range c.Genres {
		genres = append(genres, g.DisplayName())
	}
	c.CategoryNames = strings.Join(cats, ",")
	c.GenreNames = strings.Join(genres, ",")
}

type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;uniqueIndex"`
	NameArabic  string    `json:"nameArabic" gorm:"not null"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	OrderIndex  int       `json:"orderIndex" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c Category) DisplayName() string {
	if c.NameArabic != "" {
		return c.NameArabic
	}
	return c.Name
}

type Genre struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;uniqueIndex"`
	NameArabic  string    `json:"nameArabic" gorm:"not null"`
	Description string    `json:"description"`
	Color       string    `json:"color" gorm:"type:varchar(16)"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (g Genre) DisplayName() string {
	if g.NameArabic != "" {
		return g.NameArabic
	}
	return g.Name
}

func MigrateContent(db *gorm.DB) error {
	return db.AutoMigrate(&Category{}, &Genre{}, &Content{})
}
