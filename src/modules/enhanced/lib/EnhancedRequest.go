package enhanced

import "strings"

type CastMemberRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	NameArabic  string `json:"nameArabic" validate:"max=255"`
	Role        string `json:"role" validate:"required,oneof=actor director writer producer crew"`
	Biography   string `json:"biography"`
	BirthDate   string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Nationality string `json:"nationality" validate:"max=64"`
	ImageURL    string `json:"imageUrl" validate:"max=512"`
	IMDBID      string `json:"imdbId" validate:"max=32"`
}

func (r *CastMemberRequest) Trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.NameArabic = strings.TrimSpace(r.NameArabic)
}

type CastMemberPatch struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	NameArabic  *string `json:"nameArabic,omitempty" validate:"omitempty,max=255"`
	Role        *string `json:"role,omitempty" validate:"omitempty,oneof=actor director writer producer crew"`
	Biography   *string `json:"biography,omitempty"`
	BirthDate   *string `json:"birthDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Nationality *string `json:"nationality,omitempty" validate:"omitempty,max=64"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitempty,max=512"`
	IMDBID      *string `json:"imdbId,omitempty" validate:"omitempty,max=32"`
}

func (p CastMemberPatch) Updates() map[string]interface{} {
	out := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = strings.TrimSpace(*v)
		}
	}
	set("name", p.Name)
	set("name_arabic", p.NameArabic)
	set("role", p.Role)
	set("biography", p.Biography)
	set("birth_date", p.BirthDate)
	set("nationality", p.Nationality)
	set("image_url", p.ImageURL)
	set("imdb_id", p.IMDBID)
	return out
}

type ContentCastRequest struct {
	CastMemberID uint   `json:"castMemberId" validate:"required"`
	Character    string `json:"character" validate:"max=255"`
	Order        int    `json:"order" validate:"gte=0"`
}

type ImageRequest struct {
	ImageURL          string `json:"imageUrl" validate:"required,max=512"`
	Type              string `json:"type" validate:"required,oneof=poster backdrop still behind_scenes"`
	Description       string `json:"description"`
	DescriptionArabic string `json:"descriptionArabic"`
	Order             int    `json:"order" validate:"gte=0"`
}

type ExternalRatingRequest struct {
	Source    string `json:"source" validate:"required,oneof=imdb rotten_tomatoes metacritic letterboxd"`
	Rating    string `json:"rating" validate:"required,max=16"`
	MaxRating string `json:"maxRating" validate:"max=16"`
	URL       string `json:"url" validate:"omitempty,url,max=512"`
}
