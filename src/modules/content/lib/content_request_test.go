package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestContentInputValidate(t *testing.T) {
	valid := ContentInput{Title: "Test Movie", TitleArabic: "فيلم تجريبي", Type: "movie", Rating: 8.5, Duration: intPtr(120)}
	require.NoError(t, valid.Validate())

	cases := map[string]ContentInput{
		"missing title":       {TitleArabic: "x", Type: "movie"},
		"unknown type":        {Title: "x", TitleArabic: "x", Type: "podcast"},
		"rating above ten":    {Title: "x", TitleArabic: "x", Type: "movie", Rating: 11},
		"duration on series":  {Title: "x", TitleArabic: "x", Type: "series", Duration: intPtr(40)},
		"episodes on a movie": {Title: "x", TitleArabic: "x", Type: "movie", Episodes: intPtr(3)},
		"bad quality":         {Title: "x", TitleArabic: "x", Type: "tv", Quality: "8K"},
		"bad release date":    {Title: "x", TitleArabic: "x", Type: "tv", ReleaseDate: "15/01/2024"},
		"blank title":         {Title: "   ", TitleArabic: "x", Type: "tv"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, in.Validate())
		})
	}
}

func TestContentInputToModelDefaultsActive(t *testing.T) {
	m := ContentInput{Title: " A ", TitleArabic: "ب", Type: "misc"}.ToModel()
	assert.True(t, m.IsActive)
	assert.Equal(t, "A", m.Title)

	off := false
	m = ContentInput{Title: "A", TitleArabic: "ب", Type: "misc", IsActive: &off}.ToModel()
	assert.False(t, m.IsActive)
}

func TestContentPatch(t *testing.T) {
	active := false
	p := ContentPatch{IsActive: &active}
	require.NoError(t, p.Validate("movie"))
	assert.False(t, p.Empty())
	assert.Equal(t, map[string]interface{}{"is_active": false}, p.Updates("movie"))

	assert.True(t, ContentPatch{}.Empty())

	series := "series"
	p = ContentPatch{Type: &series, Episodes: intPtr(10)}
	require.NoError(t, p.Validate("movie"))
	u := p.Updates("movie")
	assert.Equal(t, "series", u["type"])
	assert.Equal(t, 10, u["episodes"])
	assert.Contains(t, u, "duration")
	assert.Nil(t, u["duration"])

	p = ContentPatch{Duration: intPtr(90)}
	assert.Error(t, p.Validate("series"))
}

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Limit: 500, SortOrder: "sideways", Q: " yemen ", Section: "Arabic", Status: "all", Type: "all"}
	q.Normalize(false)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxLimit, q.Limit)
	assert.Equal(t, "desc", q.SortOrder)
	assert.Equal(t, "yemen", q.Query)
	assert.Equal(t, "Arabic", q.Category)
	assert.Equal(t, "active", q.Status)
	assert.Empty(t, q.Type)

	q = ListQuery{Status: "inactive"}
	q.Normalize(true)
	assert.Equal(t, "inactive", q.Status)
	assert.Equal(t, DefaultLimit, q.Limit)
}
