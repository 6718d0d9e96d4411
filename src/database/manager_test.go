package database

import (
	"bytes"
	"context"
	"strings"
	"testing"

	admin "yemenflix/src/modules/admin/models"
	content "yemenflix/src/modules/content/models"
	enhanced "yemenflix/src/modules/enhanced/models"
	users "yemenflix/src/modules/users/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeSeedsDefaults(t *testing.T) {
	m := NewTestManager(t)
	db := m.DB()

	var n int64
	require.NoError(t, db.Model(&admin.SiteSetting{}).Count(&n).Error)
	assert.Equal(t, int64(15), n)
	require.NoError(t, db.Model(&content.Category{}).Count(&n).Error)
	assert.Equal(t, int64(10), n)
	require.NoError(t, db.Model(&content.Genre{}).Count(&n).Error)
	assert.Equal(t, int64(15), n)
	require.NoError(t, db.Model(&enhanced.CastMember{}).Count(&n).Error)
	assert.Equal(t, int64(10), n)

	var adminUser users.User
	require.NoError(t, db.Where("username = ?", "admin").First(&adminUser).Error)
	assert.True(t, adminUser.IsAdmin)
	assert.Equal(t, "admin@ak.sv", adminUser.Email)
}

func TestInitializeIsIdempotent(t *testing.T) {
	m := NewTestManager(t)
	require.NoError(t, m.Initialize(context.Background()))

	var n int64
	require.NoError(t, m.DB().Model(&admin.SiteSetting{}).Count(&n).Error)
	assert.Equal(t, int64(15), n)
	require.NoError(t, m.DB().Model(&content.Content{}).Count(&n).Error)
	assert.Equal(t, int64(4), n)
	require.NoError(t, m.DB().Model(&users.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestGetContentFilters(t *testing.T) {
	m := NewTestManager(t)
	ctx := context.Background()

	all, err := m.GetContent(ctx, ContentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)
	require.Len(t, all.Content, 4)
	for i := 1; i < len(all.Content); i++ {
		assert.False(t, all.Content[i-1].CreatedAt.Before(all.Content[i].CreatedAt), "newest first")
	}

	movies, err := m.GetContent(ctx, ContentFilter{Type: content.TypeMovie})
	require.NoError(t, err)
	require.Len(t, movies.Content, 1)
	assert.Equal(t, "The Yemeni Wedding", movies.Content[0].Title)
	assert.Equal(t, "عربي", movies.Content[0].CategoryNames)
	assert.Equal(t, "أكشن,دراما", movies.Content[0].GenreNames)

	arabic, err := m.GetContent(ctx, ContentFilter{Query: "صنعاء"})
	require.NoError(t, err)
	require.Len(t, arabic.Content, 1)
	assert.Equal(t, content.TypeSeries, arabic.Content[0].Type)

	byGenre, err := m.GetContent(ctx, ContentFilter{Genre: "Sport"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), byGenre.Total)

	byCategory, err := m.GetContent(ctx, ContentFilter{Category: "أحدث", MinRating: 7.8})
	require.NoError(t, err)
	require.Len(t, byCategory.Content, 1)
	assert.Equal(t, "Yemen Gaming Championship", byCategory.Content[0].Title)
}

func TestGetContentPagination(t *testing.T) {
	m := NewTestManager(t)
	ctx := context.Background()

	page1, err := m.GetContent(ctx, ContentFilter{Limit: 3, Page: 1, SortBy: "rating", SortOrder: "desc"})
	require.NoError(t, err)
	page2, err := m.GetContent(ctx, ContentFilter{Limit: 3, Page: 2, SortBy: "rating", SortOrder: "desc"})
	require.NoError(t, err)

	assert.Equal(t, int64(4), page1.Total)
	assert.Len(t, page1.Content, 3)
	assert.Len(t, page2.Content, 1)
	assert.Equal(t, 9.0, page1.Content[0].Rating)
	assert.Equal(t, 7.6, page2.Content[0].Rating)
}

func TestGetContentHidesInactive(t *testing.T) {
	m := NewTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.DB().Model(&content.Content{}).
		Where("title = ?", "FIFA 2024 Yemen").Update("is_active", false).Error)

	active, err := m.GetContent(ctx, ContentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), active.Total)

	inactive, err := m.GetContent(ctx, ContentFilter{Status: "inactive"})
	require.NoError(t, err)
	require.Len(t, inactive.Content, 1)

	all, err := m.GetContent(ctx, ContentFilter{Status: "all"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)

	got, err := m.GetContentByID(ctx, inactive.Content[0].ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	anyState, err := m.GetContentByIDAny(ctx, inactive.Content[0].ID)
	require.NoError(t, err)
	require.NotNil(t, anyState)
}

func TestGetContentByIDComposesChildren(t *testing.T) {
	m := NewTestManager(t)
	ctx := context.Background()

	series, err := m.GetContent(ctx, ContentFilter{Type: content.TypeSeries})
	require.NoError(t, err)
	require.Len(t, series.Content, 1)

	details, err := m.GetContentByID(ctx, series.Content[0].ID)
	require.NoError(t, err)
	require.NotNil(t, details)
	require.Len(t, details.EpisodeList, 3)
	for i, ep := range details.EpisodeList {
		assert.Equal(t, i+1, ep.EpisodeNumber)
	}

	movies, err := m.GetContent(ctx, ContentFilter{Type: content.TypeMovie})
	require.NoError(t, err)
	movie, err := m.GetContentByID(ctx, movies.Content[0].ID)
	require.NoError(t, err)
	assert.Len(t, movie.DownloadLinks, 1)
	assert.Len(t, movie.StreamingLinks, 1)
	assert.Empty(t, movie.EpisodeList)

	missing, err := m.GetContentByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetDashboardStats(t *testing.T) {
	m := NewTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.DB().Model(&content.Content{}).Where("1 = 1").
		Updates(map[string]interface{}{"view_count": 10, "download_count": 2}).Error)

	stats, err := m.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalContent)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(40), stats.TotalViews)
	assert.Equal(t, int64(8), stats.TotalDownloads)
	assert.Len(t, stats.RecentContent, 4)
	assert.Equal(t, 9.0, stats.TopRated[0].Rating)
	assert.Equal(t, "healthy", stats.SystemHealth.Status)
	assert.Len(t, stats.RecentUsers, 1)
}

func TestUpdateSiteSettingsIsTransactional(t *testing.T) {
	m := NewTestManager(t)
	ctx := context.Background()

	err := m.UpdateSiteSettings(ctx, []SettingUpdate{
		{Key: "site_theme", Value: "light"},
		{Key: "does_not_exist", Value: "x"},
	})
	require.ErrorIs(t, err, ErrUnknownSetting)

	settings, err := m.GetSiteSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", settingValue(settings, "site_theme"), "first update must roll back")

	err = m.UpdateSiteSettings(ctx, []SettingUpdate{
		{Key: "site_theme", Value: "light"},
		{Key: "content_per_page", Value: "many"},
	})
	require.ErrorIs(t, err, ErrInvalidSettingValue)

	require.NoError(t, m.UpdateSiteSettings(ctx, []SettingUpdate{
		{Key: "site_theme", Value: "light"},
		{Key: "content_per_page", Value: "36"},
		{Key: "maintenance_mode", Value: "true"},
	}))
	settings, err = m.GetSiteSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "light", settingValue(settings, "site_theme"))
	assert.Equal(t, "36", settingValue(settings, "content_per_page"))
	assert.Equal(t, "true", settingValue(settings, "maintenance_mode"))
}

func TestSettingEnabled(t *testing.T) {
	m := NewTestManager(t)
	ctx := context.Background()

	on, err := m.SettingEnabled(ctx, "enable_comments", false)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = m.SettingEnabled(ctx, "no_such_flag", true)
	require.NoError(t, err)
	assert.True(t, on, "missing settings fall back to the default")

	require.NoError(t, m.UpdateSiteSettings(ctx, []SettingUpdate{{Key: "enable_comments", Value: "false"}}))
	on, err = m.SettingEnabled(ctx, "enable_comments", true)
	require.NoError(t, err)
	assert.False(t, on)
}

func settingValue(settings []admin.SiteSetting, key string) string {
	for _, s := range settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

func TestGetUsers(t *testing.T) {
	m := NewTestManager(t)
	ctx := context.Background()

	for _, name := range []string{"salem", "huda"} {
		require.NoError(t, m.DB().Create(&users.User{Username: name, Email: name + "@ak.sv", PasswordHash: "x", IsActive: true}).Error)
	}

	page, err := m.GetUsers(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Users, 2)

	page, err = m.GetUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Users, 1)
}

func TestBackupRoundTrip(t *testing.T) {
	m := NewTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.DB().Model(&content.Content{}).
		Where("type = ?", content.TypeMovie).
		Update("description", "It's a \"quoted\"; tricky\nvalue").Error)

	var buf bytes.Buffer
	require.NoError(t, m.CreateBackup(ctx, &buf))
	assert.Contains(t, buf.String(), `INSERT INTO "content"`)

	require.NoError(t, m.DB().Exec(`DELETE FROM "content" WHERE type = ?`, content.TypeTV).Error)

	require.NoError(t, m.RestoreBackup(ctx, bytes.NewReader(buf.Bytes())))

	page, err := m.GetContent(ctx, ContentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)

	movies, err := m.GetContent(ctx, ContentFilter{Type: content.TypeMovie})
	require.NoError(t, err)
	assert.Equal(t, "It's a \"quoted\"; tricky\nvalue", movies.Content[0].Description)
	assert.Equal(t, "عربي", movies.Content[0].CategoryNames)
}

func TestRestoreRejectsForeignStatements(t *testing.T) {
	m := NewTestManager(t)
	ctx := context.Background()

	cases := []string{
		"DROP TABLE users;",
		`INSERT INTO "users" ("id") VALUES (99); DELETE FROM "content";`,
		`INSERT INTO "sqlite_master" ("name") VALUES ('x');`,
		"PRAGMA foreign_keys = OFF;",
	}
	for _, script := range cases {
		err := m.RestoreBackup(ctx, strings.NewReader(script))
		assert.ErrorIs(t, err, ErrInvalidBackup, script)
	}

	page, err := m.GetContent(ctx, ContentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total, "rejected backups leave the data untouched")
	assert.True(t, m.DB().Migrator().HasTable("users"))
}

func TestResetDatabase(t *testing.T) {
	m := NewTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.DB().Create(&users.User{Username: "temp", Email: "t@ak.sv", PasswordHash: "x", IsActive: true}).Error)
	require.NoError(t, m.ResetDatabase(ctx))

	var n int64
	require.NoError(t, m.DB().Model(&users.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	require.NoError(t, m.DB().Model(&content.Content{}).Count(&n).Error)
	assert.Equal(t, int64(4), n)
}

func TestSplitStatements(t *testing.T) {
	stmts, err := splitStatements(bytes.NewBufferString("-- header\n\nINSERT INTO a VALUES ('x;y');\nINSERT INTO b VALUES ('it''s');\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"INSERT INTO a VALUES ('x;y')", "INSERT INTO b VALUES ('it''s')"}, stmts)

	_, err = splitStatements(bytes.NewBufferString("INSERT INTO a VALUES ('x);"))
	assert.Error(t, err)
}
