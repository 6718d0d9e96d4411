package admin

import (
	"bytes"
	"context"
	"testing"
	"time"

	"yemenflix/src/cache"
	"yemenflix/src/database"
	lib "yemenflix/src/modules/admin/lib"
	models "yemenflix/src/modules/admin/models"
	content "yemenflix/src/modules/content/models"
	"yemenflix/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*AdminService, *ReportService, *database.Manager, *cache.Cache) {
	t.Helper()
	m := database.NewTestManager(t)
	c := cache.New(cache.NewMemoryStore(), time.Minute)
	return NewAdminService(m, c), NewReportService(m), m, c
}

func statusCode(t *testing.T, err error) int {
	t.Helper()
	se, ok := err.(*utils.ServiceError)
	require.True(t, ok, "expected a ServiceError, got %v", err)
	return se.StatusCode
}

func strPtr(s string) *string { return &s }

func uintPtr(v uint) *uint { return &v }

func TestUpdateSettings(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	settings, err := svc.UpdateSettings(ctx, []database.SettingUpdate{{Key: "site_theme", Value: "light"}})
	require.NoError(t, err)
	assert.Len(t, settings, 15)

	_, err = svc.UpdateSettings(ctx, []database.SettingUpdate{{Key: "nope", Value: "1"}})
	assert.Equal(t, 400, statusCode(t, err))
	_, err = svc.UpdateSettings(ctx, []database.SettingUpdate{{Key: "enable_comments", Value: "yes"}})
	assert.Equal(t, 400, statusCode(t, err))
	_, err = svc.UpdateSettings(ctx, nil)
	assert.Equal(t, 400, statusCode(t, err))
}

func TestClearCacheKeepsRevokedTokens(t *testing.T) {
	svc, _, _, c := setup(t)
	ctx := context.Background()
	store := c.Store()

	require.NoError(t, store.Set(ctx, "/api/content?page=1", []byte("a"), time.Minute))
	require.NoError(t, store.Set(ctx, "/api/genres", []byte("b"), time.Minute))
	require.NoError(t, store.Set(ctx, "auth:revoked:abc", []byte("1"), time.Minute))

	n, err := svc.ClearCache(ctx, "/api/content")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.ClearCache(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, hit, err := store.Get(ctx, "auth:revoked:abc")
	require.NoError(t, err)
	assert.True(t, hit)

	_, err = svc.ClearCache(ctx, "auth:")
	assert.Equal(t, 400, statusCode(t, err))
}

func TestBackupAndRestore(t *testing.T) {
	svc, _, m, c := setup(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, svc.Backup(ctx, &buf))
	assert.Contains(t, buf.String(), `INSERT INTO "content"`)

	require.NoError(t, m.DB().Where("1 = 1").Delete(&content.Episode{}).Error)
	require.NoError(t, c.Store().Set(ctx, "/api/episodes/2", []byte("[]"), time.Minute))

	require.NoError(t, svc.Restore(ctx, bytes.NewReader(buf.Bytes())))

	var episodes int64
	require.NoError(t, m.DB().Model(&content.Episode{}).Count(&episodes).Error)
	assert.Equal(t, int64(3), episodes)
	_, hit, err := c.Store().Get(ctx, "/api/episodes/2")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestReports(t *testing.T) {
	_, reports, _, _ := setup(t)
	ctx := context.Background()

	r, err := reports.Create(ctx, lib.ReportRequest{
		ContentID: uintPtr(1), ErrorType: "streaming_link",
		Description: "رابط المشاهدة لا يعمل", PageURL: "/content/1", ReporterEmail: "User@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, r.Status)
	assert.Equal(t, "user@example.com", r.ReporterEmail)

	_, err = reports.Create(ctx, lib.ReportRequest{ErrorType: "other", Description: "short", PageURL: "/"})
	assert.Equal(t, 400, statusCode(t, err))
	_, err = reports.Create(ctx, lib.ReportRequest{ContentID: uintPtr(999), ErrorType: "other", Description: "long enough text", PageURL: "/"})
	assert.Equal(t, 404, statusCode(t, err))

	_, err = reports.Create(ctx, lib.ReportRequest{ErrorType: "quality_request", Description: "please add 4K version", PageURL: "/"})
	require.NoError(t, err)

	updated, err := reports.Update(ctx, r.ID, lib.ReportPatch{Status: strPtr(models.ReportResolved), AdminNotes: strPtr("fixed")})
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, updated.Status)
	_, err = reports.Update(ctx, r.ID, lib.ReportPatch{Status: strPtr("done")})
	assert.Equal(t, 400, statusCode(t, err))
	_, err = reports.Update(ctx, 999, lib.ReportPatch{Status: strPtr(models.ReportRejected)})
	assert.Equal(t, 404, statusCode(t, err))

	page, err := reports.List(ctx, lib.ReportQuery{Status: models.ReportPending})
	require.NoError(t, err)
	require.Len(t, page.Reports, 1)
	assert.Equal(t, "quality_request", page.Reports[0].ErrorType)

	page, err = reports.List(ctx, lib.ReportQuery{Limit: 1, Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Reports, 1)
	assert.Equal(t, int64(2), page.Pagination.TotalCount)
}
