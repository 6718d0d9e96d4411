package content

import (
	"context"
	"sync"
	"testing"
	"time"

	"yemenflix/src/cache"
	"yemenflix/src/database"
	lib "yemenflix/src/modules/content/lib"
	models "yemenflix/src/modules/content/models"
	"yemenflix/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []string
}

func (n *recordingNotifier) NotifyAll(_ context.Context, kind, _, _ string, _ map[string]interface{}) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	return 1, nil
}

func setup(t *testing.T) (*ContentService, *EpisodeService, *cache.Cache, *recordingNotifier) {
	t.Helper()
	m := database.NewTestManager(t)
	c := cache.New(cache.NewMemoryStore(), time.Minute)
	n := &recordingNotifier{}
	return NewContentService(m, c, n), NewEpisodeService(m, c), c, n
}

func listQuery(mutate func(*lib.ListQuery)) lib.ListQuery {
	q := lib.ListQuery{}
	if mutate != nil {
		mutate(&q)
	}
	q.Normalize(false)
	return q
}

func statusCode(t *testing.T, err error) int {
	t.Helper()
	se, ok := err.(*utils.ServiceError)
	require.True(t, ok, "expected a ServiceError, got %v", err)
	return se.StatusCode
}

func intPtr(v int) *int { return &v }

func TestCreateUpdateDeleteLifecycle(t *testing.T) {
	svc, _, c, n := setup(t)
	ctx := context.Background()

	require.NoError(t, c.Store().Set(ctx, "/api/content?page=1", []byte("{}"), time.Minute))

	created, err := svc.Create(ctx, lib.ContentInput{
		Title: "Test Movie", TitleArabic: "فيلم تجريبي", Type: models.TypeMovie,
		Duration: intPtr(95), CategoryIDs: []uint{1}, GenreIDs: []uint{1, 3},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.IsActive)
	assert.Equal(t, "عربي", created.CategoryNames)
	assert.Equal(t, []string{"new_content"}, n.kinds)

	_, hit, err := c.Store().Get(ctx, "/api/content?page=1")
	require.NoError(t, err)
	assert.False(t, hit, "create must invalidate the listing cache")

	rating := 8.5
	updated, err := svc.Update(ctx, created.ID, lib.ContentPatch{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 8.5, updated.Rating)
	assert.Equal(t, "Test Movie", updated.Title)
	assert.Equal(t, "أكشن,دراما", updated.GenreNames)

	details, err := svc.Get(ctx, created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 8.5, details.Rating)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID, true)
	require.Error(t, err)
	assert.Equal(t, 404, statusCode(t, err))

	err = svc.Delete(ctx, created.ID)
	assert.Equal(t, 404, statusCode(t, err))
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _, _, n := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, lib.ContentInput{Title: "S", TitleArabic: "س", Type: models.TypeSeries, Duration: intPtr(30)})
	assert.Equal(t, 400, statusCode(t, err))

	_, err = svc.Create(ctx, lib.ContentInput{Title: "S", TitleArabic: "س", Type: models.TypeSeries, CategoryIDs: []uint{999}})
	assert.Equal(t, 400, statusCode(t, err))

	assert.Empty(t, n.kinds)
}

func TestInactiveContentIsHiddenFromPublic(t *testing.T) {
	svc, _, _, n := setup(t)
	ctx := context.Background()

	off := false
	item, err := svc.Create(ctx, lib.ContentInput{Title: "Hidden", TitleArabic: "مخفي", Type: models.TypeTV, IsActive: &off})
	require.NoError(t, err)
	assert.Empty(t, n.kinds, "inactive content does not notify")

	_, err = svc.Get(ctx, item.ID, false)
	assert.Equal(t, 404, statusCode(t, err))
	_, err = svc.Get(ctx, item.ID, true)
	assert.NoError(t, err)

	on := true
	_, err = svc.Update(ctx, item.ID, lib.ContentPatch{IsActive: &on})
	require.NoError(t, err)
	_, err = svc.Get(ctx, item.ID, false)
	assert.NoError(t, err)
}

func TestUpdateChangesTypeAndClearsStaleFields(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, lib.ContentInput{Title: "M", TitleArabic: "م", Type: models.TypeMovie, Duration: intPtr(100)})
	require.NoError(t, err)

	series := models.TypeSeries
	updated, err := svc.Update(ctx, item.ID, lib.ContentPatch{Type: &series})
	require.NoError(t, err)
	assert.Equal(t, models.TypeSeries, updated.Type)
	assert.Nil(t, updated.Duration)

	_, err = svc.Update(ctx, item.ID, lib.ContentPatch{})
	assert.Equal(t, 400, statusCode(t, err))

	_, err = svc.Update(ctx, 9999, lib.ContentPatch{Type: &series})
	assert.Equal(t, 404, statusCode(t, err))
}

func TestListAndSearch(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	res, err := svc.List(ctx, listQuery(func(q *lib.ListQuery) { q.Limit = 2 }))
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Total)
	assert.Len(t, res.Content, 2)
	assert.Equal(t, 2, res.TotalPages)
	require.NotNil(t, res.Pagination.NextPage)
	assert.Equal(t, 2, *res.Pagination.NextPage)

	found, err := svc.Search(ctx, listQuery(func(q *lib.ListQuery) { q.Q = "Wedding" }))
	require.NoError(t, err)
	require.Len(t, found.Content, 1)
	assert.Equal(t, "العرس اليمني", found.Content[0].TitleArabic)

	_, err = svc.Search(ctx, listQuery(nil))
	assert.Equal(t, 400, statusCode(t, err))
}

func TestCuratedViewsAndStats(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	featured, err := svc.Featured(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, featured)
	assert.Equal(t, 9.0, featured[0].Rating)

	series, err := svc.List(ctx, listQuery(func(q *lib.ListQuery) { q.Type = models.TypeSeries }))
	require.NoError(t, err)
	id := series.Content[0].ID
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordView(ctx, id))
	}
	trending, err := svc.Trending(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, trending[0].ID)
	assert.Equal(t, int64(3), trending[0].ViewCount)

	assert.Equal(t, 404, statusCode(t, svc.RecordView(ctx, 9999)))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalContent)
	assert.Equal(t, int64(1), stats.MovieCount)
	assert.Equal(t, int64(1), stats.SeriesCount)
	assert.Equal(t, int64(1), stats.TVCount)
	assert.Equal(t, int64(1), stats.MiscCount)
	assert.Equal(t, int64(10), stats.TotalCategories)
	assert.Equal(t, int64(15), stats.TotalGenres)
	assert.Equal(t, int64(3), stats.TotalViews)
}

func TestLookupsAreCached(t *testing.T) {
	svc, _, c, _ := setup(t)
	ctx := context.Background()

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 10)
	assert.Equal(t, "Arabic", cats[0].Name)

	_, hit, err := c.Store().Get(ctx, "lookup:categories")
	require.NoError(t, err)
	assert.True(t, hit)

	genres, err := svc.Genres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 15)
}

func TestEpisodes(t *testing.T) {
	svc, eps, _, _ := setup(t)
	ctx := context.Background()

	series, err := svc.List(ctx, listQuery(func(q *lib.ListQuery) { q.Type = models.TypeSeries }))
	require.NoError(t, err)
	seriesID := series.Content[0].ID

	list, err := eps.List(ctx, seriesID, 0)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	ep, err := eps.Create(ctx, lib.EpisodeInput{ContentID: seriesID, SeasonNumber: 2, EpisodeNumber: 1, Title: "S2E1"})
	require.NoError(t, err)
	assert.True(t, ep.IsActive)

	season2, err := eps.List(ctx, seriesID, 2)
	require.NoError(t, err)
	assert.Len(t, season2, 1)

	details, err := svc.Get(ctx, seriesID, false)
	require.NoError(t, err)
	require.NotNil(t, details.Episodes)
	assert.Equal(t, 4, *details.Episodes)

	_, err = eps.Create(ctx, lib.EpisodeInput{ContentID: seriesID, SeasonNumber: 2, EpisodeNumber: 1, Title: "dup"})
	assert.Equal(t, 409, statusCode(t, err))

	movies, err := svc.List(ctx, listQuery(func(q *lib.ListQuery) { q.Type = models.TypeMovie }))
	require.NoError(t, err)
	_, err = eps.Create(ctx, lib.EpisodeInput{ContentID: movies.Content[0].ID, EpisodeNumber: 1, Title: "nope"})
	assert.Equal(t, 400, statusCode(t, err))

	title := "Season two opener"
	updated, err := eps.Update(ctx, ep.ID, lib.EpisodePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	one := 1
	_, err = eps.Update(ctx, ep.ID, lib.EpisodePatch{SeasonNumber: &one})
	assert.Equal(t, 409, statusCode(t, err))

	require.NoError(t, eps.Delete(ctx, ep.ID))
	details, err = svc.Get(ctx, seriesID, false)
	require.NoError(t, err)
	assert.Equal(t, 3, *details.Episodes)

	assert.Equal(t, 404, statusCode(t, eps.Delete(ctx, ep.ID)))
}

func TestDeleteRemovesChildren(t *testing.T) {
	svc, eps, _, _ := setup(t)
	ctx := context.Background()

	series, err := svc.List(ctx, listQuery(func(q *lib.ListQuery) { q.Type = models.TypeSeries }))
	require.NoError(t, err)
	id := series.Content[0].ID

	require.NoError(t, svc.Delete(ctx, id))

	var n int64
	require.NoError(t, svc.db.DB().Model(&models.Episode{}).Where("content_id = ?", id).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, svc.db.DB().Table("content_genres").Where("content_id = ?", id).Count(&n).Error)
	assert.Zero(t, n)

	_, err = eps.List(ctx, id, 0)
	assert.Equal(t, 404, statusCode(t, err))
}
