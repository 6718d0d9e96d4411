package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	lib "yemenflix/src/modules/content/lib"
	models "yemenflix/src/modules/content/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(map[string]string{
		"section":  "arabic",
		"category": "",
		"rating":   "7",
		"year":     "2024",
		"language": "",
		"quality":  "HD",
		"type":     "movie",
		"page":     "1",
	})
	assert.Equal(t, "page=1&quality=HD&rating=7&section=arabic&type=movie&year=2024", q)
	assert.Empty(t, BuildQuery(map[string]string{"year": "", "language": ""}))
}

func TestListStateFilterResetsPage(t *testing.T) {
	s := NewListState("series", 24)
	s.SetPage(4)
	s.SetFilter("year", "2024")
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, "limit=24&page=1&type=series&year=2024", s.Query())

	s.SetPage(3)
	s.SetFilter("year", "")
	assert.Equal(t, 1, s.Page)
	assert.NotContains(t, s.Query(), "year")

	s.SetPage(0)
	assert.Equal(t, 1, s.Page)
}

func TestListStateKeepsOnlyKnownFilters(t *testing.T) {
	s := NewListState("movie", 12)
	s.SetPage(2)
	s.SetFilter("colour", "red")
	assert.Equal(t, 2, s.Page, "unknown filters leave the state alone")

	s.Filters["debug"] = "1"
	s.SetFilter("genre", "Drama")
	s.SetFilter("quality", "4K")
	assert.Equal(t, "genre=Drama&limit=12&page=1&quality=4K&type=movie", s.Query())
}

func sample() []models.Content {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Content{
		{ID: 1, Title: "beta", Rating: 7.5, Year: 2020, ViewCount: 10, CreatedAt: base},
		{ID: 2, Title: "Alpha", Rating: 9.0, Year: 2024, ViewCount: 3, CreatedAt: base.Add(time.Hour)},
		{ID: 3, Title: "gamma", Rating: 7.5, Year: 2022, ViewCount: 10, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, Title: "ALPHA", Rating: 8.1, Year: 2021, ViewCount: 0, CreatedAt: base.Add(-time.Hour)},
	}
}

func ids(items []models.Content) []uint {
	out := make([]uint, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestSortContent(t *testing.T) {
	items := sample()
	SortContent(items, "rating", "desc")
	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i-1].Rating, items[i].Rating)
	}
	assert.Equal(t, []uint{2, 4, 1, 3}, ids(items))

	items = sample()
	SortContent(items, "title", "asc")
	assert.Equal(t, []uint{2, 4, 1, 3}, ids(items), "case-insensitive with id tie-break")

	items = sample()
	SortContent(items, "views", "desc")
	assert.Equal(t, []uint{1, 3, 2, 4}, ids(items))

	items = sample()
	SortContent(items, "createdAt", "asc")
	assert.Equal(t, []uint{4, 1, 2, 3}, ids(items))

	items = sample()
	SortContent(items, "unknown", "asc")
	assert.Equal(t, []uint{1, 2, 3, 4}, ids(items))
}

func TestPageWindow(t *testing.T) {
	p := PageWindow(1, 3)
	assert.Equal(t, []int{1, 2, 3}, p.Pages)
	assert.False(t, p.HasPrev)
	assert.True(t, p.HasNext)

	p = PageWindow(15, 30)
	assert.Len(t, p.Pages, 10)
	assert.Contains(t, p.Pages, 15)
	assert.True(t, p.HasPrev)
	assert.True(t, p.HasNext)

	p = PageWindow(30, 30)
	assert.Equal(t, 21, p.Pages[0])
	assert.Equal(t, 30, p.Pages[len(p.Pages)-1])
	assert.False(t, p.HasNext)

	assert.Empty(t, PageWindow(1, 0).Pages)
}

func TestListResultStates(t *testing.T) {
	assert.Equal(t, Loading, NewListResult(nil, nil, 1).State)
	assert.Equal(t, Empty, NewListResult(&ContentPage{}, nil, 1).State)

	res := NewListResult(nil, &APIError{Status: 500}, 1)
	assert.Equal(t, Error, res.State)
	assert.Equal(t, FallbackMessage, res.Message)

	page := &ContentPage{Content: sample(), Total: 4}
	page.Pagination.TotalPages = 1
	res = NewListResult(page, nil, 1)
	assert.Equal(t, Ready, res.State)
	assert.Equal(t, []int{1}, res.Pager.Pages)

	assert.Equal(t, 12, SkeletonCount(LayoutGrid))
	assert.Equal(t, 6, SkeletonCount(LayoutCompact))
}

func TestQueryCacheSharesConcurrentFetches(t *testing.T) {
	qc := NewQueryCache(time.Minute)
	ctx := context.Background()
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := qc.Fetch(ctx, "/api/content?page=1", func(context.Context) ([]byte, error) {
				calls.Add(1)
				<-release
				return []byte(`{"total":1}`), nil
			})
			assert.NoError(t, err)
			assert.Equal(t, `{"total":1}`, string(data))
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, qc.Cached(ctx, "/api/content?page=1"))
}

func TestQueryCacheDropsOutdatedResponse(t *testing.T) {
	qc := NewQueryCache(time.Minute)
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan []byte)
	go func() {
		data, _ := qc.Fetch(ctx, "/api/content?type=movie", func(context.Context) ([]byte, error) {
			close(started)
			<-release
			return []byte("old"), nil
		})
		done <- data
	}()

	<-started
	qc.Invalidate(ctx, ContentPrefix)
	close(release)
	assert.Equal(t, "old", string(<-done))
	assert.False(t, qc.Cached(ctx, "/api/content?type=movie"), "a response older than the invalidation is not cached")

	data, err := qc.Fetch(ctx, "/api/content?type=movie", func(context.Context) ([]byte, error) {
		return []byte("new"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assert.True(t, qc.Cached(ctx, "/api/content?type=movie"))
}

type recorded struct {
	method string
	path   string
	body   string
}

func recordingServer(t *testing.T, status int, reply string) (*httptest.Server, func() []recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{method: r.Method, path: r.URL.RequestURI(), body: string(body)})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func TestToggleActiveSendsOnlyTheFlag(t *testing.T) {
	srv, requests := recordingServer(t, http.StatusOK, `{"id":5,"isActive":false}`)
	c := New(srv.URL, WithToken("t", 1))

	item, err := c.ToggleActive(context.Background(), models.Content{ID: 5, Title: "x", IsActive: true, Rating: 8})
	require.NoError(t, err)
	assert.False(t, item.IsActive)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Equal(t, "/api/content/5", reqs[0].path)
	assert.JSONEq(t, `{"isActive":false}`, reqs[0].body)
}

func TestDeleteContentAsksFirst(t *testing.T) {
	srv, requests := recordingServer(t, http.StatusOK, `{"message":"Content deleted successfully"}`)
	c := New(srv.URL, WithToken("t", 1))
	ctx := context.Background()

	sent, err := c.DeleteContent(ctx, 9, func() bool { return false })
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, requests())

	_, err = c.Cache().Fetch(ctx, "/api/content?type=movie", func(context.Context) ([]byte, error) {
		return []byte(`{}`), nil
	})
	require.NoError(t, err)

	sent, err = c.DeleteContent(ctx, 9, func() bool { return true })
	require.NoError(t, err)
	assert.True(t, sent)
	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodDelete, reqs[0].method)
	assert.Equal(t, "/api/content/9", reqs[0].path)
	assert.False(t, c.Cache().Cached(ctx, "/api/content?type=movie"))
}

func TestErrorMessages(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusBadRequest, `{"error":"العنوان مطلوب"}`)
	_, err := New(srv.URL).GetContent(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "العنوان مطلوب", ErrorMessage(err))

	bare, _ := recordingServer(t, http.StatusInternalServerError, ``)
	_, err = New(bare.URL).GetContent(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, FallbackMessage, ErrorMessage(err))

	assert.Equal(t, FallbackMessage, ErrorMessage(errors.New("dial tcp: refused")))
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	srv, requests := recordingServer(t, http.StatusInternalServerError, `{"error":"boom"}`)
	c := New(srv.URL, WithToken("t", 1))
	ctx := context.Background()
	rating := 5.0
	patch := lib.ContentPatch{Rating: &rating}

	for i := 0; i < 5; i++ {
		_, err := c.UpdateContent(ctx, 1, patch)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
	}
	_, err := c.UpdateContent(ctx, 1, patch)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Len(t, requests(), 5)
}

func TestClientErrorsKeepBreakerClosed(t *testing.T) {
	srv, requests := recordingServer(t, http.StatusNotFound, `{"error":"Content not found"}`)
	c := New(srv.URL)
	for i := 0; i < 7; i++ {
		_, err := c.GetContent(context.Background(), uint(100+i))
		assert.Equal(t, "Content not found", ErrorMessage(err))
	}
	assert.Len(t, requests(), 7)
}

func TestSaveProgressRequiresLogin(t *testing.T) {
	srv, requests := recordingServer(t, http.StatusOK, `{}`)
	assert.ErrorIs(t, New(srv.URL).SaveProgress(context.Background(), 1, 120, 6000), ErrNotSignedIn)
	assert.Empty(t, requests())

	require.NoError(t, New(srv.URL, WithToken("t", 3)).SaveProgress(context.Background(), 1, 120, 6000))
	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/users/3/watch-history", reqs[0].path)
	assert.JSONEq(t, `{"contentId":1,"progressSeconds":120,"duration":6000}`, reqs[0].body)
}
