package files

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"yemenflix/src/cache"
	"yemenflix/src/database"
	"yemenflix/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type object struct {
	data        []byte
	contentType string
}

type memBucket struct {
	mu      sync.Mutex
	objects map[string]object
	gets    int
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string]object{}}
}

func (b *memBucket) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = object{data, contentType}
	return nil
}

func (b *memBucket) Get(_ context.Context, key string) ([]byte, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gets++
	o, ok := b.objects[key]
	if !ok {
		return nil, "", ErrObjectNotFound
	}
	return o.data, o.contentType, nil
}

func (b *memBucket) Exists(_ context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok, nil
}

const pngHeader = "\x89PNG\r\n\x1a\n0000"

func setup(t *testing.T) (*FileService, *memBucket) {
	t.Helper()
	b := newMemBucket()
	return NewFileService(database.NewTestManager(t), b, cache.NewMemoryStore()), b
}

func statusCode(t *testing.T, err error) int {
	t.Helper()
	se, ok := err.(*utils.ServiceError)
	require.True(t, ok, "expected a ServiceError, got %v", err)
	return se.StatusCode
}

func TestUploadAndServe(t *testing.T) {
	svc, b := setup(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, strings.NewReader(pngHeader), int64(len(pngHeader)), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Key, "uploads/"))
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
	assert.Equal(t, StaticPrefix+res.Key, res.URL)

	data, contentType, err := svc.Get(ctx, "/"+res.Key)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, string(data))
	assert.Equal(t, "image/png", contentType)

	_, _, err = svc.Get(ctx, "/"+res.Key)
	require.NoError(t, err)
	assert.Equal(t, 1, b.gets, "second read is served from the byte cache")

	_, _, err = svc.Get(ctx, "/missing.png")
	assert.Equal(t, 404, statusCode(t, err))
	_, _, err = svc.Get(ctx, "/../secret")
	assert.Equal(t, 400, statusCode(t, err))
}

func TestUploadRejects(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, strings.NewReader("MZ"), 2, "application/x-msdownload")
	assert.Equal(t, 400, statusCode(t, err))

	_, err = svc.Upload(ctx, strings.NewReader(""), 11<<20, "image/jpeg")
	assert.Equal(t, 400, statusCode(t, err), "seeded max_upload_size is 10MB")
}

func TestMirror(t *testing.T) {
	svc, b := setup(t)
	ctx := context.Background()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = io.WriteString(w, pngHeader)
	}))
	defer srv.Close()

	local, err := svc.Mirror(ctx, srv.URL+"/posters/a.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(local, StaticPrefix+"mirror/"))
	assert.True(t, strings.HasSuffix(local, "/posters/a.png"))
	assert.Len(t, b.objects, 1)

	again, err := svc.Mirror(ctx, srv.URL+"/posters/a.png")
	require.NoError(t, err)
	assert.Equal(t, local, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "existing objects are not downloaded again")

	_, err = svc.Mirror(ctx, srv.URL+"/missing.jpg")
	assert.Error(t, err)

	same, err := svc.Mirror(ctx, "/serverdata/images/movie-1.svg")
	require.NoError(t, err)
	assert.Equal(t, "/serverdata/images/movie-1.svg", same)
}
