package services

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"yemenflix/src/auth"
	"yemenflix/src/cache"
	"yemenflix/src/database"
	"yemenflix/src/middleware"
	contentmodels "yemenflix/src/modules/content/models"
	content "yemenflix/src/modules/content/services"
	files "yemenflix/src/modules/files/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHubDeliversToUser(t *testing.T) {
	jwt, err := auth.NewJWTManager("test-secret", time.Hour, nil)
	require.NoError(t, err)
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", middleware.RequireAuth(jwt), hub.WebSocketHandler)
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, _, err := jwt.GenerateToken(7, "viewer", false)
	require.NoError(t, err)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ConnectedUsers() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypePing}))
	var pong Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, MessageTypePong, pong.Type)

	hub.SendToUser(8, MessageTypeNotification, "not for you")
	hub.SendToUser(7, MessageTypeNotification, map[string]string{"title": "محتوى جديد"})
	var got Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, MessageTypeNotification, got.Type)
	assert.Equal(t, map[string]interface{}{"title": "محتوى جديد"}, got.Data)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ConnectedUsers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

type testBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *testBucket) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *testBucket) Get(_ context.Context, key string) ([]byte, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, "", files.ErrObjectNotFound
	}
	return data, "image/png", nil
}

func (b *testBucket) Exists(_ context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok, nil
}

func newJobs(t *testing.T) *Jobs {
	t.Helper()
	m := database.NewTestManager(t)
	store := cache.NewMemoryStore()
	c := cache.New(store, time.Minute)
	return &Jobs{
		DB:        m,
		Cache:     c,
		Content:   content.NewContentService(m, c, nil),
		Files:     files.NewFileService(m, &testBucket{objects: map[string][]byte{}}, store),
		Limiter:   middleware.NewRateLimiter(5, 10),
		BackupDir: t.TempDir(),
	}
}

func TestRunBackupPrunesOldFiles(t *testing.T) {
	j := newJobs(t)
	ctx := context.Background()

	for i := 0; i < backupsKept+2; i++ {
		name := filepath.Join(j.BackupDir, "yemenflix-20200101-00000"+string(rune('0'+i))+".sql")
		require.NoError(t, os.WriteFile(name, []byte("--"), 0o644))
	}

	path, err := j.RunBackup(ctx)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte("INSERT INTO")))

	entries, err := os.ReadDir(j.BackupDir)
	require.NoError(t, err)
	assert.Len(t, entries, backupsKept)
	_, err = os.Stat(path)
	assert.NoError(t, err, "the newest backup survives pruning")
}

func TestMirrorPosters(t *testing.T) {
	j := newJobs(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = io.WriteString(w, "\x89PNG\r\n\x1a\n")
	}))
	defer srv.Close()

	db := j.DB.DB()
	require.NoError(t, db.Model(&contentmodels.Content{}).Where("id = ?", 1).
		UpdateColumn("poster_url", srv.URL+"/posters/wedding.png").Error)
	require.NoError(t, j.Cache.Store().Set(ctx, "/api/content?page=1", []byte("{}"), time.Minute))

	n, err := j.MirrorPosters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var item contentmodels.Content
	require.NoError(t, db.First(&item, 1).Error)
	assert.True(t, strings.HasPrefix(item.PosterURL, files.StaticPrefix+"mirror/"))

	_, hit, err := j.Cache.Store().Get(ctx, "/api/content?page=1")
	require.NoError(t, err)
	assert.False(t, hit)

	n, err = j.MirrorPosters(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSetupBackgroundJobsRejectsBadSchedule(t *testing.T) {
	j := newJobs(t)
	j.BackupSchedule = "not a schedule"
	_, err := SetupBackgroundJobs(j)
	assert.Error(t, err)

	j.BackupSchedule = "0 3 * * *"
	c, err := SetupBackgroundJobs(j)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 5)
	<-c.Stop().Done()
}
