package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"yemenflix/src/auth"
	"yemenflix/src/cache"
	"yemenflix/src/database"
	"yemenflix/src/middleware"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router *gin.Engine
	jwt    *auth.JWTManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := cache.NewMemoryStore()
	jwt, err := auth.NewJWTManager("routes-secret", time.Hour, store)
	require.NoError(t, err)
	router := NewRouter(&Deps{
		DB:         database.NewTestManager(t),
		Cache:      cache.New(store, time.Minute),
		JWT:        jwt,
		Limiter:    middleware.NewRateLimiter(100, 100),
		BcryptCost: bcrypt.MinCost,
	})
	return &fixture{router: router, jwt: jwt}
}

func (f *fixture) token(t *testing.T, id uint, admin bool) string {
	t.Helper()
	tok, _, err := f.jwt.GenerateToken(id, "u", admin)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestOpsEndpoints(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/readyz", "", nil).Code)

	f.do(http.MethodGet, "/api/genres", "", nil)
	w := f.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "yemenflix_api_requests_total")

	w = f.do(http.MethodGet, "/healthz", "", nil)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestCatalogIsCached(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(middleware.CacheHeader))

	w = f.do(http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, "HIT", w.Header().Get(middleware.CacheHeader))
	assert.True(t, strings.Contains(w.Body.String(), "عربي"))
}

func TestAccessRules(t *testing.T) {
	f := newFixture(t)
	admin := f.token(t, 1, true)
	other := f.token(t, 42, false)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/users/1/profile", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/users/1/profile", other, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/users/1/profile", admin, nil).Code)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/admin/stats", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/admin/stats", other, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/admin/stats", admin, nil).Code)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodDelete, "/api/content/1", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/content/1", other, nil).Code)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/content/1", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/episodes/2", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/enhanced/cast-members", "", nil).Code)
}

func TestRegisterAndUseToken(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "sanaani",
		"email":    "sanaani@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)

	w = f.do(http.MethodPost, "/api/users/"+strconv.FormatUint(uint64(res.User.ID), 10)+"/favorites", res.Token, map[string]uint{"contentId": 1})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(http.MethodPost, "/api/auth/logout", res.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/auth/me", res.Token, nil).Code)
}

func TestReportsArePublic(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/api/reports", "", map[string]interface{}{
		"contentId":   1,
		"errorType":   "download_link",
		"description": "رابط التحميل لا يعمل",
		"pageUrl":     "/content/1",
		"email":       "viewer@example.com",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestDeletedContentLeavesPublicWatchlists(t *testing.T) {
	f := newFixture(t)
	admin := f.token(t, 1, true)

	w := f.do(http.MethodPost, "/api/users/1/watchlists", admin, map[string]interface{}{
		"name":     "سهرة الخميس",
		"isPublic": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var wl struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wl))
	items := "/api/watchlists/" + strconv.FormatUint(uint64(wl.ID), 10) + "/items"

	w = f.do(http.MethodPost, items, admin, map[string]uint{"contentId": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(http.MethodGet, items, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The Yemeni Wedding")
	assert.Equal(t, "HIT", f.do(http.MethodGet, items, "", nil).Header().Get(middleware.CacheHeader))

	require.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/content/1", admin, nil).Code)

	w = f.do(http.MethodGet, items, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(middleware.CacheHeader))
	assert.NotContains(t, w.Body.String(), "The Yemeni Wedding")
}
