package middleware

import (
	"bytes"
	"net/http"
	"strconv"

	"yemenflix/src/cache"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const CacheHeader = "X-Cache"

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheKey is the request URI, suffixed with the user id for signed-in
// callers so a prefix such as "/api/content" still covers every variant.
func CacheKey(c *gin.Context) string {
	key := c.Request.URL.RequestURI()
	if claims, ok := CurrentUser(c); ok {
		key += "#u" + strconv.FormatUint(uint64(claims.UserID), 10)
	}
	return key
}

// ResponseCache serves successful JSON GET responses from the store. Admin
// requests bypass it entirely since they see inactive rows.
func ResponseCache(c *cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet || IsAdmin(ctx) {
			ctx.Next()
			return
		}

		key := CacheKey(ctx)
		reqCtx := ctx.Request.Context()
		if body, ok, err := c.Store().Get(reqCtx, key); err == nil && ok {
			ResponseCacheResults.WithLabelValues("hit").Inc()
			ctx.Header(CacheHeader, "HIT")
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
			ctx.Abort()
			return
		} else if err != nil {
			log.Ctx(reqCtx).Warn().Err(err).Str("key", key).Msg("response cache read failed")
		}

		ResponseCacheResults.WithLabelValues("miss").Inc()
		gen := c.Generation(key)
		rec := &bodyRecorder{ResponseWriter: ctx.Writer, body: &bytes.Buffer{}}
		ctx.Writer = rec
		ctx.Header(CacheHeader, "MISS")
		ctx.Next()

		if rec.Status() != http.StatusOK || rec.body.Len() == 0 {
			return
		}
		stored, err := c.SetIfCurrent(reqCtx, key, rec.body.Bytes(), gen)
		if err != nil {
			log.Ctx(reqCtx).Warn().Err(err).Str("key", key).Msg("response cache write failed")
		} else if !stored {
			log.Ctx(reqCtx).Debug().Str("key", key).Msg("response invalidated while in flight, not cached")
		}
	}
}
