package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"yemenflix/src/cache"
	"yemenflix/src/database"
	"yemenflix/src/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// StaticPrefix is where stored objects are served from.
	StaticPrefix  = "/api/static/"
	imageCacheTTL = 6 * time.Hour
	maxMirrorSize = 20 << 20
)

const defaultMaxUpload int64 = 10 << 20

var allowedTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
	"video/mp4":     ".mp4",
	"text/vtt":      ".vtt",
}

type FileService struct {
	db     *database.Manager
	bucket Bucket
	cache  cache.Store
	client *http.Client
}

func NewFileService(db *database.Manager, bucket Bucket, store cache.Store) *FileService {
	return &FileService{
		db:     db,
		bucket: bucket,
		cache:  store,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

func cacheKey(key string) string {
	return "image_cache:" + key
}

// objectKey cleans a request path into a bucket key. Paths that escape the
// bucket root are rejected.
func objectKey(p string) (string, error) {
	if strings.Contains(p, "..") {
		return "", utils.BadRequest("invalid filepath")
	}
	key := strings.TrimPrefix(path.Clean("/"+p), "/")
	if key == "" {
		return "", utils.BadRequest("invalid filepath")
	}
	return key, nil
}

func (s *FileService) maxUpload(ctx context.Context) int64 {
	n, err := s.db.SettingInt(ctx, "max_upload_size", defaultMaxUpload)
	if err != nil || n <= 0 {
		return defaultMaxUpload
	}
	return n
}

// Upload stores r under uploads/<yyyy>/<mm>/ with a random name.
func (s *FileService) Upload(ctx context.Context, r io.Reader, size int64, contentType string) (*UploadResult, error) {
	contentType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, utils.BadRequest(fmt.Sprintf("unsupported file type %q", contentType))
	}
	if limit := s.maxUpload(ctx); size > limit {
		return nil, utils.BadRequest(fmt.Sprintf("file exceeds the %d byte limit", limit))
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("uploads/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), ext)
	if err := s.bucket.Put(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	log.Ctx(ctx).Info().Str("key", key).Int64("size", size).Msg("file uploaded")
	return &UploadResult{Key: key, URL: StaticPrefix + key, Size: size, ContentType: contentType}, nil
}

// Get returns an object, from the byte cache when possible.
func (s *FileService) Get(ctx context.Context, filePath string) ([]byte, string, error) {
	key, err := objectKey(filePath)
	if err != nil {
		return nil, "", err
	}

	if cached, hit, err := s.cache.Get(ctx, cacheKey(key)); err == nil && hit && len(cached) > 0 {
		return cached, http.DetectContentType(cached), nil
	}

	data, contentType, err := s.bucket.Get(ctx, key)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, "", utils.NotFound("file not found")
	}
	if err != nil {
		return nil, "", err
	}
	if err := s.cache.Set(ctx, cacheKey(key), data, imageCacheTTL); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("image cache write failed")
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// Mirror copies a remote image into the bucket once and returns the local
// URL. URLs that are already local are returned unchanged.
func (s *FileService) Mirror(ctx context.Context, remote string) (string, error) {
	u, err := url.Parse(remote)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return remote, nil
	}
	key, err := objectKey(path.Join("mirror", u.Host, u.Path))
	if err != nil {
		return "", err
	}

	exists, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if exists {
		return StaticPrefix + key, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remote, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status when downloading image: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMirrorSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxMirrorSize {
		return "", fmt.Errorf("remote image larger than %d bytes", maxMirrorSize)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if err := s.bucket.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return StaticPrefix + key, nil
}
