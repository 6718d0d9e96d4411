// Package client is the Go client for the catalog API: grid listing with a
// query cache, admin content CRUD and watch-progress saving.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	lib "yemenflix/src/modules/content/lib"
	models "yemenflix/src/modules/content/models"
	"yemenflix/src/progress"
	"yemenflix/src/utils"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// FallbackMessage is shown when a failed request carries no message.
const FallbackMessage = "حدث خطأ غير متوقع"

// ContentPrefix is the query key prefix every catalog mutation invalidates.
const ContentPrefix = "/api/content"

var (
	ErrNotSignedIn = errors.New("not signed in")
	ErrUnavailable = errors.New("api unavailable")
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// ErrorMessage is the text shown to the user for err.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return FallbackMessage
}

type ContentPage struct {
	Content    []models.Content `json:"content"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Pagination utils.Pagination `json:"pagination"`
}

var _ progress.Saver = (*Client)(nil)

type Client struct {
	baseURL string
	http    *http.Client
	cache   *QueryCache
	breaker *gobreaker.CircuitBreaker[[]byte]

	mu     sync.RWMutex
	token  string
	userID uint
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken signs every request as userID.
func WithToken(token string, userID uint) Option {
	return func(c *Client) {
		c.token = token
		c.userID = userID
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		cache:   NewQueryCache(5 * time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "yemenflix-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// client errors say nothing about the server's health
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("api circuit state changed")
		},
	})
	return c
}

func (c *Client) Cache() *QueryCache {
	return c.cache
}

func (c *Client) SignedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, err
		}
	}

	data, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		c.mu.RLock()
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		c.mu.RUnlock()

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			return nil, decodeError(resp.StatusCode, raw)
		}
		return raw, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, err
}

func decodeError(status int, raw []byte) *APIError {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)
	msg := body.Error
	if msg == "" {
		msg = body.Message
	}
	return &APIError{Status: status, Message: msg}
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	data, err := c.cache.Fetch(ctx, path, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, nil)
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Login signs the client in for later requests.
func (c *Client) Login(ctx context.Context, username, password string) error {
	data, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": password})
	if err != nil {
		return err
	}
	var res struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return err
	}
	c.mu.Lock()
	c.token, c.userID = res.Token, res.User.ID
	c.mu.Unlock()
	return nil
}

func (c *Client) ListContent(ctx context.Context, state *ListState) (*ContentPage, error) {
	path := ContentPrefix
	if q := state.Query(); q != "" {
		path += "?" + q
	}
	var page ContentPage
	if err := c.getJSON(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// LoadList fetches a grid page and folds the outcome into a ListResult.
func (c *Client) LoadList(ctx context.Context, state *ListState) ListResult {
	page, err := c.ListContent(ctx, state)
	if err != nil {
		log.Debug().Err(err).Msg("content list failed")
	}
	return NewListResult(page, err, state.Page)
}

func (c *Client) GetContent(ctx context.Context, id uint) (*models.ContentDetails, error) {
	var details models.ContentDetails
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%d", ContentPrefix, id), &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) mutate(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	c.cache.Invalidate(ctx, ContentPrefix)
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *Client) CreateContent(ctx context.Context, in lib.ContentInput) (*models.Content, error) {
	var item models.Content
	if err := c.mutate(ctx, http.MethodPost, ContentPrefix, in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateContent sends only the fields set in patch.
func (c *Client) UpdateContent(ctx context.Context, id uint, patch lib.ContentPatch) (*models.Content, error) {
	var item models.Content
	if err := c.mutate(ctx, http.MethodPut, fmt.Sprintf("%s/%d", ContentPrefix, id), patch, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ToggleActive flips the active flag of item with a single update.
func (c *Client) ToggleActive(ctx context.Context, item models.Content) (*models.Content, error) {
	active := !item.IsActive
	return c.UpdateContent(ctx, item.ID, lib.ContentPatch{IsActive: &active})
}

// DeleteContent asks confirm first and deletes only on a yes. It reports
// whether the delete was sent.
func (c *Client) DeleteContent(ctx context.Context, id uint, confirm func() bool) (bool, error) {
	if confirm != nil && !confirm() {
		return false, nil
	}
	if err := c.mutate(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", ContentPrefix, id), nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

// SaveProgress stores a playback position in the signed-in user's history.
func (c *Client) SaveProgress(ctx context.Context, contentID uint, currentTime, duration float64) error {
	c.mu.RLock()
	uid := c.userID
	c.mu.RUnlock()
	if !c.SignedIn() || uid == 0 {
		return ErrNotSignedIn
	}
	body := map[string]interface{}{
		"contentId":       contentID,
		"progressSeconds": currentTime,
		"duration":        duration,
	}
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/users/%d/watch-history", uid), body)
	if err == nil {
		c.cache.Invalidate(ctx, fmt.Sprintf("/api/users/%d/", uid))
	}
	return err
}
