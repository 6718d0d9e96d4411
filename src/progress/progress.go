// Package progress decides when a playback position is worth saving and
// keeps a device-local copy next to the server's watch history.
package progress

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const (
	SaveInterval    = 30.0
	MinPercent      = 5.0
	MaxPercent      = 95.0
	ResumeThreshold = 60.0
	LocalMaxAge     = 30 * 24 * time.Hour
)

// Entry is one saved position. Times are in seconds.
type Entry struct {
	CurrentTime float64   `json:"currentTime"`
	Duration    float64   `json:"duration"`
	Title       string    `json:"title"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e Entry) Percent() float64 {
	if e.Duration <= 0 {
		return 0
	}
	return e.CurrentTime / e.Duration * 100
}

// ShouldPersist reports whether a sample at current is saved, given the
// position last saved.
func ShouldPersist(current, lastSaved, duration float64, signedIn bool) bool {
	if !signedIn || duration <= 0 {
		return false
	}
	if math.Abs(current-lastSaved) < SaveInterval {
		return false
	}
	pct := current / duration * 100
	return pct > MinPercent && pct < MaxPercent
}

// Merge returns whichever copy was written last. Either may be nil.
func Merge(local, server *Entry) *Entry {
	switch {
	case local == nil:
		return server
	case server == nil:
		return local
	case local.Timestamp.After(server.Timestamp):
		return local
	default:
		return server
	}
}

func Key(contentID uint) string {
	return fmt.Sprintf("watch_progress_%d", contentID)
}

// Local reads and writes entries in a Store, dropping stale ones on read.
type Local struct {
	store Store
	now   func() time.Time
}

func NewLocal(store Store) *Local {
	return &Local{store: store, now: time.Now}
}

func (l *Local) Save(ctx context.Context, contentID uint, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return l.store.Set(ctx, Key(contentID), data)
}

// Load returns nil when nothing usable is stored. Expired and unreadable
// entries are deleted.
func (l *Local) Load(ctx context.Context, contentID uint) (*Entry, error) {
	key := Key(contentID)
	data, ok, err := l.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("dropping unreadable progress entry")
		return nil, l.store.Delete(ctx, key)
	}
	if l.now().Sub(e.Timestamp) > LocalMaxAge {
		return nil, l.store.Delete(ctx, key)
	}
	return &e, nil
}

// Resume returns the entry to offer as "continue watching", or nil.
func (l *Local) Resume(ctx context.Context, contentID uint) (*Entry, error) {
	e, err := l.Load(ctx, contentID)
	if err != nil || e == nil || e.CurrentTime <= ResumeThreshold {
		return nil, err
	}
	return e, nil
}

// Clear forgets the stored position of contentID.
func (l *Local) Clear(ctx context.Context, contentID uint) error {
	return l.store.Delete(ctx, Key(contentID))
}

// Saver persists a position on the server.
type Saver interface {
	SaveProgress(ctx context.Context, contentID uint, currentTime, duration float64) error
}

// Tracker samples one playback session. SignedIn is consulted on every
// sample so a logout mid-playback stops saving.
type Tracker struct {
	ContentID uint
	Title     string
	SignedIn  func() bool
	Saver     Saver
	Local     *Local

	mu        sync.Mutex
	lastSaved float64
}

// Sample is called with the player position. It returns whether the
// sample was persisted.
func (t *Tracker) Sample(ctx context.Context, currentTime, duration float64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	signedIn := t.SignedIn != nil && t.SignedIn()
	if !ShouldPersist(currentTime, t.lastSaved, duration, signedIn) {
		return false, nil
	}
	t.lastSaved = currentTime

	if t.Local != nil {
		entry := Entry{CurrentTime: currentTime, Duration: duration, Title: t.Title}
		if err := t.Local.Save(ctx, t.ContentID, entry); err != nil {
			log.Warn().Err(err).Uint("content_id", t.ContentID).Msg("local progress write failed")
		}
	}
	if t.Saver != nil {
		if err := t.Saver.SaveProgress(ctx, t.ContentID, currentTime, duration); err != nil {
			return true, fmt.Errorf("save progress: %w", err)
		}
	}
	return true, nil
}

// Clear drops the local copy and restarts the drift window, so the next
// qualifying sample is saved regardless of the last saved position.
func (t *Tracker) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSaved = 0
	if t.Local == nil {
		return nil
	}
	return t.Local.Clear(ctx, t.ContentID)
}
