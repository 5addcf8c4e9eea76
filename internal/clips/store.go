// Package clips owns the clip history: capture with duplicate suppression,
// newest-first listing, search, update and deletion. The whole collection is
// kept as one JSON array under a single backend key; every mutation is one
// atomic read-modify-write of that key, also against other processes sharing
// the backend.
package clips

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/contextclips/internal/db"
	"github.com/user/contextclips/internal/notify"
)

const (
	storageKey = "clips_v4"

	DefaultDuplicateWindow = 5 * time.Minute
)

// Store is the single writer of the persisted clip collection.
type Store struct {
	mu      sync.RWMutex
	backend db.Backend
	hub     *notify.Hub
	now     func() time.Time
	window  time.Duration
	newID   func() string
}

type Option func(*Store)

// WithClock overrides the capture clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithDuplicateWindow overrides DefaultDuplicateWindow. Zero disables it.
func WithDuplicateWindow(d time.Duration) Option {
	return func(s *Store) { s.window = d }
}

// WithIDGenerator overrides the UUID id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore builds a Store over backend. hub may be nil, in which case
// change notifications go nowhere.
func NewStore(backend db.Backend, hub *notify.Hub, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		hub:     hub,
		now:     time.Now,
		window:  DefaultDuplicateWindow,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add captures a new clip. It returns ErrEmptyContent for blank content and
// ErrDuplicateContent when the same content was captured within the
// duplicate window.
func (s *Store) Add(ctx context.Context, req CaptureRequest) (Clip, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return Clip{}, ErrEmptyContent
	}

	var created Clip
	err := s.mutate(ctx, "add", func(clips []Clip) ([]Clip, bool, error) {
		now := s.now().UnixMilli()
		if dup, ok := s.recentDuplicate(clips, content, now); ok {
			return nil, false, fmt.Errorf("%w: matches clip %s", ErrDuplicateContent, dup.ID)
		}

		created = Clip{
			ID:          s.newID(),
			Content:     content,
			CreatedAt:   now,
			SourceURL:   req.SourceURL,
			PageTitle:   req.PageTitle,
			Domain:      req.Domain,
			ContentType: Classify(content, req.MIME),
			Tags:        []string{},
		}
		return append([]Clip{created}, clips...), true, nil
	})
	if err != nil {
		return Clip{}, err
	}

	slog.Debug("clip added", "id", created.ID, "type", created.ContentType, "domain", created.Domain)
	return created, nil
}

func (s *Store) recentDuplicate(clips []Clip, content string, now int64) (Clip, bool) {
	if s.window <= 0 {
		return Clip{}, false
	}
	window := s.window.Milliseconds()
	for _, c := range clips {
		if c.Content == content && now-c.CreatedAt < window {
			return c, true
		}
	}
	return Clip{}, false
}

// List returns every clip ordered by CreatedAt descending. Clips with equal
// CreatedAt keep insertion order, newest insertion first.
func (s *Store) List(ctx context.Context) ([]Clip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clips, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].CreatedAt > clips[j].CreatedAt
	})
	return clips, nil
}

// Get returns the clip with id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Clip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clips, err := s.load(ctx)
	if err != nil {
		return Clip{}, err
	}
	if i := indexOf(clips, id); i >= 0 {
		return clips[i], nil
	}
	return Clip{}, fmt.Errorf("clip %s: %w", id, ErrNotFound)
}

// Delete removes the clip with id. Deleting a missing id is not an error;
// the returned bool reports whether anything was removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := s.mutate(ctx, "delete", func(clips []Clip) ([]Clip, bool, error) {
		i := indexOf(clips, id)
		if i < 0 {
			return nil, false, nil
		}
		removed = true
		return append(clips[:i:i], clips[i+1:]...), true, nil
	})
	return removed, err
}

// Update replaces the stored clip whose ID matches clip.ID with clip.
// It returns ErrNotFound, leaving the store untouched, for an unknown id.
func (s *Store) Update(ctx context.Context, clip Clip) error {
	clip.Content = strings.TrimSpace(clip.Content)
	if !clip.ContentType.Valid() {
		clip.ContentType = Classify(clip.Content, "")
	}
	clip.Tags = normalizeTags(clip.Tags)

	return s.mutate(ctx, "update", func(clips []Clip) ([]Clip, bool, error) {
		i := indexOf(clips, clip.ID)
		if i < 0 {
			return nil, false, fmt.Errorf("clip %s: %w", clip.ID, ErrNotFound)
		}
		if clip.Content == "" {
			return nil, false, ErrEmptyContent
		}
		clips[i] = clip
		return clips, true, nil
	})
}

// SetPinned updates only the pinned flag of a clip.
func (s *Store) SetPinned(ctx context.Context, id string, pinned bool) error {
	return s.modify(ctx, id, "pin", func(c *Clip) { c.Pinned = pinned })
}

// SetTags replaces only the tags of a clip.
func (s *Store) SetTags(ctx context.Context, id string, tags []string) error {
	tags = normalizeTags(tags)
	return s.modify(ctx, id, "tag", func(c *Clip) { c.Tags = tags })
}

// Clear removes every clip.
func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, "clear", func([]Clip) ([]Clip, bool, error) {
		return []Clip{}, true, nil
	})
}

func (s *Store) modify(ctx context.Context, id, reason string, fn func(*Clip)) error {
	return s.mutate(ctx, reason, func(clips []Clip) ([]Clip, bool, error) {
		i := indexOf(clips, id)
		if i < 0 {
			return nil, false, fmt.Errorf("clip %s: %w", id, ErrNotFound)
		}
		fn(&clips[i])
		return clips, true, nil
	})
}

// mutate runs fn as one atomic read-modify-write of the collection. The
// change notification is published only after the backend write returned.
// Errors returned by fn reach the caller unwrapped.
func (s *Store) mutate(ctx context.Context, reason string, fn func([]Clip) ([]Clip, bool, error)) error {
	var (
		fnErr   error
		changed bool
	)

	s.mu.Lock()
	err := s.backend.Update(ctx, storageKey, func(data []byte) ([]byte, error) {
		clips, err := decode(data)
		if err != nil {
			fnErr = err
			return nil, err
		}
		next, ok, err := fn(clips)
		if err != nil {
			fnErr = err
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		out, err := json.Marshal(next)
		if err != nil {
			fnErr = storageErr("encode", err)
			return nil, fnErr
		}
		changed = true
		return out, nil
	})
	s.mu.Unlock()

	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return storageErr("write", err)
	}
	if changed && s.hub != nil {
		s.hub.Publish(reason)
	}
	return nil
}

func (s *Store) load(ctx context.Context) ([]Clip, error) {
	data, err := s.backend.Get(ctx, storageKey)
	if err != nil {
		return nil, storageErr("read", err)
	}
	return decode(data)
}

func decode(data []byte) ([]Clip, error) {
	if len(data) == 0 {
		return []Clip{}, nil
	}

	var clips []Clip
	if err := json.Unmarshal(data, &clips); err != nil {
		return nil, storageErr("decode", err)
	}
	return clips, nil
}

func indexOf(clips []Clip, id string) int {
	for i, c := range clips {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// normalizeTags trims labels, drops blanks and duplicates, keeps first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
