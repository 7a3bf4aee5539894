package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"marquee/internal/enrich"
	"marquee/internal/logging"
)

var (
	// ErrExpired marks a session key that is unknown or already evicted.
	ErrExpired = errors.New("session expired")
	// ErrNotFound marks an index outside a live session's item range.
	ErrNotFound = errors.New("item not found")
)

const (
	defaultRetention   = 24 * time.Hour
	defaultMaxSessions = 256
)

// Config bounds how long committed sessions survive.
type Config struct {
	Retention   time.Duration
	MaxSessions int
}

type entry struct {
	items     []*enrich.Item
	committed time.Time
}

// Store is an in-memory, commit-ordered session registry. Reads never
// extend a session's lifetime.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry

	retention   time.Duration
	maxSessions int

	logger *slog.Logger
	now    func() time.Time
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithLogger attaches a logger for eviction diagnostics.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "session")
		}
	}
}

// WithClock overrides the time source. Tests use this to force expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore builds a Store. Zero config fields fall back to defaults.
func NewStore(cfg Config, opts ...StoreOption) *Store {
	s := &Store{
		entries:     make(map[string]*entry),
		retention:   cfg.Retention,
		maxSessions: cfg.MaxSessions,
		logger:      logging.NewNop(),
		now:         time.Now,
	}
	if s.retention <= 0 {
		s.retention = defaultRetention
	}
	if s.maxSessions <= 0 {
		s.maxSessions = defaultMaxSessions
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Commit registers items under a fresh key and returns it. The slice is
// owned by the store afterwards; callers must not mutate it. Commit is the
// only operation that evicts: expired sessions go first, then the oldest
// commits until the store fits the cap again.
func (s *Store) Commit(items []*enrich.Item) string {
	key := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()
	s.entries[key] = &entry{items: items, committed: s.now()}

	s.logger.Debug("session committed",
		logging.String(logging.FieldSessionKey, key),
		logging.Int("items", len(items)))
	return key
}

// Get returns the item at index within the session. An unknown or
// past-retention key yields ErrExpired; a live key with an out-of-range
// index yields ErrNotFound.
func (s *Store) Get(key string, index int) (*enrich.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.liveLocked(key)
	if !ok {
		return nil, ErrExpired
	}
	if index < 0 || index >= len(e.items) {
		return nil, ErrNotFound
	}
	return e.items[index], nil
}

// Len reports the item count of a live session.
func (s *Store) Len(key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.liveLocked(key)
	if !ok {
		return 0, ErrExpired
	}
	return len(e.items), nil
}

// liveLocked looks up a key and treats entries past retention as already
// gone, even when no commit has evicted them yet. Cleanup stays with Commit;
// reads only refuse to serve stale data.
func (s *Store) liveLocked(key string) (*entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if e.committed.Before(s.now().Add(-s.retention)) {
		return nil, false
	}
	return e, true
}

// Sessions reports how many sessions are currently live.
func (s *Store) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// evictLocked drops expired entries, then trims oldest-first until one slot
// below the cap remains free for the incoming commit.
func (s *Store) evictLocked() {
	cutoff := s.now().Add(-s.retention)
	for key, e := range s.entries {
		if e.committed.Before(cutoff) {
			delete(s.entries, key)
			s.logger.Debug("session expired",
				logging.String(logging.FieldSessionKey, key))
		}
	}
	for len(s.entries) >= s.maxSessions {
		oldestKey := ""
		var oldest time.Time
		for key, e := range s.entries {
			if oldestKey == "" || e.committed.Before(oldest) {
				oldestKey = key
				oldest = e.committed
			}
		}
		delete(s.entries, oldestKey)
		s.logger.Debug("session evicted",
			logging.String(logging.FieldSessionKey, oldestKey))
	}
}
