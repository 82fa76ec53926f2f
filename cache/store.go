package cache

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ZaguanLabs/gophrase"
)

// Store is the phrase cache. It maps a source phrase to its translation and
// creation time, answers lookups in both directions and writes every mutation
// through to its Persister before returning.
//
// Entries are scanned in insertion order, so when a query matches one entry's
// phrase and another entry's translation, the older entry wins. Entries loaded
// from storage are ordered by timestamp.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	order      []string
	expiration time.Duration
	persister  Persister
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithExpiration sets the expiration window. An entry matches while its age
// is at most d, so zero keeps only entries created in the current second.
// Negative values are treated as zero.
func WithExpiration(d time.Duration) Option {
	return func(s *Store) {
		s.expiration = max(d, 0)
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for load warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store and restores its state from p. Storage that is
// missing, unreadable or malformed leaves the cache empty; the problem is
// logged, never returned. A nil persister keeps the cache in memory only.
func NewStore(ctx context.Context, p Persister, opts ...Option) *Store {
	if p == nil {
		p = NewMemoryPersister()
	}

	s := &Store{
		entries:    make(map[string]Entry),
		expiration: DefaultExpiration,
		persister:  p,
		now:        time.Now,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	loaded, err := s.persister.Load(ctx)
	if err != nil {
		s.logger.Warn("discarding unreadable cache",
			"module", "cache", "action", "load", "result", "failed", "error", err)
		return
	}

	order := make([]string, 0, len(loaded))
	for phrase, entry := range loaded {
		s.entries[phrase] = entry
		order = append(order, phrase)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := loaded[order[i]], loaded[order[j]]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return order[i] < order[j]
	})
	s.order = order

	s.logger.Debug("cache loaded",
		"module", "cache", "action", "load", "result", "ok", "entries", len(order))
}

// Lookup finds an unexpired entry whose phrase or translation equals phrase.
// A phrase match returns the translation; a translation match returns the
// original phrase. Expired entries are skipped but not removed.
func (s *Store) Lookup(phrase string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := timestamp(s.now())
	for _, key := range s.order {
		entry := s.entries[key]
		if s.expired(entry, now) {
			continue
		}
		if key == phrase {
			return entry.Translation, true
		}
		if entry.Translation == phrase {
			return key, true
		}
	}
	return "", false
}

// Store inserts or overwrites the entry for phrase and persists the cache.
// An overwritten phrase keeps its scan position.
func (s *Store) Store(ctx context.Context, phrase, translation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[phrase]; !exists {
		s.order = append(s.order, phrase)
	}
	s.entries[phrase] = Entry{
		Translation: translation,
		Timestamp:   timestamp(s.now()),
	}

	return s.persist(ctx, "store")
}

// Trim deletes every expired entry, persists the cache and returns the number
// of entries removed.
func (s *Store) Trim(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := timestamp(s.now())
	kept := s.order[:0]
	removed := 0
	for _, key := range s.order {
		if s.expired(s.entries[key], now) {
			delete(s.entries, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	s.order = kept

	if err := s.persist(ctx, "trim"); err != nil {
		return removed, err
	}
	return removed, nil
}

// Remove deletes the entry keyed by phrase. The cache is persisted only when
// an entry was removed.
func (s *Store) Remove(ctx context.Context, phrase string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[phrase]; !exists {
		return false, nil
	}
	delete(s.entries, phrase)
	for i, key := range s.order {
		if key == phrase {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return true, s.persist(ctx, "remove")
}

// Merge inserts records with their own timestamps and persists once.
// Records without a phrase or translation are skipped; a zero timestamp is
// replaced by the current time. Returns the number of records merged.
func (s *Store) Merge(ctx context.Context, records []Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := timestamp(s.now())
	merged := 0
	for _, r := range records {
		if r.Phrase == "" || r.Translation == "" {
			continue
		}
		ts := r.Timestamp
		if ts == 0 {
			ts = now
		}
		if _, exists := s.entries[r.Phrase]; !exists {
			s.order = append(s.order, r.Phrase)
		}
		s.entries[r.Phrase] = Entry{Translation: r.Translation, Timestamp: ts}
		merged++
	}

	if merged == 0 {
		return 0, nil
	}
	return merged, s.persist(ctx, "merge")
}

// Size returns the number of entries held, expired or not.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a snapshot of all entries in scan order.
func (s *Store) Entries() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0, len(s.order))
	for _, key := range s.order {
		entry := s.entries[key]
		records = append(records, Record{
			Phrase:      key,
			Translation: entry.Translation,
			Timestamp:   entry.Timestamp,
		})
	}
	return records
}

// Expiration returns the configured expiration window.
func (s *Store) Expiration() time.Duration {
	return s.expiration
}

// expired must be called with the lock held.
func (s *Store) expired(e Entry, now float64) bool {
	return now-e.Timestamp > s.expiration.Seconds()
}

// persist must be called with the write lock held.
func (s *Store) persist(ctx context.Context, action string) error {
	if err := s.persister.Save(ctx, s.entries); err != nil {
		s.logger.Error("cache write failed",
			"module", "cache", "action", action, "result", "failed", "error", err)
		return &gophrase.CacheError{Message: "persisting cache", Cause: err}
	}
	return nil
}

// Verify Store implements gophrase.PhraseCache
var _ gophrase.PhraseCache = (*Store)(nil)
