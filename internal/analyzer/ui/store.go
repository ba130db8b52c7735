package ui

import (
	"context"
	"sync"
	"time"
)

// DefaultIdleTTL is how long an untouched session model is kept.
const DefaultIdleTTL = 30 * time.Minute

// StoreOption customises the Store behaviour.
type StoreOption func(*Store)

// WithIdleTTL overrides how long idle models are retained.
func WithIdleTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store keeps one Model per session id in memory.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	model     Model
	touchedAt time.Time
}

// NewStore constructs an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     DefaultIdleTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns the model for id, or the initial model when none is stored or
// the stored one has expired.
func (s *Store) Get(id string) Model {
	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id, now)
	if !ok {
		return Initial()
	}
	e.touchedAt = now
	s.entries[id] = e
	return e.model
}

// Update applies fn to the model for id under the store lock. The result is
// stored only when fn returns no error.
func (s *Store) Update(id string, fn func(Model) (Model, error)) (Model, error) {
	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	current := Initial()
	if e, ok := s.live(id, now); ok {
		current = e.model
	}
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	s.entries[id] = entry{model: next, touchedAt: now}
	return next, nil
}

// Delete drops the model for id.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Len returns the number of stored models, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes models idle for longer than the TTL and returns how many were removed.
func (s *Store) Sweep(now time.Time) int {
	now = now.UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = s.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}

func (s *Store) live(id string, now time.Time) (entry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return entry{}, false
	}
	if s.expired(e, now) {
		delete(s.entries, id)
		return entry{}, false
	}
	return e, true
}

func (s *Store) expired(e entry, now time.Time) bool {
	return !now.Before(e.touchedAt.Add(s.ttl))
}
