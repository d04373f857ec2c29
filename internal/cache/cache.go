// Package cache provides a small string-keyed in-memory store with optional
// per-entry expiry. It backs the catalogue data service as a read-through
// cache.
//
// Eviction is lazy: an expired entry is removed the next time it is read,
// not by a background sweeper. Consequently Size reports an upper bound on
// live entries, not an exact count. There is no capacity limit and no
// eviction policy beyond expiry; the working set (one index plus a handful
// of model documents) is small enough that none is needed.
//
// The store is safe for concurrent use.
package cache

import (
	"sync"
	"time"
)

// entry wraps a stored value with its write time and lifetime.
// A zero ttl means the entry never expires via the time check.
type entry struct {
	data    any
	written time.Time
	ttl     time.Duration
}

func (e entry) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.written) > e.ttl
}

// Store is a mutex-guarded key-value store with per-entry TTLs.
// Construct with New; the zero value is not usable.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry

	// now is the clock; overridable in tests.
	now func() time.Time
}

// New returns an empty Store using the wall clock.
func New() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value stored under key. An entry past its TTL is deleted
// as a side effect and reported absent; absence is the only miss signal.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return nil, false
	}
	return e.data, true
}

// Set stores value under key, stamping the current time. Any existing entry
// for key is overwritten unconditionally. A ttl of zero (or negative) means
// the entry never expires.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl < 0 {
		ttl = 0
	}
	s.entries[key] = entry{data: value, written: s.now(), ttl: ttl}
}

// Remove deletes the entry under key; no-op when absent.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Clear empties the entire store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
}

// Has reports whether Get(key) would return a value. It runs the same
// expiry check as Get, including the lazy delete.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Size returns the number of entries currently held, including entries that
// have expired but have not yet been read. Because eviction is lazy this is
// an upper bound on live entries.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
