// Package ratelimit implements a fixed-window attempt counter keyed by an
// arbitrary action name, persisted in the shared key-value namespace under
// rate_limit_{action} so counters survive process restarts.
//
// The window is fixed, not sliding: the first attempt in a window records
// {attempts:1, resetTime: now+window}; later attempts increment the counter
// until the window elapses, at which point it silently resets. Bursts
// straddling a window boundary can therefore reach up to twice the nominal
// rate. That is accepted behavior for a login cool-down, not a defect.
package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/PhuocTran96/posm-catalogue/internal/store"
)

// keyPrefix namespaces limiter records in the shared KV store.
const keyPrefix = "rate_limit_"

// ErrRateLimited is returned by Allow when the action has exhausted its
// attempts for the current window.
var ErrRateLimited = errors.New("too many attempts")

// counter is the persisted window state.
type counter struct {
	Attempts  int       `json:"attempts"`
	ResetTime time.Time `json:"resetTime"`
}

// Limiter enforces at most Max attempts per Window for each action key.
type Limiter struct {
	KV     *store.KV
	Max    int
	Window time.Duration

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// NewLimiter constructs a Limiter over kv allowing max attempts per window.
func NewLimiter(kv *store.KV, max int, window time.Duration) *Limiter {
	return &Limiter{KV: kv, Max: max, Window: window, Now: time.Now}
}

// Allow records an attempt for action and reports whether it may proceed.
// The check runs before any caller logic: once Max attempts have been used
// inside the window, Allow returns ErrRateLimited without the caller doing
// any work. A corrupt persisted counter is treated as absent.
func (l *Limiter) Allow(ctx context.Context, action string) error {
	key := keyPrefix + action
	now := l.Now()

	c := l.load(ctx, key)
	if c == nil || now.After(c.ResetTime) {
		// First attempt in a fresh window.
		c = &counter{Attempts: 0, ResetTime: now.Add(l.Window)}
	}
	if c.Attempts >= l.Max {
		return ErrRateLimited
	}

	c.Attempts++
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return l.KV.Put(ctx, key, string(raw))
}

// Reset clears the counter for action, re-arming the full budget.
func (l *Limiter) Reset(ctx context.Context, action string) error {
	return l.KV.Delete(ctx, keyPrefix+action)
}

// Remaining reports how many attempts are left in the current window.
func (l *Limiter) Remaining(ctx context.Context, action string) int {
	c := l.load(ctx, keyPrefix+action)
	if c == nil || l.Now().After(c.ResetTime) {
		return l.Max
	}
	if c.Attempts >= l.Max {
		return 0
	}
	return l.Max - c.Attempts
}

// load reads and decodes a counter; storage failures and corrupt records
// both degrade to absent.
func (l *Limiter) load(ctx context.Context, key string) *counter {
	raw, ok, err := l.KV.Get(ctx, key)
	if err != nil || !ok {
		return nil
	}
	var c counter
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil
	}
	return &c
}
