// Package session manages the single persisted admin session. The session
// record lives in the shared key-value namespace under a fixed key, carries
// an absolute (non-sliding) expiry, and is overwritten wholesale on each
// login. Reads are self-healing: an expired or unreadable record is deleted
// on detection and reported absent, so every caller observes either a valid
// session or none.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/PhuocTran96/posm-catalogue/internal/domain"
	"github.com/PhuocTran96/posm-catalogue/internal/ratelimit"
	"github.com/PhuocTran96/posm-catalogue/internal/store"
)

const (
	// sessionKey is the fixed KV key holding the serialized session.
	sessionKey = "posm-catalogue-session"
	// loginAction keys the login rate-limit counter.
	loginAction = "admin-login"
)

var (
	// ErrTooManyAttempts is returned by Login when the rate limit for
	// login attempts has been exhausted. Distinct from a wrong password so
	// the caller can show a cool-down message.
	ErrTooManyAttempts = errors.New("too many login attempts")

	// ErrLoginDisabled is returned when no password digest is configured.
	ErrLoginDisabled = errors.New("login is not configured")
)

// Manager owns the persisted admin session.
type Manager struct {
	KV      *store.KV
	Limiter *ratelimit.Limiter

	// PasswordDigest is the encoded PBKDF2 digest the login password is
	// verified against. Empty disables login entirely.
	PasswordDigest string
	// TTL is the absolute session lifetime granted on login and refresh.
	TTL time.Duration

	// now is the clock; overridable in tests.
	now func() time.Time
}

// NewManager constructs a Manager with the catalogue defaults: a 24-hour
// session and a login limiter of 5 attempts per 15 minutes.
func NewManager(kv *store.KV, passwordDigest string) *Manager {
	return &Manager{
		KV:             kv,
		Limiter:        ratelimit.NewLimiter(kv, 5, 15*time.Minute),
		PasswordDigest: passwordDigest,
		TTL:            24 * time.Hour,
		now:            time.Now,
	}
}

// Login verifies password and, on success, mints and persists a fresh
// admin session, returning it.
//
// The rate limiter is consulted before the password is compared: once the
// attempt budget is spent, Login fails with ErrTooManyAttempts without
// touching the digest. A wrong password returns (nil, nil) and the
// attempt stays counted; a correct password clears the counter.
func (m *Manager) Login(ctx context.Context, password string) (*domain.UserSession, error) {
	if err := m.Limiter.Allow(ctx, loginAction); err != nil {
		if errors.Is(err, ratelimit.ErrRateLimited) {
			return nil, ErrTooManyAttempts
		}
		return nil, err
	}

	if m.PasswordDigest == "" {
		return nil, ErrLoginDisabled
	}
	match, err := VerifyPassword(password, m.PasswordDigest)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, nil
	}

	if err := m.Limiter.Reset(ctx, loginAction); err != nil {
		// Best-effort: a stale counter only shortens the next window.
		log.Warn().Err(err).Msg("could not reset login attempt counter")
	}

	s := domain.UserSession{
		IsAuthenticated: true,
		SessionToken:    uuid.NewString(),
		ExpiresAt:       m.now().Add(m.TTL).UTC(),
		Mode:            "admin",
	}
	if err := m.persist(ctx, s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Logout deletes the persisted session unconditionally. Idempotent.
func (m *Manager) Logout(ctx context.Context) error {
	return m.KV.Delete(ctx, sessionKey)
}

// GetSession returns the current session when it is valid. An expired,
// corrupt, or unauthenticated record is deleted as a side effect and
// reported absent; calling GetSession again yields the same result.
func (m *Manager) GetSession(ctx context.Context) (*domain.UserSession, bool) {
	raw, ok, err := m.KV.Get(ctx, sessionKey)
	if err != nil || !ok {
		return nil, false
	}

	var s domain.UserSession
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		m.heal(ctx, "corrupt session record")
		return nil, false
	}
	if !s.Valid(m.now()) {
		m.heal(ctx, "expired session record")
		return nil, false
	}
	return &s, true
}

// IsAuthenticated reports whether a valid session exists.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	_, ok := m.GetSession(ctx)
	return ok
}

// RefreshSession extends a valid session's expiry to now + TTL and
// re-persists it, returning the refreshed session. Returns (nil, nil)
// when no valid session exists.
func (m *Manager) RefreshSession(ctx context.Context) (*domain.UserSession, error) {
	s, ok := m.GetSession(ctx)
	if !ok {
		return nil, nil
	}
	s.ExpiresAt = m.now().Add(m.TTL).UTC()
	if err := m.persist(ctx, *s); err != nil {
		return nil, err
	}
	return s, nil
}

// persist serializes and stores the session under the fixed key.
func (m *Manager) persist(ctx context.Context, s domain.UserSession) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.KV.Put(ctx, sessionKey, string(raw))
}

// heal deletes an invalid stored record so later reads observe a clean
// logged-out state.
func (m *Manager) heal(ctx context.Context, reason string) {
	if err := m.KV.Delete(ctx, sessionKey); err != nil {
		log.Warn().Err(err).Str("reason", reason).Msg("could not delete invalid session")
	}
}
