// Authentication HTTP handlers.
//
// This file exposes the admin-session endpoints:
//   - POST /auth/login    (password login, rate limited)
//   - POST /auth/logout   (clear session)
//   - POST /auth/refresh  (extend session expiry)
//   - GET  /auth/session  (current session state)
//
// It also hosts the Handlers wiring shared by every endpoint group and the
// RequireAdmin middleware used to guard draft mutation routes.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PhuocTran96/posm-catalogue/internal/domain"
	"github.com/PhuocTran96/posm-catalogue/internal/ratelimit"
	"github.com/PhuocTran96/posm-catalogue/internal/session"
)

// SessionService defines the admin-session operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use.
type SessionService interface {
	// Login attempts a password login; returns the session on success.
	Login(ctx context.Context, password string) (*domain.UserSession, error)
	// Logout clears any persisted session. Idempotent.
	Logout(ctx context.Context) error
	// GetSession returns the current session when one is live.
	GetSession(ctx context.Context) (*domain.UserSession, bool)
	// RefreshSession extends the expiry of a live session.
	RefreshSession(ctx context.Context) (*domain.UserSession, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for the catalogue, sessions, and drafts.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	catalogSvc CatalogService
	sessionSvc SessionService
	draftSvc   DraftService
	autoSave   AutoSaveService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(catalogSvc CatalogService, sessionSvc SessionService, draftSvc DraftService) *Handlers {
	return &Handlers{catalogSvc: catalogSvc, sessionSvc: sessionSvc, draftSvc: draftSvc}
}

// WithAutoSave attaches a debounced autosave service and returns h. When no
// service is attached the autosave endpoint is not registered.
func (h *Handlers) WithAutoSave(s AutoSaveService) *Handlers {
	h.autoSave = s
	return h
}

// sessionToken extracts the admin session token from the X-Session-Token
// header, tolerating a "Bearer " prefix.
func sessionToken(c *gin.Context) string {
	t := strings.TrimSpace(c.GetHeader("X-Session-Token"))
	return strings.TrimSpace(strings.TrimPrefix(t, "Bearer "))
}

// RequireAdmin guards mutating routes: the request must carry the token of a
// live authenticated session in X-Session-Token, otherwise 401.
func (h *Handlers) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			Fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing session token")
			return
		}
		s, live := h.sessionSvc.GetSession(c.Request.Context())
		if !live || s.SessionToken != token {
			Fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid or expired session")
			return
		}
		c.Next()
	}
}

//
// DTOs
//

// LoginRequest is the JSON payload for an admin login attempt.
type LoginRequest struct {
	Password string `json:"password" example:"hunter2"`
}

// SessionResponse describes the current session state.
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"token,omitempty"`
	Mode          string `json:"mode,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

func toSessionResponse(s *domain.UserSession) SessionResponse {
	if s == nil || !s.IsAuthenticated {
		return SessionResponse{Authenticated: false}
	}
	return SessionResponse{
		Authenticated: true,
		Token:         s.SessionToken,
		Mode:          s.Mode,
		ExpiresAt:     s.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

//
// Handlers
//

// Login godoc
// @ID          login
// @Summary     Admin login
// @Description Verifies the admin password and mints a session. Attempts are counted per fixed window; exceeding the budget locks the action until the window resets.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true "Login payload"
//
// @Success     200  {object}  handlers.SessionResponse
// @Failure     400  {object}  handlers.ErrorResponse "Malformed JSON"
// @Failure     401  {object}  handlers.ErrorResponse "Wrong password"
// @Failure     429  {object}  handlers.ErrorResponse "Attempt budget exhausted"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	s, err := h.sessionSvc.Login(c.Request.Context(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ratelimit.ErrRateLimited), errors.Is(err, session.ErrTooManyAttempts):
			fail(c, http.StatusTooManyRequests, ErrCodeRateLimited, "too many login attempts")
		case errors.Is(err, session.ErrLoginDisabled):
			fail(c, http.StatusServiceUnavailable, ErrCodeLoginDisabled, "admin login is not configured")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeStorage, "failed to persist session")
		}
		return
	}
	if s == nil {
		fail(c, http.StatusUnauthorized, ErrCodeLoginFailed, "incorrect password")
		return
	}
	ok(c, http.StatusOK, toSessionResponse(s))
}

// Logout godoc
// @ID          logout
// @Summary     Admin logout
// @Description Clears the persisted session. Safe to call with no session.
// @Tags        Auth
// @Produce     json
//
// @Success     204  "Session cleared"
// @Failure     500  {object}  handlers.ErrorResponse "Storage failure"
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.sessionSvc.Logout(c.Request.Context()); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStorage, "failed to clear session")
		return
	}
	noContent(c)
}

// GetSession godoc
// @ID          getSession
// @Summary     Current session state
// @Description Reports whether an authenticated admin session is live. Expired sessions read as unauthenticated.
// @Tags        Auth
// @Produce     json
//
// @Success     200  {object}  handlers.SessionResponse
// @Router      /auth/session [get]
func (h *Handlers) GetSession(c *gin.Context) {
	s, _ := h.sessionSvc.GetSession(c.Request.Context())
	ok(c, http.StatusOK, toSessionResponse(s))
}

// RefreshSession godoc
// @ID          refreshSession
// @Summary     Extend the current session
// @Description Pushes the expiry of a live session forward by the configured TTL. A missing or expired session yields 401.
// @Tags        Auth
// @Produce     json
//
// @Success     200  {object}  handlers.SessionResponse
// @Failure     401  {object}  handlers.ErrorResponse "No live session"
// @Failure     500  {object}  handlers.ErrorResponse "Storage failure"
// @Router      /auth/refresh [post]
func (h *Handlers) RefreshSession(c *gin.Context) {
	s, err := h.sessionSvc.RefreshSession(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStorage, "failed to refresh session")
		return
	}
	if s == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "no active session")
		return
	}
	ok(c, http.StatusOK, toSessionResponse(s))
}
