// Package handlers provides the HTTP handler implementations for the public
// API.
//
// This file defines the standard response utilities: the structured error
// envelope, consistent JSON serialization, and helpers for common HTTP
// patterns, so success and failure responses look the same on every
// endpoint.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PhuocTran96/posm-catalogue/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// RequestID correlates server logs and client errors.
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Code is a stable, machine-readable code (see errors.go constants).
	Code string `json:"code" example:"model_not_found"`
	// Message is a human-readable description, safe to show to users.
	Message string `json:"message" example:"model not found"`
}

// fail aborts the request with a structured error. Server errors (>= 500)
// are logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(), for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
