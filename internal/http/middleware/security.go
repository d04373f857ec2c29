// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, which attaches a conservative set of
// HTTP security headers suitable for a JSON API behind a reverse proxy.
// HSTS is opt-in and only emitted for HTTPS requests; there is no CSP since
// the service never serves HTML.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures the headers emitted by SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security for HTTPS requests only.
	// Enable only when traffic is HTTPS end-to-end, proxy hop included.
	EnableHSTS bool
	// HSTSMaxAge is the HSTS lifetime; defaults to 180 days when <= 0.
	HSTSMaxAge time.Duration
	// NoStore adds Cache-Control: no-store (plus legacy Pragma/Expires) to
	// keep sensitive responses out of shared caches.
	NoStore bool
	// EnablePolicy includes the browser feature-policy headers. Harmless
	// for non-browser clients.
	EnablePolicy bool
}

// SecurityHeaders returns a Gin middleware adding baseline hardening
// headers (nosniff, frame deny, no-referrer) plus the optional HSTS,
// no-store, and feature-policy headers per opt.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && requestIsHTTPS(c.Request) {
			h.Set("Strict-Transport-Security",
				"max-age="+strconv.Itoa(maxAge)+"; includeSubDomains; preload")
		}

		c.Next()
	}
}

// requestIsHTTPS reports whether the request arrived over TLS, directly or
// via a trusted proxy's X-Forwarded-Proto.
func requestIsHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
