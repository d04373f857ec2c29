package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// Catalogue origin
	t.Setenv("DATA_BASE_URL", "https://cdn.example.com/") // trailing slash stripped
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("CATALOGUE_TTL", "2m")
	t.Setenv("MODEL_TTL", "4m")

	// Storage / session / drafts
	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("ADMIN_PASSWORD_HASH", "pbkdf2$100000$aa$bb")
	t.Setenv("SESSION_TTL", "12h")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("LOGIN_WINDOW", "10m")
	t.Setenv("AUTOSAVE_INTERVAL", "45s")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "false")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8088" || cfg.ReadTimeout != 2*time.Second || cfg.MaxHeaderBytes != 8192 {
		t.Fatalf("server settings wrong: %+v", cfg)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode normalize got %q", cfg.GinMode)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled {
		t.Fatalf("logging settings wrong: %+v", cfg)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("APIBasePath normalize got %q", cfg.APIBasePath)
	}

	if cfg.DataBaseURL != "https://cdn.example.com" {
		t.Fatalf("DataBaseURL got %q", cfg.DataBaseURL)
	}
	if cfg.FetchTimeout != 5*time.Second || cfg.CatalogueTTL != 2*time.Minute || cfg.ModelTTL != 4*time.Minute {
		t.Fatalf("origin settings wrong: %+v", cfg)
	}

	if cfg.DBPath != "db.sqlite" || cfg.AdminPasswordHash == "" {
		t.Fatalf("storage settings wrong: %+v", cfg)
	}
	if cfg.SessionTTL != 12*time.Hour || cfg.LoginMaxAttempts != 3 || cfg.LoginWindow != 10*time.Minute {
		t.Fatalf("session settings wrong: %+v", cfg)
	}
	if cfg.AutoSaveInterval != 45*time.Second {
		t.Fatalf("AutoSaveInterval got %v", cfg.AutoSaveInterval)
	}

	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate fallbacks wrong: rps=%v burst=%v", cfg.RateRPS, cfg.RateBurst)
	}

	wantOrigins := []string{"https://a.com", "http://b"}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, wantOrigins) {
		t.Fatalf("CORS origins got %v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security settings wrong: %+v", cfg.Security)
	}

	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure ||
		cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.25 {
		t.Fatalf("OTEL settings wrong: %+v", cfg.OTEL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPath != "posm.db" {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
	if cfg.CatalogueTTL != 5*time.Minute || cfg.ModelTTL != 10*time.Minute {
		t.Fatalf("TTL defaults wrong: %+v", cfg)
	}
	if cfg.SessionTTL != 24*time.Hour || cfg.LoginMaxAttempts != 5 || cfg.LoginWindow != 15*time.Minute {
		t.Fatalf("session defaults wrong: %+v", cfg)
	}
	if cfg.AutoSaveInterval != 30*time.Second {
		t.Fatalf("autosave default got %v", cfg.AutoSaveInterval)
	}
	if cfg.AdminPasswordHash != "" {
		t.Fatalf("AdminPasswordHash default must be empty")
	}
}

// --- Validation failures ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"zero read timeout", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts"},
		{"zero fetch timeout", map[string]string{"FETCH_TIMEOUT": "-1s"}, "FETCH_TIMEOUT"},
		{"zero catalogue ttl", map[string]string{"CATALOGUE_TTL": "-1m"}, "cache TTLs"},
		{"zero model ttl", map[string]string{"MODEL_TTL": "-1m"}, "cache TTLs"},
		{"zero session ttl", map[string]string{"SESSION_TTL": "-1h"}, "SESSION_TTL"},
		{"zero login attempts", map[string]string{"LOGIN_MAX_ATTEMPTS": "0"}, "LOGIN_MAX_ATTEMPTS"},
		{"zero login window", map[string]string{"LOGIN_WINDOW": "-1m"}, "LOGIN_WINDOW"},
		{"zero autosave", map[string]string{"AUTOSAVE_INTERVAL": "-1s"}, "AUTOSAVE_INTERVAL"},
		{"negative rps", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"zero burst", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"bad sampler", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

// --- helpers ---

func TestGetbool_Values(t *testing.T) {
	for v, want := range map[string]bool{
		"1": true, "true": true, "YES": true, "on": true,
		"0": false, "false": false, "no": false, "off": false,
	} {
		t.Setenv("FLAG", v)
		if got := getbool("FLAG", !want); got != want {
			t.Fatalf("getbool(%q) = %v", v, got)
		}
	}
	t.Setenv("FLAG", "maybe")
	if !getbool("FLAG", true) {
		t.Fatalf("unparseable value must fall back to default")
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":        "/",
		"/":       "/",
		"api":     "/api",
		"/api/":   "/api",
		"api/v2/": "/api/v2",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
