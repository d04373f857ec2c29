// Command server runs the POSM catalogue API: cached catalogue browsing over
// an upstream JSON origin, admin session management, and draft persistence
// backed by SQLite.
//
// @title        POSM Catalogue API
// @version      1.0
// @description  Catalogue browsing, admin sessions, and draft persistence for POSM product models.
// @BasePath     /api/v1
//
// @securityDefinitions.apikey SessionToken
// @in   header
// @name X-Session-Token
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/PhuocTran96/posm-catalogue/docs"
	"github.com/PhuocTran96/posm-catalogue/internal/cache"
	"github.com/PhuocTran96/posm-catalogue/internal/catalog"
	"github.com/PhuocTran96/posm-catalogue/internal/config"
	"github.com/PhuocTran96/posm-catalogue/internal/draft"
	httpapi "github.com/PhuocTran96/posm-catalogue/internal/http"
	"github.com/PhuocTran96/posm-catalogue/internal/observability"
	"github.com/PhuocTran96/posm-catalogue/internal/ratelimit"
	"github.com/PhuocTran96/posm-catalogue/internal/session"
	"github.com/PhuocTran96/posm-catalogue/internal/store"
	"github.com/PhuocTran96/posm-catalogue/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty || sysutil.IsTruthy(os.Getenv("DEV")) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(ctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open sqlite failed")
	}
	if err := store.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	kv := store.NewKV(db)

	sessions := session.NewManager(kv, cfg.AdminPasswordHash)
	sessions.TTL = cfg.SessionTTL
	sessions.Limiter = ratelimit.NewLimiter(kv, cfg.LoginMaxAttempts, cfg.LoginWindow)
	if cfg.AdminPasswordHash == "" {
		log.Warn().Msg("ADMIN_PASSWORD_HASH not set; admin login disabled")
	}

	drafts := draft.NewStore(kv)
	autosave := draft.NewAutoSavePool(drafts, cfg.AutoSaveInterval)
	defer autosave.Stop()

	catalogue := catalog.NewService(cfg.DataBaseURL, &http.Client{Timeout: cfg.FetchTimeout}, cache.New())
	catalogue.IndexTTL = cfg.CatalogueTTL
	catalogue.ModelTTL = cfg.ModelTTL

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Services{
		Catalog:  catalogue,
		Session:  sessions,
		Drafts:   drafts,
		AutoSave: autosave,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("origin", cfg.DataBaseURL).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
