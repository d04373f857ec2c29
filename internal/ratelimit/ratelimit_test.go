package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/PhuocTran96/posm-catalogue/internal/store"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*Limiter, func(d time.Duration)) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("ratelimit_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := store.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	l := NewLimiter(store.NewKV(db), max, window)
	l.Now = func() time.Time { return now }
	advance := func(d time.Duration) { now = now.Add(d) }
	return l, advance
}

func TestAllow_ExactBoundary(t *testing.T) {
	l, _ := newTestLimiter(t, 5, 15*time.Minute)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := l.Allow(ctx, "admin-login"); err != nil {
			t.Fatalf("attempt %d should be allowed: %v", i, err)
		}
	}
	if err := l.Allow(ctx, "admin-login"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("6th attempt must fail with ErrRateLimited, got %v", err)
	}
}

func TestAllow_WindowElapsesAndResets(t *testing.T) {
	l, advance := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	_ = l.Allow(ctx, "a")
	_ = l.Allow(ctx, "a")
	if err := l.Allow(ctx, "a"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected limited, got %v", err)
	}

	advance(61 * time.Second)
	if err := l.Allow(ctx, "a"); err != nil {
		t.Fatalf("attempt after window must be allowed: %v", err)
	}
}

func TestAllow_IndependentActions(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if err := l.Allow(ctx, "login"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := l.Allow(ctx, "export"); err != nil {
		t.Fatalf("a different action must have its own budget: %v", err)
	}
	if err := l.Allow(ctx, "login"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected login limited, got %v", err)
	}
}

func TestReset_RearmsBudget(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Hour)
	ctx := context.Background()

	_ = l.Allow(ctx, "a")
	if err := l.Allow(ctx, "a"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected limited, got %v", err)
	}
	if err := l.Reset(ctx, "a"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := l.Allow(ctx, "a"); err != nil {
		t.Fatalf("attempt after reset must be allowed: %v", err)
	}
}

func TestRemaining(t *testing.T) {
	l, advance := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	if got := l.Remaining(ctx, "a"); got != 3 {
		t.Fatalf("fresh action: expected 3, got %d", got)
	}
	_ = l.Allow(ctx, "a")
	_ = l.Allow(ctx, "a")
	if got := l.Remaining(ctx, "a"); got != 1 {
		t.Fatalf("expected 1 remaining, got %d", got)
	}
	advance(2 * time.Minute)
	if got := l.Remaining(ctx, "a"); got != 3 {
		t.Fatalf("elapsed window: expected full budget, got %d", got)
	}
}

func TestAllow_CorruptCounterTreatedAsAbsent(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if err := l.KV.Put(ctx, "rate_limit_a", "{not json"); err != nil {
		t.Fatalf("seed corrupt: %v", err)
	}
	if err := l.Allow(ctx, "a"); err != nil {
		t.Fatalf("corrupt counter must reset, not fail: %v", err)
	}
}

func TestAllow_CounterSurvivesReopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "persist.db")
	open := func() *gorm.DB {
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		return db
	}
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	db := open()
	if err := store.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	l := NewLimiter(store.NewKV(db), 1, time.Hour)
	l.Now = func() time.Time { return now }
	if err := l.Allow(ctx, "a"); err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	// A new process sees the same exhausted window.
	db2 := open()
	defer func() {
		if sqlDB, err := db2.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	l2 := NewLimiter(store.NewKV(db2), 1, time.Hour)
	l2.Now = func() time.Time { return now.Add(time.Minute) }
	if err := l2.Allow(ctx, "a"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected persisted counter to limit, got %v", err)
	}
}
