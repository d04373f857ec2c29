package draft

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestAutoSavePool_UpdateSavesAfterQuietPeriod(t *testing.T) {
	s := newTestStore(t)
	p := NewAutoSavePool(s, 30*time.Millisecond)
	defer p.Stop()

	edited := sampleMarkers()
	p.Update(context.Background(), "m1", edited)

	got := waitForDraft(t, s, "m1", time.Second)
	if !reflect.DeepEqual(got, edited) {
		t.Fatalf("auto-saved draft mismatch: %+v", got)
	}
}

func TestAutoSavePool_SeedsSaverFromStoredDraft(t *testing.T) {
	s := newTestStore(t)
	stored := sampleMarkers()
	if err := s.SaveMarkers(context.Background(), "m1", stored); err != nil {
		t.Fatalf("seed draft: %v", err)
	}
	before, _ := s.Timestamp(context.Background(), "m1")

	p := NewAutoSavePool(s, 20*time.Millisecond)
	defer p.Stop()

	// First update equals the stored draft: the pool must treat it as the
	// baseline and not rewrite it.
	p.Update(context.Background(), "m1", sampleMarkers())

	time.Sleep(80 * time.Millisecond)
	after, _ := s.Timestamp(context.Background(), "m1")
	if after != before {
		t.Fatalf("unchanged markers rewrote the draft: %s -> %s", before, after)
	}
}

func TestAutoSavePool_IndependentModels(t *testing.T) {
	s := newTestStore(t)
	p := NewAutoSavePool(s, 20*time.Millisecond)
	defer p.Stop()

	m1 := sampleMarkers()
	m2 := sampleMarkers()
	m2[0].Position.X = 99

	p.Update(context.Background(), "m1", m1)
	p.Update(context.Background(), "m2", m2)

	got1 := waitForDraft(t, s, "m1", time.Second)
	got2 := waitForDraft(t, s, "m2", time.Second)
	if got1[0].Position.X == got2[0].Position.X {
		t.Fatalf("models shared a saver: x1=%v x2=%v", got1[0].Position.X, got2[0].Position.X)
	}
}

func TestAutoSavePool_FlushPersistsImmediately(t *testing.T) {
	s := newTestStore(t)
	p := NewAutoSavePool(s, time.Hour) // never fires on its own
	defer p.Stop()

	edited := sampleMarkers()
	p.Update(context.Background(), "m1", edited)
	if err := p.Flush(context.Background(), "m1"); err != nil {
		t.Fatalf("flush: %v", err)
	}

	got, ok := s.LoadMarkers(context.Background(), "m1")
	if !ok || !reflect.DeepEqual(got, edited) {
		t.Fatalf("flushed draft mismatch: ok=%v %+v", ok, got)
	}
}

func TestAutoSavePool_FlushUnknownModelIsNoop(t *testing.T) {
	s := newTestStore(t)
	p := NewAutoSavePool(s, time.Hour)
	defer p.Stop()

	if err := p.Flush(context.Background(), "never-edited"); err != nil {
		t.Fatalf("flush of unknown model: %v", err)
	}
}

func TestAutoSavePool_ReleaseDropsPending(t *testing.T) {
	s := newTestStore(t)
	p := NewAutoSavePool(s, 30*time.Millisecond)

	p.Update(context.Background(), "m1", sampleMarkers())
	p.Release("m1")

	time.Sleep(100 * time.Millisecond)
	if _, ok := s.LoadMarkers(context.Background(), "m1"); ok {
		t.Fatalf("released saver still persisted a draft")
	}

	// A later update starts a fresh saver.
	edited := sampleMarkers()
	p.Update(context.Background(), "m1", edited)
	got := waitForDraft(t, s, "m1", time.Second)
	if !reflect.DeepEqual(got, edited) {
		t.Fatalf("post-release draft mismatch: %+v", got)
	}
	p.Stop()
}

func TestAutoSavePool_StopDropsAllPending(t *testing.T) {
	s := newTestStore(t)
	p := NewAutoSavePool(s, 30*time.Millisecond)

	p.Update(context.Background(), "m1", sampleMarkers())
	p.Update(context.Background(), "m2", sampleMarkers())
	p.Stop()

	time.Sleep(100 * time.Millisecond)
	if _, ok := s.LoadMarkers(context.Background(), "m1"); ok {
		t.Fatalf("stopped pool persisted m1")
	}
	if _, ok := s.LoadMarkers(context.Background(), "m2"); ok {
		t.Fatalf("stopped pool persisted m2")
	}
}
