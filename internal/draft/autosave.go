// Package draft – debounced auto-save.
//
// AutoSaver watches an in-memory marker list for one model being edited.
// Each Update that differs from the last persisted snapshot (deep equality)
// re-arms a single debounce timer; when the editor goes quiet for the full
// interval, the pending markers are saved as a draft. Updates equal to the
// snapshot are ignored and do not arm the timer.
package draft

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PhuocTran96/posm-catalogue/internal/domain"
)

// DefaultAutoSaveInterval is the debounce quiet period before a save fires.
const DefaultAutoSaveInterval = 30 * time.Second

// AutoSaver debounces draft saves for a single model's editing session.
// Safe for concurrent use.
type AutoSaver struct {
	store    *Store
	modelID  string
	interval time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	pending   []domain.POSMMarker
	lastSaved []domain.POSMMarker
	stopped   bool
}

// NewAutoSaver starts tracking modelID. baseline is the marker state the
// editing session began from (canonical markers, or a resumed draft);
// updates equal to it will not trigger a save. A non-positive interval
// falls back to DefaultAutoSaveInterval.
func NewAutoSaver(store *Store, modelID string, baseline []domain.POSMMarker, interval time.Duration) *AutoSaver {
	if interval <= 0 {
		interval = DefaultAutoSaveInterval
	}
	return &AutoSaver{
		store:     store,
		modelID:   modelID,
		interval:  interval,
		lastSaved: cloneMarkers(baseline),
	}
}

// Update submits the current in-memory markers. When they differ from the
// last saved snapshot the debounce timer is (re)armed; when they match, any
// armed timer keeps running against the previously pending change.
func (a *AutoSaver) Update(markers []domain.POSMMarker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if reflect.DeepEqual(markers, a.lastSaved) {
		return
	}

	a.pending = cloneMarkers(markers)
	if a.timer == nil {
		a.timer = time.AfterFunc(a.interval, a.fire)
	} else {
		a.timer.Reset(a.interval)
	}
}

// Flush persists any pending change immediately and disarms the timer.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	if pending == nil {
		return nil
	}
	return a.save(ctx, pending)
}

// Stop disarms the timer and drops any pending change without saving.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = nil
}

// fire runs on the debounce timer goroutine.
func (a *AutoSaver) fire() {
	a.mu.Lock()
	if a.stopped || a.pending == nil {
		a.timer = nil
		a.mu.Unlock()
		return
	}
	pending := a.pending
	a.pending = nil
	a.timer = nil
	a.mu.Unlock()

	if err := a.save(context.Background(), pending); err != nil {
		log.Warn().Str("model_id", a.modelID).Err(err).Msg("draft auto-save failed")
	}
}

// save persists markers and advances the snapshot.
func (a *AutoSaver) save(ctx context.Context, markers []domain.POSMMarker) error {
	if err := a.store.SaveMarkers(ctx, a.modelID, markers); err != nil {
		return err
	}
	a.mu.Lock()
	a.lastSaved = markers
	a.mu.Unlock()
	return nil
}

// cloneMarkers copies a marker slice so later caller mutations cannot race
// the saver.
func cloneMarkers(in []domain.POSMMarker) []domain.POSMMarker {
	if in == nil {
		return nil
	}
	out := make([]domain.POSMMarker, len(in))
	copy(out, in)
	return out
}
