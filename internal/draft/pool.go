package draft

import (
	"context"
	"sync"
	"time"

	"github.com/PhuocTran96/posm-catalogue/internal/domain"
)

// AutoSavePool manages one AutoSaver per model being edited. Savers are
// created lazily on the first update for a model and share the pool's
// debounce interval. Safe for concurrent use.
type AutoSavePool struct {
	store    *Store
	interval time.Duration

	mu     sync.Mutex
	savers map[string]*AutoSaver
}

// NewAutoSavePool constructs a pool over store. A non-positive interval
// falls back to DefaultAutoSaveInterval.
func NewAutoSavePool(store *Store, interval time.Duration) *AutoSavePool {
	if interval <= 0 {
		interval = DefaultAutoSaveInterval
	}
	return &AutoSavePool{
		store:    store,
		interval: interval,
		savers:   make(map[string]*AutoSaver),
	}
}

// Update feeds the current in-memory markers for modelID into its saver,
// creating one seeded from the stored draft on first use.
func (p *AutoSavePool) Update(ctx context.Context, modelID string, markers []domain.POSMMarker) {
	p.saver(ctx, modelID).Update(markers)
}

// Flush persists any pending change for modelID immediately. A model with
// no active saver is a no-op.
func (p *AutoSavePool) Flush(ctx context.Context, modelID string) error {
	p.mu.Lock()
	a, ok := p.savers[modelID]
	p.mu.Unlock()
	if !ok {
		return nil
	}
	return a.Flush(ctx)
}

// Release drops modelID's saver, discarding any pending change. Used when a
// draft is deleted or the editing session ends without saving.
func (p *AutoSavePool) Release(modelID string) {
	p.mu.Lock()
	a, ok := p.savers[modelID]
	delete(p.savers, modelID)
	p.mu.Unlock()
	if ok {
		a.Stop()
	}
}

// Stop stops every saver, dropping pending changes.
func (p *AutoSavePool) Stop() {
	p.mu.Lock()
	savers := p.savers
	p.savers = make(map[string]*AutoSaver)
	p.mu.Unlock()
	for _, a := range savers {
		a.Stop()
	}
}

func (p *AutoSavePool) saver(ctx context.Context, modelID string) *AutoSaver {
	p.mu.Lock()
	defer p.mu.Unlock()
	if a, ok := p.savers[modelID]; ok {
		return a
	}
	baseline, _ := p.store.LoadMarkers(ctx, modelID)
	a := NewAutoSaver(p.store, modelID, baseline, p.interval)
	p.savers[modelID] = a
	return a
}
