// Package catalog – Service
//
// This file implements the data service proper. Reads go through the cache
// first; on a miss the service fetches the JSON document from the origin,
// validates its shape, fills the cache, and returns the decoded value.
// Concurrent misses for the same key are collapsed into a single origin
// fetch via singleflight, so a burst of requests for an uncached model costs
// one network round trip. Cache fills are last-write-wins.
//
// Failures are never retried here; the caller retries by re-invoking the
// operation.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/PhuocTran96/posm-catalogue/internal/cache"
	"github.com/PhuocTran96/posm-catalogue/internal/domain"
)

const (
	// indexCacheKey is the fixed cache key for the catalogue index.
	indexCacheKey = "catalogue-index"
	// modelCachePrefix prefixes per-model cache keys.
	modelCachePrefix = "model-"

	// indexPath and modelPathFmt are the origin paths for the static JSON
	// documents, relative to the configured base URL.
	indexPath    = "/data/models.json"
	modelPathFmt = "/data/models/%s.json"
)

var (
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogue_cache_hits_total",
			Help: "Catalogue reads served from the TTL cache.",
		},
		[]string{"kind"}, // "index" or "model"
	)
	originFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogue_origin_fetches_total",
			Help: "Fetches issued to the static JSON origin.",
		},
		[]string{"kind"},
	)
	originFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogue_origin_failures_total",
			Help: "Origin fetches that failed or produced malformed documents.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(cacheHits, originFetches, originFailures)
}

// Service fetches, validates, and caches catalogue documents.
// All exported methods are safe for concurrent use.
type Service struct {
	// BaseURL is the origin serving the static JSON documents,
	// e.g. "https://cdn.example.com" (no trailing slash required).
	BaseURL string
	// Client is the HTTP client used for origin fetches.
	Client *http.Client
	// Cache is the read-through TTL store.
	Cache *cache.Store

	// IndexTTL and ModelTTL bound cache lifetimes for the index and for
	// model documents respectively.
	IndexTTL time.Duration
	ModelTTL time.Duration

	// flight collapses concurrent identical origin fetches.
	flight singleflight.Group
}

// NewService constructs a Service with the catalogue's default TTLs
// (5 minutes for the index, 10 minutes for model documents).
func NewService(baseURL string, client *http.Client, store *cache.Store) *Service {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Service{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Client:   client,
		Cache:    store,
		IndexTTL: 5 * time.Minute,
		ModelTTL: 10 * time.Minute,
	}
}

// LoadCatalogueIndex returns the catalogue index, serving from cache when a
// live entry exists. Any fetch, parse, or shape failure is reported as
// ErrCatalogueLoad with the underlying cause wrapped.
func (s *Service) LoadCatalogueIndex(ctx context.Context) (*domain.CatalogueIndex, error) {
	if v, ok := s.Cache.Get(indexCacheKey); ok {
		cacheHits.WithLabelValues("index").Inc()
		return v.(*domain.CatalogueIndex), nil
	}

	v, err, _ := s.flight.Do(indexCacheKey, func() (any, error) {
		idx, err := s.fetchIndex(ctx)
		if err != nil {
			return nil, err
		}
		s.Cache.Set(indexCacheKey, idx, s.IndexTTL)
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.CatalogueIndex), nil
}

// LoadModel returns the full document for modelID, serving from cache when a
// live entry exists. A 404 from the origin is reported as ErrModelNotFound;
// every other failure as ErrModelLoad.
func (s *Service) LoadModel(ctx context.Context, modelID string) (*domain.ProductModel, error) {
	key := modelCachePrefix + modelID
	if v, ok := s.Cache.Get(key); ok {
		cacheHits.WithLabelValues("model").Inc()
		return v.(*domain.ProductModel), nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		m, err := s.fetchModel(ctx, modelID)
		if err != nil {
			return nil, err
		}
		s.Cache.Set(key, m, s.ModelTTL)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ProductModel), nil
}

// LoadModels fetches all ids concurrently. The result slice aligns
// positionally with modelIDs. The call fails fast: the first error cancels
// the remaining fetches and no partial result is returned.
func (s *Service) LoadModels(ctx context.Context, modelIDs []string) ([]*domain.ProductModel, error) {
	out := make([]*domain.ProductModel, len(modelIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range modelIDs {
		g.Go(func() error {
			m, err := s.LoadModel(gctx, id)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// InvalidateModel drops any cached copy of modelID, forcing the next read
// to hit the origin. Used after an admin commits edits.
func (s *Service) InvalidateModel(modelID string) {
	s.Cache.Remove(modelCachePrefix + modelID)
}

// fetchIndex performs the origin fetch and shape check for the index.
func (s *Service) fetchIndex(ctx context.Context) (*domain.CatalogueIndex, error) {
	originFetches.WithLabelValues("index").Inc()

	body, _, err := s.getJSON(ctx, s.BaseURL+indexPath)
	if err != nil {
		originFailures.WithLabelValues("index").Inc()
		return nil, fmt.Errorf("%w: %w", ErrCatalogueLoad, err)
	}

	// Shape check before the full decode: version and models must be present,
	// and models must be an array.
	var shape struct {
		Version *string          `json:"version"`
		Models  *json.RawMessage `json:"models"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		originFailures.WithLabelValues("index").Inc()
		return nil, fmt.Errorf("%w: malformed JSON: %w", ErrCatalogueLoad, err)
	}
	if shape.Version == nil || shape.Models == nil || !isJSONArray(*shape.Models) {
		originFailures.WithLabelValues("index").Inc()
		return nil, fmt.Errorf("%w: missing version or models", ErrCatalogueLoad)
	}

	var idx domain.CatalogueIndex
	if err := json.Unmarshal(body, &idx); err != nil {
		originFailures.WithLabelValues("index").Inc()
		return nil, fmt.Errorf("%w: malformed JSON: %w", ErrCatalogueLoad, err)
	}
	return &idx, nil
}

// fetchModel performs the origin fetch and shape check for one model.
func (s *Service) fetchModel(ctx context.Context, modelID string) (*domain.ProductModel, error) {
	originFetches.WithLabelValues("model").Inc()

	body, status, err := s.getJSON(ctx, s.BaseURL+fmt.Sprintf(modelPathFmt, modelID))
	if err != nil {
		originFailures.WithLabelValues("model").Inc()
		if status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
		}
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}

	var m domain.ProductModel
	if err := json.Unmarshal(body, &m); err != nil {
		originFailures.WithLabelValues("model").Inc()
		return nil, fmt.Errorf("%w: malformed JSON: %w", ErrModelLoad, err)
	}
	if m.ID == "" || m.Name == "" || m.Image.URL == "" {
		originFailures.WithLabelValues("model").Inc()
		return nil, fmt.Errorf("%w: missing id, name, or image", ErrModelLoad)
	}
	return &m, nil
}

// getJSON issues a GET and returns the body for 2xx responses. For non-2xx
// responses it returns the status alongside an error so callers can special-
// case 404.
func (s *Service) getJSON(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// isJSONArray reports whether raw starts a JSON array value.
func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

// IsNotFound reports whether err denotes a missing model document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrModelNotFound)
}
