// Package draft persists an admin's in-progress, unsaved edits per model,
// independent of the canonical documents and of the read cache's TTLs.
// Two draft families share the durable namespace:
//
//   - marker drafts: the edited marker array for a model, under
//     posm-marker-draft-{modelID}
//   - model drafts: a whole edited model document, under
//     posm-draft-{modelID}
//
// Both families share a timestamp companion under
// posm-draft-{modelID}-timestamp. The data key is authoritative; the
// timestamp is best-effort metadata (a crash between the two writes leaves
// them inconsistent, which is tolerated). Drafts have no TTL: they persist
// until explicitly cleared or overwritten.
package draft

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PhuocTran96/posm-catalogue/internal/domain"
	"github.com/PhuocTran96/posm-catalogue/internal/store"
)

const (
	markerKeyPrefix = "posm-marker-draft-"
	modelKeyPrefix  = "posm-draft-"
	timestampSuffix = "-timestamp"
)

// Store reads and writes drafts in the durable namespace.
type Store struct {
	KV *store.KV

	// now is the clock; overridable in tests.
	now func() time.Time
}

// NewStore wraps kv in a draft store.
func NewStore(kv *store.KV) *Store {
	return &Store{KV: kv, now: time.Now}
}

// SaveMarkers overwrites the marker draft for modelID with markers and
// stamps the save time. The timestamp write is best-effort: its failure is
// logged but does not fail the save.
func (s *Store) SaveMarkers(ctx context.Context, modelID string, markers []domain.POSMMarker) error {
	raw, err := json.Marshal(markers)
	if err != nil {
		return err
	}
	if err := s.KV.Put(ctx, markerKeyPrefix+modelID, string(raw)); err != nil {
		return err
	}
	s.stamp(ctx, modelID)
	return nil
}

// LoadMarkers returns the marker draft for modelID. Corrupt or unparsable
// stored data reads as absent, never as an error.
func (s *Store) LoadMarkers(ctx context.Context, modelID string) ([]domain.POSMMarker, bool) {
	raw, ok, err := s.KV.Get(ctx, markerKeyPrefix+modelID)
	if err != nil || !ok {
		return nil, false
	}
	var markers []domain.POSMMarker
	if err := json.Unmarshal([]byte(raw), &markers); err != nil {
		log.Warn().Str("model_id", modelID).Err(err).Msg("discarding corrupt marker draft")
		return nil, false
	}
	return markers, true
}

// HasMarkers reports whether a marker draft exists for modelID without
// decoding its payload.
func (s *Store) HasMarkers(ctx context.Context, modelID string) bool {
	_, ok, err := s.KV.Get(ctx, markerKeyPrefix+modelID)
	return err == nil && ok
}

// ClearMarkers removes the marker draft and its timestamp companion.
func (s *Store) ClearMarkers(ctx context.Context, modelID string) error {
	if err := s.KV.Delete(ctx, markerKeyPrefix+modelID); err != nil {
		return err
	}
	return s.KV.Delete(ctx, modelKeyPrefix+modelID+timestampSuffix)
}

// SaveModel overwrites the model-level draft for model.ID and stamps the
// save time.
func (s *Store) SaveModel(ctx context.Context, model domain.ProductModel) error {
	raw, err := json.Marshal(model)
	if err != nil {
		return err
	}
	if err := s.KV.Put(ctx, modelKeyPrefix+model.ID, string(raw)); err != nil {
		return err
	}
	s.stamp(ctx, model.ID)
	return nil
}

// LoadModel returns the model-level draft for modelID; corrupt data reads
// as absent.
func (s *Store) LoadModel(ctx context.Context, modelID string) (*domain.ProductModel, bool) {
	raw, ok, err := s.KV.Get(ctx, modelKeyPrefix+modelID)
	if err != nil || !ok {
		return nil, false
	}
	var m domain.ProductModel
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		log.Warn().Str("model_id", modelID).Err(err).Msg("discarding corrupt model draft")
		return nil, false
	}
	return &m, true
}

// ClearModel removes the model-level draft and its timestamp companion.
func (s *Store) ClearModel(ctx context.Context, modelID string) error {
	if err := s.KV.Delete(ctx, modelKeyPrefix+modelID); err != nil {
		return err
	}
	return s.KV.Delete(ctx, modelKeyPrefix+modelID+timestampSuffix)
}

// DraftIDs enumerates model ids holding a model-level draft by scanning the
// posm-draft- prefix and excluding the timestamp companions.
func (s *Store) DraftIDs(ctx context.Context) ([]string, error) {
	keys, err := s.KV.Keys(ctx, modelKeyPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasSuffix(k, timestampSuffix) {
			continue
		}
		ids = append(ids, strings.TrimPrefix(k, modelKeyPrefix))
	}
	return ids, nil
}

// MarkerDraftIDs enumerates model ids holding a marker draft.
func (s *Store) MarkerDraftIDs(ctx context.Context) ([]string, error) {
	keys, err := s.KV.Keys(ctx, markerKeyPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, markerKeyPrefix))
	}
	return ids, nil
}

// Timestamp returns the RFC3339 save time recorded for modelID's draft,
// or absent when none was recorded.
func (s *Store) Timestamp(ctx context.Context, modelID string) (string, bool) {
	raw, ok, err := s.KV.Get(ctx, modelKeyPrefix+modelID+timestampSuffix)
	if err != nil || !ok {
		return "", false
	}
	return raw, true
}

// stamp records the save time; best-effort.
func (s *Store) stamp(ctx context.Context, modelID string) {
	ts := s.now().UTC().Format(time.RFC3339)
	if err := s.KV.Put(ctx, modelKeyPrefix+modelID+timestampSuffix, ts); err != nil {
		log.Warn().Str("model_id", modelID).Err(err).Msg("could not record draft timestamp")
	}
}
