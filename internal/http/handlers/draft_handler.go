// Draft HTTP handlers.
//
// This file exposes the admin-guarded draft endpoints:
//   - GET    /drafts                       (ids of models with pending drafts)
//   - GET    /models/{id}/draft            (stored marker draft + save timestamp)
//   - PUT    /models/{id}/draft            (save or overwrite a marker draft)
//   - DELETE /models/{id}/draft            (discard a draft)
//   - POST   /models/{id}/draft/autosave   (buffer a debounced draft update)
//
// All routes in this group sit behind RequireAdmin.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PhuocTran96/posm-catalogue/internal/domain"
)

// AutoSaveService defines the debounced draft persistence used by the
// autosave endpoint. Updates are buffered per model and written after the
// editor goes quiet; an explicit save or delete releases the buffer.
type AutoSaveService interface {
	// Update buffers modelID's current markers for a debounced save.
	Update(ctx context.Context, modelID string, markers []domain.POSMMarker)
	// Flush persists any pending change for modelID immediately.
	Flush(ctx context.Context, modelID string) error
	// Release drops modelID's buffer, discarding any pending change.
	Release(modelID string)
}

// DraftService defines the draft persistence operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use.
type DraftService interface {
	// SaveMarkers stores modelID's marker draft, overwriting any previous one.
	SaveMarkers(ctx context.Context, modelID string, markers []domain.POSMMarker) error
	// LoadMarkers returns the stored marker draft, if any.
	LoadMarkers(ctx context.Context, modelID string) ([]domain.POSMMarker, bool)
	// ClearMarkers removes modelID's draft and its timestamp. Idempotent.
	ClearMarkers(ctx context.Context, modelID string) error
	// Timestamp returns the RFC 3339 time of the last save, if recorded.
	Timestamp(ctx context.Context, modelID string) (string, bool)
	// DraftIDs lists ids of models that have a full-model draft stored.
	DraftIDs(ctx context.Context) ([]string, error)
	// MarkerDraftIDs lists ids of models that have a marker draft stored.
	MarkerDraftIDs(ctx context.Context) ([]string, error)
}

//
// DTOs
//

// DraftResponse carries a stored marker draft and its save timestamp.
type DraftResponse struct {
	ModelID string              `json:"model_id"`
	Markers []domain.POSMMarker `json:"markers"`
	SavedAt string              `json:"saved_at,omitempty"`
}

// SaveDraftRequest is the JSON payload for saving a marker draft.
type SaveDraftRequest struct {
	Markers []domain.POSMMarker `json:"markers"`
}

// DraftListResponse lists models with pending drafts.
type DraftListResponse struct {
	ModelDrafts  []string `json:"model_drafts"`
	MarkerDrafts []string `json:"marker_drafts"`
}

// AutoSaveResponse acknowledges a buffered autosave update.
type AutoSaveResponse struct {
	ModelID string `json:"model_id"`
	Queued  bool   `json:"queued"`
}

//
// Handlers
//

// ListDrafts godoc
// @ID          listDrafts
// @Summary     List pending drafts
// @Description Returns the ids of models that currently have a stored full-model or marker draft.
// @Tags        Drafts
// @Produce     json
// @Security    SessionToken
//
// @Success     200  {object}  handlers.DraftListResponse
// @Failure     401  {object}  handlers.ErrorResponse "No admin session"
// @Failure     500  {object}  handlers.ErrorResponse "Storage failure"
// @Router      /drafts [get]
func (h *Handlers) ListDrafts(c *gin.Context) {
	ctx := c.Request.Context()

	modelIDs, err := h.draftSvc.DraftIDs(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStorage, "failed to list drafts")
		return
	}
	markerIDs, err := h.draftSvc.MarkerDraftIDs(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStorage, "failed to list drafts")
		return
	}
	if modelIDs == nil {
		modelIDs = []string{}
	}
	if markerIDs == nil {
		markerIDs = []string{}
	}
	ok(c, http.StatusOK, DraftListResponse{ModelDrafts: modelIDs, MarkerDrafts: markerIDs})
}

// GetDraft godoc
// @ID          getDraft
// @Summary     Fetch a marker draft
// @Tags        Drafts
// @Produce     json
// @Security    SessionToken
//
// @Param       id  path  string  true "Model id"
//
// @Success     200  {object}  handlers.DraftResponse
// @Failure     401  {object}  handlers.ErrorResponse "No admin session"
// @Failure     404  {object}  handlers.ErrorResponse "No draft stored"
// @Router      /models/{id}/draft [get]
func (h *Handlers) GetDraft(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	markers, present := h.draftSvc.LoadMarkers(ctx, id)
	if !present {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no draft for this model")
		return
	}
	savedAt, _ := h.draftSvc.Timestamp(ctx, id)
	ok(c, http.StatusOK, DraftResponse{ModelID: id, Markers: markers, SavedAt: savedAt})
}

// SaveDraft godoc
// @ID          saveDraft
// @Summary     Save a marker draft
// @Description Stores the posted markers as modelID's draft, overwriting any previous draft, and records the save time.
// @Tags        Drafts
// @Accept      json
// @Produce     json
// @Security    SessionToken
//
// @Param       id    path  string                       true "Model id"
// @Param       body  body  handlers.SaveDraftRequest    true "Draft markers"
//
// @Success     200  {object}  handlers.DraftResponse
// @Failure     400  {object}  handlers.ErrorResponse "Malformed JSON or out-of-range marker"
// @Failure     401  {object}  handlers.ErrorResponse "No admin session"
// @Failure     500  {object}  handlers.ErrorResponse "Storage failure"
// @Router      /models/{id}/draft [put]
func (h *Handlers) SaveDraft(c *gin.Context) {
	id := c.Param("id")

	var req SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	for i, m := range req.Markers {
		if !domain.MarkerPositionInRange(m.Position.X) || !domain.MarkerPositionInRange(m.Position.Y) {
			fail(c, http.StatusBadRequest, ErrCodeValidation,
				"marker "+m.ID+" at index "+strconv.Itoa(i)+" has an out-of-range position")
			return
		}
	}

	// An explicit save supersedes any debounced update still in flight.
	if h.autoSave != nil {
		h.autoSave.Release(id)
	}
	if err := h.draftSvc.SaveMarkers(c.Request.Context(), id, req.Markers); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStorage, "failed to save draft")
		return
	}
	savedAt, _ := h.draftSvc.Timestamp(c.Request.Context(), id)
	ok(c, http.StatusOK, DraftResponse{ModelID: id, Markers: req.Markers, SavedAt: savedAt})
}

// AutoSaveDraft godoc
// @ID          autoSaveDraft
// @Summary     Buffer an autosave update
// @Description Buffers the posted markers as modelID's pending draft. The draft is persisted once the editor goes quiet for the configured autosave interval; an explicit save or delete discards the buffer.
// @Tags        Drafts
// @Accept      json
// @Produce     json
// @Security    SessionToken
//
// @Param       id    path  string                     true "Model id"
// @Param       body  body  handlers.SaveDraftRequest  true "Draft markers"
//
// @Success     202  {object}  handlers.AutoSaveResponse
// @Failure     400  {object}  handlers.ErrorResponse "Malformed JSON or out-of-range marker"
// @Failure     401  {object}  handlers.ErrorResponse "No admin session"
// @Router      /models/{id}/draft/autosave [post]
func (h *Handlers) AutoSaveDraft(c *gin.Context) {
	id := c.Param("id")

	var req SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	for i, m := range req.Markers {
		if !domain.MarkerPositionInRange(m.Position.X) || !domain.MarkerPositionInRange(m.Position.Y) {
			fail(c, http.StatusBadRequest, ErrCodeValidation,
				"marker "+m.ID+" at index "+strconv.Itoa(i)+" has an out-of-range position")
			return
		}
	}

	h.autoSave.Update(c.Request.Context(), id, req.Markers)
	ok(c, http.StatusAccepted, AutoSaveResponse{ModelID: id, Queued: true})
}

// DeleteDraft godoc
// @ID          deleteDraft
// @Summary     Discard a marker draft
// @Description Removes the stored draft and its timestamp. Deleting a missing draft succeeds.
// @Tags        Drafts
// @Produce     json
// @Security    SessionToken
//
// @Param       id  path  string  true "Model id"
//
// @Success     204  "Draft discarded"
// @Failure     401  {object}  handlers.ErrorResponse "No admin session"
// @Failure     500  {object}  handlers.ErrorResponse "Storage failure"
// @Router      /models/{id}/draft [delete]
func (h *Handlers) DeleteDraft(c *gin.Context) {
	id := c.Param("id")
	if h.autoSave != nil {
		h.autoSave.Release(id)
	}
	if err := h.draftSvc.ClearMarkers(c.Request.Context(), id); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStorage, "failed to discard draft")
		return
	}
	noContent(c)
}
