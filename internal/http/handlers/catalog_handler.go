// Catalogue HTTP handlers.
//
// This file exposes the read-only browsing endpoints:
//   - GET  /catalogue             (index with search/filter/pagination)
//   - GET  /catalogue/categories  (category list)
//   - GET  /models/{id}           (full model document)
//   - GET  /models?ids=a,b,c      (batch load)
//   - POST /models/{id}/validate  (structural validation report)
//
// Handlers are transport-thin: they parse input, call the data service,
// and translate results (including the distinct not-found case) into HTTP
// responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PhuocTran96/posm-catalogue/internal/catalog"
	"github.com/PhuocTran96/posm-catalogue/internal/domain"
	"github.com/PhuocTran96/posm-catalogue/internal/utils"
)

//
// Service contracts (context-aware)
//

// CatalogService defines the data-service operations consumed by the
// browsing endpoints. Implementations must be safe for concurrent use and
// honor the provided context.
type CatalogService interface {
	// LoadCatalogueIndex returns the catalogue index, from cache or origin.
	LoadCatalogueIndex(ctx context.Context) (*domain.CatalogueIndex, error)
	// LoadModel returns one full model document.
	LoadModel(ctx context.Context, modelID string) (*domain.ProductModel, error)
	// LoadModels returns documents positionally aligned with modelIDs.
	LoadModels(ctx context.Context, modelIDs []string) ([]*domain.ProductModel, error)
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// CatalogueResponse wraps a filtered page of model summaries.
type CatalogueResponse struct {
	Version     string                `json:"version"`
	LastUpdated string                `json:"last_updated,omitempty"`
	Models      []domain.ModelSummary `json:"models"`
	Pagination  Pagination            `json:"pagination"`
}

// CategoriesResponse lists the catalogue's categories.
type CategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
}

// BatchModelsResponse wraps a batch load, aligned with the requested ids.
type BatchModelsResponse struct {
	Models []*domain.ProductModel `json:"models"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 50
		maxPageSize     = 200
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// splitCSVParam splits a comma-separated query param into trimmed,
// non-empty values.
func splitCSVParam(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

//
// Handlers
//

// GetCatalogue godoc
// @ID          getCatalogue
// @Summary     Browse the catalogue
// @Description Returns a page of model summaries, optionally narrowed by a search query and/or category filter.
// @Tags        Catalogue
// @Produce     json
//
// @Param       q          query  string  false "Case-insensitive substring match on name or code"
// @Param       categories query  string  false "Comma-separated category ids (OR-semantics)"
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(200) default(50)
//
// @Success     200  {object}  handlers.CatalogueResponse
// @Failure     502  {object}  handlers.ErrorResponse "Catalogue origin failure"
// @Router      /catalogue [get]
func (h *Handlers) GetCatalogue(c *gin.Context) {
	idx, err := h.catalogSvc.LoadCatalogueIndex(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, ErrCodeCatalogueLoad, "failed to load catalogue")
		return
	}

	models := catalog.FilterModelsByCategory(splitCSVParam(c.Query("categories")), idx)
	filtered := *idx
	filtered.Models = models
	models = catalog.SearchModels(c.Query("q"), &filtered)

	page, pageSize := clampPagination(c)
	total := len(models)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	ok(c, http.StatusOK, CatalogueResponse{
		Version:     idx.Version,
		LastUpdated: idx.LastUpdated,
		Models:      models[start:end],
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetCategories godoc
// @ID          getCategories
// @Summary     List catalogue categories
// @Tags        Catalogue
// @Produce     json
//
// @Success     200  {object}  handlers.CategoriesResponse
// @Failure     502  {object}  handlers.ErrorResponse "Catalogue origin failure"
// @Router      /catalogue/categories [get]
func (h *Handlers) GetCategories(c *gin.Context) {
	idx, err := h.catalogSvc.LoadCatalogueIndex(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, ErrCodeCatalogueLoad, "failed to load catalogue")
		return
	}
	ok(c, http.StatusOK, CategoriesResponse{Categories: idx.Categories})
}

// GetModel godoc
// @ID          getModel
// @Summary     Fetch one model document
// @Tags        Models
// @Produce     json
//
// @Param       id  path  string  true "Model id"  example(model-001)
//
// @Success     200  {object}  domain.ProductModel
// @Failure     404  {object}  handlers.ErrorResponse "Unknown model id"
// @Failure     502  {object}  handlers.ErrorResponse "Origin failure"
// @Router      /models/{id} [get]
func (h *Handlers) GetModel(c *gin.Context) {
	id := c.Param("id")
	m, err := h.catalogSvc.LoadModel(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrModelNotFound) {
			fail(c, http.StatusNotFound, ErrCodeModelNotFound, "model not found")
			return
		}
		fail(c, http.StatusBadGateway, ErrCodeModelLoad, "failed to load model")
		return
	}
	ok(c, http.StatusOK, m)
}

// GetModels godoc
// @ID          getModels
// @Summary     Batch-fetch model documents
// @Description Loads every requested id concurrently; the response aligns positionally with ids. Fails as a whole if any id fails.
// @Tags        Models
// @Produce     json
//
// @Param       ids  query  string  true "Comma-separated model ids"  example(model-001,model-002)
//
// @Success     200  {object}  handlers.BatchModelsResponse
// @Failure     400  {object}  handlers.ErrorResponse "No ids supplied"
// @Failure     404  {object}  handlers.ErrorResponse "An id is unknown"
// @Failure     502  {object}  handlers.ErrorResponse "Origin failure"
// @Router      /models [get]
func (h *Handlers) GetModels(c *gin.Context) {
	ids := splitCSVParam(c.Query("ids"))
	if len(ids) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ids query parameter is required")
		return
	}

	models, err := h.catalogSvc.LoadModels(c.Request.Context(), ids)
	if err != nil {
		if errors.Is(err, catalog.ErrModelNotFound) {
			fail(c, http.StatusNotFound, ErrCodeModelNotFound, "model not found")
			return
		}
		fail(c, http.StatusBadGateway, ErrCodeModelLoad, "failed to load models")
		return
	}
	ok(c, http.StatusOK, BatchModelsResponse{Models: models})
}

// ValidateModel godoc
// @ID          validateModel
// @Summary     Validate a model document
// @Description Runs the structural validator over the posted document and returns the complete list of violations.
// @Tags        Models
// @Accept      json
// @Produce     json
//
// @Param       body  body  domain.ProductModel  true "Candidate model document"
//
// @Success     200  {object}  domain.ValidationResult
// @Failure     400  {object}  handlers.ErrorResponse "Malformed JSON"
// @Router      /models/{id}/validate [post]
func (h *Handlers) ValidateModel(c *gin.Context) {
	var m domain.ProductModel
	if err := c.ShouldBindJSON(&m); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if m.ID == "" {
		m.ID = c.Param("id")
	}
	ok(c, http.StatusOK, domain.ValidateModel(m))
}
