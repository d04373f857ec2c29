// Package catalog implements the catalogue data service: fetching the
// catalogue index and per-model documents from the static JSON origin,
// validating their shape, and serving repeat reads from a TTL cache.
// This file centralizes the sentinel errors returned by the service so the
// HTTP layer can map them to stable response codes.
package catalog

import "errors"

var (
	// ErrModelNotFound indicates the origin has no document for the
	// requested model id (HTTP 404 from the static origin).
	ErrModelNotFound = errors.New("model not found")

	// ErrCatalogueLoad indicates the catalogue index could not be fetched,
	// parsed, or did not have the expected shape.
	ErrCatalogueLoad = errors.New("failed to load catalogue")

	// ErrModelLoad indicates a model document could not be fetched, parsed,
	// or did not have the expected shape (other than a 404).
	ErrModelLoad = errors.New("failed to load model")
)
