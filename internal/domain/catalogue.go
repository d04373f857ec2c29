// Package domain defines the catalogue data model: the catalogue index and
// its per-model documents, POSM placement markers, and the admin session
// record. These types mirror the static JSON documents served under /data
// and are shared across the catalog, draft, and HTTP layers.
package domain

import "time"

// CatalogueIndex is the top-level catalogue snapshot fetched from
// /data/models.json. It is immutable once fetched; a stale index is
// replaced wholesale by a refetch, never patched in place.
type CatalogueIndex struct {
	// Version identifies the catalogue snapshot (e.g. "1.4.0").
	Version string `json:"version"`
	// LastUpdated is the publisher-side timestamp of the snapshot.
	LastUpdated string `json:"lastUpdated,omitempty"`
	// TotalModels is the publisher-declared model count.
	TotalModels int `json:"totalModels,omitempty"`
	// Categories lists all known categories referenced by models.
	Categories []Category `json:"categories,omitempty"`
	// Models are lightweight per-model projections for listing.
	Models []ModelSummary `json:"models"`
}

// Category groups models for browsing. Models reference categories by ID;
// no referential integrity is enforced on either side.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ModelSummary is the listing projection of a product model. The full
// document is fetched lazily from DataURL.
type ModelSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Code         string   `json:"code,omitempty"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	CategoryIDs  []string `json:"categoryIds,omitempty"`
	POSMCount    int      `json:"posmCount,omitempty"`
	DataURL      string   `json:"dataUrl,omitempty"`
}

// ModelImage describes the display image a model's markers are placed on.
type ModelImage struct {
	URL    string  `json:"url"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MarkerPosition locates a marker on the model image in percent of the
// image dimensions. Valid coordinates lie in [0,100].
type MarkerPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// POSMInformation carries the descriptive metadata shown in a marker popup.
type POSMInformation struct {
	Name        string `json:"name,omitempty"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// MarkerDisplayOptions tunes how a marker is rendered. All fields are
// optional; zero values mean "renderer default".
type MarkerDisplayOptions struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
	Label string `json:"label,omitempty"`
}

// POSMMarker is a placement annotation on a model image. IDs are unique
// within a single model only.
type POSMMarker struct {
	ID             string                `json:"id"`
	Position       MarkerPosition        `json:"position"`
	Info           POSMInformation       `json:"info"`
	DisplayOptions *MarkerDisplayOptions `json:"displayOptions,omitempty"`
}

// ModelMetadata holds free-form document metadata carried along with a model.
type ModelMetadata struct {
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	Author    string `json:"author,omitempty"`
}

// ProductModel is the full per-model document fetched from
// /data/models/{id}.json.
type ProductModel struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Code        string        `json:"code,omitempty"`
	Description string        `json:"description,omitempty"`
	CategoryIDs []string      `json:"categoryIds,omitempty"`
	Image       ModelImage    `json:"image"`
	POSMMarkers []POSMMarker  `json:"posmMarkers,omitempty"`
	Metadata    ModelMetadata `json:"metadata"`
}

// UserSession is the single persisted admin session. It is overwritten
// wholesale on each login and carries an absolute (non-sliding) expiry.
type UserSession struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	SessionToken    string    `json:"sessionToken"`
	ExpiresAt       time.Time `json:"expiresAt"`
	Mode            string    `json:"mode,omitempty"`
}

// Valid reports whether the session is authenticated and unexpired at now.
// Any other state is equivalent to "no session".
func (s UserSession) Valid(now time.Time) bool {
	return s.IsAuthenticated && !now.After(s.ExpiresAt)
}
