// Package catalog – search and filter helpers.
//
// These are pure functions over an already-loaded catalogue index: no
// network, no cache, no mutation of the input. Both helpers are stable
// filters — the output preserves catalogue order and is never re-sorted.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/PhuocTran96/posm-catalogue/internal/domain"
)

// folder performs Unicode case folding for case-insensitive matching.
var folder = cases.Fold()

// SearchModels returns the models whose name or code contains query,
// case-insensitively. An empty or whitespace-only query returns all models
// unfiltered, in catalogue order.
func SearchModels(query string, idx *domain.CatalogueIndex) []domain.ModelSummary {
	if idx == nil {
		return nil
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return idx.Models
	}
	q = folder.String(q)

	out := make([]domain.ModelSummary, 0, len(idx.Models))
	for _, m := range idx.Models {
		if strings.Contains(folder.String(m.Name), q) ||
			(m.Code != "" && strings.Contains(folder.String(m.Code), q)) {
			out = append(out, m)
		}
	}
	return out
}

// FilterModelsByCategory returns the models assigned to ANY of the requested
// categories (OR-semantics). An empty filter set returns all models
// unfiltered, in catalogue order.
func FilterModelsByCategory(categoryIDs []string, idx *domain.CatalogueIndex) []domain.ModelSummary {
	if idx == nil {
		return nil
	}
	if len(categoryIDs) == 0 {
		return idx.Models
	}

	want := make(map[string]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		want[id] = struct{}{}
	}

	out := make([]domain.ModelSummary, 0, len(idx.Models))
	for _, m := range idx.Models {
		for _, id := range m.CategoryIDs {
			if _, ok := want[id]; ok {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
