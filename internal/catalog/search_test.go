package catalog

import (
	"testing"

	"github.com/PhuocTran96/posm-catalogue/internal/domain"
)

func testIndex() *domain.CatalogueIndex {
	return &domain.CatalogueIndex{
		Version: "1.0",
		Models: []domain.ModelSummary{
			{ID: "m1", Name: "Premium Shelf Display", Code: "PSD-01", CategoryIDs: []string{"a", "b"}},
			{ID: "m2", Name: "Counter Unit", Code: "CU-77", CategoryIDs: []string{"b"}},
			{ID: "m3", Name: "Floor Stand", CategoryIDs: []string{"c"}},
			{ID: "m4", Name: "Hanging Banner", Code: "premier", CategoryIDs: nil},
		},
	}
}

func ids(models []domain.ModelSummary) []string {
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = m.ID
	}
	return out
}

func TestSearchModels_CaseInsensitiveSubstring(t *testing.T) {
	got := SearchModels("prem", testIndex())
	// Matches "Premium Shelf Display" by name and "premier" by code.
	if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m4" {
		t.Fatalf("unexpected result: %v", ids(got))
	}

	upper := SearchModels("PREM", testIndex())
	if len(upper) != 2 {
		t.Fatalf("search must be case-insensitive, got %v", ids(upper))
	}
}

func TestSearchModels_MatchesCode(t *testing.T) {
	got := SearchModels("cu-77", testIndex())
	if len(got) != 1 || got[0].ID != "m2" {
		t.Fatalf("expected code match on m2, got %v", ids(got))
	}
}

func TestSearchModels_BlankQueryReturnsAllInOrder(t *testing.T) {
	idx := testIndex()
	for _, q := range []string{"", "   ", "\t"} {
		got := SearchModels(q, idx)
		if len(got) != len(idx.Models) {
			t.Fatalf("blank query %q must return all models, got %d", q, len(got))
		}
		for i := range got {
			if got[i].ID != idx.Models[i].ID {
				t.Fatalf("blank query must preserve order, got %v", ids(got))
			}
		}
	}
}

func TestSearchModels_NoMatch(t *testing.T) {
	if got := SearchModels("zzz-not-there", testIndex()); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", ids(got))
	}
}

func TestSearchModels_StableOrder(t *testing.T) {
	// "n" appears in several names; result must keep catalogue order.
	got := SearchModels("n", testIndex())
	for i := 1; i < len(got); i++ {
		if got[i-1].ID >= got[i].ID {
			t.Fatalf("expected catalogue order preserved, got %v", ids(got))
		}
	}
}

func TestFilterModelsByCategory_ORSemantics(t *testing.T) {
	idx := testIndex()

	// m1 has ["a","b"]: included for ["b","c"], excluded for ["d","e"].
	got := FilterModelsByCategory([]string{"b", "c"}, idx)
	if len(got) != 3 || got[0].ID != "m1" || got[1].ID != "m2" || got[2].ID != "m3" {
		t.Fatalf("unexpected OR-filter result: %v", ids(got))
	}

	none := FilterModelsByCategory([]string{"d", "e"}, idx)
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %v", ids(none))
	}
}

func TestFilterModelsByCategory_EmptyFilterReturnsAll(t *testing.T) {
	idx := testIndex()
	got := FilterModelsByCategory(nil, idx)
	if len(got) != len(idx.Models) {
		t.Fatalf("empty filter must return all models, got %d", len(got))
	}
}

func TestHelpers_NilIndex(t *testing.T) {
	if got := SearchModels("x", nil); got != nil {
		t.Fatalf("expected nil for nil index, got %v", got)
	}
	if got := FilterModelsByCategory([]string{"a"}, nil); got != nil {
		t.Fatalf("expected nil for nil index, got %v", got)
	}
}
