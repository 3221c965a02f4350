package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func getSuggestions(t *testing.T, target string) suggestionsResponse {
	t.Helper()
	h := NewSuggestionsHandler()
	w := httptest.NewRecorder()
	h.Catalog(w, httptest.NewRequest(http.MethodGet, target, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp suggestionsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestSuggestionsCatalog(t *testing.T) {
	resp := getSuggestions(t, "/api/suggestions")

	if len(resp.Tasks) == 0 || len(resp.Rewards) == 0 {
		t.Fatal("expected a populated catalog")
	}
	if len(resp.Categories) == 0 || len(resp.Packages) == 0 || len(resp.Tips) == 0 {
		t.Error("categories, packages and tips should always be present")
	}
}

func TestSuggestionsAgeAndCategoryFilters(t *testing.T) {
	resp := getSuggestions(t, "/api/suggestions?age=4&category=school")

	for _, s := range resp.Tasks {
		if s.Category != "school" {
			t.Errorf("%q has category %q, want school", s.Title, s.Category)
		}
		if 4 < s.MinAge || 4 > s.MaxAge {
			t.Errorf("%q has range %d-%d, outside age 4", s.Title, s.MinAge, s.MaxAge)
		}
	}

	all := getSuggestions(t, "/api/suggestions")
	if len(resp.Tasks) >= len(all.Tasks) {
		t.Errorf("filters returned %d of %d tasks, expected a narrower set", len(resp.Tasks), len(all.Tasks))
	}
}

func TestSuggestionsTierFilter(t *testing.T) {
	resp := getSuggestions(t, "/api/suggestions?tier=epic")

	if len(resp.Rewards) == 0 {
		t.Fatal("expected epic tier rewards")
	}
	for _, r := range resp.Rewards {
		if r.Tier != "epic" {
			t.Errorf("%q has tier %q, want epic", r.Title, r.Tier)
		}
	}
}
