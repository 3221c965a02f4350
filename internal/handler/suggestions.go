package handler

import (
	"net/http"

	"github.com/JPedro1988/app-kidquest/internal/suggestions"
)

type SuggestionsHandler struct{}

func NewSuggestionsHandler() *SuggestionsHandler {
	return &SuggestionsHandler{}
}

type suggestionsResponse struct {
	Categories []suggestions.Category         `json:"categories"`
	Tasks      []suggestions.TaskSuggestion   `json:"tasks"`
	Rewards    []suggestions.RewardSuggestion `json:"rewards"`
	Packages   []suggestions.Package          `json:"packages"`
	Tips       []string                       `json:"tips"`
}

// Catalog serves the suggestion catalog. ?age= narrows tasks to the
// child's age range, ?category= to one task category, ?tier= to one
// reward tier; filters combine.
func (h *SuggestionsHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	tasks := suggestions.Tasks
	rewards := suggestions.Rewards

	if age, err := queryInt64(r, "age"); err == nil && age > 0 {
		tasks = suggestions.TasksForAge(int(age))
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filtered := make([]suggestions.TaskSuggestion, 0, len(tasks))
		for _, t := range tasks {
			if t.Category == category {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	if tier := r.URL.Query().Get("tier"); tier != "" {
		rewards = suggestions.RewardsByTier(tier)
	}

	if tasks == nil {
		tasks = []suggestions.TaskSuggestion{}
	}
	if rewards == nil {
		rewards = []suggestions.RewardSuggestion{}
	}

	writeJSON(w, http.StatusOK, suggestionsResponse{
		Categories: suggestions.Categories,
		Tasks:      tasks,
		Rewards:    rewards,
		Packages:   suggestions.Packages,
		Tips:       suggestions.Tips,
	})
}
