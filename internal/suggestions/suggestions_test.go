package suggestions

import "testing"

func TestTasksForAge(t *testing.T) {
	for _, got := range TasksForAge(4) {
		if 4 < got.MinAge || 4 > got.MaxAge {
			t.Errorf("%q has range %d-%d, outside age 4", got.Title, got.MinAge, got.MaxAge)
		}
	}

	// A four year old should not see the 9+ suggestions.
	for _, got := range TasksForAge(4) {
		if got.Title == "Read a whole chapter" {
			t.Errorf("age filter let through %q", got.Title)
		}
	}

	// Every suggestion covers some age in 3..12.
	if got := TasksForAge(8); len(got) == 0 {
		t.Error("no suggestions for age 8")
	}
}

func TestTasksByCategory(t *testing.T) {
	got := TasksByCategory("school")
	if len(got) == 0 {
		t.Fatal("no school suggestions")
	}
	for _, s := range got {
		if s.Category != "school" {
			t.Errorf("%q has category %q", s.Title, s.Category)
		}
	}

	if got := TasksByCategory("unknown"); len(got) != 0 {
		t.Errorf("unknown category returned %d suggestions", len(got))
	}
}

func TestRewardsByTier(t *testing.T) {
	tiers := []string{TierSmall, TierMedium, TierLarge, TierEpic}
	seen := 0
	for _, tier := range tiers {
		got := RewardsByTier(tier)
		if len(got) == 0 {
			t.Errorf("no rewards in tier %q", tier)
		}
		for _, r := range got {
			if r.Tier != tier {
				t.Errorf("%q has tier %q, want %q", r.Title, r.Tier, tier)
			}
		}
		seen += len(got)
	}
	if seen != len(Rewards) {
		t.Errorf("tiers cover %d rewards, want %d", seen, len(Rewards))
	}
}

func TestCatalogIsCoherent(t *testing.T) {
	valid := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		valid[c.ID] = true
	}

	for _, s := range Tasks {
		if !valid[s.Category] {
			t.Errorf("%q references unknown category %q", s.Title, s.Category)
		}
		if s.Points <= 0 {
			t.Errorf("%q has non-positive points", s.Title)
		}
		if s.MinAge > s.MaxAge {
			t.Errorf("%q has inverted age range %d-%d", s.Title, s.MinAge, s.MaxAge)
		}
	}

	for _, p := range Packages {
		if len(p.Tasks) == 0 {
			t.Errorf("package %q is empty", p.ID)
		}
		for _, s := range p.Tasks {
			if !valid[s.Category] {
				t.Errorf("package %q task %q references unknown category %q", p.ID, s.Title, s.Category)
			}
		}
	}
}
