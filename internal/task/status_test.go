package task

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusApproved, true},
		{StatusCompleted, StatusApproved, true},
		{StatusCompleted, StatusPending, true},
		{StatusApproved, StatusPending, false},
		{StatusApproved, StatusCompleted, false},
		{StatusApproved, StatusApproved, false},
		{StatusPending, StatusPending, false},
		{StatusCompleted, StatusCompleted, false},
		{"bogus", StatusApproved, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
