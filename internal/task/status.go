package task

import "errors"

// Task statuses. A rejected submission goes back to pending rather than
// getting a status of its own, so only these three values are ever stored.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusApproved  = "approved"
)

var (
	ErrInvalidTransition = errors.New("invalid task status transition")
	ErrInvalidChild      = errors.New("child does not belong to this family")
	ErrNotFound          = errors.New("task not found")
)

// legalTransitions holds every allowed status change. Approval straight
// from pending is allowed so a parent can credit a chore they watched
// happen without a submission round-trip.
var legalTransitions = map[string]map[string]bool{
	StatusPending: {
		StatusCompleted: true,
		StatusApproved:  true,
	},
	StatusCompleted: {
		StatusApproved: true,
		StatusPending:  true, // rejection
	},
}

// CanTransition reports whether a task may move from one status to another.
// Approved is terminal.
func CanTransition(from, to string) bool {
	return legalTransitions[from][to]
}
