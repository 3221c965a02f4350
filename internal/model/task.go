package model

import "time"

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

type Task struct {
	ID              int64      `json:"id"`
	ChildID         int64      `json:"child_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Points          int        `json:"points"`
	Category        string     `json:"category,omitempty"`
	Status          string     `json:"status"`
	IsRecurring     bool       `json:"is_recurring"`
	ChallengePeriod string     `json:"challenge_period"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	PhotoProof      string     `json:"photo_proof,omitempty"`
	RewardID        *int64     `json:"reward_id,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	LastRecurredAt  *time.Time `json:"last_recurred_at,omitempty"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
