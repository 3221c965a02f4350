package model

import "time"

type Reward struct {
	ID             int64      `json:"id"`
	ParentID       int64      `json:"parent_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category,omitempty"`
	PointsRequired int        `json:"points_required"`
	Active         bool       `json:"active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type RewardClaim struct {
	ID          int64     `json:"id"`
	RewardID    int64     `json:"reward_id"`
	ChildID     *int64    `json:"child_id"`
	PointsSpent int       `json:"points_spent"`
	Paid        bool      `json:"paid"`
	ClaimedAt   time.Time `json:"claimed_at"`
}
