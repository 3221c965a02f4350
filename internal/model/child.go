package model

import "time"

type Child struct {
	ID          int64     `json:"id"`
	ParentID    int64     `json:"parent_id"`
	Name        string    `json:"name"`
	Age         *int      `json:"age,omitempty"`
	AvatarEmoji string    `json:"avatar_emoji"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PointBalance is derived from approved tasks and reward claims; it is
// never stored.
type PointBalance struct {
	ChildID       int64  `json:"child_id"`
	ChildName     string `json:"child_name"`
	TotalPoints   int    `json:"total_points"`
	SpentPoints   int    `json:"spent_points"`
	CurrentPoints int    `json:"current_points"`
}
