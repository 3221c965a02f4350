package model

import "time"

const (
	RoleParent = "parent"
	RoleChild  = "child"
)

// User is the public account view. The credential hash never leaves the
// store layer.
type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	FamilyCode string    `json:"family_code,omitempty"`
	ParentID   *int64    `json:"parent_id,omitempty"`
	Age        *int      `json:"age,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
