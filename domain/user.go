package domain

import "time"

// User represents an account in the tracker. Tasks, stats and commitment
// records are all scoped to a single user id.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
