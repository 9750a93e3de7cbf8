package domain

import "time"

// InitialPoints is the balance every new user starts with.
const InitialPoints = 100

// Stats holds a user's gamification counters. Points may go negative through
// commitment losses; it is intentionally not clamped.
type Stats struct {
	Points         int        `json:"points"`
	Streak         int        `json:"streak"`
	TotalPomodoros int        `json:"total_pomodoros"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// DefaultStats returns the record seeded for a user with no stored stats yet.
func DefaultStats() *Stats {
	return &Stats{Points: InitialPoints}
}
