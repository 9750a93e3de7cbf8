package domain

import "time"

// Task represents a single to-do item owned by a user. CreatedAt determines
// which calendar day the task belongs to during rollover evaluation.
type Task struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	Text               string     `json:"text"`
	Completed          bool       `json:"completed"`
	CreatedAt          time.Time  `json:"created_at"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	StartTime          *time.Time `json:"start_time,omitempty"`
	IsActive           bool       `json:"is_active"`
	ActiveStartTime    *time.Time `json:"active_start_time,omitempty"`
	TotalActiveMinutes int        `json:"total_active_minutes"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// HasWorkSession reports whether a work session is currently running.
// Invariant: IsActive implies ActiveStartTime is set.
func (t *Task) HasWorkSession() bool {
	return t != nil && t.IsActive && t.ActiveStartTime != nil
}
