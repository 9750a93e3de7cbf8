package domain

import (
	"math"
	"time"
)

// TaskUpdate is a typed mutation applied to a task through ApplyTaskUpdate.
// Using explicit variants instead of partial field merges keeps the
// Idle/Active work-session state machine enforceable in one place.
type TaskUpdate interface {
	isTaskUpdate()
}

// ToggleComplete sets the completion flag. Completing a task with a running
// work session also stops the session.
type ToggleComplete struct {
	Completed bool
}

// StartWork transitions the task from Idle to Active.
type StartWork struct{}

// StopWork transitions the task back to Idle, folding elapsed time into
// TotalActiveMinutes.
type StopWork struct{}

// Reschedule replaces the optional deadline and planned start time.
type Reschedule struct {
	Deadline  *time.Time
	StartTime *time.Time
}

func (ToggleComplete) isTaskUpdate() {}
func (StartWork) isTaskUpdate()      {}
func (StopWork) isTaskUpdate()       {}
func (Reschedule) isTaskUpdate()     {}

// ApplyTaskUpdate mutates the task according to the update variant,
// preserving the invariant that IsActive implies ActiveStartTime is set.
func ApplyTaskUpdate(t *Task, u TaskUpdate, now time.Time) error {
	if t == nil {
		return ErrInvalidPayload
	}

	switch v := u.(type) {
	case ToggleComplete:
		if v.Completed && t.HasWorkSession() {
			stopWorkSession(t, now)
		}
		t.Completed = v.Completed

	case StartWork:
		if t.Completed {
			return NewError(ErrCodeInvalid, "cannot start work on a completed task")
		}
		if t.IsActive {
			return nil
		}
		start := now
		t.IsActive = true
		t.ActiveStartTime = &start

	case StopWork:
		if !t.HasWorkSession() {
			return nil
		}
		stopWorkSession(t, now)

	case Reschedule:
		t.Deadline = v.Deadline
		t.StartTime = v.StartTime

	default:
		return NewError(ErrCodeInvalid, "unknown task update")
	}

	t.UpdatedAt = now
	return nil
}

func stopWorkSession(t *Task, now time.Time) {
	elapsed := now.Sub(*t.ActiveStartTime)
	t.TotalActiveMinutes += int(math.Round(elapsed.Minutes()))
	t.IsActive = false
	t.ActiveStartTime = nil
}
