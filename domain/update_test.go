package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var updateNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)

func TestStartStopWorkSession(t *testing.T) {
	task := &Task{ID: "a"}

	require.NoError(t, ApplyTaskUpdate(task, StartWork{}, updateNow))
	assert.True(t, task.IsActive)
	require.NotNil(t, task.ActiveStartTime)
	assert.True(t, task.ActiveStartTime.Equal(updateNow))

	// Starting again while already active changes nothing.
	require.NoError(t, ApplyTaskUpdate(task, StartWork{}, updateNow.Add(time.Minute)))
	assert.True(t, task.ActiveStartTime.Equal(updateNow))

	require.NoError(t, ApplyTaskUpdate(task, StopWork{}, updateNow.Add(25*time.Minute)))
	assert.False(t, task.IsActive)
	assert.Nil(t, task.ActiveStartTime)
	assert.Equal(t, 25, task.TotalActiveMinutes)
}

func TestStopWorkRoundsToNearestMinute(t *testing.T) {
	task := &Task{ID: "a"}
	require.NoError(t, ApplyTaskUpdate(task, StartWork{}, updateNow))
	require.NoError(t, ApplyTaskUpdate(task, StopWork{}, updateNow.Add(90*time.Second)))
	assert.Equal(t, 2, task.TotalActiveMinutes)
}

func TestStopWorkWhileIdleIsNoOp(t *testing.T) {
	task := &Task{ID: "a", TotalActiveMinutes: 7}
	require.NoError(t, ApplyTaskUpdate(task, StopWork{}, updateNow))
	assert.Equal(t, 7, task.TotalActiveMinutes)
	assert.False(t, task.IsActive)
}

func TestStartWorkOnCompletedTask(t *testing.T) {
	task := &Task{ID: "a", Completed: true}
	err := ApplyTaskUpdate(task, StartWork{}, updateNow)
	require.Error(t, err)
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
	assert.False(t, task.IsActive)
}

func TestCompleteStopsRunningSession(t *testing.T) {
	start := updateNow.Add(-12 * time.Minute)
	task := &Task{ID: "a", IsActive: true, ActiveStartTime: &start}

	require.NoError(t, ApplyTaskUpdate(task, ToggleComplete{Completed: true}, updateNow))
	assert.True(t, task.Completed)
	assert.False(t, task.IsActive)
	assert.Equal(t, 12, task.TotalActiveMinutes)
}

func TestUncompleteLeavesSessionState(t *testing.T) {
	task := &Task{ID: "a", Completed: true, TotalActiveMinutes: 30}
	require.NoError(t, ApplyTaskUpdate(task, ToggleComplete{Completed: false}, updateNow))
	assert.False(t, task.Completed)
	assert.Equal(t, 30, task.TotalActiveMinutes)
}

func TestReschedule(t *testing.T) {
	deadline := updateNow.Add(4 * time.Hour)
	task := &Task{ID: "a"}

	require.NoError(t, ApplyTaskUpdate(task, Reschedule{Deadline: &deadline}, updateNow))
	require.NotNil(t, task.Deadline)
	assert.True(t, task.Deadline.Equal(deadline))
	assert.Nil(t, task.StartTime)

	// Rescheduling with nil fields clears both.
	require.NoError(t, ApplyTaskUpdate(task, Reschedule{}, updateNow))
	assert.Nil(t, task.Deadline)
}
