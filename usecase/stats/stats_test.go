package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focushub/backend/domain"
)

type fakeStatsRepo struct {
	stats   map[string]*domain.Stats
	saveErr error
}

func (f *fakeStatsRepo) Get(_ context.Context, userID string) (*domain.Stats, error) {
	if s, ok := f.stats[userID]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, domain.ErrStatsNotFound
}

func (f *fakeStatsRepo) Save(_ context.Context, userID string, stats *domain.Stats) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.stats == nil {
		f.stats = map[string]*domain.Stats{}
	}
	copied := *stats
	f.stats[userID] = &copied
	return nil
}

type fakeBuffer struct {
	statsBuffered int
}

func (f *fakeBuffer) BufferTask(_ context.Context, _ string, _ *domain.Task) error { return nil }

func (f *fakeBuffer) BufferStats(_ context.Context, _ string, _ *domain.Stats) error {
	f.statsBuffered++
	return nil
}

const testUser = "user-1"

func TestGetDefaultsForNewUser(t *testing.T) {
	uc := New(&fakeStatsRepo{}, nil, nil)

	stats, err := uc.Get(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, domain.InitialPoints, stats.Points)
	assert.Equal(t, 0, stats.Streak)
	assert.Equal(t, 0, stats.TotalPomodoros)
	assert.Nil(t, stats.LastLogin)
}

func TestLogPomodoroIncrements(t *testing.T) {
	repo := &fakeStatsRepo{stats: map[string]*domain.Stats{
		testUser: {Points: 100, Streak: 2, TotalPomodoros: 4},
	}}
	uc := New(repo, nil, nil)

	stats, err := uc.LogPomodoro(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalPomodoros)
	assert.Equal(t, 5, repo.stats[testUser].TotalPomodoros)
	// Points and streak belong to the rollover, not the pomodoro log.
	assert.Equal(t, 100, stats.Points)
	assert.Equal(t, 2, stats.Streak)
}

func TestLogPomodoroBuffersOnStoreFailure(t *testing.T) {
	repo := &fakeStatsRepo{
		stats:   map[string]*domain.Stats{testUser: {Points: 100}},
		saveErr: errors.New("connection refused"),
	}
	buffer := &fakeBuffer{}
	uc := New(repo, buffer, nil)

	stats, err := uc.LogPomodoro(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalPomodoros)
	assert.Equal(t, 1, buffer.statsBuffered)
}
