package commitment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focushub/backend/domain"
)

type fakeCommitmentRepo struct {
	commitments map[string]*domain.Commitment
	saves       int
}

func (f *fakeCommitmentRepo) Get(_ context.Context, userID string) (*domain.Commitment, error) {
	if c, ok := f.commitments[userID]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, domain.ErrCommitmentNotFound
}

func (f *fakeCommitmentRepo) Save(_ context.Context, userID string, commitment *domain.Commitment) error {
	if f.commitments == nil {
		f.commitments = map[string]*domain.Commitment{}
	}
	copied := *commitment
	f.commitments[userID] = &copied
	f.saves++
	return nil
}

type fakeStatsRepo struct {
	stats map[string]*domain.Stats
}

func (f *fakeStatsRepo) Get(_ context.Context, userID string) (*domain.Stats, error) {
	if s, ok := f.stats[userID]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, domain.ErrStatsNotFound
}

func (f *fakeStatsRepo) Save(_ context.Context, userID string, stats *domain.Stats) error {
	if f.stats == nil {
		f.stats = map[string]*domain.Stats{}
	}
	copied := *stats
	f.stats[userID] = &copied
	return nil
}

const testUser = "user-1"

func newManager(points int) (*Manager, *fakeCommitmentRepo) {
	commitments := &fakeCommitmentRepo{}
	stats := &fakeStatsRepo{stats: map[string]*domain.Stats{
		testUser: {Points: points},
	}}
	return New(commitments, stats, nil), commitments
}

func TestSetRejectsNonPositiveWager(t *testing.T) {
	m, repo := newManager(100)

	_, err := m.Set(context.Background(), testUser, 0, []string{"a"})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = m.Set(context.Background(), testUser, -10, []string{"a"})
	require.Error(t, err)
	assert.Equal(t, 0, repo.saves)
}

func TestSetRejectsEmptyTaskSet(t *testing.T) {
	m, repo := newManager(100)

	_, err := m.Set(context.Background(), testUser, 50, nil)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Equal(t, 0, repo.saves)
}

func TestSetRejectsWagerAbovePoints(t *testing.T) {
	m, repo := newManager(30)

	_, err := m.Set(context.Background(), testUser, 50, []string{"a"})
	require.ErrorIs(t, err, domain.ErrInsufficientPoints)
	assert.Equal(t, 0, repo.saves)
}

func TestSetStoresWagerAndKeepsStreak(t *testing.T) {
	m, repo := newManager(100)
	repo.commitments = map[string]*domain.Commitment{
		testUser: {Wager: 0, Streak: 2, TaskIDs: nil},
	}

	got, err := m.Set(context.Background(), testUser, 50, []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, 50, got.Wager)
	assert.Equal(t, 2, got.Streak)
	assert.Equal(t, []string{"a", "b"}, got.TaskIDs)
	assert.True(t, got.IsActive())

	saved := repo.commitments[testUser]
	assert.Equal(t, got, saved)
}

func TestSetAllowsWagerEqualToPoints(t *testing.T) {
	m, _ := newManager(50)

	got, err := m.Set(context.Background(), testUser, 50, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 50, got.Wager)
}

func TestCancelKeepsStreak(t *testing.T) {
	m, repo := newManager(100)
	repo.commitments = map[string]*domain.Commitment{
		testUser: {Wager: 50, Streak: 2, TaskIDs: []string{"a"}},
	}

	got, err := m.Cancel(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, 0, got.Wager)
	assert.Equal(t, 2, got.Streak)
	assert.Empty(t, got.TaskIDs)
	assert.False(t, got.IsActive())
}

func TestGetDefaultsToInactive(t *testing.T) {
	m, _ := newManager(100)

	got, err := m.Get(context.Background(), testUser)
	require.NoError(t, err)
	assert.False(t, got.IsActive())
	assert.Equal(t, 0, got.Wager)
	assert.Equal(t, 0, got.Streak)
}
