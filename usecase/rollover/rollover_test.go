package rollover

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focushub/backend/domain"
)

type fakeTaskRepo struct {
	tasks []domain.Task
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			return &f.tasks[i], nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (f *fakeTaskRepo) ListByUser(_ context.Context, userID string) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	f.tasks = append(f.tasks, *task)
	return task, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	for i := range f.tasks {
		if f.tasks[i].ID == task.ID {
			f.tasks[i] = *task
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (f *fakeTaskRepo) Delete(_ context.Context, id string) error {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (f *fakeTaskRepo) DeleteOlderThan(_ context.Context, userID string, cutoff time.Time) (int64, error) {
	var kept []domain.Task
	var removed int64
	for _, t := range f.tasks {
		if t.UserID == userID && t.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	f.tasks = kept
	return removed, nil
}

type fakeStatsRepo struct {
	stats map[string]*domain.Stats
	saves int
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
	f.saves++
	return nil
}

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

type fakeDayLock struct {
	held     bool
	acquires int
	releases int
}

func (f *fakeDayLock) Acquire(_ context.Context, _ string, _ time.Time) (bool, error) {
	f.acquires++
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeDayLock) Release(_ context.Context, _ string, _ time.Time) error {
	f.releases++
	f.held = false
	return nil
}

const testUser = "user-1"

var testNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.Local)

func newTestEngine(tasks *fakeTaskRepo, stats *fakeStatsRepo, commitments *fakeCommitmentRepo) *Engine {
	return New(tasks, stats, commitments, nil, nil).WithClock(func() time.Time { return testNow })
}

func yesterdayTask(id string, completed bool) domain.Task {
	return domain.Task{
		ID:        id,
		UserID:    testUser,
		Text:      "task " + id,
		Completed: completed,
		CreatedAt: testNow.AddDate(0, 0, -1),
	}
}

func statsWith(points, streak int, lastLogin *time.Time) *fakeStatsRepo {
	return &fakeStatsRepo{stats: map[string]*domain.Stats{
		testUser: {Points: points, Streak: streak, LastLogin: lastLogin},
	}}
}

func TestRunDailyCheckSameDayIsNoOp(t *testing.T) {
	login := testNow.Add(-2 * time.Hour)
	stats := statsWith(100, 5, &login)
	engine := newTestEngine(&fakeTaskRepo{}, stats, &fakeCommitmentRepo{})

	summary, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, 0, stats.saves)
}

func TestRunDailyCheckNoTasksYesterday(t *testing.T) {
	login := testNow.AddDate(0, 0, -1)
	stats := statsWith(100, 5, &login)
	engine := newTestEngine(&fakeTaskRepo{}, stats, &fakeCommitmentRepo{})

	summary, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, "New day! Make it count.", summary.Message)
	assert.False(t, summary.StreakReset)
	assert.False(t, summary.StreakIncreased)

	saved := stats.stats[testUser]
	assert.Equal(t, 100, saved.Points)
	assert.Equal(t, 5, saved.Streak)
	require.NotNil(t, saved.LastLogin)
	assert.True(t, saved.LastLogin.Equal(testNow))
}

func TestRunDailyCheckStreakIncrease(t *testing.T) {
	// 4 of 5 completed is exactly 80%, which counts as a win.
	tasks := &fakeTaskRepo{tasks: []domain.Task{
		yesterdayTask("a", true),
		yesterdayTask("b", true),
		yesterdayTask("c", true),
		yesterdayTask("d", true),
		yesterdayTask("e", false),
	}}
	login := testNow.AddDate(0, 0, -1)
	stats := statsWith(100, 2, &login)
	engine := newTestEngine(tasks, stats, &fakeCommitmentRepo{})

	summary, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.True(t, summary.StreakIncreased)
	assert.False(t, summary.StreakReset)
	assert.Equal(t, "Processed yesterday: 4/5 tasks completed (80%)", summary.Message)

	saved := stats.stats[testUser]
	assert.Equal(t, 110, saved.Points)
	assert.Equal(t, 3, saved.Streak)
}

func TestRunDailyCheckStreakReset(t *testing.T) {
	tasks := &fakeTaskRepo{tasks: []domain.Task{
		yesterdayTask("a", true),
		yesterdayTask("b", false),
	}}
	login := testNow.AddDate(0, 0, -1)
	stats := statsWith(100, 7, &login)
	engine := newTestEngine(tasks, stats, &fakeCommitmentRepo{})

	summary, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.True(t, summary.StreakReset)
	assert.False(t, summary.StreakIncreased)

	saved := stats.stats[testUser]
	assert.Equal(t, 100, saved.Points)
	assert.Equal(t, 0, saved.Streak)
}

func TestRunDailyCheckFirstEverLogin(t *testing.T) {
	stats := &fakeStatsRepo{}
	engine := newTestEngine(&fakeTaskRepo{}, stats, &fakeCommitmentRepo{})

	summary, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, summary)

	saved := stats.stats[testUser]
	assert.Equal(t, domain.InitialPoints, saved.Points)
	assert.Equal(t, 0, saved.Streak)
}

func TestRunDailyCheckCommitmentWinBelowTarget(t *testing.T) {
	tasks := &fakeTaskRepo{tasks: []domain.Task{
		yesterdayTask("a", true),
	}}
	login := testNow.AddDate(0, 0, -1)
	stats := statsWith(100, 0, &login)
	commitments := &fakeCommitmentRepo{commitments: map[string]*domain.Commitment{
		testUser: {Wager: 50, Streak: 1, TaskIDs: []string{"a"}},
	}}
	engine := newTestEngine(tasks, stats, commitments)

	_, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)

	// Day won, cycle not finished: no payout, streak carries forward for
	// the next wager.
	saved := commitments.commitments[testUser]
	assert.Equal(t, 0, saved.Wager)
	assert.Equal(t, 2, saved.Streak)
	assert.Empty(t, saved.TaskIDs)
	assert.Equal(t, 110, stats.stats[testUser].Points) // 100% day also earns the streak reward
}

func TestRunDailyCheckCommitmentCycleComplete(t *testing.T) {
	tasks := &fakeTaskRepo{tasks: []domain.Task{
		yesterdayTask("a", true),
	}}
	login := testNow.AddDate(0, 0, -1)
	stats := statsWith(60, 0, &login)
	commitments := &fakeCommitmentRepo{commitments: map[string]*domain.Commitment{
		testUser: {Wager: 50, Streak: 2, TaskIDs: []string{"a"}},
	}}
	engine := newTestEngine(tasks, stats, commitments)

	_, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)

	saved := commitments.commitments[testUser]
	assert.Equal(t, 0, saved.Wager)
	assert.Equal(t, 0, saved.Streak)
	assert.Empty(t, saved.TaskIDs)
	// 60 + 50 refund + 10 streak reward.
	assert.Equal(t, 120, stats.stats[testUser].Points)
}

func TestRunDailyCheckCommitmentLoss(t *testing.T) {
	tasks := &fakeTaskRepo{tasks: []domain.Task{
		yesterdayTask("a", true),
		yesterdayTask("b", false),
	}}
	login := testNow.AddDate(0, 0, -1)
	stats := statsWith(100, 3, &login)
	commitments := &fakeCommitmentRepo{commitments: map[string]*domain.Commitment{
		testUser: {Wager: 50, Streak: 2, TaskIDs: []string{"a", "b"}},
	}}
	engine := newTestEngine(tasks, stats, commitments)

	_, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)

	saved := commitments.commitments[testUser]
	assert.Equal(t, 0, saved.Wager)
	assert.Equal(t, 0, saved.Streak)
	assert.Empty(t, saved.TaskIDs)
	// Lost the wager, and 50% completion also reset the streak.
	assert.Equal(t, 50, stats.stats[testUser].Points)
	assert.Equal(t, 0, stats.stats[testUser].Streak)
}

func TestRunDailyCheckCommitmentSpansRetainedDays(t *testing.T) {
	// Committed tasks created before yesterday still settle the wager even
	// though they do not count toward the daily streak.
	old := domain.Task{
		ID:        "old",
		UserID:    testUser,
		Text:      "carried over",
		Completed: true,
		CreatedAt: testNow.AddDate(0, 0, -2),
	}
	tasks := &fakeTaskRepo{tasks: []domain.Task{old}}
	login := testNow.AddDate(0, 0, -1)
	stats := statsWith(100, 4, &login)
	commitments := &fakeCommitmentRepo{commitments: map[string]*domain.Commitment{
		testUser: {Wager: 20, Streak: 2, TaskIDs: []string{"old"}},
	}}
	engine := newTestEngine(tasks, stats, commitments)

	summary, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, summary)

	// No tasks dated yesterday: streak untouched.
	assert.Equal(t, 4, stats.stats[testUser].Streak)
	// Commitment cycle complete regardless.
	assert.Equal(t, 120, stats.stats[testUser].Points)
	assert.Equal(t, 0, commitments.commitments[testUser].Wager)
}

func TestRunDailyCheckVanishedCommitmentUntouched(t *testing.T) {
	tasks := &fakeTaskRepo{}
	login := testNow.AddDate(0, 0, -1)
	stats := statsWith(100, 0, &login)
	commitments := &fakeCommitmentRepo{commitments: map[string]*domain.Commitment{
		testUser: {Wager: 50, Streak: 1, TaskIDs: []string{"gone"}},
	}}
	engine := newTestEngine(tasks, stats, commitments)

	_, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)

	// No evaluable tasks: the wager is neither refunded nor forfeited.
	assert.Equal(t, 0, commitments.saves)
	assert.Equal(t, 50, commitments.commitments[testUser].Wager)
	assert.Equal(t, 100, stats.stats[testUser].Points)
}

func TestRunDailyCheckDayLockBlocksConcurrentRun(t *testing.T) {
	login := testNow.AddDate(0, 0, -1)
	stats := statsWith(100, 0, &login)
	lock := &fakeDayLock{held: true}
	engine := New(&fakeTaskRepo{}, stats, &fakeCommitmentRepo{}, lock, nil).
		WithClock(func() time.Time { return testNow })

	summary, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, 0, stats.saves)
	assert.Equal(t, 0, lock.releases)
}

func TestRunDailyCheckKeepsDayLockAfterSettlement(t *testing.T) {
	login := testNow.AddDate(0, 0, -1)
	stats := statsWith(100, 0, &login)
	lock := &fakeDayLock{}
	engine := New(&fakeTaskRepo{}, stats, &fakeCommitmentRepo{}, lock, nil).
		WithClock(func() time.Time { return testNow })

	summary, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 1, lock.acquires)
	// The settled day stays locked until the TTL expires; releasing here
	// would let a session holding a stale stats read settle it again.
	assert.Equal(t, 0, lock.releases)
	assert.True(t, lock.held)
}

func TestRunDailyCheckGuardHitReleasesDayLock(t *testing.T) {
	login := testNow.Add(-2 * time.Hour)
	stats := statsWith(100, 0, &login)
	lock := &fakeDayLock{}
	engine := New(&fakeTaskRepo{}, stats, &fakeCommitmentRepo{}, lock, nil).
		WithClock(func() time.Time { return testNow })

	summary, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, 0, stats.saves)
	assert.Equal(t, 1, lock.releases)
	assert.False(t, lock.held)
}

// staleStatsRepo serves the same pre-settlement snapshot on every Get,
// modelling a session whose stats read raced a concurrent settlement.
type staleStatsRepo struct {
	fakeStatsRepo
	snapshot domain.Stats
}

func (f *staleStatsRepo) Get(_ context.Context, _ string) (*domain.Stats, error) {
	copied := f.snapshot
	return &copied, nil
}

func TestRunDailyCheckStaleStatsReadCannotDoubleSettle(t *testing.T) {
	login := testNow.AddDate(0, 0, -1)
	tasks := &fakeTaskRepo{tasks: []domain.Task{
		yesterdayTask("a", true),
	}}
	stats := &staleStatsRepo{snapshot: domain.Stats{Points: 100, LastLogin: &login}}
	commitments := &fakeCommitmentRepo{commitments: map[string]*domain.Commitment{
		testUser: {Wager: 50, Streak: 2, TaskIDs: []string{"a"}},
	}}
	lock := &fakeDayLock{}
	engine := New(tasks, stats, commitments, lock, nil).
		WithClock(func() time.Time { return testNow })

	first, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, commitments.saves)
	assert.Equal(t, 160, stats.stats[testUser].Points) // 100 + 50 refund + 10 reward

	// Second session still sees yesterday's LastLogin, but the day key is
	// held, so the wager cannot be refunded a second time.
	second, err := engine.RunDailyCheck(context.Background(), testUser)
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Equal(t, 1, commitments.saves)
	assert.Equal(t, 1, stats.saves)
	assert.Equal(t, 160, stats.stats[testUser].Points)
}

func TestSettleCommitmentInactive(t *testing.T) {
	outcome := settleCommitment(domain.EmptyCommitment(), []domain.Task{
		yesterdayTask("a", true),
	})
	assert.False(t, outcome.settled)
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0.0, completionRate(0, 0))
	assert.Equal(t, 50.0, completionRate(2, 1))
	assert.Equal(t, 100.0, completionRate(3, 3))
}
