// Package rollover implements the once-per-calendar-day settlement of
// yesterday's outcomes: the task-completion streak, the points balance and
// the commitment wager.
package rollover

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/focushub/backend/domain"
	"github.com/focushub/backend/pkg/calendar"
	"github.com/focushub/backend/repository"
)

// Thresholds for the task-completion streak.
const (
	streakRateThreshold = 80.0
	streakReward        = 10
)

type Engine struct {
	tasks       repository.TaskRepository
	stats       repository.StatsRepository
	commitments repository.CommitmentRepository
	locks       repository.DayLockRepository
	logger      *zap.Logger
	now         func() time.Time
}

// New builds the engine. The day lock is optional: with a nil lock the
// LastLogin guard alone protects single-session deployments.
func New(
	tasks repository.TaskRepository,
	stats repository.StatsRepository,
	commitments repository.CommitmentRepository,
	locks repository.DayLockRepository,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		tasks:       tasks,
		stats:       stats,
		commitments: commitments,
		locks:       locks,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source, used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	if now != nil {
		e.now = now
	}
	return e
}

// RunDailyCheck settles the previous calendar day for the user. It returns
// (nil, nil) when today was already processed, making repeated calls within
// one day no-ops. LastLogin is only advanced by the final stats write, so a
// store failure mid-run leaves the day unrolled and the next call retries
// cleanly.
func (e *Engine) RunDailyCheck(ctx context.Context, userID string) (*domain.DailySummary, error) {
	now := e.now()

	if e.locks != nil {
		acquired, err := e.locks.Acquire(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		if !acquired {
			// Another session is settling, or settled, this day.
			return nil, nil
		}
	}

	summary, err := e.settleDay(ctx, userID, now)
	if err != nil || summary == nil {
		// Nothing was written: free the day so a retry or another session
		// can run. After a successful settlement the key is kept until its
		// TTL, so a session whose stats read raced the settlement cannot
		// re-acquire the day and apply the wager a second time.
		e.release(ctx, userID, now)
	}
	return summary, err
}

// settleDay runs the guard and the settlement. The caller holds the day
// lock, so the LastLogin read here cannot race a concurrent settlement.
func (e *Engine) settleDay(ctx context.Context, userID string, now time.Time) (*domain.DailySummary, error) {
	stats, err := e.loadStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stats.LastLogin != nil && calendar.SameDay(*stats.LastLogin, now) {
		return nil, nil
	}

	all, err := e.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	yesterday := calendar.Yesterday(now)
	total, completed := countDay(all, yesterday)
	rate := completionRate(total, completed)

	streakIncreased := total > 0 && rate >= streakRateThreshold
	streakReset := total > 0 && rate < streakRateThreshold
	switch {
	case streakIncreased:
		stats.Streak++
		stats.Points += streakReward
	case streakReset:
		stats.Streak = 0
	}

	commitment, err := e.loadCommitment(ctx, userID)
	if err != nil {
		return nil, err
	}
	outcome := settleCommitment(commitment, all)
	if outcome.settled {
		stats.Points += outcome.pointsDelta
		if err := e.commitments.Save(ctx, userID, outcome.next); err != nil {
			return nil, err
		}
		e.logger.Info("commitment settled",
			zap.String("user_id", userID),
			zap.Bool("won", outcome.won),
			zap.Int("points_delta", outcome.pointsDelta),
			zap.Int("commitment_streak", outcome.next.Streak))
	} else if commitment.IsActive() {
		// Committed tasks are gone from the store; nothing to evaluate, so
		// the wager stays active until the user cancels it.
		e.logger.Warn("active commitment has no evaluable tasks",
			zap.String("user_id", userID), zap.Int("wager", commitment.Wager))
	}

	login := now
	stats.LastLogin = &login
	if err := e.stats.Save(ctx, userID, stats); err != nil {
		return nil, err
	}

	e.logger.Info("daily rollover processed",
		zap.String("user_id", userID),
		zap.Int("yesterday_total", total),
		zap.Int("yesterday_completed", completed),
		zap.Int("streak", stats.Streak),
		zap.Int("points", stats.Points))

	return &domain.DailySummary{
		Message:         summaryMessage(total, completed, rate),
		StreakReset:     streakReset,
		StreakIncreased: streakIncreased,
	}, nil
}

func (e *Engine) release(ctx context.Context, userID string, now time.Time) {
	if e.locks == nil {
		return
	}
	if err := e.locks.Release(ctx, userID, now); err != nil {
		e.logger.Warn("rollover day lock release failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (e *Engine) loadStats(ctx context.Context, userID string) (*domain.Stats, error) {
	stats, err := e.stats.Get(ctx, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.DefaultStats(), nil
		}
		return nil, err
	}
	return stats, nil
}

func (e *Engine) loadCommitment(ctx context.Context, userID string) (*domain.Commitment, error) {
	commitment, err := e.commitments.Get(ctx, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.EmptyCommitment(), nil
		}
		return nil, err
	}
	return commitment, nil
}

// countDay counts tasks created on the given local calendar day.
func countDay(tasks []domain.Task, day time.Time) (total, completed int) {
	for _, t := range tasks {
		if !calendar.SameDay(t.CreatedAt, day) {
			continue
		}
		total++
		if t.Completed {
			completed++
		}
	}
	return total, completed
}

func completionRate(total, completed int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

type commitmentOutcome struct {
	settled     bool
	won         bool
	pointsDelta int
	next        *domain.Commitment
}

// settleCommitment evaluates an active wager against the full retained task
// set. Committed tasks may have been created the day before yesterday and
// carried over, so the lookup is not limited to yesterday's tasks. Success
// requires every committed task completed; partial completion is a loss.
func settleCommitment(c *domain.Commitment, tasks []domain.Task) commitmentOutcome {
	if !c.IsActive() {
		return commitmentOutcome{}
	}

	committed := make(map[string]bool, len(c.TaskIDs))
	for _, id := range c.TaskIDs {
		committed[id] = true
	}

	var committedTotal, committedCompleted int
	for _, t := range tasks {
		if !committed[t.ID] {
			continue
		}
		committedTotal++
		if t.Completed {
			committedCompleted++
		}
	}

	if committedTotal == 0 {
		// The committed tasks vanished before settlement; leave the wager
		// untouched rather than guessing a winner.
		return commitmentOutcome{}
	}

	if committedCompleted == committedTotal {
		streak := c.Streak + 1
		if streak >= domain.CommitmentTargetStreak {
			// Target reached: refund the stake and start over.
			return commitmentOutcome{
				settled:     true,
				won:         true,
				pointsDelta: c.Wager,
				next:        domain.EmptyCommitment(),
			}
		}
		// Won the day but not the cycle: the streak carries forward, the
		// user re-commits next time.
		next := domain.EmptyCommitment()
		next.Streak = streak
		return commitmentOutcome{settled: true, won: true, next: next}
	}

	return commitmentOutcome{
		settled:     true,
		pointsDelta: -c.Wager,
		next:        domain.EmptyCommitment(),
	}
}

func summaryMessage(total, completed int, rate float64) string {
	if total == 0 {
		return "New day! Make it count."
	}
	return fmt.Sprintf("Processed yesterday: %d/%d tasks completed (%.0f%%)", completed, total, rate)
}
