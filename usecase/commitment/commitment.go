// Package commitment manages the points wager a user stakes on completing a
// chosen set of tasks. Settlement itself belongs to the rollover engine;
// this package only creates, cancels and reads wagers.
package commitment

import (
	"context"

	"go.uber.org/zap"

	"github.com/focushub/backend/domain"
	"github.com/focushub/backend/repository"
)

type Manager struct {
	commitments repository.CommitmentRepository
	stats       repository.StatsRepository
	logger      *zap.Logger
}

func New(commitments repository.CommitmentRepository, stats repository.StatsRepository, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		commitments: commitments,
		stats:       stats,
		logger:      logger,
	}
}

// Set overwrites the stored commitment with a new wager bound to the given
// task ids, preserving the existing settlement streak. Precondition
// violations return INVALID errors without mutating anything.
func (m *Manager) Set(ctx context.Context, userID string, wager int, taskIDs []string) (*domain.Commitment, error) {
	if wager <= 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "wager must be positive")
	}
	if len(taskIDs) == 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "a commitment must name at least one task")
	}

	stats, err := m.stats.Get(ctx, userID)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, err
		}
		stats = domain.DefaultStats()
	}
	if stats.Points < wager {
		return nil, domain.ErrInsufficientPoints
	}

	existing, err := m.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := &domain.Commitment{
		Wager:   wager,
		Streak:  existing.Streak,
		TaskIDs: taskIDs,
	}
	if err := m.commitments.Save(ctx, userID, next); err != nil {
		return nil, err
	}

	m.logger.Info("commitment set",
		zap.String("user_id", userID),
		zap.Int("wager", wager),
		zap.Int("tasks", len(taskIDs)))
	return next, nil
}

// Cancel clears the wager and its task set but keeps the streak: only a
// lost settlement or a completed payout cycle resets progress toward the
// refund threshold.
func (m *Manager) Cancel(ctx context.Context, userID string) (*domain.Commitment, error) {
	existing, err := m.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := domain.EmptyCommitment()
	next.Streak = existing.Streak
	if err := m.commitments.Save(ctx, userID, next); err != nil {
		return nil, err
	}

	m.logger.Info("commitment cancelled", zap.String("user_id", userID))
	return next, nil
}

// Get returns the stored commitment, defaulting to an inactive one.
func (m *Manager) Get(ctx context.Context, userID string) (*domain.Commitment, error) {
	commitment, err := m.commitments.Get(ctx, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.EmptyCommitment(), nil
		}
		return nil, err
	}
	return commitment, nil
}
