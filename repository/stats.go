package repository

import (
	"context"

	"github.com/focushub/backend/domain"
)

// StatsRepository stores one gamification record per user. Get returns
// domain.ErrStatsNotFound for users without a stored record; callers
// substitute domain.DefaultStats.
type StatsRepository interface {
	Get(ctx context.Context, userID string) (*domain.Stats, error)
	Save(ctx context.Context, userID string, stats *domain.Stats) error
}
