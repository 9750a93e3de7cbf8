package stats

import (
	"context"

	"go.uber.org/zap"

	"github.com/focushub/backend/domain"
	"github.com/focushub/backend/repository"
	"github.com/focushub/backend/usecase"
)

type UseCase struct {
	stats  repository.StatsRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

func New(stats repository.StatsRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		stats:  stats,
		buffer: buffer,
		logger: logger,
	}
}

// Get returns the user's stats, substituting the 100-point default for
// users without a stored record.
func (uc *UseCase) Get(ctx context.Context, userID string) (*domain.Stats, error) {
	stats, err := uc.stats.Get(ctx, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.DefaultStats(), nil
		}
		return nil, err
	}
	return stats, nil
}

// LogPomodoro records one completed pomodoro work interval.
func (uc *UseCase) LogPomodoro(ctx context.Context, userID string) (*domain.Stats, error) {
	stats, err := uc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats.TotalPomodoros++
	if err := uc.stats.Save(ctx, userID, stats); err != nil {
		if uc.buffer != nil {
			if bufErr := uc.buffer.BufferStats(ctx, userID, stats); bufErr != nil {
				uc.logger.Error("failed to buffer stats update", zap.Error(bufErr))
				return nil, err
			}
			uc.logger.Warn("pomodoro log buffered due to repository error", zap.Error(err))
			return stats, nil
		}
		return nil, err
	}
	return stats, nil
}
