package usecase

import (
	"context"

	"github.com/focushub/backend/domain"
)

// OperationBuffer abstracts the write-behind buffer so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
	BufferStats(ctx context.Context, userID string, stats *domain.Stats) error
}
