package repository

import (
	"context"
	"time"

	"github.com/focushub/backend/domain"
)

// TaskRepository persists a user's task list. ListByUser returns the full
// retained set; calendar-day filtering is done by the use cases so all
// "is this today/yesterday" logic lives in one place.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	// DeleteOlderThan drops tasks created before the cutoff, implementing
	// the rolling retention policy. Returns the number of rows removed.
	DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error)
}
