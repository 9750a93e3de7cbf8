package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/focushub/backend/domain"
	"github.com/focushub/backend/internal/events"
	"github.com/focushub/backend/pkg/calendar"
	"github.com/focushub/backend/repository"
	"github.com/focushub/backend/usecase"
)

// DefaultRetention is how long tasks stay stored. Rollover needs yesterday's
// tasks, and committed tasks may be a day older than that, so three days
// keeps every record the settlement logic can still reference.
const DefaultRetention = 72 * time.Hour

type UseCase struct {
	tasks     repository.TaskRepository
	buffer    usecase.OperationBuffer
	bus       *events.Bus
	logger    *zap.Logger
	retention time.Duration
	now       func() time.Time
}

func New(tasks repository.TaskRepository, buffer usecase.OperationBuffer, bus *events.Bus, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:     tasks,
		buffer:    buffer,
		bus:       bus,
		logger:    logger,
		retention: DefaultRetention,
		now:       time.Now,
	}
}

// WithClock replaces the time source, used by tests.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// Add creates a task belonging to today. Stored tasks older than the
// retention window are pruned first so the task list stays bounded.
func (uc *UseCase) Add(ctx context.Context, userID, text string, deadline, startTime *time.Time) (*domain.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "task text is required")
	}

	now := uc.now()
	if pruned, err := uc.tasks.DeleteOlderThan(ctx, userID, now.Add(-uc.retention)); err != nil {
		uc.logger.Warn("task retention prune failed", zap.String("user_id", userID), zap.Error(err))
	} else if pruned > 0 {
		uc.logger.Debug("pruned expired tasks", zap.String("user_id", userID), zap.Int64("count", pruned))
	}

	task := &domain.Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      text,
		CreatedAt: now,
		Deadline:  deadline,
		StartTime: startTime,
		UpdatedAt: now,
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if uc.shouldBuffer(ctx, "create", task) {
			uc.publish(events.TaskCreated, *task)
			return task, nil
		}
		return nil, err
	}

	uc.publish(events.TaskCreated, *created)
	return created, nil
}

// Today returns the tasks created on the current local calendar day, the
// view the task list renders.
func (uc *UseCase) Today(ctx context.Context, userID string) ([]domain.Task, error) {
	all, err := uc.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	today := make([]domain.Task, 0, len(all))
	for _, t := range all {
		if calendar.SameDay(t.CreatedAt, now) {
			today = append(today, t)
		}
	}
	return today, nil
}

// All returns the full retained set, used by rollover and commitment views.
func (uc *UseCase) All(ctx context.Context, userID string) ([]domain.Task, error) {
	return uc.tasks.ListByUser(ctx, userID)
}

// Get returns a single task owned by the user.
func (uc *UseCase) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// Apply runs a typed update against the task. An unknown id is a silent
// no-op returning (nil, nil): the UI list is expected to match the store, so
// a stale id is not worth an error.
func (uc *UseCase) Apply(ctx context.Context, userID, id string, update domain.TaskUpdate) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if task.UserID != userID {
		return nil, nil
	}

	wasCompleted := task.Completed
	if err := domain.ApplyTaskUpdate(task, update, uc.now()); err != nil {
		return nil, err
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		if !uc.shouldBuffer(ctx, "update", task) {
			return nil, err
		}
	}

	kind := events.TaskUpdated
	if !wasCompleted && task.Completed {
		kind = events.TaskCompleted
	}
	uc.publish(kind, *task)

	return task, nil
}

// Delete removes the task unconditionally. An unknown id is a silent no-op.
func (uc *UseCase) Delete(ctx context.Context, userID, id string) error {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil
		}
		return err
	}
	if task.UserID != userID {
		return nil
	}

	if err := uc.tasks.Delete(ctx, id); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil
		}
		if !uc.shouldBuffer(ctx, "delete", task) {
			return err
		}
	}

	uc.publish(events.TaskDeleted, *task)
	return nil
}

func (uc *UseCase) publish(kind events.Kind, task domain.Task) {
	if uc.bus != nil {
		uc.bus.Publish(events.Event{Kind: kind, Task: task})
	}
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, task *domain.Task) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", operation))
	return true
}
