package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/focushub/backend/domain"
	"github.com/focushub/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
	SELECT id, user_id, text, completed, created_at, deadline, start_time,
	       is_active, active_start_time, total_active_minutes, updated_at
	FROM tasks
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	const query = `
	SELECT id, user_id, text, completed, created_at, deadline, start_time,
	       is_active, active_start_time, total_active_minutes, updated_at
	FROM tasks
	WHERE user_id = $1
	ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, text, completed, created_at, deadline, start_time,
	                   is_active, active_start_time, total_active_minutes)
	VALUES ($1, $2, $3, $4, COALESCE($5, NOW()), $6, $7, $8, $9, $10)
	RETURNING created_at, updated_at
	`

	var createdAt interface{}
	if !task.CreatedAt.IsZero() {
		createdAt = task.CreatedAt
	}

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Text,
		task.Completed,
		createdAt,
		nullTime(task.Deadline),
		nullTime(task.StartTime),
		task.IsActive,
		nullTime(task.ActiveStartTime),
		task.TotalActiveMinutes,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET text = $2,
		completed = $3,
		deadline = $4,
		start_time = $5,
		is_active = $6,
		active_start_time = $7,
		total_active_minutes = $8,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Text,
		task.Completed,
		nullTime(task.Deadline),
		nullTime(task.StartTime),
		task.IsActive,
		nullTime(task.ActiveStartTime),
		task.TotalActiveMinutes,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM tasks WHERE user_id = $1 AND created_at < $2`
	tag, err := r.pool.Exec(ctx, query, userID, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var deadline, startTime, activeStart *time.Time

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Text,
		&task.Completed,
		&task.CreatedAt,
		&deadline,
		&startTime,
		&task.IsActive,
		&activeStart,
		&task.TotalActiveMinutes,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Deadline = deadline
	task.StartTime = startTime
	task.ActiveStartTime = activeStart

	return &task, nil
}
