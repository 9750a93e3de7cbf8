package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/focushub/backend/domain"
	"github.com/focushub/backend/repository"
)

type commitmentRepository struct {
	pool *pgxpool.Pool
}

// NewCommitmentRepository returns a Postgres-backed implementation of CommitmentRepository.
func NewCommitmentRepository(pool *pgxpool.Pool) repository.CommitmentRepository {
	return &commitmentRepository{pool: pool}
}

func (r *commitmentRepository) Get(ctx context.Context, userID string) (*domain.Commitment, error) {
	const query = `
	SELECT wager, streak, task_ids
	FROM commitments
	WHERE user_id = $1
	`
	row := r.pool.QueryRow(ctx, query, userID)

	var commitment domain.Commitment
	var taskIDs []byte

	if err := row.Scan(&commitment.Wager, &commitment.Streak, &taskIDs); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCommitmentNotFound
		}
		return nil, err
	}

	ids, err := unmarshalIDs(taskIDs)
	if err != nil {
		return nil, fmt.Errorf("decode task_ids for user %s: %w", userID, err)
	}
	commitment.TaskIDs = ids
	return &commitment, nil
}

func (r *commitmentRepository) Save(ctx context.Context, userID string, commitment *domain.Commitment) error {
	if commitment == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO commitments (user_id, wager, streak, task_ids, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (user_id) DO UPDATE
	SET wager = EXCLUDED.wager,
		streak = EXCLUDED.streak,
		task_ids = EXCLUDED.task_ids,
		updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		userID,
		commitment.Wager,
		commitment.Streak,
		marshalIDs(commitment.TaskIDs),
	)
	return err
}
