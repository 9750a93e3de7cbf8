package repository

import (
	"context"

	"github.com/focushub/backend/domain"
)

// CommitmentRepository stores one wager record per user. Get returns
// domain.ErrCommitmentNotFound for users without a stored record; callers
// substitute domain.EmptyCommitment.
type CommitmentRepository interface {
	Get(ctx context.Context, userID string) (*domain.Commitment, error)
	Save(ctx context.Context, userID string, commitment *domain.Commitment) error
}
