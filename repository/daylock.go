package repository

import (
	"context"
	"time"
)

// DayLockRepository guards the rollover read-modify-write so that two
// concurrent sessions for the same user cannot settle the same calendar day
// twice. Acquire returns false when another session already holds the day.
type DayLockRepository interface {
	Acquire(ctx context.Context, userID string, day time.Time) (bool, error)
	Release(ctx context.Context, userID string, day time.Time) error
}
