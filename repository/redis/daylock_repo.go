package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/focushub/backend/pkg/calendar"
	"github.com/focushub/backend/repository"
)

type dayLockRepository struct {
	client *redislib.Client
	ttl    time.Duration
}

// NewDayLockRepository creates a Redis SETNX lock keyed by user and local
// calendar day. A successful settlement keeps the key until the TTL so a
// check-in that read stale stats cannot re-acquire the same day; the TTL
// therefore has to cover the rollover run plus any straggling concurrent
// check-in. The per-day key makes a leaked lock harmless after midnight.
func NewDayLockRepository(client *redislib.Client, ttl time.Duration) repository.DayLockRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &dayLockRepository{client: client, ttl: ttl}
}

func (r *dayLockRepository) Acquire(ctx context.Context, userID string, day time.Time) (bool, error) {
	return r.client.SetNX(ctx, r.key(userID, day), 1, r.ttl).Result()
}

func (r *dayLockRepository) Release(ctx context.Context, userID string, day time.Time) error {
	return r.client.Del(ctx, r.key(userID, day)).Err()
}

func (r *dayLockRepository) key(userID string, day time.Time) string {
	return fmt.Sprintf("rollover:%s:%s", userID, calendar.DayKey(day))
}
