package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/focushub/backend/domain"
	"github.com/focushub/backend/repository"
)

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository returns a Postgres-backed implementation of StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) repository.StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) Get(ctx context.Context, userID string) (*domain.Stats, error) {
	const query = `
	SELECT points, streak, total_pomodoros, last_login
	FROM stats
	WHERE user_id = $1
	`
	row := r.pool.QueryRow(ctx, query, userID)

	var stats domain.Stats
	var lastLogin *time.Time

	if err := row.Scan(&stats.Points, &stats.Streak, &stats.TotalPomodoros, &lastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStatsNotFound
		}
		return nil, err
	}

	stats.LastLogin = lastLogin
	return &stats, nil
}

func (r *statsRepository) Save(ctx context.Context, userID string, stats *domain.Stats) error {
	if stats == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO stats (user_id, points, streak, total_pomodoros, last_login, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (user_id) DO UPDATE
	SET points = EXCLUDED.points,
		streak = EXCLUDED.streak,
		total_pomodoros = EXCLUDED.total_pomodoros,
		last_login = EXCLUDED.last_login,
		updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		userID,
		stats.Points,
		stats.Streak,
		stats.TotalPomodoros,
		nullTime(stats.LastLogin),
	)
	return err
}
