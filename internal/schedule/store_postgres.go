package schedule

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/worklink-dev/worklink/internal/db"
)

// PostgresStore implements Store on the shared pool.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(d *db.DB) *PostgresStore { return &PostgresStore{db: d} }

func (s *PostgresStore) Upsert(ctx context.Context, sc Schedule) (Schedule, error) {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO posting_schedules
			(id, posting_id, rule, cron_expression, start_date, end_date, next_run_at, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (posting_id) DO UPDATE SET
			rule = EXCLUDED.rule,
			cron_expression = EXCLUDED.cron_expression,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			next_run_at = EXCLUDED.next_run_at,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`,
		sc.ID, sc.PostingID, string(sc.Rule), sc.CronExpression, sc.StartDate,
		sc.EndDate, sc.NextRunAt, sc.IsActive, sc.CreatedAt, sc.UpdatedAt,
	)
	if err != nil {
		return Schedule{}, err
	}
	return sc, nil
}

func (s *PostgresStore) GetByPosting(ctx context.Context, postingID string) (Schedule, bool, error) {
	var sc Schedule
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, posting_id, rule, cron_expression, start_date, end_date, next_run_at, is_active, created_at, updated_at
		FROM posting_schedules WHERE posting_id = $1`,
		postingID,
	).Scan(&sc.ID, &sc.PostingID, &sc.Rule, &sc.CronExpression, &sc.StartDate,
		&sc.EndDate, &sc.NextRunAt, &sc.IsActive, &sc.CreatedAt, &sc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Schedule{}, false, nil
	}
	if err != nil {
		return Schedule{}, false, err
	}
	return sc, true, nil
}

func (s *PostgresStore) DeleteByPosting(ctx context.Context, postingID string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM posting_schedules WHERE posting_id = $1`, postingID)
	return err
}
