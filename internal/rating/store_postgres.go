package rating

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/worklink-dev/worklink/internal/db"
)

type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

func (s *PostgresStore) ApplyRating(ctx context.Context, assignmentID, raterID, rateeID string, score int, at time.Time) (Aggregate, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return Aggregate{}, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO rating_marks (assignment_id, rater_id, ratee_id, score, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		assignmentID, raterID, rateeID, score, at)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Aggregate{}, ErrAlreadyRated
	}
	if err != nil {
		return Aggregate{}, err
	}

	agg := Aggregate{UserID: rateeID}
	err = tx.QueryRow(ctx, `
		UPDATE users
		SET rating_average = (rating_average * rating_count + $2) / (rating_count + 1),
		    rating_count = rating_count + 1
		WHERE id = $1
		RETURNING rating_average, rating_count`,
		rateeID, score).Scan(&agg.Average, &agg.Count)
	if err != nil {
		return Aggregate{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Aggregate{}, err
	}
	return agg, nil
}

func (s *PostgresStore) AggregateOf(ctx context.Context, userID string) (Aggregate, bool, error) {
	agg := Aggregate{UserID: userID}
	err := s.db.Pool.QueryRow(ctx,
		`SELECT rating_average, rating_count FROM users WHERE id = $1`, userID).
		Scan(&agg.Average, &agg.Count)
	if err == pgx.ErrNoRows {
		return Aggregate{}, false, nil
	}
	if err != nil {
		return Aggregate{}, false, err
	}
	return agg, true, nil
}
