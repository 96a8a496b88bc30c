package match

import (
	"context"

	"github.com/worklink-dev/worklink/internal/db"
)

// PostgresInterestStore keeps interests in the user_interests table.
type PostgresInterestStore struct {
	db *db.DB
}

func NewPostgresInterestStore(database *db.DB) *PostgresInterestStore {
	return &PostgresInterestStore{db: database}
}

func (s *PostgresInterestStore) InterestsOf(ctx context.Context, userID string) ([]Interest, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT category_id, proficiency FROM user_interests
		WHERE user_id = $1 ORDER BY category_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Interest
	for rows.Next() {
		var in Interest
		if err := rows.Scan(&in.CategoryID, &in.Proficiency); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *PostgresInterestStore) SetInterests(ctx context.Context, userID string, interests []Interest) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_interests WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, in := range interests {
		_, err := tx.Exec(ctx, `
			INSERT INTO user_interests (user_id, category_id, proficiency)
			VALUES ($1,$2,$3)`, userID, in.CategoryID, in.Proficiency)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
