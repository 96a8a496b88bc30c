package assignment

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/worklink-dev/worklink/internal/db"
	"github.com/worklink-dev/worklink/internal/payment"
)

type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

const assignmentColumns = `id, posting_id, application_id, owner_id, accepted_user_id, status,
	title, subtitle, address, due_at, started_at, completed_at, expires_at, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, a Assignment) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO assignments (id, posting_id, application_id, owner_id, accepted_user_id, status,
			title, subtitle, address, due_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.PostingID, nullable(a.ApplicationID), a.OwnerID, a.WorkerID, a.Status,
		a.Title, a.Subtitle, nullable(a.Address), a.DueAt, a.CreatedAt, a.UpdatedAt)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Assignment, bool, error) {
	row := s.db.Pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id)
	a, err := scanAssignment(row)
	if err == pgx.ErrNoRows {
		return Assignment{}, false, nil
	}
	if err != nil {
		return Assignment{}, false, err
	}
	return a, true, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, from, to Status, startedAt *time.Time, at time.Time) (bool, error) {
	if startedAt != nil {
		res, err := s.db.Pool.Exec(ctx, `
			UPDATE assignments SET status=$3, started_at=$4, updated_at=$5
			WHERE id=$1 AND status=$2`, id, from, to, startedAt, at)
		if err != nil {
			return false, err
		}
		return res.RowsAffected() == 1, nil
	}
	res, err := s.db.Pool.Exec(ctx, `
		UPDATE assignments SET status=$3, updated_at=$4
		WHERE id=$1 AND status=$2`, id, from, to, at)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (s *PostgresStore) Complete(ctx context.Context, id string, from Status, completedAt, expiresAt time.Time, pay *payment.Payment) (bool, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `
		UPDATE assignments SET status=$3, completed_at=$4, expires_at=$5, updated_at=$4
		WHERE id=$1 AND status=$2`, id, from, StatusCompleted, completedAt, expiresAt)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() != 1 {
		return false, nil
	}
	if pay != nil {
		if _, err := tx.Exec(ctx, payment.InsertSQL, payment.InsertArgs(*pay)...); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *PostgresStore) Update(ctx context.Context, a Assignment) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE assignments SET title=$2, subtitle=$3, address=$4, due_at=$5, updated_at=$6
		WHERE id=$1`,
		a.ID, a.Title, a.Subtitle, nullable(a.Address), a.DueAt, a.UpdatedAt)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.Pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (s *PostgresStore) ListByPosting(ctx context.Context, postingID string) ([]Assignment, error) {
	return s.list(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE posting_id = $1 ORDER BY created_at`, postingID)
}

func (s *PostgresStore) ListByWorker(ctx context.Context, workerID string) ([]Assignment, error) {
	return s.list(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE accepted_user_id = $1 ORDER BY created_at DESC`, workerID)
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]Assignment, error) {
	return s.list(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

func (s *PostgresStore) DeleteByPosting(ctx context.Context, postingID string) ([]string, error) {
	rows, err := s.db.Pool.Query(ctx,
		`DELETE FROM assignments WHERE posting_id = $1 RETURNING id`, postingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) list(ctx context.Context, q string, arg any) ([]Assignment, error) {
	rows, err := s.db.Pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	var appID, address *string
	err := row.Scan(&a.ID, &a.PostingID, &appID, &a.OwnerID, &a.WorkerID, &a.Status,
		&a.Title, &a.Subtitle, &address, &a.DueAt, &a.StartedAt, &a.CompletedAt, &a.ExpiresAt,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Assignment{}, err
	}
	if appID != nil {
		a.ApplicationID = *appID
	}
	if address != nil {
		a.Address = *address
	}
	return a, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
