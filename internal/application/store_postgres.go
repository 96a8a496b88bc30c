package application

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

const applicationColumns = `id, posting_id, applicant_id, message, status, reviewed_at, accepted_at, rejected_at, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, a Application) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO applications (id, posting_id, applicant_id, message, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.PostingID, a.ApplicantID, a.Message, a.Status, a.CreatedAt, a.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Application, bool, error) {
	row := s.db.Pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	a, err := scanApplication(row)
	if err == pgx.ErrNoRows {
		return Application{}, false, nil
	}
	if err != nil {
		return Application{}, false, err
	}
	return a, true, nil
}

func (s *PostgresStore) Decide(ctx context.Context, id string, to Status, at time.Time) (bool, error) {
	res, err := s.db.Pool.Exec(ctx, `
		UPDATE applications SET status=$2, reviewed_at=$3, updated_at=$3,
			accepted_at = CASE WHEN $2 = 'accepted' THEN $3 ELSE accepted_at END,
			rejected_at = CASE WHEN $2 = 'rejected' THEN $3 ELSE rejected_at END
		WHERE id=$1 AND status='pending'`, id, to, at)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.Pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (s *PostgresStore) ListByPosting(ctx context.Context, postingID string) ([]Application, error) {
	return s.list(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE posting_id = $1 ORDER BY created_at`, postingID)
}

func (s *PostgresStore) ListByApplicant(ctx context.Context, applicantID string) ([]Application, error) {
	return s.list(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE applicant_id = $1 ORDER BY created_at DESC`, applicantID)
}

func (s *PostgresStore) DeletePending(ctx context.Context, postingID string) ([]string, error) {
	return s.deleteReturning(ctx,
		`DELETE FROM applications WHERE posting_id = $1 AND status = 'pending' RETURNING id`, postingID)
}

func (s *PostgresStore) DeleteAll(ctx context.Context, postingID string) ([]string, error) {
	return s.deleteReturning(ctx,
		`DELETE FROM applications WHERE posting_id = $1 RETURNING id`, postingID)
}

func (s *PostgresStore) list(ctx context.Context, q string, arg any) ([]Application, error) {
	rows, err := s.db.Pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) deleteReturning(ctx context.Context, q string, arg any) ([]string, error) {
	rows, err := s.db.Pool.Query(ctx, q, arg)
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

func scanApplication(row pgx.Row) (Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.PostingID, &a.ApplicantID, &a.Message, &a.Status,
		&a.ReviewedAt, &a.AcceptedAt, &a.RejectedAt, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
