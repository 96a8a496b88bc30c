package payment

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/worklink-dev/worklink/internal/db"
)

type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

const paymentColumns = `id, assignment_id, payer_id, payee_id, amount, currency, status,
	method, transaction_id, external_reference, paid_at, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, p Payment) error {
	_, err := s.db.Pool.Exec(ctx, InsertSQL, InsertArgs(p)...)
	return err
}

// InsertSQL and InsertArgs are shared with the assignment store, which
// writes the completion payment inside its own transaction.
const InsertSQL = `
	INSERT INTO payments (id, assignment_id, payer_id, payee_id, amount, currency, status,
		method, transaction_id, external_reference, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

func InsertArgs(p Payment) []any {
	return []any{p.ID, p.AssignmentID, p.PayerID, p.PayeeID, p.Amount, p.Currency, p.Status,
		p.Method, p.TransactionID, p.ExternalReference, p.CreatedAt, p.UpdatedAt}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Payment, bool, error) {
	row := s.db.Pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	p, err := scanPayment(row)
	if err == pgx.ErrNoRows {
		return Payment{}, false, nil
	}
	if err != nil {
		return Payment{}, false, err
	}
	return p, true, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, from, to Status, paidAt *time.Time, at time.Time) (bool, error) {
	if paidAt != nil {
		res, err := s.db.Pool.Exec(ctx, `
			UPDATE payments SET status=$3, paid_at=$4, updated_at=$5
			WHERE id=$1 AND status=$2`, id, from, to, paidAt, at)
		if err != nil {
			return false, err
		}
		return res.RowsAffected() == 1, nil
	}
	res, err := s.db.Pool.Exec(ctx, `
		UPDATE payments SET status=$3, updated_at=$4
		WHERE id=$1 AND status=$2`, id, from, to, at)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.Pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (s *PostgresStore) ListByAssignment(ctx context.Context, assignmentID string) ([]Payment, error) {
	return s.list(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE assignment_id = $1 ORDER BY created_at`, assignmentID)
}

func (s *PostgresStore) ListByPayer(ctx context.Context, payerID string) ([]Payment, error) {
	return s.list(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE payer_id = $1 ORDER BY created_at DESC`, payerID)
}

func (s *PostgresStore) DeleteByAssignment(ctx context.Context, assignmentID string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM payments WHERE assignment_id = $1`, assignmentID)
	return err
}

func (s *PostgresStore) list(ctx context.Context, q string, arg any) ([]Payment, error) {
	rows, err := s.db.Pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.AssignmentID, &p.PayerID, &p.PayeeID, &p.Amount, &p.Currency, &p.Status,
		&p.Method, &p.TransactionID, &p.ExternalReference, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
