package posting

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/worklink-dev/worklink/internal/db"
)

// PostgresStore persists postings in Postgres. Soft-deleted rows are
// filtered out of every read unless Filter.IncludeDeleted is set.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

const postingColumns = `id, owner_id, title, description, status,
	payment_amount, payment_currency, payment_type,
	max_applicants, max_assignees, lat, lng, address, timezone,
	start_at, end_at, estimated_minutes,
	is_public, publish_at, expires_at,
	created_at, updated_at, deleted_at`

func (s *PostgresStore) Create(ctx context.Context, p Posting) (Posting, error) {
	lat, lng, address, timezone := locationArgs(p.Location)
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return Posting{}, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO postings (id, owner_id, title, description, status,
			payment_amount, payment_currency, payment_type,
			max_applicants, max_assignees, lat, lng, address, timezone,
			start_at, end_at, estimated_minutes,
			is_public, publish_at, expires_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`,
		p.ID, p.OwnerID, p.Title, p.Description, p.Status,
		p.PaymentAmount, p.PaymentCurrency, p.PaymentType,
		p.MaxApplicants, p.MaxAssignees, lat, lng, address, timezone,
		p.StartAt, p.EndAt, p.EstimatedMinutes,
		p.IsPublic, p.PublishAt, p.ExpiresAt, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return Posting{}, err
	}
	if err := replaceCategories(ctx, tx, p.ID, p.Categories); err != nil {
		return Posting{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Posting{}, err
	}
	return p, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Posting, bool, error) {
	row := s.db.Pool.QueryRow(ctx,
		`SELECT `+postingColumns+` FROM postings WHERE id = $1 AND deleted_at IS NULL`, id)
	p, err := scanPosting(row)
	if err == pgx.ErrNoRows {
		return Posting{}, false, nil
	}
	if err != nil {
		return Posting{}, false, err
	}
	p.Categories, err = s.categoriesOf(ctx, id)
	if err != nil {
		return Posting{}, false, err
	}
	return p, true, nil
}

func (s *PostgresStore) Update(ctx context.Context, p Posting) error {
	lat, lng, address, timezone := locationArgs(p.Location)
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE postings SET title=$2, description=$3,
			payment_amount=$4, payment_currency=$5, payment_type=$6,
			max_applicants=$7, max_assignees=$8,
			lat=$9, lng=$10, address=$11, timezone=$12,
			start_at=$13, end_at=$14, estimated_minutes=$15,
			is_public=$16, expires_at=$17, updated_at=$18
		WHERE id=$1 AND deleted_at IS NULL`,
		p.ID, p.Title, p.Description,
		p.PaymentAmount, p.PaymentCurrency, p.PaymentType,
		p.MaxApplicants, p.MaxAssignees,
		lat, lng, address, timezone,
		p.StartAt, p.EndAt, p.EstimatedMinutes,
		p.IsPublic, p.ExpiresAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	if err := replaceCategories(ctx, tx, p.ID, p.Categories); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, from, to Status, publishAt *time.Time, at time.Time) (bool, error) {
	if publishAt != nil {
		res, err := s.db.Pool.Exec(ctx, `
			UPDATE postings SET status=$3, publish_at=$4, updated_at=$5
			WHERE id=$1 AND status=$2 AND deleted_at IS NULL`,
			id, from, to, publishAt, at)
		if err != nil {
			return false, err
		}
		return res.RowsAffected() == 1, nil
	}
	res, err := s.db.Pool.Exec(ctx, `
		UPDATE postings SET status=$3, updated_at=$4
		WHERE id=$1 AND status=$2 AND deleted_at IS NULL`,
		id, from, to, at)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (s *PostgresStore) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := s.db.Pool.Exec(ctx, `
		UPDATE postings SET deleted_at=$2, updated_at=$2
		WHERE id=$1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Posting, error) {
	q := `SELECT ` + postingColumns + ` FROM postings WHERE 1=1`
	args := []any{}
	if !f.IncludeDeleted {
		q += ` AND deleted_at IS NULL`
	}
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		q += fmt.Sprintf(` AND owner_id = $%d`, len(args))
	}
	if f.PublicOnly {
		args = append(args, StatusPublished)
		q += fmt.Sprintf(` AND is_public AND status = $%d`, len(args))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Categories, err = s.categoriesOf(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStore) OwnerOf(ctx context.Context, id string) (string, bool, error) {
	var owner string
	err := s.db.Pool.QueryRow(ctx,
		`SELECT owner_id FROM postings WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&owner)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return owner, true, nil
}

func (s *PostgresStore) CountApplications(ctx context.Context, postingID string) (int, error) {
	var n int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM applications
		WHERE posting_id = $1 AND status <> 'rejected'`, postingID).Scan(&n)
	return n, err
}

func (s *PostgresStore) CountActiveAssignments(ctx context.Context, postingID string) (int, error) {
	var n int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM assignments
		WHERE posting_id = $1 AND status IN ('active','in_progress','disputed')`, postingID).Scan(&n)
	return n, err
}

func (s *PostgresStore) categoriesOf(ctx context.Context, postingID string) ([]string, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT category_id FROM posting_categories WHERE posting_id = $1 ORDER BY category_id`, postingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func replaceCategories(ctx context.Context, tx pgx.Tx, postingID string, cats []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM posting_categories WHERE posting_id = $1`, postingID); err != nil {
		return err
	}
	for _, c := range cats {
		if _, err := tx.Exec(ctx,
			`INSERT INTO posting_categories (posting_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postingID, c); err != nil {
			return err
		}
	}
	return nil
}

func scanPosting(row pgx.Row) (Posting, error) {
	var p Posting
	var lat, lng *float64
	var address, timezone *string
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Status,
		&p.PaymentAmount, &p.PaymentCurrency, &p.PaymentType,
		&p.MaxApplicants, &p.MaxAssignees, &lat, &lng, &address, &timezone,
		&p.StartAt, &p.EndAt, &p.EstimatedMinutes,
		&p.IsPublic, &p.PublishAt, &p.ExpiresAt,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return Posting{}, err
	}
	p.Location = locationFrom(lat, lng, address, timezone)
	return p, nil
}

// locationArgs splits the optional location over the four nullable columns.
func locationArgs(l *Location) (lat, lng *float64, address, timezone *string) {
	if l == nil {
		return nil, nil, nil, nil
	}
	lat, lng = &l.Lat, &l.Lng
	if l.Address != "" {
		address = &l.Address
	}
	if l.Timezone != "" {
		timezone = &l.Timezone
	}
	return lat, lng, address, timezone
}

func locationFrom(lat, lng *float64, address, timezone *string) *Location {
	if lat == nil && lng == nil && address == nil && timezone == nil {
		return nil
	}
	l := &Location{}
	if lat != nil {
		l.Lat = *lat
	}
	if lng != nil {
		l.Lng = *lng
	}
	if address != nil {
		l.Address = *address
	}
	if timezone != nil {
		l.Timezone = *timezone
	}
	return l
}
