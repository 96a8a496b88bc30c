package comment

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

const commentColumns = `id, posting_id, user_id, content, parent_id, created_at, updated_at, deleted_at`

func (s *PostgresStore) Create(ctx context.Context, c Comment) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO comments (id, posting_id, user_id, content, parent_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.PostingID, c.AuthorID, c.Content, c.ParentID, c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Comment, bool, error) {
	row := s.db.Pool.QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	c, err := scanComment(row)
	if err == pgx.ErrNoRows {
		return Comment{}, false, nil
	}
	if err != nil {
		return Comment{}, false, err
	}
	return c, true, nil
}

func (s *PostgresStore) Update(ctx context.Context, id, content string, at time.Time) (bool, error) {
	res, err := s.db.Pool.Exec(ctx, `
		UPDATE comments SET content=$2, updated_at=$3
		WHERE id=$1 AND deleted_at IS NULL`, id, content, at)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (s *PostgresStore) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := s.db.Pool.Exec(ctx, `
		UPDATE comments SET deleted_at=$2 WHERE id=$1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (s *PostgresStore) ListByPosting(ctx context.Context, postingID string) ([]Comment, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE posting_id = $1 AND deleted_at IS NULL ORDER BY created_at`, postingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SoftDeleteByPosting(ctx context.Context, postingID string, at time.Time) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE comments SET deleted_at=$2
		WHERE posting_id=$1 AND deleted_at IS NULL`, postingID, at)
	return err
}

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.PostingID, &c.AuthorID, &c.Content, &c.ParentID,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	return c, err
}
