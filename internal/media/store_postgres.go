package media

import (
	"context"

	"github.com/worklink-dev/worklink/internal/db"
)

// PostgresStore implements Store on the shared pool.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(d *db.DB) *PostgresStore { return &PostgresStore{db: d} }

func (s *PostgresStore) Insert(ctx context.Context, o Object) error {
	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO media (id, category, owner_id, ext, path, mime, size, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.Category, o.OwnerID, o.Ext, o.Path, o.Mime, o.Size, o.CreatedAt,
	)
	return err
}

func (s *PostgresStore) ListByOwner(ctx context.Context, category, ownerID string) ([]Object, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT id, category, owner_id, ext, path, mime, size, created_at
		 FROM media WHERE category = $1 AND owner_id = $2 ORDER BY created_at`,
		category, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objs []Object
	for rows.Next() {
		var o Object
		if err := rows.Scan(&o.ID, &o.Category, &o.OwnerID, &o.Ext, &o.Path, &o.Mime, &o.Size, &o.CreatedAt); err != nil {
			return nil, err
		}
		objs = append(objs, o)
	}
	return objs, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM media WHERE id = ANY($1)`, ids)
	return err
}
