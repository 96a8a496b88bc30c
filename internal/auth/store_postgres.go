package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/worklink-dev/worklink/internal/db"
)

// PostgresStore implements Store on the shared pool.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(d *db.DB) *PostgresStore { return &PostgresStore{db: d} }

func (s *PostgresStore) Create(ctx context.Context, u User) (User, error) {
	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, is_admin, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.IsAdmin, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "email") {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.Pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, is_admin, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	return u, err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.Pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, is_admin, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	return u, err
}
