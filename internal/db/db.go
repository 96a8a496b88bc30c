package db

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the pgx pool. It is constructed once in main and handed to every
// store; there is no package-level connection.
type DB struct {
	Pool *pgxpool.Pool
}

// Config holds the Postgres connection settings.
type Config struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

func (c Config) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.User, c.Password, c.Host, c.Port, c.Name)
}

// Connect opens the pool, pings it and ensures the schema exists.
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	pool, err := pgxpool.New(ctx, cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Println("Connected to Postgres successfully")

	d := &DB{Pool: pool}
	if err := d.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() { d.Pool.Close() }

// ensureSchema creates all tables used by the services if they are missing.
func (d *DB) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			rating_average DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS user_interests (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			category_id TEXT NOT NULL,
			proficiency INT NOT NULL CHECK (proficiency BETWEEN 1 AND 5),
			PRIMARY KEY (user_id, category_id)
		)`,
		`CREATE TABLE IF NOT EXISTS postings (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft'
				CHECK (status IN ('draft','published','closed','cancelled')),
			payment_amount BIGINT NOT NULL DEFAULT 0,
			payment_currency TEXT NOT NULL DEFAULT '',
			payment_type TEXT NOT NULL DEFAULT 'fixed'
				CHECK (payment_type IN ('fixed','hourly','negotiable')),
			max_applicants INT NOT NULL DEFAULT 1,
			max_assignees INT NOT NULL DEFAULT 1,
			lat DOUBLE PRECISION NULL,
			lng DOUBLE PRECISION NULL,
			address TEXT NULL,
			timezone TEXT NULL,
			start_at TIMESTAMPTZ NULL,
			end_at TIMESTAMPTZ NULL,
			estimated_minutes INT NOT NULL DEFAULT 0,
			is_public BOOLEAN NOT NULL DEFAULT TRUE,
			publish_at TIMESTAMPTZ NULL,
			expires_at TIMESTAMPTZ NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_owner ON postings(owner_id)`,
		`CREATE TABLE IF NOT EXISTS posting_categories (
			posting_id UUID NOT NULL REFERENCES postings(id) ON DELETE CASCADE,
			category_id TEXT NOT NULL,
			PRIMARY KEY (posting_id, category_id)
		)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id UUID PRIMARY KEY,
			posting_id UUID NOT NULL REFERENCES postings(id) ON DELETE CASCADE,
			applicant_id UUID NOT NULL REFERENCES users(id),
			message TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending','accepted','rejected','withdrawn')),
			reviewed_at TIMESTAMPTZ NULL,
			accepted_at TIMESTAMPTZ NULL,
			rejected_at TIMESTAMPTZ NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (posting_id, applicant_id)
		)`,
		`CREATE TABLE IF NOT EXISTS assignments (
			id UUID PRIMARY KEY,
			posting_id UUID NOT NULL REFERENCES postings(id) ON DELETE CASCADE,
			application_id UUID NULL,
			owner_id UUID NOT NULL REFERENCES users(id),
			accepted_user_id UUID NOT NULL REFERENCES users(id),
			status TEXT NOT NULL DEFAULT 'active'
				CHECK (status IN ('active','in_progress','completed','cancelled','disputed')),
			title TEXT NOT NULL DEFAULT '',
			subtitle TEXT NOT NULL DEFAULT '',
			address TEXT NULL,
			due_at TIMESTAMPTZ NULL,
			started_at TIMESTAMPTZ NULL,
			completed_at TIMESTAMPTZ NULL,
			expires_at TIMESTAMPTZ NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_posting ON assignments(posting_id)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY,
			assignment_id UUID NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
			payer_id UUID NOT NULL REFERENCES users(id),
			payee_id UUID NOT NULL REFERENCES users(id),
			amount BIGINT NOT NULL,
			currency TEXT NOT NULL DEFAULT 'USD',
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending','processing','completed','failed','refunded','cancelled')),
			method TEXT NULL,
			transaction_id TEXT NULL,
			external_reference TEXT NULL,
			paid_at TIMESTAMPTZ NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS rating_marks (
			assignment_id UUID NOT NULL,
			rater_id UUID NOT NULL REFERENCES users(id),
			ratee_id UUID NOT NULL REFERENCES users(id),
			score INT NOT NULL CHECK (score BETWEEN 1 AND 5),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (assignment_id, rater_id)
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY,
			posting_id UUID NOT NULL REFERENCES postings(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id),
			content TEXT NOT NULL,
			parent_id UUID NULL REFERENCES comments(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chat_threads (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL CHECK (kind IN ('application','assignment')),
			context_id UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (kind, context_id)
		)`,
		`CREATE TABLE IF NOT EXISTS chat_participants (
			thread_id UUID NOT NULL REFERENCES chat_threads(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id),
			left_at TIMESTAMPTZ NULL,
			last_read_at TIMESTAMPTZ NULL,
			PRIMARY KEY (thread_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id UUID PRIMARY KEY,
			thread_id UUID NOT NULL REFERENCES chat_threads(id) ON DELETE CASCADE,
			sender_id UUID NOT NULL REFERENCES users(id),
			type TEXT NOT NULL DEFAULT 'text'
				CHECK (type IN ('text','image','video','document','system')),
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS media (
			id UUID PRIMARY KEY,
			category TEXT NOT NULL,
			owner_id UUID NOT NULL,
			ext TEXT NOT NULL,
			path TEXT NOT NULL,
			mime TEXT NOT NULL DEFAULT '',
			size BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_media_owner ON media(category, owner_id)`,
		`CREATE TABLE IF NOT EXISTS posting_schedules (
			id UUID PRIMARY KEY,
			posting_id UUID NOT NULL UNIQUE REFERENCES postings(id) ON DELETE CASCADE,
			rule TEXT NOT NULL CHECK (rule IN ('DAILY','WEEKLY','MONTHLY','YEARLY','CRON')),
			cron_expression TEXT NOT NULL DEFAULT '',
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NULL,
			next_run_at TIMESTAMPTZ NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
