package chat

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

func (s *PostgresStore) CreateThread(ctx context.Context, t Thread, participants []Participant) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO chat_threads (id, kind, context_id, created_at)
		VALUES ($1,$2,$3,$4)`,
		t.ID, t.Kind, t.ContextID, t.CreatedAt)
	if err != nil {
		return err
	}
	for _, p := range participants {
		_, err = tx.Exec(ctx, `
			INSERT INTO chat_participants (thread_id, user_id)
			VALUES ($1,$2) ON CONFLICT DO NOTHING`, p.ThreadID, p.UserID)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) GetThread(ctx context.Context, id string) (Thread, bool, error) {
	return s.getThread(ctx,
		`SELECT id, kind, context_id, created_at FROM chat_threads WHERE id = $1`, id)
}

func (s *PostgresStore) GetThreadByContext(ctx context.Context, kind, contextID string) (Thread, bool, error) {
	return s.getThread(ctx,
		`SELECT id, kind, context_id, created_at FROM chat_threads WHERE kind = $1 AND context_id = $2`,
		kind, contextID)
}

func (s *PostgresStore) getThread(ctx context.Context, q string, args ...any) (Thread, bool, error) {
	var t Thread
	err := s.db.Pool.QueryRow(ctx, q, args...).Scan(&t.ID, &t.Kind, &t.ContextID, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return Thread{}, false, nil
	}
	if err != nil {
		return Thread{}, false, err
	}
	return t, true, nil
}

func (s *PostgresStore) Participant(ctx context.Context, threadID, userID string) (Participant, bool, error) {
	p := Participant{ThreadID: threadID, UserID: userID}
	err := s.db.Pool.QueryRow(ctx, `
		SELECT left_at, last_read_at FROM chat_participants
		WHERE thread_id = $1 AND user_id = $2`, threadID, userID).
		Scan(&p.LeftAt, &p.LastReadAt)
	if err == pgx.ErrNoRows {
		return Participant{}, false, nil
	}
	if err != nil {
		return Participant{}, false, err
	}
	return p, true, nil
}

func (s *PostgresStore) MarkLeft(ctx context.Context, threadID, userID string, at time.Time) (bool, error) {
	res, err := s.db.Pool.Exec(ctx, `
		UPDATE chat_participants SET left_at=$3
		WHERE thread_id=$1 AND user_id=$2 AND left_at IS NULL`, threadID, userID, at)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, threadID, userID string, at time.Time) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE chat_participants SET last_read_at=$3
		WHERE thread_id=$1 AND user_id=$2`, threadID, userID, at)
	return err
}

func (s *PostgresStore) CreateMessage(ctx context.Context, m Message) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO chat_messages (id, thread_id, sender_id, type, content, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.ThreadID, m.SenderID, m.Type, m.Content, m.CreatedAt)
	return err
}

func (s *PostgresStore) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, thread_id, sender_id, type, content, created_at
		FROM chat_messages WHERE thread_id = $1 ORDER BY created_at`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Type, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListThreadsByUser(ctx context.Context, userID string) ([]Thread, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT t.id, t.kind, t.context_id, t.created_at
		FROM chat_threads t
		JOIN chat_participants p ON p.thread_id = t.id
		WHERE p.user_id = $1 AND p.left_at IS NULL
		ORDER BY t.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Thread
	for rows.Next() {
		var t Thread
		if err := rows.Scan(&t.ID, &t.Kind, &t.ContextID, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteThread(ctx context.Context, id string) error {
	// Participants and messages go with the thread via ON DELETE CASCADE.
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM chat_threads WHERE id = $1`, id)
	return err
}
