package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// retry policy for transient write failures.
const (
	maxAttempts  = 3
	retryBackoff = 100 * time.Millisecond
)

// PG is the Postgres-backed conversation store.
type PG struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPG creates a conversation store over an existing pool.
func NewPG(pool *pgxpool.Pool, log zerolog.Logger) *PG {
	return &PG{pool: pool, log: log}
}

// NewPool connects to Postgres and verifies the connection.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// withRetry runs fn up to maxAttempts times with exponential backoff.
// Context cancellation stops the retries immediately.
func (s *PG) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	var err error
	backoff := retryBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt < maxAttempts {
			s.log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("store write failed, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// SaveMessage inserts one conversation turn.
func (s *PG) SaveMessage(ctx context.Context, m *Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return s.withRetry(ctx, "save message", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO conversation_message (id, session_hash, role, content, language, source, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.ID, m.SessionHash, m.Role, m.Content, m.Language, m.Source, m.CreatedAt,
		)
		return err
	})
}

// SaveFeedback inserts a feedback record.
func (s *PG) SaveFeedback(ctx context.Context, f *Feedback) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	return s.withRetry(ctx, "save feedback", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO chat_feedback (id, session_hash, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			f.ID, f.SessionHash, f.Rating, f.Comment, f.CreatedAt,
		)
		return err
	})
}

// RecentMessages returns the newest messages for a session, oldest first.
func (s *PG) RecentMessages(ctx context.Context, sessionHash string, limit int) ([]Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_hash, role, content, language, source, created_at
		FROM conversation_message
		WHERE session_hash = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		sessionHash, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionHash, &m.Role, &m.Content, &m.Language, &m.Source, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent messages rows: %w", err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Healthy reports whether the database answers a ping.
func (s *PG) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx) == nil
}
