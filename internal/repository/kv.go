package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshfold/laundrokart/internal/cartstore"
)

const (
	getKVSQL = `SELECT value FROM cart_kv WHERE session_id = $1 AND key = $2`

	setKVSQL = `INSERT INTO cart_kv (session_id, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	deleteKVSQL = `DELETE FROM cart_kv WHERE session_id = $1 AND key = ANY($2)`
)

var _ cartstore.KV = (*SessionKV)(nil)

// SessionKV implements cartstore.KV on a PostgreSQL table keyed by session.
// Concurrent writers to the same session race on last-write-wins, matching
// the store's documented cross-tab semantics.
type SessionKV struct {
	pool    *pgxpool.Pool
	session string
}

// NewSessionKV returns a KV scoped to the given cart session.
func NewSessionKV(pool *pgxpool.Pool, sessionID string) *SessionKV {
	return &SessionKV{pool: pool, session: sessionID}
}

// Get implements cartstore.KV.
func (s *SessionKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, getKVSQL, s.session, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading kv %q for session %q: %w", key, s.session, err)
	}
	return value, true, nil
}

// Set implements cartstore.KV.
func (s *SessionKV) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.pool.Exec(ctx, setKVSQL, s.session, key, value); err != nil {
		return fmt.Errorf("writing kv %q for session %q: %w", key, s.session, err)
	}
	return nil
}

// Delete implements cartstore.KV.
func (s *SessionKV) Delete(ctx context.Context, keys ...string) error {
	if _, err := s.pool.Exec(ctx, deleteKVSQL, s.session, keys); err != nil {
		return fmt.Errorf("deleting kv for session %q: %w", s.session, err)
	}
	return nil
}
