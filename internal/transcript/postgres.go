package transcript

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists call transcripts in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS call_utterances (
			id TEXT PRIMARY KEY,
			call_sid TEXT NOT NULL,
			stream_sid TEXT NOT NULL,
			role TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_call_utterances_call_created ON call_utterances (call_sid, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveUtterance(ctx context.Context, record UtteranceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO call_utterances (id, call_sid, stream_sid, role, text, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ID,
		record.CallSID,
		record.StreamSID,
		record.Role,
		record.Text,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save utterance: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentByCall(ctx context.Context, callSID string, limit int) ([]UtteranceRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, call_sid, stream_sid, role, text, created_at
		 FROM call_utterances WHERE call_sid=$1 ORDER BY created_at DESC LIMIT $2`,
		callSID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent utterances: %w", err)
	}
	defer rows.Close()

	items := make([]UtteranceRecord, 0, limit)
	for rows.Next() {
		var r UtteranceRecord
		if err := rows.Scan(&r.ID, &r.CallSID, &r.StreamSID, &r.Role, &r.Text, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan utterance row: %w", err)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate utterance rows: %w", err)
	}

	// Reverse into chronological order for display.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	return items, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
