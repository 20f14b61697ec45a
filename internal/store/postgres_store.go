package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/Garsondee/hexfront/internal/game"
)

// PostgresStore keeps snapshots as JSONB rows.
type PostgresStore struct {
	db *sql.DB
}

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS match_snapshots (
	match_id    TEXT PRIMARY KEY,
	turn_owner  TEXT NOT NULL,
	turn_number INTEGER NOT NULL,
	snapshot    JSONB NOT NULL,
	updated_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);`

// NewPostgresStore connects with dsn and makes sure the schema exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// SaveSnapshot implements Storage.
func (p *PostgresStore) SaveSnapshot(ctx context.Context, matchID string, snap game.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", matchID, err)
	}
	const q = `
	INSERT INTO match_snapshots (match_id, turn_owner, turn_number, snapshot)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (match_id)
	DO UPDATE SET turn_owner = $2, turn_number = $3, snapshot = $4, updated_at = NOW()`
	if _, err := p.db.ExecContext(ctx, q, matchID, snap.TurnOwner, snap.TurnNumber, string(b)); err != nil {
		return fmt.Errorf("save snapshot %s: %w", matchID, err)
	}
	return nil
}

// LoadSnapshot implements Storage.
func (p *PostgresStore) LoadSnapshot(ctx context.Context, matchID string) (game.Snapshot, error) {
	var raw []byte
	err := p.db.QueryRowContext(ctx, `SELECT snapshot FROM match_snapshots WHERE match_id = $1`, matchID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Snapshot{}, fmt.Errorf("load snapshot %s: %w", matchID, ErrNotFound)
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load snapshot %s: %w", matchID, err)
	}
	snap, err := game.DecodeSnapshot(raw)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load snapshot %s: %w", matchID, err)
	}
	return snap, nil
}

// DeleteSnapshot implements Storage.
func (p *PostgresStore) DeleteSnapshot(ctx context.Context, matchID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM match_snapshots WHERE match_id = $1`, matchID)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", matchID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete snapshot %s: %w", matchID, ErrNotFound)
	}
	return nil
}

// ListMatches implements Storage.
func (p *PostgresStore) ListMatches(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT match_id FROM match_snapshots ORDER BY match_id`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list matches: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return ids, nil
}

// Close implements Storage.
func (p *PostgresStore) Close() error { return p.db.Close() }
