// Package store persists match snapshots keyed by match id.
package store

import (
	"context"
	"errors"

	"github.com/Garsondee/hexfront/internal/game"
)

// ErrNotFound is returned when no snapshot exists for a match.
var ErrNotFound = errors.New("store: snapshot not found")

// Storage saves and loads match snapshots.
type Storage interface {
	SaveSnapshot(ctx context.Context, matchID string, snap game.Snapshot) error
	LoadSnapshot(ctx context.Context, matchID string) (game.Snapshot, error)
	DeleteSnapshot(ctx context.Context, matchID string) error
	ListMatches(ctx context.Context) ([]string, error)
	Close() error
}

// Open picks a backend the way the relay is configured: "postgres" uses
// dsn, anything else a JSON file at file.
func Open(kind, dsn, file string) (Storage, error) {
	if kind == "postgres" {
		return NewPostgresStore(dsn)
	}
	return NewJSONStore(file)
}
