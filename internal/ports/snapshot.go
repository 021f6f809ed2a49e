package ports

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a game.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore defines durable storage for table snapshots so a restarted process can resume a game.
type SnapshotStore interface {
	// SaveSnapshot stores data as the latest snapshot of gameID.
	// A snapshot whose version is not newer than the stored one must be ignored, not treated as an error.
	SaveSnapshot(ctx context.Context, gameID string, version uint64, data []byte) error

	// LoadSnapshot returns the latest snapshot of gameID and its version.
	// Returns ErrSnapshotNotFound when the game was never saved.
	LoadSnapshot(ctx context.Context, gameID string) ([]byte, uint64, error)
}
