// Package postgres keeps table snapshots and the action archive in PostgreSQL.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"bigtwo/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

// DB implements ports.SnapshotStore and ports.ActionLog.
type DB struct{ *pgxpool.Pool }

var (
	_ ports.SnapshotStore = (*DB)(nil)
	_ ports.ActionLog     = (*DB)(nil)
)

func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &DB{p}, nil
}

func (db *DB) Close()                         { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	if _, err := db.Exec(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// SaveSnapshot upserts the snapshot unless a newer version is already stored.
func (db *DB) SaveSnapshot(ctx context.Context, gameID string, version uint64, data []byte) error {
	_, err := db.Exec(ctx, `
		INSERT INTO game_snapshots(game_id, version, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id) DO UPDATE
		   SET version = EXCLUDED.version,
		       data = EXCLUDED.data,
		       updated_at = now()
		 WHERE game_snapshots.version < EXCLUDED.version
	`, gameID, int64(version), data)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s@%d: %w", gameID, version, err)
	}
	return nil
}

func (db *DB) LoadSnapshot(ctx context.Context, gameID string) ([]byte, uint64, error) {
	var (
		data    []byte
		version int64
	)
	err := db.QueryRow(ctx, `
		SELECT data, version
		  FROM game_snapshots
		 WHERE game_id = $1
	`, gameID).Scan(&data, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ports.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load snapshot %s: %w", gameID, err)
	}
	return data, uint64(version), nil
}

// Append archives one action. Replays of the same index are ignored.
func (db *DB) Append(ctx context.Context, rec ports.ActionRecord) error {
	cards := rec.Cards
	if cards == nil {
		cards = []string{}
	}
	_, err := db.Exec(ctx, `
		INSERT INTO game_actions(game_id, idx, version, seat, kind, source, cards, accepted, reason, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (game_id, idx) DO NOTHING
	`, rec.GameID, rec.Index, int64(rec.Version), rec.Seat, rec.Kind, rec.Source,
		cards, rec.Accepted, rec.Reason, time.UnixMilli(rec.Timestamp).UTC())
	if err != nil {
		return fmt.Errorf("failed to archive action %s#%d: %w", rec.GameID, rec.Index, err)
	}
	return nil
}

// Actions returns a game's archived actions in submission order.
func (db *DB) Actions(ctx context.Context, gameID string) ([]ports.ActionRecord, error) {
	rows, err := db.Query(ctx, `
		SELECT idx, version, seat, kind, source, cards, accepted, reason, at
		  FROM game_actions
		 WHERE game_id = $1
		 ORDER BY idx
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions of %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []ports.ActionRecord
	for rows.Next() {
		rec := ports.ActionRecord{GameID: gameID}
		var (
			version int64
			seat    int16
			at      time.Time
		)
		if err := rows.Scan(&rec.Index, &version, &seat, &rec.Kind, &rec.Source, &rec.Cards, &rec.Accepted, &rec.Reason, &at); err != nil {
			return nil, err
		}
		rec.Version = uint64(version)
		rec.Seat = int(seat)
		rec.Timestamp = at.UnixMilli()
		out = append(out, rec)
	}
	return out, rows.Err()
}
