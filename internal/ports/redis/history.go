// Package redis feeds the action historian through Redis.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bigtwo/internal/ports"

	goredis "github.com/redis/go-redis/v9"
)

// Channel is where every record is published for live consumers.
const Channel = "bigtwo:actions"

// listTTL bounds how long a finished game's action list stays around.
const listTTL = 24 * time.Hour

// ActionKey returns the list holding a game's records in submission order.
func ActionKey(gameID string) string {
	return "bigtwo:game:" + gameID + ":actions"
}

// History implements ports.ActionLog on a Redis list plus a pub/sub channel.
type History struct {
	rdb *goredis.Client
}

var _ ports.ActionLog = (*History)(nil)

func NewHistory(rdb *goredis.Client) *History {
	return &History{rdb: rdb}
}

// Connect opens a client and checks it with PING.
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Append pushes the record onto the game's list and publishes it in one transaction.
func (h *History) Append(ctx context.Context, rec ports.ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode action: %w", err)
	}
	key := ActionKey(rec.GameID)
	_, err = h.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.Expire(ctx, key, listTTL)
		pipe.Publish(ctx, Channel, data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish action %s#%d: %w", rec.GameID, rec.Index, err)
	}
	return nil
}

// Actions reads back a game's records. Records arrive asynchronously, so the list may be briefly out of index order.
func (h *History) Actions(ctx context.Context, gameID string) ([]ports.ActionRecord, error) {
	raw, err := h.rdb.LRange(ctx, ActionKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read actions of %s: %w", gameID, err)
	}
	out := make([]ports.ActionRecord, 0, len(raw))
	for _, s := range raw {
		var rec ports.ActionRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("corrupt action in %s: %w", ActionKey(gameID), err)
		}
		out = append(out, rec)
	}
	return out, nil
}
