package ports

import (
	"context"
	"errors"
)

// ActionRecord is one submitted action, accepted or rejected, as seen by the gateway.
type ActionRecord struct {
	GameID    string   `json:"game_id"`
	Index     int64    `json:"index"`
	Version   uint64   `json:"version"`
	Seat      int      `json:"seat"`
	Kind      string   `json:"kind"`
	Source    string   `json:"source"`
	Cards     []string `json:"cards,omitempty"`
	Accepted  bool     `json:"accepted"`
	Reason    string   `json:"reason,omitempty"`
	Timestamp int64    `json:"timestamp"` // unix milliseconds
}

// ActionLog defines the historian feed of submitted actions.
type ActionLog interface {
	// Append publishes one record. Implementations must be safe for concurrent use.
	Append(ctx context.Context, rec ActionRecord) error
}

// MultiLog appends every record to each of its logs in order.
type MultiLog []ActionLog

func (m MultiLog) Append(ctx context.Context, rec ActionRecord) error {
	var errs []error
	for _, l := range m {
		if err := l.Append(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
