package app

import (
	"encoding/json"
	"fmt"
	"time"

	"bigtwo/internal/domain"
)

// Snapshot is the durable form of a table. Hands are included; snapshots never leave the server.
type Snapshot struct {
	GameID      string         `json:"game_id"`
	Version     uint64         `json:"version"`
	Game        *domain.Game   `json:"game"`
	Timer       *AutoPassTimer `json:"timer,omitempty"`
	TimerGen    uint64         `json:"timer_generation"`
	ActionIndex int64          `json:"action_index"`
	AutoPass    time.Duration  `json:"auto_pass"`
	Quarantined bool           `json:"quarantined"`
}

func (t *Table) snapshotLocked() Snapshot {
	s := Snapshot{
		GameID:      t.id,
		Version:     t.version,
		Game:        t.game.Clone(),
		TimerGen:    t.timerGen,
		ActionIndex: t.actionIndex,
		AutoPass:    t.autoPass,
		Quarantined: t.quarantined,
	}
	if t.timer != nil {
		timer := *t.timer
		timer.handle = nil
		s.Timer = &timer
	}
	return s
}

// Snapshot encodes the table's current state.
func (t *Table) Snapshot() ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return json.Marshal(t.snapshotLocked())
}

// DecodeSnapshot parses a snapshot and checks that its game state is still consistent.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Game == nil {
		return Snapshot{}, fmt.Errorf("snapshot %s has no game", s.GameID)
	}
	if !s.Quarantined {
		if err := s.Game.CheckInvariants(); err != nil {
			return Snapshot{}, fmt.Errorf("snapshot %s at version %d: %w", s.GameID, s.Version, err)
		}
	}
	return s, nil
}

// restoreTable rebuilds a table from a snapshot and re-arms a timer that was pending when it was taken.
// A deadline that already passed fires on the next clock tick. A timer that expired part way through its
// forced passes resumes them at once while its trick is still open.
func restoreTable(s Snapshot, deps tableDeps) *Table {
	if deps.AutoPass == 0 {
		deps.AutoPass = s.AutoPass
	}
	t := newTable(s.GameID, s.Game, deps)
	t.version = s.Version
	t.timerGen = s.TimerGen
	t.actionIndex = s.ActionIndex
	t.quarantined = s.Quarantined
	t.timer = s.Timer

	if t.timer == nil || t.quarantined {
		return t
	}
	switch {
	case t.timer.Status == TimerArmed:
		remaining := t.timer.Remaining(t.clock.Now())
		t.schedule(t.timer, remaining)
		t.logger.WithField("generation", t.timer.Generation).Info("auto-pass re-armed with %s left", remaining)
	case t.timer.Status == TimerExpired && t.timerTrickOpen():
		t.schedule(t.timer, 0)
		t.logger.WithField("generation", t.timer.Generation).Info("auto-pass resumed mid-sequence")
	}
	return t
}

// timerTrickOpen reports whether the trick the timer was armed for is still being followed. Caller holds t.mu
// or owns t exclusively.
func (t *Table) timerTrickOpen() bool {
	return t.game.Turn.Phase == domain.PhaseFollowing &&
		t.game.Match == t.timer.Match &&
		t.game.Turn.Trick == t.timer.Trick
}
