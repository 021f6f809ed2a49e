package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"bigtwo/internal/domain"
	"bigtwo/internal/logging"
	"bigtwo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Table is the authoritative instance of one game. Submit is the only path that mutates it; every
// mutation, including auto-pass expiry, runs under the table lock.
type Table struct {
	mu sync.RWMutex

	id          string
	game        *domain.Game
	version     uint64
	timer       *AutoPassTimer
	timerGen    uint64
	actionIndex int64
	quarantined bool
	closed      bool

	autoPass    time.Duration
	clock       Clock
	logger      runtime.Logger
	broadcaster Broadcaster
	store       ports.SnapshotStore
	history     ports.ActionLog
}

// tableDeps are the collaborators a table is wired with.
type tableDeps struct {
	AutoPass    time.Duration
	Clock       Clock
	Logger      runtime.Logger
	Broadcaster Broadcaster
	Store       ports.SnapshotStore
	History     ports.ActionLog
}

func newTable(id string, game *domain.Game, deps tableDeps) *Table {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Broadcaster == nil {
		deps.Broadcaster = discardBroadcaster{}
	}
	return &Table{
		id:          id,
		game:        game,
		autoPass:    deps.AutoPass,
		clock:       deps.Clock,
		logger:      deps.Logger.WithField("game_id", id),
		broadcaster: deps.Broadcaster,
		store:       deps.Store,
		history:     deps.History,
	}
}

// commit is the work left after the lock is released: persisting the snapshot and feeding the historian.
type commit struct {
	version  uint64
	snapshot []byte
	records  []ports.ActionRecord
}

// ID returns the game id.
func (t *Table) ID() string {
	return t.id
}

// Version returns the number of accepted actions so far.
func (t *Table) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Submit validates and applies one action for seat. It never panics and never partially applies an action.
func (t *Table) Submit(ctx context.Context, seat int, action Action) Result {
	t.mu.Lock()
	res, step := t.submitLocked(seat, action)
	t.mu.Unlock()

	t.persist(ctx, step)
	return res
}

func (t *Table) submitLocked(seat int, action Action) (Result, commit) {
	if err := t.admit(seat, action); err != nil {
		return t.reject(seat, action, err)
	}

	switch action.Kind {
	case ActionPlay:
		if len(action.Cards) == 0 && len(action.Names) > 0 {
			cards, err := domain.ParseCards(action.Names)
			if err != nil {
				return t.reject(seat, action, fmt.Errorf("%w: %v", domain.ErrInvalidCombo, err))
			}
			action.Cards = cards
		}
		combo, err := t.game.CheckPlay(seat, action.Cards)
		if err != nil {
			return t.reject(seat, action, err)
		}
		out, err := t.game.ApplyPlay(seat, combo)
		if err != nil {
			return t.quarantine(seat, action, err)
		}
		return t.accepted(SourceSeat, ActionPlay, out)
	default:
		if err := t.game.CheckPass(seat); err != nil {
			return t.reject(seat, action, err)
		}
		return t.accepted(SourceSeat, ActionPass, t.game.ApplyPass(seat))
	}
}

// admit runs the checks that do not depend on the cards: table health, game over, action kind, staleness.
func (t *Table) admit(seat int, action Action) error {
	switch {
	case t.quarantined:
		return domain.ErrGameQuarantined
	case t.closed:
		return fmt.Errorf("%w: table closed", domain.ErrStaleAction)
	case t.game.Over():
		return domain.ErrGameAlreadyOver
	case action.Kind != ActionPlay && action.Kind != ActionPass:
		return fmt.Errorf("%w: %q", domain.ErrUnknownAction, action.Kind)
	case seat < 0 || seat >= domain.NumSeats:
		return fmt.Errorf("%w: seat %d", domain.ErrUnknownSeat, seat)
	case action.Version != nil && *action.Version != t.version:
		return fmt.Errorf("%w: action built on version %d, table is at %d", domain.ErrStaleAction, *action.Version, t.version)
	}
	return nil
}

func (t *Table) reject(seat int, action Action, err error) (Result, commit) {
	t.logger.WithFields(map[string]interface{}{
		"seat":   seat,
		"kind":   action.Kind,
		"reason": domain.ReasonOf(err),
	}).Debug("action rejected: %v", err)
	rec := t.record(SourceSeat, seat, action.Kind, action.Cards, err)
	if len(action.Cards) == 0 {
		rec.Cards = action.Names
	}
	return rejected(err), commit{records: []ports.ActionRecord{rec}}
}

// accepted bumps the version, updates the auto-pass timer, and publishes the delta. Caller holds t.mu.
func (t *Table) accepted(source Source, kind ActionKind, out domain.Outcome) (Result, commit) {
	switch {
	case out.Match != nil:
		t.cancelTimer()
	case out.Unbeatable:
		t.armTimer(out.Seat)
	case out.Combo != nil || out.TrickClosed:
		t.cancelTimer()
	}

	t.version++
	delta := t.delta(source, kind, out)
	t.broadcaster.Publish(Event{Kind: EventDelta, GameID: t.id, Payload: delta})

	if out.Match != nil {
		t.logger.WithFields(map[string]interface{}{
			"match":  out.Match.Match,
			"winner": out.Match.Winner,
			"points": out.Match.Points,
		}).Info("match over")
	}
	if out.NewMatch {
		t.dealLocked()
	}
	if out.GameOver {
		t.logger.WithFields(map[string]interface{}{
			"winner": out.Winner,
			"totals": t.game.Scores.Totals,
		}).Info("game over")
	}

	var cards []domain.Card
	if out.Combo != nil {
		cards = out.Combo.Cards
	}
	rec := t.record(source, out.Seat, kind, cards, nil)
	return Result{Accepted: true, Delta: &delta}, t.commitLocked(rec)
}

// quarantine stops the table for good after an invariant violation. Caller holds t.mu.
func (t *Table) quarantine(seat int, action Action, err error) (Result, commit) {
	t.quarantined = true
	t.cancelTimer()
	t.logger.WithFields(map[string]interface{}{
		"seat":    seat,
		"version": t.version,
	}).Error("game quarantined: %v", err)
	t.broadcaster.Publish(Event{
		Kind:    EventQuarantined,
		GameID:  t.id,
		Payload: QuarantinedPayload{Version: t.version, Error: err.Error()},
	})
	rec := t.record(SourceSeat, seat, action.Kind, action.Cards, err)
	res := Result{Reason: domain.ReasonGameQuarantined, Message: err.Error(), Err: err}
	return res, t.commitLocked(rec)
}

func (t *Table) delta(source Source, kind ActionKind, out domain.Outcome) Delta {
	d := Delta{
		GameID:      t.id,
		Version:     t.version,
		Source:      source,
		Seat:        out.Seat,
		Kind:        kind,
		Unbeatable:  out.Unbeatable,
		TrickClosed: out.TrickClosed,
		Turn:        turnView(t.game),
		CardCounts:  t.game.CardCounts(),
		Totals:      t.game.Scores.Totals,
		MatchOver:   out.Match,
		GameOver:    out.GameOver,
		Winner:      -1,
	}
	if out.Combo != nil {
		c := *out.Combo
		d.Combo = &c
	}
	if t.timer != nil {
		d.Timer = t.timer.view(t.clock.Now())
	}
	if out.GameOver {
		d.Winner = out.Winner
	}
	if out.NewMatch {
		d.NewMatch = t.game.Match
	}
	return d
}

// dealLocked delivers every hand of the current match to its seat only. Caller holds t.mu.
func (t *Table) dealLocked() {
	for seat := 0; seat < domain.NumSeats; seat++ {
		t.broadcaster.Publish(Event{
			Kind:   EventHandDealt,
			GameID: t.id,
			Payload: HandDealtPayload{
				Match: t.game.Match,
				Seat:  seat,
				Hand:  t.game.Hand(seat),
				Lead:  t.game.Turn.Current,
			},
			Recipients: []int{seat},
		})
	}
}

func (t *Table) record(source Source, seat int, kind ActionKind, cards []domain.Card, err error) ports.ActionRecord {
	t.actionIndex++
	rec := ports.ActionRecord{
		GameID:    t.id,
		Index:     t.actionIndex,
		Version:   t.version,
		Seat:      seat,
		Kind:      string(kind),
		Source:    string(source),
		Cards:     domain.CardStrings(cards),
		Accepted:  err == nil,
		Timestamp: t.clock.Now().UnixMilli(),
	}
	if err != nil {
		rec.Reason = string(domain.ReasonOf(err))
		if rec.Reason == "" {
			rec.Reason = err.Error()
		}
	}
	return rec
}

// commitLocked captures the snapshot to persist once the lock is released. Caller holds t.mu.
func (t *Table) commitLocked(recs ...ports.ActionRecord) commit {
	step := commit{version: t.version, records: recs}
	if t.store == nil {
		return step
	}
	data, err := json.Marshal(t.snapshotLocked())
	if err != nil {
		t.logger.Error("failed to encode snapshot at version %d: %v", t.version, err)
		return step
	}
	step.snapshot = data
	return step
}

// persist saves the snapshot and feeds the historian. Runs without the table lock.
func (t *Table) persist(ctx context.Context, step commit) {
	if t.store != nil && step.snapshot != nil {
		if err := t.store.SaveSnapshot(ctx, t.id, step.version, step.snapshot); err != nil {
			t.logger.WithField("version", step.version).Error("failed to save snapshot: %v", err)
		}
	}
	if t.history == nil {
		return
	}
	for _, rec := range step.records {
		go func(rec ports.ActionRecord) {
			ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
			defer cancel()
			if err := t.history.Append(ctx, rec); err != nil {
				t.logger.WithField("index", rec.Index).Warn("failed to append action: %v", err)
			}
		}(rec)
	}
}

// afterAccept persists the work of a timer-driven step, which has no caller context.
func (t *Table) afterAccept(step commit) {
	if step.snapshot == nil && len(step.records) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	t.persist(ctx, step)
}

// PublicState returns a copy of what any observer may see.
func (t *Table) PublicState() PublicState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.publicLocked()
}

func (t *Table) publicLocked() PublicState {
	ps := PublicState{
		GameID:      t.id,
		Version:     t.version,
		Turn:        turnView(t.game),
		Rotation:    t.game.Turn.Rotation,
		CardCounts:  t.game.CardCounts(),
		Scores:      t.game.Scores,
		Limit:       t.game.Rules.Limit,
		GameOver:    t.game.Over(),
		Winner:      t.game.Winner,
		Quarantined: t.quarantined,
	}
	ps.Scores.History = append([]domain.MatchResult(nil), t.game.Scores.History...)
	if t.timer != nil {
		ps.Timer = t.timer.view(t.clock.Now())
	}
	return ps
}

// SeatView returns the public state plus the seat's own hand and the cards played this match.
func (t *Table) SeatView(seat int) (SeatView, error) {
	if seat < 0 || seat >= domain.NumSeats {
		return SeatView{}, fmt.Errorf("%w: seat %d", domain.ErrUnknownSeat, seat)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return SeatView{
		PublicState: t.publicLocked(),
		Seat:        seat,
		Hand:        t.game.Hand(seat),
		Played:      t.game.Ledger.Played.Cards(),
	}, nil
}

// Hand returns a copy of one seat's hand.
func (t *Table) Hand(seat int) ([]domain.Card, error) {
	if seat < 0 || seat >= domain.NumSeats {
		return nil, fmt.Errorf("%w: seat %d", domain.ErrUnknownSeat, seat)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.game.Hand(seat), nil
}

// Close stops the auto-pass timer. Later submissions are rejected as stale.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.cancelTimer()
}
