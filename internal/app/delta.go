package app

import (
	"time"

	"bigtwo/internal/domain"
)

// ActionKind is what a seat asks to do.
type ActionKind string

const (
	ActionPlay ActionKind = "play"
	ActionPass ActionKind = "pass"
)

// Source tells observers whether a seat acted or the auto-pass timer acted for it.
type Source string

const (
	SourceSeat Source = "seat"
	SourceAuto Source = "auto"
)

// Action is a play or pass submitted for a seat.
type Action struct {
	Kind  ActionKind    `json:"kind"`
	Cards []domain.Card `json:"cards,omitempty"`
	// Names are the cards in text form as a client sent them. The gateway parses them when Cards is empty,
	// so a malformed card is rejected and recorded like any other illegal play.
	Names []string `json:"names,omitempty"`
	// Version is the table version the caller last observed. When set and behind, the action is stale.
	Version *uint64 `json:"version,omitempty"`
}

// Play builds a play action.
func Play(cards ...domain.Card) Action {
	return Action{Kind: ActionPlay, Cards: cards}
}

// PlayNames builds a play action from card text such as "3S" or "10H".
func PlayNames(names ...string) Action {
	return Action{Kind: ActionPlay, Names: names}
}

// Pass builds a pass action.
func Pass() Action {
	return Action{Kind: ActionPass}
}

// AtVersion returns a copy of the action pinned to version v.
func (a Action) AtVersion(v uint64) Action {
	a.Version = &v
	return a
}

// Result is the synchronous answer to a submitted action.
type Result struct {
	Accepted bool          `json:"accepted"`
	Reason   domain.Reason `json:"reason,omitempty"`
	Message  string        `json:"message,omitempty"`
	Delta    *Delta        `json:"delta,omitempty"`
	Err      error         `json:"-"`
}

func rejected(err error) Result {
	return Result{Reason: domain.ReasonOf(err), Message: err.Error(), Err: err}
}

// TurnView is the public part of the turn machine.
type TurnView struct {
	Match      int           `json:"match"`
	Trick      int           `json:"trick"`
	Phase      domain.Phase  `json:"phase"`
	Current    int           `json:"current"`
	InPlay     *domain.Combo `json:"in_play,omitempty"`
	LastPlayer int           `json:"last_player"`
	Passes     int           `json:"passes"`
}

// TimerView is the public part of the auto-pass timer.
type TimerView struct {
	Generation uint64      `json:"generation"`
	Status     TimerStatus `json:"status"`
	Exempt     int         `json:"exempt"`
	StartedAt  time.Time   `json:"started_at"`
	Deadline   time.Time   `json:"deadline"`
	Remaining  int64       `json:"remaining_ms"`
}

// Delta is everything one accepted action changed. Observers apply deltas in Version order.
type Delta struct {
	GameID      string               `json:"game_id"`
	Version     uint64               `json:"version"`
	Source      Source               `json:"source"`
	Seat        int                  `json:"seat"`
	Kind        ActionKind           `json:"kind"`
	Combo       *domain.Combo        `json:"combo,omitempty"`
	Unbeatable  bool                 `json:"unbeatable,omitempty"`
	TrickClosed bool                 `json:"trick_closed,omitempty"`
	Turn        TurnView             `json:"turn"`
	Timer       *TimerView           `json:"timer,omitempty"`
	CardCounts  [domain.NumSeats]int `json:"card_counts"`
	Totals      [domain.NumSeats]int `json:"totals"`
	MatchOver   *domain.MatchResult  `json:"match_over,omitempty"`
	GameOver    bool                 `json:"game_over,omitempty"`
	Winner      int                  `json:"winner"`
	NewMatch    int                  `json:"new_match,omitempty"` // number of the match just dealt
}

// PublicState is what any observer may see. It never contains hands.
type PublicState struct {
	GameID      string               `json:"game_id"`
	Version     uint64               `json:"version"`
	Turn        TurnView             `json:"turn"`
	Rotation    domain.Rotation      `json:"rotation"`
	CardCounts  [domain.NumSeats]int `json:"card_counts"`
	Timer       *TimerView           `json:"timer,omitempty"`
	Scores      domain.ScoreSheet    `json:"scores"`
	Limit       int                  `json:"limit"`
	GameOver    bool                 `json:"game_over"`
	Winner      int                  `json:"winner"`
	Quarantined bool                 `json:"quarantined"`
}

// SeatView is what one seat may see: the public state plus its own hand and the cards already played.
type SeatView struct {
	PublicState
	Seat   int           `json:"seat"`
	Hand   []domain.Card `json:"hand"`
	Played []domain.Card `json:"played"`
}

func turnView(g *domain.Game) TurnView {
	t := g.Turn.Clone()
	return TurnView{
		Match:      g.Match,
		Trick:      t.Trick,
		Phase:      t.Phase,
		Current:    t.Current,
		InPlay:     t.InPlay,
		LastPlayer: t.LastPlayer,
		Passes:     t.Passes,
	}
}
