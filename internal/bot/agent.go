package bot

import (
	"context"
	"errors"
	"fmt"

	"bigtwo/internal/app"
	botinternal "bigtwo/internal/bot/internal"
	"bigtwo/internal/domain"
)

// ErrNotToAct is returned by Act when the seat has nothing to do.
var ErrNotToAct = errors.New("seat is not the one to act")

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Level    BotLevel
	Strategy Brain
}

// NewAgent builds an agent with the brain for level.
func NewAgent(id, name string, level BotLevel) (*Agent, error) {
	brain, err := NewBrain(level)
	if err != nil {
		return nil, err
	}
	return &Agent{ID: id, Name: name, Level: level, Strategy: brain}, nil
}

// Play asks the agent to calculate its move from what its seat can see.
func (a *Agent) Play(view app.SeatView) (Move, error) {
	move, err := a.Strategy.CalculateMove(view)
	if err != nil {
		return Move{Pass: true}, err
	}
	return move, nil
}

// Act plays one turn for seat on tbl. The chosen move is pinned to the version it was computed from;
// a stale result means the table moved on and is returned as is. Should the table reject the move,
// Act falls back to the other legal moves and finally a pass.
func (a *Agent) Act(ctx context.Context, tbl *app.Table, seat int) (app.Result, error) {
	view, err := tbl.SeatView(seat)
	if err != nil {
		return app.Result{}, err
	}
	if view.GameOver || view.Quarantined || view.Turn.Current != seat || len(view.Hand) == 0 {
		return app.Result{}, ErrNotToAct
	}

	move, err := a.Play(view)
	if err != nil {
		return app.Result{}, fmt.Errorf("bot %s: %w", a.ID, err)
	}

	res := tbl.Submit(ctx, seat, toAction(move).AtVersion(view.Version))
	if done(res) {
		return res, nil
	}

	constraint := constraintFor(view)
	for _, m := range botinternal.GetValidMoves(view.Hand, constraint) {
		res = tbl.Submit(ctx, seat, app.Play(m.Cards...).AtVersion(view.Version))
		if done(res) {
			return res, nil
		}
	}
	if constraint.InPlay != nil {
		res = tbl.Submit(ctx, seat, app.Pass().AtVersion(view.Version))
		if done(res) {
			return res, nil
		}
	}
	return res, fmt.Errorf("bot %s at seat %d found no accepted action: %s", a.ID, seat, res.Message)
}

func toAction(m Move) app.Action {
	if m.Pass {
		return app.Pass()
	}
	return app.Play(m.Cards...)
}

func done(res app.Result) bool {
	return res.Accepted || res.Reason == domain.ReasonStaleAction
}
