package bot

import (
	"bigtwo/internal/app"
	botinternal "bigtwo/internal/bot/internal"
	"bigtwo/internal/domain"
)

// Move represents the decision made by the AI.
type Move struct {
	Pass  bool
	Cards []domain.Card
}

// Brain is the interface that all bot strategies must implement. A brain only ever sees what its
// seat may see.
type Brain interface {
	CalculateMove(view app.SeatView) (Move, error)
}

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelGood BotLevel = iota
	BotLevelSmart
)

func (l BotLevel) String() string {
	switch l {
	case BotLevelGood:
		return "good"
	case BotLevelSmart:
		return "smart"
	default:
		return "unknown"
	}
}

// LevelForDifficulty maps a profile difficulty onto a strategy. Anything but "easy" plays smart.
func LevelForDifficulty(difficulty string) BotLevel {
	if difficulty == "easy" {
		return BotLevelGood
	}
	return BotLevelSmart
}

// constraintFor derives what the table demands of the viewing seat.
func constraintFor(view app.SeatView) botinternal.Constraint {
	next := view.Rotation.Next(view.Seat)
	return botinternal.Constraint{
		InPlay:       view.Turn.InPlay,
		NextHoldsOne: view.CardCounts[next] == 1,
	}
}
