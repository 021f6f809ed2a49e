package bot

import (
	"sort"

	"bigtwo/internal/app"
	botinternal "bigtwo/internal/bot/internal"
)

// GoodBot plays the weakest legal combination and passes only when it cannot beat the play.
type GoodBot struct{}

func (b *GoodBot) CalculateMove(view app.SeatView) (Move, error) {
	if len(view.Hand) == 0 {
		return Move{Pass: true}, nil
	}

	validMoves := botinternal.GetValidMoves(view.Hand, constraintFor(view))
	if len(validMoves) == 0 {
		return Move{Pass: true}, nil
	}

	// Lowest anchor first; on a tie shed more cards.
	sort.SliceStable(validMoves, func(i, j int) bool {
		pi, pj := validMoves[i].Combo.Anchor.Power(), validMoves[j].Combo.Anchor.Power()
		if pi != pj {
			return pi < pj
		}
		return validMoves[i].Combo.Size() > validMoves[j].Combo.Size()
	})

	return Move{Cards: validMoves[0].Cards}, nil
}
