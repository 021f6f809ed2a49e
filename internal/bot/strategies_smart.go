package bot

import (
	"sort"

	"bigtwo/internal/app"
	botinternal "bigtwo/internal/bot/internal"
)

// SmartBot scores every legal move by the hand it leaves and may hold back strong cards by passing.
type SmartBot struct {
	Tuning botinternal.BotTuning
}

func (b *SmartBot) CalculateMove(view app.SeatView) (Move, error) {
	if len(view.Hand) == 0 {
		return Move{Pass: true}, nil
	}

	constraint := constraintFor(view)
	validMoves := botinternal.GetValidMoves(view.Hand, constraint)
	if len(validMoves) == 0 {
		return Move{Pass: true}, nil
	}

	phase := botinternal.DetectPhase(view.CardCounts)
	weights := b.Tuning.ForPhase(phase)
	threat := botinternal.DetectThreat(view.CardCounts, view.Seat, b.Tuning.ThreatThreshold)
	scored := botinternal.BuildScoredMoves(view.Hand, validMoves, weights, threat)

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		// Save higher cards when scores are equal.
		return scored[i].Move.Combo.Anchor.Power() < scored[j].Move.Combo.Anchor.Power()
	})

	if botinternal.CanPass(view.Hand, constraint) {
		currentScore := botinternal.ScoreHand(view.Hand, weights)
		if scored[0].Score < currentScore+b.Tuning.PassThreshold {
			return Move{Pass: true}, nil
		}
	}

	return Move{Cards: scored[0].Move.Cards}, nil
}
