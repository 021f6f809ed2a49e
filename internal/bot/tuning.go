package bot

import botinternal "bigtwo/internal/bot/internal"

const finishBonus = 1000.0

// DefaultTuning keeps five-card combos and controls early and sheds cards late.
var DefaultTuning = botinternal.BotTuning{
	Opening: botinternal.PhaseWeights{
		HandScoreWeight:    1.0,
		FiveCardWeight:     1.5,
		TripleWeight:       0.7,
		PairWeight:         0.5,
		SingleWeight:       -1.0,
		ControlWeight:      0.8,
		TotalCardWeight:    -0.1,
		UseTwoPenalty:      6.0,
		UseHighCardPenalty: 0.5,
		FinishBonus:        finishBonus,
	},
	Mid: botinternal.PhaseWeights{
		HandScoreWeight:    1.0,
		FiveCardWeight:     1.2,
		TripleWeight:       0.8,
		PairWeight:         0.6,
		SingleWeight:       -1.2,
		ControlWeight:      0.6,
		TotalCardWeight:    -0.3,
		UseTwoPenalty:      4.0,
		UseHighCardPenalty: 0.4,
		FinishBonus:        finishBonus,
	},
	End: botinternal.PhaseWeights{
		HandScoreWeight:      1.2,
		FiveCardWeight:       0.6,
		TripleWeight:         0.5,
		PairWeight:           0.4,
		SingleWeight:         -1.5,
		ControlWeight:        0.3,
		TotalCardWeight:      -1.5,
		UseTwoPenalty:        0.7,
		UseHighCardPenalty:   0.2,
		FinishBonus:          finishBonus,
		BlockerHighCardBonus: 0.8,
	},
	PassThreshold:   -10.0,
	ThreatThreshold: 3,
}
