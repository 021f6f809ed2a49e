package internal

import "bigtwo/internal/domain"

// PhaseWeights tune move scoring for a specific phase.
type PhaseWeights struct {
	HandScoreWeight      float64
	FiveCardWeight       float64
	TripleWeight         float64
	PairWeight           float64
	SingleWeight         float64
	ControlWeight        float64
	TotalCardWeight      float64
	UseTwoPenalty        float64
	UseHighCardPenalty   float64
	FinishBonus          float64
	BlockerHighCardBonus float64
}

// BotTuning defines phase weights and thresholds for a bot difficulty.
type BotTuning struct {
	Opening         PhaseWeights
	Mid             PhaseWeights
	End             PhaseWeights
	PassThreshold   float64
	ThreatThreshold int
}

// ForPhase returns the weights that match the supplied phase.
func (t BotTuning) ForPhase(phase GamePhase) PhaseWeights {
	switch phase {
	case PhaseOpening:
		return t.Opening
	case PhaseEnd:
		return t.End
	default:
		return t.Mid
	}
}

// HandProfile counts the structure left in a hand once five-card combos are set aside.
type HandProfile struct {
	FiveCardCombos int
	Triples        int
	Pairs          int
	Singles        int
	Controls       int // aces and twos
	TotalCards     int
}

// strongest first, so a straight flush is never broken up into a straight
var fiveCardKinds = []domain.ComboKind{
	domain.StraightFlush,
	domain.FourOfAKind,
	domain.FullHouse,
	domain.Flush,
	domain.Straight,
}

// ProfileHand greedily extracts disjoint five-card combos, then groups what is left by rank.
func ProfileHand(hand []domain.Card) HandProfile {
	p := HandProfile{TotalCards: len(hand)}
	for _, c := range hand {
		if c.Rank >= domain.RankAce {
			p.Controls++
		}
	}

	rest := domain.SortedCopy(hand)
	for len(rest) >= 5 {
		combo, ok := bestFiveCard(domain.PoolOf(rest))
		if !ok {
			break
		}
		p.FiveCardCombos++
		rest = domain.RemoveCards(rest, combo.Cards)
	}

	var ranks [domain.NumRanks]int
	for _, c := range rest {
		ranks[c.Rank]++
	}
	for _, n := range ranks {
		switch n {
		case 1:
			p.Singles++
		case 2:
			p.Pairs++
		case 3:
			p.Triples++
		case 4:
			p.Pairs += 2
		}
	}
	return p
}

func bestFiveCard(pool domain.Pool) (domain.Combo, bool) {
	for _, kind := range fiveCardKinds {
		if combo, ok := pool.Best(kind); ok {
			return combo, true
		}
	}
	return domain.Combo{}, false
}

// EvaluateHand rates raw card strength in [0, len(hand)].
func EvaluateHand(hand []domain.Card) float64 {
	score := 0.0
	for _, c := range hand {
		score += float64(c.Power()) / float64(domain.DeckSize-1)
	}
	return score
}

// ScoredMove holds a move with its computed score and supporting metadata.
type ScoredMove struct {
	Move             ValidMove
	Score            float64
	Remaining        []domain.Card
	RemainingProfile HandProfile
}

// ScoreHand evaluates a hand using the configured weights and structure profile.
func ScoreHand(hand []domain.Card, weights PhaseWeights) float64 {
	return scoreHandWithProfile(hand, ProfileHand(hand), weights)
}

// BuildScoredMoves scores each move by the hand it leaves behind, minus the cost of the cards it spends.
func BuildScoredMoves(hand []domain.Card, moves []ValidMove, weights PhaseWeights, threat bool) []ScoredMove {
	scored := make([]ScoredMove, 0, len(moves))
	for _, move := range moves {
		remaining := domain.RemoveCards(hand, move.Cards)
		profile := ProfileHand(remaining)
		score := scoreHandWithProfile(remaining, profile, weights)

		if len(remaining) == 0 {
			score += weights.FinishBonus
		}

		anchor := float64(move.Combo.Anchor.Rank)
		score -= weights.UseHighCardPenalty * anchor
		score -= weights.UseTwoPenalty * float64(countRank(move.Cards, domain.RankTwo))

		if threat && move.Combo.Kind == domain.Single {
			score += weights.BlockerHighCardBonus * anchor
		}

		scored = append(scored, ScoredMove{
			Move:             move,
			Score:            score,
			Remaining:        remaining,
			RemainingProfile: profile,
		})
	}
	return scored
}

// DetectThreat reports whether any other seat still in the match is at or below threshold cards.
func DetectThreat(counts [domain.NumSeats]int, seat int, threshold int) bool {
	if threshold <= 0 {
		return false
	}
	for s, n := range counts {
		if s == seat || n == 0 {
			continue
		}
		if n <= threshold {
			return true
		}
	}
	return false
}

func scoreHandWithProfile(hand []domain.Card, profile HandProfile, weights PhaseWeights) float64 {
	score := 0.0
	score += weights.HandScoreWeight * EvaluateHand(hand)
	score += weights.FiveCardWeight * float64(profile.FiveCardCombos)
	score += weights.TripleWeight * float64(profile.Triples)
	score += weights.PairWeight * float64(profile.Pairs)
	score += weights.SingleWeight * float64(profile.Singles)
	score += weights.ControlWeight * float64(profile.Controls)
	score += weights.TotalCardWeight * float64(profile.TotalCards)
	return score
}

func countRank(cards []domain.Card, rank int32) int {
	count := 0
	for _, c := range cards {
		if c.Rank == rank {
			count++
		}
	}
	return count
}
