package internal

import (
	"testing"

	"bigtwo/internal/domain"
)

func TestProfileHand(t *testing.T) {
	hand := domain.MustParseCards("3S", "4H", "5D", "6C", "7S", "9S", "9H", "KD", "2C")

	got := ProfileHand(hand)
	want := HandProfile{FiveCardCombos: 1, Pairs: 1, Singles: 2, Controls: 1, TotalCards: 9}
	if got != want {
		t.Fatalf("ProfileHand = %+v, want %+v", got, want)
	}
}

func TestProfileHand_QuadWithoutKicker(t *testing.T) {
	got := ProfileHand(domain.MustParseCards("8S", "8C", "8D", "8H"))
	if got.Pairs != 2 || got.FiveCardCombos != 0 {
		t.Fatalf("ProfileHand = %+v, want two pairs and no five-card combo", got)
	}
}

func TestBuildScoredMoves_FinishingWins(t *testing.T) {
	weights := PhaseWeights{TotalCardWeight: -1, FinishBonus: 1000}
	hand := domain.MustParseCards("5S", "9H")
	moves := GetValidMoves(hand, Constraint{InPlay: combo("4S")})

	scored := BuildScoredMoves(hand, moves, weights, false)
	if len(scored) != 2 {
		t.Fatalf("scored = %d, want 2", len(scored))
	}
	for _, s := range scored {
		if len(s.Remaining) != 1 {
			t.Errorf("remaining = %d cards, want 1", len(s.Remaining))
		}
	}

	hand = domain.MustParseCards("9H")
	scored = BuildScoredMoves(hand, GetValidMoves(hand, Constraint{}), weights, false)
	if len(scored) != 1 || scored[0].Score < weights.FinishBonus {
		t.Fatalf("finishing move should carry the bonus, got %+v", scored)
	}
}

func TestBuildScoredMoves_TwoPenalty(t *testing.T) {
	weights := PhaseWeights{UseTwoPenalty: 5}
	hand := domain.MustParseCards("6S", "2H")
	scored := BuildScoredMoves(hand, GetValidMoves(hand, Constraint{InPlay: combo("5S")}), weights, false)
	if len(scored) != 2 {
		t.Fatalf("scored = %d, want 2", len(scored))
	}
	var six, two float64
	for _, s := range scored {
		if s.Move.Combo.Anchor.Rank == domain.RankTwo {
			two = s.Score
		} else {
			six = s.Score
		}
	}
	if two >= six {
		t.Errorf("spending a two should score lower: two=%v six=%v", two, six)
	}
}

func TestDetectThreat(t *testing.T) {
	tests := []struct {
		counts [4]int
		seat   int
		want   bool
	}{
		{[4]int{13, 2, 13, 13}, 0, true},
		{[4]int{13, 2, 13, 13}, 1, false},
		{[4]int{0, 9, 9, 9}, 1, false},
		{[4]int{4, 9, 9, 9}, 1, false},
	}
	for _, tt := range tests {
		if got := DetectThreat(tt.counts, tt.seat, 3); got != tt.want {
			t.Errorf("DetectThreat(%v, %d) = %v, want %v", tt.counts, tt.seat, got, tt.want)
		}
	}
	if DetectThreat([4]int{1, 1, 1, 1}, 0, 0) {
		t.Error("a zero threshold never signals a threat")
	}
}

func TestBotTuningForPhase(t *testing.T) {
	tuning := BotTuning{
		Opening: PhaseWeights{FinishBonus: 1},
		Mid:     PhaseWeights{FinishBonus: 2},
		End:     PhaseWeights{FinishBonus: 3},
	}
	for phase, want := range map[GamePhase]float64{PhaseOpening: 1, PhaseMid: 2, PhaseEnd: 3} {
		if got := tuning.ForPhase(phase).FinishBonus; got != want {
			t.Errorf("ForPhase(%v) = %v, want %v", phase, got, want)
		}
	}
}
