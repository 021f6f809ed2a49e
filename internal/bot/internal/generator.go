package internal

import "bigtwo/internal/domain"

// ValidMove is a play the rules accept from the hand it was generated for.
type ValidMove struct {
	Cards []domain.Card
	Combo domain.Combo
}

// Constraint is what the table demands of the seat to act.
type Constraint struct {
	InPlay       *domain.Combo // nil when leading
	NextHoldsOne bool          // the next seat in rotation holds a single card
}

// leadSizes are the combo sizes a leader may open with.
var leadSizes = []int{1, 2, 3, 5}

// GetValidMoves returns every legal play. Leading allows any combination; following requires the
// in-play size and a stronger combo. When the next seat holds one card, the only legal single is the
// actor's highest card.
func GetValidMoves(hand []domain.Card, c Constraint) []ValidMove {
	cards := domain.SortedCopy(hand)
	sizes := leadSizes
	if c.InPlay != nil {
		sizes = []int{c.InPlay.Size()}
	}

	var highest domain.Card
	if c.NextHoldsOne {
		highest, _ = domain.HighestSingle(cards)
	}

	var moves []ValidMove
	for _, n := range sizes {
		forEachSubset(cards, n, func(sub []domain.Card) {
			combo := domain.Classify(sub)
			if !combo.Valid() {
				return
			}
			if c.InPlay != nil && !domain.Beats(combo, *c.InPlay) {
				return
			}
			if c.NextHoldsOne && combo.Kind == domain.Single && combo.Anchor != highest {
				return
			}
			moves = append(moves, ValidMove{Cards: combo.Cards, Combo: combo})
		})
	}
	return moves
}

// CanPass reports whether passing is legal: never while leading, and not when the next seat holds one
// card and the hand could beat the play.
func CanPass(hand []domain.Card, c Constraint) bool {
	if c.InPlay == nil {
		return false
	}
	return !(c.NextHoldsOne && domain.HoldsBeating(hand, *c.InPlay))
}

// forEachSubset calls fn with every n-card subset of cards in lexicographic index order. fn must not keep sub.
func forEachSubset(cards []domain.Card, n int, fn func(sub []domain.Card)) {
	if n <= 0 || n > len(cards) {
		return
	}
	sub := make([]domain.Card, n)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == n {
			fn(sub)
			return
		}
		for i := start; i <= len(cards)-(n-depth); i++ {
			sub[depth] = cards[i]
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
}
