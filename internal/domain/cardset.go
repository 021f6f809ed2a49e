package domain

import "math/bits"

// CardSet is a set of card identities stored as a bitmask indexed by CardPower.
type CardSet uint64

// FullDeck contains all 52 cards.
const FullDeck CardSet = 1<<DeckSize - 1

// NewCardSet builds a set from cards. Invalid cards are ignored.
func NewCardSet(cards []Card) CardSet {
	var s CardSet
	for _, c := range cards {
		s = s.Add(c)
	}
	return s
}

// Add returns the set with c included.
func (s CardSet) Add(c Card) CardSet {
	if !c.Valid() {
		return s
	}
	return s | 1<<uint(CardPower(c))
}

// Contains reports whether c is in the set.
func (s CardSet) Contains(c Card) bool {
	return c.Valid() && s&(1<<uint(CardPower(c))) != 0
}

// ContainsAll reports whether every card is in the set.
func (s CardSet) ContainsAll(cards []Card) bool {
	for _, c := range cards {
		if !s.Contains(c) {
			return false
		}
	}
	return true
}

// Len returns the number of cards in the set.
func (s CardSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Cards lists the set in ascending power.
func (s CardSet) Cards() []Card {
	out := make([]Card, 0, s.Len())
	for rest := uint64(s); rest != 0; rest &= rest - 1 {
		out = append(out, CardFromPower(int32(bits.TrailingZeros64(rest))))
	}
	return out
}
