package domain

// Ledger holds every card that left a hand through an accepted play in the current match.
type Ledger struct {
	Played CardSet `json:"played"`
}

// Record adds the cards of an accepted play. A card recorded twice means the game state is corrupt.
func (l *Ledger) Record(cards []Card) error {
	for _, c := range cards {
		if !c.Valid() {
			return invariantf("ledger: card %v is not a deck identity", c)
		}
		if l.Played.Contains(c) {
			return invariantf("ledger: card %s played twice", c)
		}
	}
	for _, c := range cards {
		l.Played = l.Played.Add(c)
	}
	return nil
}

// Len returns the number of cards exposed so far.
func (l Ledger) Len() int {
	return l.Played.Len()
}

// Reset empties the ledger at the start of a match.
func (l *Ledger) Reset() {
	l.Played = 0
}
