package domain

// Pool is a count table over a set of cards. It answers "can these cards still form X" questions
// in time proportional to the number of ranks and suits, never by enumerating five-card subsets.
type Pool struct {
	set        CardSet
	rankCounts [NumRanks]int
	suitCounts [NumSuits]int
}

// NewPool indexes the given set.
func NewPool(set CardSet) Pool {
	p := Pool{set: set}
	for _, c := range set.Cards() {
		p.rankCounts[c.Rank]++
		p.suitCounts[c.Suit]++
	}
	return p
}

// PoolOf indexes a slice of cards, e.g. a hand.
func PoolOf(cards []Card) Pool {
	return NewPool(NewCardSet(cards))
}

// Len returns the number of cards in the pool.
func (p Pool) Len() int {
	return p.set.Len()
}

func (p Pool) has(rank, suit int32) bool {
	return p.set.Contains(Card{Rank: rank, Suit: suit})
}

// topOfRank returns up to n cards of the rank, highest suits first.
func (p Pool) topOfRank(rank int32, n int) []Card {
	out := make([]Card, 0, n)
	for s := SuitHearts; s >= SuitSpades && len(out) < n; s-- {
		if p.has(rank, s) {
			out = append(out, Card{Rank: rank, Suit: s})
		}
	}
	return out
}

func (p Pool) highestSuitOf(rank int32) Card {
	return p.topOfRank(rank, 1)[0]
}

// Best returns the strongest combo of the given kind that can be built from the pool.
func (p Pool) Best(kind ComboKind) (Combo, bool) {
	switch kind {
	case Single:
		return p.bestSameRank(Single, 1)
	case Pair:
		return p.bestSameRank(Pair, 2)
	case Triple:
		return p.bestSameRank(Triple, 3)
	case Straight:
		return p.bestStraight()
	case Flush:
		return p.bestFlush()
	case FullHouse:
		return p.bestFullHouse()
	case FourOfAKind:
		return p.bestFourOfAKind()
	case StraightFlush:
		return p.bestStraightFlush()
	default:
		return Combo{}, false
	}
}

// Has reports whether at least one combo of the kind can be built from the pool.
func (p Pool) Has(kind ComboKind) bool {
	_, ok := p.Best(kind)
	return ok
}

func (p Pool) bestSameRank(kind ComboKind, n int) (Combo, bool) {
	for r := RankTwo; r >= RankThree; r-- {
		if p.rankCounts[r] < n {
			continue
		}
		cards := p.topOfRank(r, n)
		SortHand(cards)
		return Combo{Kind: kind, Cards: cards, Anchor: cards[len(cards)-1]}, true
	}
	return Combo{}, false
}

// bestStraight walks top ranks from A down to 7, the top of 3-4-5-6-7.
func (p Pool) bestStraight() (Combo, bool) {
	for top := RankAce; top >= RankSeven; top-- {
		ok := true
		for r := top - 4; r <= top; r++ {
			if p.rankCounts[r] == 0 {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		cards := make([]Card, 0, 5)
		for r := top - 4; r <= top; r++ {
			cards = append(cards, p.highestSuitOf(r))
		}
		return Combo{Kind: Straight, Cards: cards, Anchor: cards[4]}, true
	}
	return Combo{}, false
}

func (p Pool) bestFlush() (Combo, bool) {
	var best Combo
	found := false
	for s := SuitSpades; s <= SuitHearts; s++ {
		if p.suitCounts[s] < 5 {
			continue
		}
		cards := make([]Card, 0, 5)
		for r := RankTwo; r >= RankThree && len(cards) < 5; r-- {
			if p.has(r, s) {
				cards = append(cards, Card{Rank: r, Suit: s})
			}
		}
		SortHand(cards)
		candidate := Combo{Kind: Flush, Cards: cards, Anchor: cards[4]}
		if !found || CardPower(candidate.Anchor) > CardPower(best.Anchor) {
			best, found = candidate, true
		}
	}
	return best, found
}

func (p Pool) bestFullHouse() (Combo, bool) {
	for r := RankTwo; r >= RankThree; r-- {
		if p.rankCounts[r] < 3 {
			continue
		}
		for k := RankThree; k <= RankTwo; k++ {
			if k == r || p.rankCounts[k] < 2 {
				continue
			}
			cards := append(p.topOfRank(r, 3), p.topOfRank(k, 2)...)
			SortHand(cards)
			return Combo{Kind: FullHouse, Cards: cards, Anchor: p.highestSuitOf(r)}, true
		}
	}
	return Combo{}, false
}

func (p Pool) bestFourOfAKind() (Combo, bool) {
	if p.Len() < 5 {
		return Combo{}, false
	}
	for r := RankTwo; r >= RankThree; r-- {
		if p.rankCounts[r] < 4 {
			continue
		}
		quad := p.topOfRank(r, 4)
		var kicker Card
		for _, c := range p.set.Cards() {
			if c.Rank != r {
				kicker = c
				break
			}
		}
		cards := append(quad, kicker)
		SortHand(cards)
		return Combo{Kind: FourOfAKind, Cards: cards, Anchor: Card{Rank: r, Suit: SuitHearts}}, true
	}
	return Combo{}, false
}

func (p Pool) bestStraightFlush() (Combo, bool) {
	var best Combo
	found := false
	for s := SuitSpades; s <= SuitHearts; s++ {
		if p.suitCounts[s] < 5 {
			continue
		}
		for top := RankAce; top >= RankSeven; top-- {
			ok := true
			for r := top - 4; r <= top; r++ {
				if !p.has(r, s) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			cards := make([]Card, 0, 5)
			for r := top - 4; r <= top; r++ {
				cards = append(cards, Card{Rank: r, Suit: s})
			}
			candidate := Combo{Kind: StraightFlush, Cards: cards, Anchor: cards[4]}
			if !found || CardPower(candidate.Anchor) > CardPower(best.Anchor) {
				best, found = candidate, true
			}
			break
		}
	}
	return best, found
}

// CanBeat reports whether the pool holds any combo that beats ref.
func (p Pool) CanBeat(ref Combo) bool {
	if !ref.Valid() {
		return false
	}
	if ref.Size() == 5 {
		for _, kind := range fiveCardKinds {
			if kind <= ref.Kind {
				break
			}
			if p.Has(kind) {
				return true
			}
		}
	}
	best, ok := p.Best(ref.Kind)
	return ok && Beats(best, ref)
}

// IsUnbeatable reports whether no combination of the cards outside ledger and play can beat play.
// The ledger may or may not already contain the play's cards. The answer is recomputed on every call.
func IsUnbeatable(play Combo, ledger CardSet) bool {
	if !play.Valid() {
		return false
	}
	remaining := FullDeck &^ ledger &^ NewCardSet(play.Cards)
	return !NewPool(remaining).CanBeat(play)
}

// HoldsBeating reports whether hand contains any combo that beats ref.
func HoldsBeating(hand []Card, ref Combo) bool {
	return PoolOf(hand).CanBeat(ref)
}

// HighestSingle returns the highest card among cards.
func HighestSingle(cards []Card) (Card, bool) {
	if len(cards) == 0 {
		return Card{}, false
	}
	best := cards[0]
	for _, c := range cards[1:] {
		if CardPower(c) > CardPower(best) {
			best = c
		}
	}
	return best, true
}
