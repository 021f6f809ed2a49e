package domain

// ComboKind is the discriminant of a combination. Five-card kinds are declared in strength order.
type ComboKind int

const (
	Invalid ComboKind = iota
	Single
	Pair
	Triple
	Straight
	Flush
	FullHouse
	FourOfAKind // four of a kind plus one kicker
	StraightFlush
)

var comboKindNames = map[ComboKind]string{
	Invalid:       "invalid",
	Single:        "single",
	Pair:          "pair",
	Triple:        "triple",
	Straight:      "straight",
	Flush:         "flush",
	FullHouse:     "full_house",
	FourOfAKind:   "four_of_a_kind",
	StraightFlush: "straight_flush",
}

func (k ComboKind) String() string {
	if name, ok := comboKindNames[k]; ok {
		return name
	}
	return "unknown"
}

func (k ComboKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ComboKind) UnmarshalText(text []byte) error {
	*k = ParseComboKind(string(text))
	return nil
}

// ParseComboKind is the inverse of ComboKind.String.
func ParseComboKind(s string) ComboKind {
	for k, name := range comboKindNames {
		if name == s {
			return k
		}
	}
	return Invalid
}

// Size returns the cardinality every combo of this kind has.
func (k ComboKind) Size() int {
	switch k {
	case Single:
		return 1
	case Pair:
		return 2
	case Triple:
		return 3
	case Straight, Flush, FullHouse, FourOfAKind, StraightFlush:
		return 5
	default:
		return 0
	}
}

// fiveCardKinds lists the five-card kinds from strongest to weakest.
var fiveCardKinds = []ComboKind{StraightFlush, FourOfAKind, FullHouse, Flush, Straight}

// Combo is a classified set of cards.
type Combo struct {
	Kind   ComboKind `json:"kind"`
	Cards  []Card    `json:"cards"`  // ascending power
	Anchor Card      `json:"anchor"` // the card that decides strength within the kind
}

// Valid reports whether the combo is playable.
func (c Combo) Valid() bool {
	return c.Kind != Invalid
}

// Size returns the number of cards in the combo.
func (c Combo) Size() int {
	return len(c.Cards)
}

// Classify determines the combination formed by cards. Any malformed input yields Kind == Invalid.
func Classify(cards []Card) Combo {
	n := len(cards)
	if n != 1 && n != 2 && n != 3 && n != 5 {
		return Combo{Kind: Invalid}
	}
	for _, c := range cards {
		if !c.Valid() {
			return Combo{Kind: Invalid}
		}
	}
	if HasDuplicates(cards) {
		return Combo{Kind: Invalid}
	}

	sorted := SortedCopy(cards)
	highest := sorted[n-1]

	switch n {
	case 1:
		return Combo{Kind: Single, Cards: sorted, Anchor: highest}
	case 2, 3:
		if !allSameRank(sorted) {
			return Combo{Kind: Invalid}
		}
		kind := Pair
		if n == 3 {
			kind = Triple
		}
		return Combo{Kind: kind, Cards: sorted, Anchor: highest}
	}

	return classifyFive(sorted)
}

// classifyFive checks discriminants from strongest to weakest.
func classifyFive(sorted []Card) Combo {
	var rankCounts [NumRanks]int
	for _, c := range sorted {
		rankCounts[c.Rank]++
	}
	straight := isStraight(sorted)
	flush := isFlush(sorted)
	highest := sorted[len(sorted)-1]

	if straight && flush {
		return Combo{Kind: StraightFlush, Cards: sorted, Anchor: highest}
	}

	var quadRank, tripleRank int32 = -1, -1
	pairs := 0
	for r, n := range rankCounts {
		switch n {
		case 4:
			quadRank = int32(r)
		case 3:
			tripleRank = int32(r)
		case 2:
			pairs++
		}
	}
	if quadRank >= 0 {
		return Combo{Kind: FourOfAKind, Cards: sorted, Anchor: highestOfRank(sorted, quadRank)}
	}
	if tripleRank >= 0 && pairs == 1 {
		return Combo{Kind: FullHouse, Cards: sorted, Anchor: highestOfRank(sorted, tripleRank)}
	}
	if flush {
		return Combo{Kind: Flush, Cards: sorted, Anchor: highest}
	}
	if straight {
		return Combo{Kind: Straight, Cards: sorted, Anchor: highest}
	}
	return Combo{Kind: Invalid}
}

// Beats reports whether candidate is strictly stronger than reference. Combos of different sizes never compare.
func Beats(candidate, reference Combo) bool {
	if !candidate.Valid() || !reference.Valid() {
		return false
	}
	if candidate.Size() != reference.Size() {
		return false
	}
	if candidate.Size() == 5 && candidate.Kind != reference.Kind {
		return candidate.Kind > reference.Kind
	}
	if candidate.Kind != reference.Kind {
		return false
	}
	return CardPower(candidate.Anchor) > CardPower(reference.Anchor)
}

func allSameRank(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	r := cards[0].Rank
	for _, c := range cards {
		if c.Rank != r {
			return false
		}
	}
	return true
}

// isStraight expects cards sorted by power. Twos never form part of a straight, so A-2-3-4-5 and 2-3-4-5-6 are rejected.
func isStraight(sorted []Card) bool {
	if len(sorted) != 5 {
		return false
	}
	for i, c := range sorted {
		if c.Rank == RankTwo {
			return false
		}
		if i > 0 && c.Rank != sorted[i-1].Rank+1 {
			return false
		}
	}
	return true
}

func isFlush(cards []Card) bool {
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

func highestOfRank(sorted []Card, rank int32) Card {
	var best Card
	for _, c := range sorted {
		if c.Rank == rank {
			best = c
		}
	}
	return best
}
