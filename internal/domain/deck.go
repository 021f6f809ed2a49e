package domain

import "math/rand"

// NewDeck returns a sorted 52-card deck.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for r := RankThree; r <= RankTwo; r++ {
		for s := SuitSpades; s <= SuitHearts; s++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// ShuffleDeck returns a copy of the deck shuffled with rng.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// MatchSeed derives the shuffle seed of a match from the game seed so every match of a game is reproducible.
func MatchSeed(gameSeed int64, match int) int64 {
	return gameSeed*1_000_003 + int64(match)
}

// DealHands shuffles a fresh deck and deals HandSize cards to each seat, sorted.
func DealHands(seed int64) [NumSeats][]Card {
	deck := ShuffleDeck(NewDeck(), rand.New(rand.NewSource(seed)))
	var hands [NumSeats][]Card
	for seat := 0; seat < NumSeats; seat++ {
		hand := append([]Card(nil), deck[seat*HandSize:(seat+1)*HandSize]...)
		SortHand(hand)
		hands[seat] = hand
	}
	return hands
}
