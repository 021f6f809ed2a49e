package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Suits from lowest to highest.
const (
	SuitSpades int32 = iota
	SuitClubs
	SuitDiamonds
	SuitHearts
)

// Ranks from lowest to highest. Two is the strongest rank.
const (
	RankThree int32 = iota
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
	RankAce
	RankTwo
)

const (
	// DeckSize is the number of distinct cards in a game.
	DeckSize = 52
	// HandSize is the number of cards dealt to each seat.
	HandSize = 13
	// NumRanks is the number of distinct ranks.
	NumRanks = 13
	// NumSuits is the number of distinct suits.
	NumSuits = 4
)

var (
	rankNames = [NumRanks]string{"3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A", "2"}
	suitNames = [NumSuits]string{"S", "C", "D", "H"}
)

// Card is a single playing card.
type Card struct {
	Rank int32 `json:"rank"` // 0..12 (3=0, A=11, 2=12)
	Suit int32 `json:"suit"` // 0..3 (S, C, D, H)
}

// OpeningCard is the card whose holder leads the first trick of every match.
var OpeningCard = Card{Rank: RankThree, Suit: SuitSpades}

// Valid reports whether the card is one of the 52 identities.
func (c Card) Valid() bool {
	return c.Rank >= RankThree && c.Rank <= RankTwo && c.Suit >= SuitSpades && c.Suit <= SuitHearts
}

// Power orders cards by rank first and suit second.
func (c Card) Power() int32 {
	return CardPower(c)
}

// String renders the card as rank followed by suit letter, e.g. "10H".
func (c Card) String() string {
	if !c.Valid() {
		return fmt.Sprintf("?%d/%d", c.Rank, c.Suit)
	}
	return rankNames[c.Rank] + suitNames[c.Suit]
}

// CardPower returns the total-order power of a card (0..51).
func CardPower(c Card) int32 {
	return c.Rank*4 + c.Suit
}

// CardFromPower is the inverse of CardPower.
func CardFromPower(p int32) Card {
	return Card{Rank: p / 4, Suit: p % 4}
}

// ParseCard parses the String form of a card. Rank and suit letters are case-insensitive.
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	rankPart, suitPart := s[:len(s)-1], s[len(s)-1:]

	rank := int32(-1)
	for i, name := range rankNames {
		if name == rankPart {
			rank = int32(i)
			break
		}
	}
	suit := int32(-1)
	for i, name := range suitNames {
		if name == suitPart {
			suit = int32(i)
			break
		}
	}
	if rank < 0 || suit < 0 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCards parses a list of card strings.
func ParseCards(ss []string) ([]Card, error) {
	out := make([]Card, 0, len(ss))
	for _, s := range ss {
		c, err := ParseCard(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// MustParseCards is ParseCards for literals known to be valid.
func MustParseCards(ss ...string) []Card {
	cards, err := ParseCards(ss)
	if err != nil {
		panic(err)
	}
	return cards
}

// CardStrings renders cards with String.
func CardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// SortHand orders a hand by ascending power.
func SortHand(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return CardPower(cards[i]) < CardPower(cards[j])
	})
}

// SortedCopy returns the cards ordered by ascending power without touching the input.
func SortedCopy(cards []Card) []Card {
	out := append([]Card(nil), cards...)
	SortHand(out)
	return out
}
