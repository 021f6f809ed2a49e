package domain

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestLowestAvailableSeat(t *testing.T) {
	tests := []struct {
		name  string
		seats [4]string
		want  int
	}{
		{name: "all empty", seats: [4]string{"", "", "", ""}, want: 0},
		{name: "first taken", seats: [4]string{"u1", "", "", ""}, want: 1},
		{name: "gap in the middle", seats: [4]string{"u1", "", "u3", ""}, want: 1},
		{name: "full", seats: [4]string{"u1", "u2", "u3", "u4"}, want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LowestAvailableSeat(&tt.seats); got != tt.want {
				t.Fatalf("LowestAvailableSeat() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("deck size = %d, want %d", len(deck), DeckSize)
	}
	if NewCardSet(deck) != FullDeck {
		t.Fatalf("deck does not cover every identity")
	}
	for i, c := range deck {
		if CardPower(c) != int32(i) {
			t.Fatalf("deck[%d] = %s has power %d", i, c, CardPower(c))
		}
	}
}

func TestShuffleDeckIsDeterministic(t *testing.T) {
	a := ShuffleDeck(NewDeck(), rand.New(rand.NewSource(7)))
	b := ShuffleDeck(NewDeck(), rand.New(rand.NewSource(7)))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different decks")
	}
	if NewCardSet(a) != FullDeck {
		t.Fatalf("shuffle lost cards")
	}
}

func TestDealHands(t *testing.T) {
	hands := DealHands(42)
	var all CardSet
	for seat, hand := range hands {
		if len(hand) != HandSize {
			t.Fatalf("seat %d got %d cards", seat, len(hand))
		}
		for i := 1; i < len(hand); i++ {
			if CardPower(hand[i-1]) >= CardPower(hand[i]) {
				t.Fatalf("seat %d hand not sorted: %v", seat, hand)
			}
		}
		all |= NewCardSet(hand)
	}
	if all != FullDeck {
		t.Fatalf("dealt hands do not partition the deck")
	}
	if SeatHolding(hands, OpeningCard) < 0 {
		t.Fatalf("nobody holds the opening card")
	}
}

func TestRemoveCards(t *testing.T) {
	hand := MustParseCards("3S", "4H", "5D", "6S")
	got := RemoveCards(hand, MustParseCards("4H", "6S"))
	want := MustParseCards("3S", "5D")

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RemoveCards() = %v, want %v", got, want)
	}
	if len(hand) != 4 {
		t.Fatalf("input hand modified: %v", hand)
	}
}

func TestHoldsAllAndDuplicates(t *testing.T) {
	hand := MustParseCards("3S", "4H", "5D")
	if !HoldsAll(hand, MustParseCards("5D", "3S")) {
		t.Fatalf("HoldsAll rejected held cards")
	}
	if HoldsAll(hand, MustParseCards("5D", "2H")) {
		t.Fatalf("HoldsAll accepted a card not held")
	}
	if !HasDuplicates(MustParseCards("3S", "4H", "3S")) {
		t.Fatalf("HasDuplicates missed a repeat")
	}
}

func TestParseCard(t *testing.T) {
	tests := []struct {
		in      string
		want    Card
		wantErr bool
	}{
		{in: "3S", want: Card{Rank: RankThree, Suit: SuitSpades}},
		{in: "10h", want: Card{Rank: RankTen, Suit: SuitHearts}},
		{in: " AD ", want: Card{Rank: RankAce, Suit: SuitDiamonds}},
		{in: "2C", want: Card{Rank: RankTwo, Suit: SuitClubs}},
		{in: "1S", wantErr: true},
		{in: "3X", wantErr: true},
		{in: "S", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCard(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCard(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCard(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseCard(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if back, _ := ParseCard(got.String()); back != got {
				t.Fatalf("String round trip %s -> %v", got, back)
			}
		})
	}
}

func TestCardSet(t *testing.T) {
	cards := MustParseCards("2H", "3S", "10D")
	s := NewCardSet(cards)
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if !s.Contains(cards[2]) || s.Contains(MustParseCards("4S")[0]) {
		t.Fatalf("Contains gave wrong answers for %v", s.Cards())
	}
	if got := CardStrings(s.Cards()); !reflect.DeepEqual(got, []string{"3S", "10D", "2H"}) {
		t.Fatalf("Cards() = %v, want ascending power", got)
	}
	if FullDeck.Len() != DeckSize {
		t.Fatalf("FullDeck has %d cards", FullDeck.Len())
	}
}
