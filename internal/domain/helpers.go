package domain

// LowestAvailableSeat returns the lowest index of an empty seat, or -1 when every seat is taken.
func LowestAvailableSeat(seats *[NumSeats]string) int {
	for i, userID := range seats {
		if userID == "" {
			return i
		}
	}
	return -1
}

// RemoveCards removes the specified cards from a hand and returns the updated hand.
func RemoveCards(hand []Card, toRemove []Card) []Card {
	if len(toRemove) == 0 || len(hand) == 0 {
		return hand
	}

	removeCounts := make(map[Card]int, len(toRemove))
	for _, card := range toRemove {
		removeCounts[card]++
	}

	updated := make([]Card, 0, len(hand))
	for _, card := range hand {
		if count, ok := removeCounts[card]; ok && count > 0 {
			removeCounts[card] = count - 1
			continue
		}
		updated = append(updated, card)
	}

	return updated
}

// HoldsAll reports whether every card in cards is present in hand.
func HoldsAll(hand []Card, cards []Card) bool {
	return NewCardSet(hand).ContainsAll(cards)
}

// HasDuplicates reports whether any card appears more than once.
func HasDuplicates(cards []Card) bool {
	var seen CardSet
	for _, c := range cards {
		if seen.Contains(c) {
			return true
		}
		seen = seen.Add(c)
	}
	return false
}

// SeatHolding returns the seat whose hand contains c, or -1.
func SeatHolding(hands [NumSeats][]Card, c Card) int {
	for seat, hand := range hands {
		for _, held := range hand {
			if held == c {
				return seat
			}
		}
	}
	return -1
}
