package domain

import "fmt"

// NumSeats is the fixed number of seats at a table.
const NumSeats = 4

// Rotation maps a seat to the seat that acts after it. It is a lookup table built from a seat
// order, never seat+1 arithmetic.
type Rotation [NumSeats]int

// DefaultSeatOrder is anticlockwise play around seats numbered clockwise: 0, 3, 2, 1.
var DefaultSeatOrder = []int{0, 3, 2, 1}

// DefaultRotation is the rotation built from DefaultSeatOrder.
var DefaultRotation = MustRotation(DefaultSeatOrder)

// NewRotation builds the lookup table from the order seats act in. The order must list every seat once.
func NewRotation(order []int) (Rotation, error) {
	var r Rotation
	if len(order) != NumSeats {
		return r, fmt.Errorf("seat order must list %d seats, got %d", NumSeats, len(order))
	}
	var seen [NumSeats]bool
	for _, seat := range order {
		if seat < 0 || seat >= NumSeats {
			return r, fmt.Errorf("seat %d out of range", seat)
		}
		if seen[seat] {
			return r, fmt.Errorf("seat %d listed twice", seat)
		}
		seen[seat] = true
	}
	for i, seat := range order {
		r[seat] = order[(i+1)%len(order)]
	}
	return r, nil
}

// MustRotation is NewRotation for orders known to be valid.
func MustRotation(order []int) Rotation {
	r, err := NewRotation(order)
	if err != nil {
		panic(err)
	}
	return r
}

// Next returns the seat that acts after seat.
func (r Rotation) Next(seat int) int {
	return r[seat]
}

// Order lists seats in acting order starting from seat.
func (r Rotation) Order(from int) []int {
	out := make([]int, 0, NumSeats)
	seat := from
	for i := 0; i < NumSeats; i++ {
		out = append(out, seat)
		seat = r.Next(seat)
	}
	return out
}

// Valid reports whether the table is a single cycle through all seats.
func (r Rotation) Valid() bool {
	seat := 0
	var seen [NumSeats]bool
	for i := 0; i < NumSeats; i++ {
		if seat < 0 || seat >= NumSeats || seen[seat] {
			return false
		}
		seen[seat] = true
		seat = r[seat]
	}
	return seat == 0
}
