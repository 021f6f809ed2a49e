package domain

import (
	"reflect"
	"testing"
)

func TestDefaultRotationIsAnticlockwise(t *testing.T) {
	want := map[int]int{0: 3, 3: 2, 2: 1, 1: 0}
	for seat, next := range want {
		if got := DefaultRotation.Next(seat); got != next {
			t.Fatalf("Next(%d) = %d, want %d", seat, got, next)
		}
		if got := DefaultRotation.Next(seat); got == (seat+1)%NumSeats {
			t.Fatalf("Next(%d) = %d matches seat+1", seat, got)
		}
	}
	if !DefaultRotation.Valid() {
		t.Fatalf("default rotation is not a single cycle")
	}
}

func TestNewRotation(t *testing.T) {
	tests := []struct {
		name    string
		order   []int
		want    Rotation
		wantErr bool
	}{
		{name: "clockwise", order: []int{0, 1, 2, 3}, want: Rotation{1, 2, 3, 0}},
		{name: "custom", order: []int{2, 0, 3, 1}, want: Rotation{3, 2, 0, 1}},
		{name: "too short", order: []int{0, 1, 2}, wantErr: true},
		{name: "repeated seat", order: []int{0, 1, 1, 3}, wantErr: true},
		{name: "seat out of range", order: []int{0, 1, 2, 4}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRotation(tt.order)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewRotation(%v) = %v, want error", tt.order, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRotation(%v) error: %v", tt.order, err)
			}
			if got != tt.want {
				t.Fatalf("NewRotation(%v) = %v, want %v", tt.order, got, tt.want)
			}
		})
	}
}

func TestRotationOrder(t *testing.T) {
	if got := DefaultRotation.Order(2); !reflect.DeepEqual(got, []int{2, 1, 0, 3}) {
		t.Fatalf("Order(2) = %v", got)
	}
	if (Rotation{1, 0, 3, 2}).Valid() {
		t.Fatalf("two 2-cycles reported as valid")
	}
}
