package internal

import "bigtwo/internal/domain"

// GamePhase describes the current strategic stage of a match.
type GamePhase int

const (
	// PhaseOpening indicates every seat still holds a full hand.
	PhaseOpening GamePhase = iota
	// PhaseMid indicates no seat has reached the endgame threshold yet.
	PhaseMid
	// PhaseEnd indicates some seat holds endGameCards or fewer.
	PhaseEnd
)

const endGameCards = 5

func (p GamePhase) String() string {
	switch p {
	case PhaseOpening:
		return "opening"
	case PhaseEnd:
		return "end"
	default:
		return "mid"
	}
}

// DetectPhase infers the phase from the public card counts.
func DetectPhase(counts [domain.NumSeats]int) GamePhase {
	opening := true
	for _, n := range counts {
		if n <= endGameCards {
			return PhaseEnd
		}
		if n != domain.HandSize {
			opening = false
		}
	}
	if opening {
		return PhaseOpening
	}
	return PhaseMid
}
