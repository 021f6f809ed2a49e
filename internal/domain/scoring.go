package domain

import "fmt"

// ScoreBand charges Rate points per remaining card when a loser holds between MinCards and MaxCards.
type ScoreBand struct {
	MinCards int `json:"min_cards"`
	MaxCards int `json:"max_cards"`
	Rate     int `json:"rate"`
}

// ScoreRules configures match penalties and the game-ending threshold.
type ScoreRules struct {
	Bands []ScoreBand `json:"bands"`
	Limit int         `json:"limit"`
}

// DefaultScoreRules: 1-9 cards cost 1 each, 10-12 cost 2 each, a full hand costs 3 each; the game ends at 100.
func DefaultScoreRules() ScoreRules {
	return ScoreRules{
		Bands: []ScoreBand{
			{MinCards: 1, MaxCards: 9, Rate: 1},
			{MinCards: 10, MaxCards: 12, Rate: 2},
			{MinCards: 13, MaxCards: 13, Rate: 3},
		},
		Limit: 100,
	}
}

// Validate checks that bands are ordered, non-overlapping, and that rates never decrease.
func (r ScoreRules) Validate() error {
	if r.Limit <= 0 {
		return fmt.Errorf("score limit must be positive, got %d", r.Limit)
	}
	if len(r.Bands) == 0 {
		return fmt.Errorf("at least one score band is required")
	}
	prev := ScoreBand{MaxCards: 0}
	for i, b := range r.Bands {
		if b.MinCards > b.MaxCards || b.MinCards <= prev.MaxCards {
			return fmt.Errorf("score band %d [%d,%d] overlaps or is inverted", i, b.MinCards, b.MaxCards)
		}
		if b.Rate < prev.Rate {
			return fmt.Errorf("score band %d rate %d is lower than the previous band", i, b.Rate)
		}
		prev = b
	}
	return nil
}

// Penalty returns the points charged for holding remaining cards when the match ends.
func (r ScoreRules) Penalty(remaining int) int {
	for _, b := range r.Bands {
		if remaining >= b.MinCards && remaining <= b.MaxCards {
			return remaining * b.Rate
		}
	}
	if remaining > 0 && len(r.Bands) > 0 {
		return remaining * r.Bands[len(r.Bands)-1].Rate
	}
	return 0
}

// MatchResult is the outcome of a single match.
type MatchResult struct {
	Match     int           `json:"match"`
	Winner    int           `json:"winner"`
	Remaining [NumSeats]int `json:"remaining"`
	Points    [NumSeats]int `json:"points"`
}

// ScoreMatch charges every seat except the winner for the cards they still hold.
func ScoreMatch(match, winner int, remaining [NumSeats]int, rules ScoreRules) MatchResult {
	res := MatchResult{Match: match, Winner: winner, Remaining: remaining}
	for seat := 0; seat < NumSeats; seat++ {
		if seat == winner {
			continue
		}
		res.Points[seat] = rules.Penalty(remaining[seat])
	}
	return res
}

// ScoreSheet accumulates match results across a game.
type ScoreSheet struct {
	Totals  [NumSeats]int `json:"totals"`
	History []MatchResult `json:"history"`
}

// Record adds a match result to the running totals.
func (s *ScoreSheet) Record(res MatchResult) {
	for seat, pts := range res.Points {
		s.Totals[seat] += pts
	}
	s.History = append(s.History, res)
}

// Reached reports whether any seat's total is at or above limit.
func (s ScoreSheet) Reached(limit int) bool {
	for _, total := range s.Totals {
		if total >= limit {
			return true
		}
	}
	return false
}

// Leader returns the seat with the lowest total. Ties go to the lowest seat index.
func (s ScoreSheet) Leader() int {
	best := 0
	for seat := 1; seat < NumSeats; seat++ {
		if s.Totals[seat] < s.Totals[best] {
			best = seat
		}
	}
	return best
}
