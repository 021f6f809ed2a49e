package domain

import (
	"testing"
)

func TestPenalty(t *testing.T) {
	rules := DefaultScoreRules()
	tests := []struct {
		remaining int
		want      int
	}{
		{0, 0},
		{1, 1},
		{9, 9},
		{10, 20},
		{12, 24},
		{13, 39},
	}
	for _, tt := range tests {
		if got := rules.Penalty(tt.remaining); got != tt.want {
			t.Errorf("Penalty(%d) = %d, want %d", tt.remaining, got, tt.want)
		}
	}
}

func TestScoreRulesValidate(t *testing.T) {
	tests := []struct {
		name    string
		rules   ScoreRules
		wantErr bool
	}{
		{name: "defaults", rules: DefaultScoreRules()},
		{name: "flat", rules: ScoreRules{Bands: []ScoreBand{{MinCards: 1, MaxCards: 13, Rate: 1}}, Limit: 50}},
		{name: "no limit", rules: ScoreRules{Bands: DefaultScoreRules().Bands}, wantErr: true},
		{name: "no bands", rules: ScoreRules{Limit: 100}, wantErr: true},
		{name: "overlap", rules: ScoreRules{Bands: []ScoreBand{{1, 9, 1}, {9, 13, 2}}, Limit: 100}, wantErr: true},
		{name: "inverted", rules: ScoreRules{Bands: []ScoreBand{{5, 1, 1}}, Limit: 100}, wantErr: true},
		{name: "decreasing rate", rules: ScoreRules{Bands: []ScoreBand{{1, 9, 2}, {10, 13, 1}}, Limit: 100}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rules.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScoreMatchSkipsWinner(t *testing.T) {
	res := ScoreMatch(3, 2, [NumSeats]int{4, 11, 0, 13}, DefaultScoreRules())
	want := [NumSeats]int{4, 22, 0, 39}
	if res.Points != want {
		t.Fatalf("Points = %v, want %v", res.Points, want)
	}
	if res.Match != 3 || res.Winner != 2 {
		t.Fatalf("result header = %+v", res)
	}
}

func TestScoreSheet(t *testing.T) {
	var s ScoreSheet
	s.Record(MatchResult{Match: 1, Points: [NumSeats]int{0, 39, 20, 2}})
	s.Record(MatchResult{Match: 2, Points: [NumSeats]int{5, 0, 30, 9}})

	if s.Totals != [NumSeats]int{5, 39, 50, 11} {
		t.Fatalf("Totals = %v", s.Totals)
	}
	if len(s.History) != 2 {
		t.Fatalf("History has %d entries", len(s.History))
	}
	if s.Reached(100) || !s.Reached(50) {
		t.Fatalf("Reached gave wrong answers for totals %v", s.Totals)
	}
	if got := s.Leader(); got != 0 {
		t.Fatalf("Leader() = %d, want 0", got)
	}

	tied := ScoreSheet{Totals: [NumSeats]int{40, 12, 12, 90}}
	if got := tied.Leader(); got != 1 {
		t.Fatalf("Leader() with tie = %d, want 1", got)
	}
}
