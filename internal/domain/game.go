package domain

// Game is the full rules state of one game: the current match's hands and ledger, the turn machine,
// and the score sheet carried across matches. It has no locking; callers serialize access.
type Game struct {
	Seed   int64            `json:"seed"`
	Match  int              `json:"match"`
	Hands  [NumSeats][]Card `json:"hands"`
	Ledger Ledger           `json:"ledger"`
	Turn   TurnState        `json:"turn"`
	Scores ScoreSheet       `json:"scores"`
	Rules  ScoreRules       `json:"rules"`
	Winner int              `json:"winner"` // -1 until the game is over
}

// Outcome describes everything an accepted action changed.
type Outcome struct {
	Seat        int
	Pass        bool
	Combo       *Combo
	TrickClosed bool
	Unbeatable  bool
	Match       *MatchResult
	GameOver    bool
	Winner      int
	NewMatch    bool
}

// NewGame deals the first match. The holder of the opening card leads.
func NewGame(seed int64, rotation Rotation, rules ScoreRules) (*Game, error) {
	if !rotation.Valid() {
		return nil, invariantf("rotation %v is not a single cycle", rotation)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		Seed:   seed,
		Rules:  rules,
		Winner: -1,
		Turn:   TurnState{Rotation: rotation},
	}
	g.startMatch()
	return g, nil
}

func (g *Game) startMatch() {
	g.Match++
	g.Hands = DealHands(MatchSeed(g.Seed, g.Match))
	g.Ledger.Reset()
	g.Turn = NewTurnState(g.Turn.Rotation, SeatHolding(g.Hands, OpeningCard))
}

// Over reports whether the game has ended.
func (g *Game) Over() bool {
	return g.Turn.Phase == PhaseGameOver
}

// Hand returns a copy of the seat's hand.
func (g *Game) Hand(seat int) []Card {
	if seat < 0 || seat >= NumSeats {
		return nil
	}
	return append([]Card(nil), g.Hands[seat]...)
}

// CardCounts returns how many cards each seat holds.
func (g *Game) CardCounts() [NumSeats]int {
	var out [NumSeats]int
	for seat, hand := range g.Hands {
		out[seat] = len(hand)
	}
	return out
}

// NextHoldsOneCard reports whether the seat acting after seat is down to its last card.
func (g *Game) NextHoldsOneCard(seat int) bool {
	return len(g.Hands[g.Turn.Rotation.Next(seat)]) == 1
}

func (g *Game) checkActor(seat int) error {
	if g.Over() {
		return ErrGameAlreadyOver
	}
	if seat < 0 || seat >= NumSeats {
		return reject(ReasonUnknownSeat, "seat %d", seat)
	}
	if !g.Turn.Open() {
		return reject(ReasonStaleAction, "turn machine is %s", g.Turn.Phase)
	}
	if seat != g.Turn.Current {
		return reject(ReasonNotYourTurn, "seat %d to act, not %d", g.Turn.Current, seat)
	}
	return nil
}

// CheckPlay validates a play without changing anything and returns the classified combo.
func (g *Game) CheckPlay(seat int, cards []Card) (Combo, error) {
	if err := g.checkActor(seat); err != nil {
		return Combo{}, err
	}
	combo := Classify(cards)
	if !combo.Valid() {
		return Combo{}, reject(ReasonInvalidCombo, "%v is not a combination", CardStrings(cards))
	}
	if !HoldsAll(g.Hands[seat], combo.Cards) {
		return Combo{}, reject(ReasonCardsNotHeld, "seat %d does not hold %v", seat, CardStrings(combo.Cards))
	}
	if inPlay := g.Turn.InPlay; inPlay != nil {
		if combo.Size() != inPlay.Size() {
			return Combo{}, reject(ReasonInvalidCombo, "must play %d cards, got %d", inPlay.Size(), combo.Size())
		}
		if !Beats(combo, *inPlay) {
			return Combo{}, reject(ReasonDoesNotBeat, "%s %v does not beat %s %v", combo.Kind, CardStrings(combo.Cards), inPlay.Kind, CardStrings(inPlay.Cards))
		}
	}
	if combo.Kind == Single && g.NextHoldsOneCard(seat) {
		highest, _ := HighestSingle(g.Hands[seat])
		if combo.Anchor != highest {
			return Combo{}, reject(ReasonLastCardRule, "seat %d holds one card; play %s, not %s", g.Turn.Rotation.Next(seat), highest, combo.Anchor)
		}
	}
	return combo, nil
}

// CheckPass validates a pass without changing anything.
func (g *Game) CheckPass(seat int) error {
	if err := g.checkActor(seat); err != nil {
		return err
	}
	if g.Turn.InPlay == nil {
		return reject(ReasonMustLead, "seat %d leads and cannot pass", seat)
	}
	if g.NextHoldsOneCard(seat) && HoldsBeating(g.Hands[seat], *g.Turn.InPlay) {
		return reject(ReasonLastCardRule, "seat %d holds one card and seat %d can beat the play", g.Turn.Rotation.Next(seat), seat)
	}
	return nil
}

// ApplyPlay commits a play previously accepted by CheckPlay. A non-nil error is an invariant violation.
func (g *Game) ApplyPlay(seat int, combo Combo) (Outcome, error) {
	out := Outcome{Seat: seat, Combo: &combo, Winner: -1}
	if err := g.Ledger.Record(combo.Cards); err != nil {
		return out, err
	}
	g.Hands[seat] = RemoveCards(g.Hands[seat], combo.Cards)
	if err := g.CheckInvariants(); err != nil {
		return out, err
	}

	emptied := len(g.Hands[seat]) == 0
	g.Turn.Play(combo, emptied)
	if emptied {
		g.finishMatch(seat, &out)
		return out, nil
	}
	out.Unbeatable = IsUnbeatable(combo, g.Ledger.Played)
	return out, nil
}

// ApplyPass commits a pass previously accepted by CheckPass.
func (g *Game) ApplyPass(seat int) Outcome {
	closed := g.Turn.Pass()
	return Outcome{Seat: seat, Pass: true, TrickClosed: closed, Winner: -1}
}

func (g *Game) finishMatch(winner int, out *Outcome) {
	res := ScoreMatch(g.Match, winner, g.CardCounts(), g.Rules)
	g.Scores.Record(res)
	out.Match = &res

	if g.Scores.Reached(g.Rules.Limit) {
		g.Turn.Phase = PhaseGameOver
		g.Winner = g.Scores.Leader()
		g.Hands = [NumSeats][]Card{}
		out.GameOver = true
		out.Winner = g.Winner
		return
	}
	g.startMatch()
	out.NewMatch = true
}

// CheckInvariants verifies the hands and ledger partition the deck and the turn machine is in range.
func (g *Game) CheckInvariants() error {
	if g.Over() {
		return nil
	}
	if g.Ledger.Len() > DeckSize {
		return invariantf("ledger holds %d cards", g.Ledger.Len())
	}
	seen := g.Ledger.Played
	total := g.Ledger.Len()
	for seat, hand := range g.Hands {
		for _, c := range hand {
			if !c.Valid() {
				return invariantf("seat %d holds invalid card %v", seat, c)
			}
			if seen.Contains(c) {
				return invariantf("card %s appears twice across hands and ledger", c)
			}
			seen = seen.Add(c)
		}
		total += len(hand)
	}
	if total != DeckSize || seen != FullDeck {
		return invariantf("hands and ledger account for %d cards", total)
	}
	if g.Turn.Passes < 0 || g.Turn.Passes > NumSeats-1 {
		return invariantf("pass counter %d out of range", g.Turn.Passes)
	}
	if !g.Turn.Rotation.Valid() {
		return invariantf("rotation %v is not a single cycle", g.Turn.Rotation)
	}
	if g.Turn.Current < 0 || g.Turn.Current >= NumSeats {
		return invariantf("current seat %d out of range", g.Turn.Current)
	}
	return nil
}

// Clone returns a deep copy suitable for snapshots and read-only views.
func (g *Game) Clone() *Game {
	out := *g
	for seat := range g.Hands {
		out.Hands[seat] = append([]Card(nil), g.Hands[seat]...)
	}
	out.Turn = g.Turn.Clone()
	out.Scores.History = append([]MatchResult(nil), g.Scores.History...)
	out.Rules.Bands = append([]ScoreBand(nil), g.Rules.Bands...)
	return &out
}
