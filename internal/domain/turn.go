package domain

// Phase is the state of the turn machine.
type Phase string

const (
	// PhaseLeading means nothing is in play and the current seat may lead any combo.
	PhaseLeading Phase = "leading"
	// PhaseFollowing means the current seat must beat the combo in play or pass.
	PhaseFollowing Phase = "following"
	// PhaseTrickClosing is entered when every other seat has passed; it resolves to PhaseLeading immediately.
	PhaseTrickClosing Phase = "trick_closing"
	// PhaseMatchOver is entered when a seat empties its hand.
	PhaseMatchOver Phase = "match_over"
	// PhaseGameOver is terminal.
	PhaseGameOver Phase = "game_over"
)

// TurnState tracks whose turn it is and what they must beat.
type TurnState struct {
	Phase      Phase    `json:"phase"`
	Current    int      `json:"current"`
	Rotation   Rotation `json:"rotation"`
	InPlay     *Combo   `json:"in_play,omitempty"`
	LastPlayer int      `json:"last_player"`
	Passes     int      `json:"passes"`
	Trick      int      `json:"trick"`
}

// NewTurnState starts a match with leader to act.
func NewTurnState(rotation Rotation, leader int) TurnState {
	return TurnState{
		Phase:      PhaseLeading,
		Current:    leader,
		Rotation:   rotation,
		LastPlayer: leader,
		Trick:      1,
	}
}

// Next returns the seat that acts after the current one.
func (t TurnState) Next() int {
	return t.Rotation.Next(t.Current)
}

// Open reports whether actions are currently accepted.
func (t TurnState) Open() bool {
	return t.Phase == PhaseLeading || t.Phase == PhaseFollowing
}

// Play records an accepted play by the current seat. emptied marks that it was the seat's last card.
func (t *TurnState) Play(combo Combo, emptied bool) {
	c := combo
	t.InPlay = &c
	t.LastPlayer = t.Current
	t.Passes = 0
	if emptied {
		t.Phase = PhaseMatchOver
		return
	}
	t.Phase = PhaseFollowing
	t.Current = t.Next()
}

// Pass records an accepted pass by the current seat and reports whether it closed the trick.
func (t *TurnState) Pass() bool {
	t.Passes++
	t.Current = t.Next()
	if t.Passes < NumSeats-1 {
		return false
	}
	t.Phase = PhaseTrickClosing
	t.closeTrick()
	return true
}

// closeTrick hands the lead back to whoever played last.
func (t *TurnState) closeTrick() {
	t.InPlay = nil
	t.Passes = 0
	t.Current = t.LastPlayer
	t.Trick++
	t.Phase = PhaseLeading
}

// Clone returns a deep copy.
func (t TurnState) Clone() TurnState {
	out := t
	if t.InPlay != nil {
		c := *t.InPlay
		c.Cards = append([]Card(nil), t.InPlay.Cards...)
		out.InPlay = &c
	}
	return out
}
