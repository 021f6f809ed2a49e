package domain

import (
	"errors"
	"fmt"
)

// Reason is the machine-readable code of a rejected action.
type Reason string

const (
	ReasonNotYourTurn     Reason = "not_your_turn"
	ReasonInvalidCombo    Reason = "invalid_combo"
	ReasonDoesNotBeat     Reason = "does_not_beat"
	ReasonLastCardRule    Reason = "last_card_rule_violation"
	ReasonStaleAction     Reason = "stale_action"
	ReasonGameAlreadyOver Reason = "game_already_over"
	ReasonMustLead        Reason = "must_lead"
	ReasonCardsNotHeld    Reason = "cards_not_held"
	ReasonUnknownSeat     Reason = "unknown_seat"
	ReasonGameQuarantined Reason = "game_quarantined"
	ReasonUnknownAction   Reason = "unknown_action"
)

// RuleError is a synchronous rejection of an action. It never indicates a broken game.
type RuleError struct {
	Reason Reason
	Detail string
}

func (e *RuleError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return string(e.Reason) + ": " + e.Detail
}

// Is matches any RuleError carrying the same reason, so callers can compare against the sentinels below.
func (e *RuleError) Is(target error) bool {
	var other *RuleError
	if !errors.As(target, &other) {
		return false
	}
	return other.Reason == e.Reason
}

var (
	ErrNotYourTurn     = &RuleError{Reason: ReasonNotYourTurn}
	ErrInvalidCombo    = &RuleError{Reason: ReasonInvalidCombo}
	ErrDoesNotBeat     = &RuleError{Reason: ReasonDoesNotBeat}
	ErrLastCardRule    = &RuleError{Reason: ReasonLastCardRule}
	ErrStaleAction     = &RuleError{Reason: ReasonStaleAction}
	ErrGameAlreadyOver = &RuleError{Reason: ReasonGameAlreadyOver}
	ErrMustLead        = &RuleError{Reason: ReasonMustLead}
	ErrCardsNotHeld    = &RuleError{Reason: ReasonCardsNotHeld}
	ErrUnknownSeat     = &RuleError{Reason: ReasonUnknownSeat}
	ErrGameQuarantined = &RuleError{Reason: ReasonGameQuarantined}
	ErrUnknownAction   = &RuleError{Reason: ReasonUnknownAction}
)

// ErrInvariant marks state that can no longer be trusted. Games that hit it are quarantined.
var ErrInvariant = errors.New("invariant violation")

func reject(reason Reason, format string, args ...any) error {
	return &RuleError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// ReasonOf extracts the rejection reason from err, or "" when err is not a RuleError.
func ReasonOf(err error) Reason {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}
