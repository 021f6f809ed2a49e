package bot

import (
	"fmt"

	botinternal "bigtwo/internal/bot/internal"
)

// NewBrain returns the strategy for level. Smart bots play with DefaultTuning.
func NewBrain(level BotLevel) (Brain, error) {
	return NewTunedBrain(level, DefaultTuning)
}

// NewTunedBrain is NewBrain with explicit weights for the smart level. Good bots ignore them.
func NewTunedBrain(level BotLevel, tuning botinternal.BotTuning) (Brain, error) {
	switch level {
	case BotLevelGood:
		return &GoodBot{}, nil
	case BotLevelSmart:
		return &SmartBot{Tuning: tuning}, nil
	}
	return nil, fmt.Errorf("no strategy for bot level %v", level)
}
