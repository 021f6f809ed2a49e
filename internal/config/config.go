package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"bigtwo/internal/domain"
)

// GameConfig holds the table rules that vary between deployments.
type GameConfig struct {
	// AutoPassMillis is how long followers get after an unbeatable play. Zero means the default, negative disables the timer.
	AutoPassMillis int                `json:"auto_pass_ms"`
	ScoreLimit     int                `json:"score_limit"`
	ScoreBands     []domain.ScoreBand `json:"score_bands"`
	// SeatOrder lists seats in play order, starting anywhere. Empty means anticlockwise 0,3,2,1.
	SeatOrder []int `json:"seat_order"`

	BotsEnabled             bool `json:"bots_enabled"`
	BotMinDelaySeconds      int  `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds      int  `json:"bot_max_delay_seconds"`
	BotAutoFillDelaySeconds int  `json:"bot_auto_fill_delay_seconds"`
}

// Env keys read by ApplyEnv. Nakama passes them through its runtime env map.
const (
	EnvAutoPassMillis   = "bigtwo_auto_pass_ms"
	EnvScoreLimit       = "bigtwo_score_limit"
	EnvBotsEnabled      = "bigtwo_bots_enabled"
	EnvBotMinDelay      = "bigtwo_bot_min_delay_sec"
	EnvBotMaxDelay      = "bigtwo_bot_max_delay_sec"
	EnvBotAutoFillDelay = "bigtwo_bot_auto_fill_delay_sec"
)

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// DefaultGameConfig returns the standard rules: five second auto-pass, default bands, limit 100.
func DefaultGameConfig() GameConfig {
	rules := domain.DefaultScoreRules()
	return GameConfig{
		AutoPassMillis:          5000,
		ScoreLimit:              rules.Limit,
		ScoreBands:              rules.Bands,
		SeatOrder:               append([]int(nil), domain.DefaultSeatOrder...),
		BotMinDelaySeconds:      1,
		BotMaxDelaySeconds:      3,
		BotAutoFillDelaySeconds: 5,
	}
}

// LoadGameConfig loads the game configuration from the given path once per process.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		c, err := ParseGameConfig(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the loaded configuration, or the defaults when none was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return DefaultGameConfig()
	}
	c := *cfg
	c.ScoreBands = append([]domain.ScoreBand(nil), cfg.ScoreBands...)
	c.SeatOrder = append([]int(nil), cfg.SeatOrder...)
	return c
}

// ParseGameConfig decodes a JSON config over the defaults and validates the result.
func ParseGameConfig(data []byte) (GameConfig, error) {
	c := DefaultGameConfig()
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return GameConfig{}, err
	}
	return c, nil
}

// ApplyEnv overrides fields from env. Unparseable values are returned as an error and leave the field alone.
func (c *GameConfig) ApplyEnv(env map[string]string) error {
	var errs []error
	atoi := func(key string, dst *int) {
		val, ok := env[key]
		if !ok || val == "" {
			return
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}

	atoi(EnvAutoPassMillis, &c.AutoPassMillis)
	atoi(EnvScoreLimit, &c.ScoreLimit)
	atoi(EnvBotMinDelay, &c.BotMinDelaySeconds)
	atoi(EnvBotMaxDelay, &c.BotMaxDelaySeconds)
	atoi(EnvBotAutoFillDelay, &c.BotAutoFillDelaySeconds)
	if val, ok := env[EnvBotsEnabled]; ok {
		c.BotsEnabled = val == "true"
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid game config env: %v", errs)
	}
	return nil
}

// Validate checks the score rules, the seat order, and the bot delays.
func (c GameConfig) Validate() error {
	if err := c.ScoreRules().Validate(); err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}
	if _, err := c.Rotation(); err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}
	if c.BotMinDelaySeconds > c.BotMaxDelaySeconds {
		return fmt.Errorf("invalid game config: bot delay min %d above max %d", c.BotMinDelaySeconds, c.BotMaxDelaySeconds)
	}
	return nil
}

// ScoreRules returns the configured penalty bands and limit.
func (c GameConfig) ScoreRules() domain.ScoreRules {
	return domain.ScoreRules{
		Bands: append([]domain.ScoreBand(nil), c.ScoreBands...),
		Limit: c.ScoreLimit,
	}
}

// Rotation returns the lookup table for the configured seat order.
func (c GameConfig) Rotation() (domain.Rotation, error) {
	if len(c.SeatOrder) == 0 {
		return domain.DefaultRotation, nil
	}
	return domain.NewRotation(c.SeatOrder)
}

// AutoPass converts AutoPassMillis for app.Options, keeping the sign.
func (c GameConfig) AutoPass() time.Duration {
	return time.Duration(c.AutoPassMillis) * time.Millisecond
}

// BotDelay returns the bot thinking window.
func (c GameConfig) BotDelay() (time.Duration, time.Duration) {
	return time.Duration(c.BotMinDelaySeconds) * time.Second, time.Duration(c.BotMaxDelaySeconds) * time.Second
}
