package nakama

import (
	"context"
	"database/sql"

	"bigtwo/internal/bot"
	"bigtwo/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	gameConfigPath    = "data/game_config.json"
	botIdentitiesPath = "data/bot_identities.json"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()

	roster, err := bot.LoadRoster(botIdentitiesPath)
	if err != nil {
		logger.Warn("Could not load bot identities: %v", err)
		roster = bot.NewRoster(nil)
	}
	roster.Provision(ctx, nk, logger)

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameBigTwo, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(cfg, roster), nil
	}); err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"auto_pass_ms": cfg.AutoPassMillis,
		"score_limit":  cfg.ScoreLimit,
		"bots":         roster.Len(),
		"bot_delay":    botDelayWindow(cfg),
	}).Info("Big Two Go module loaded.")
	return nil
}
