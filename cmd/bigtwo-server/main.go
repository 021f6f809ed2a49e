// Command bigtwo-server hosts Big Two games over HTTP without Nakama.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bigtwo/internal/app"
	"bigtwo/internal/config"
	"bigtwo/internal/logging"
	"bigtwo/internal/ports"
	"bigtwo/internal/ports/httpapi"
	"bigtwo/internal/ports/postgres"
	"bigtwo/internal/ports/redis"

	"github.com/google/uuid"
)

const (
	ticketIssuer    = "bigtwo-server"
	ticketTTL       = 12 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	srvCfg, err := config.LoadServerConfig()
	if err != nil {
		logging.New(os.Stderr, "info").Error("Failed to read server config: %v", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, srvCfg.LogLevel)

	if err := config.LoadGameConfig(srvCfg.GameConfigPath); err != nil {
		logger.Warn("Using default game config: %v", err)
	}
	gameCfg := config.GetGameConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := app.Options{
		Logger:   logger,
		AutoPass: gameCfg.AutoPass(),
	}
	rules := gameCfg.ScoreRules()
	opts.Rules = &rules

	var history ports.MultiLog
	if srvCfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, srvCfg.DatabaseURL)
		if err != nil {
			logger.Error("Failed to connect to postgres: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		if srvCfg.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				logger.Error("Failed to migrate: %v", err)
				os.Exit(1)
			}
		}
		opts.Store = db
		history = append(history, db)
		logger.Info("Snapshots and action archive in postgres.")
	}
	if srvCfg.RedisAddr != "" {
		rdb, err := redis.Connect(ctx, srvCfg.RedisAddr, srvCfg.RedisPassword, srvCfg.RedisDB)
		if err != nil {
			logger.Error("Failed to connect to redis: %v", err)
			os.Exit(1)
		}
		defer rdb.Close()
		history = append(history, redis.NewHistory(rdb))
		logger.Info("Action feed on redis %s.", srvCfg.RedisAddr)
	}
	if len(history) > 0 {
		opts.History = history
	}

	secret := srvCfg.TicketSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("SEAT_TICKET_SECRET not set, seat tickets will not survive a restart.")
	}
	tickets, err := app.NewTicketIssuer(secret, ticketIssuer, ticketTTL)
	if err != nil {
		logger.Error("Failed to create ticket issuer: %v", err)
		os.Exit(1)
	}

	svc := app.NewService(opts)
	hub := httpapi.NewHub(logger)
	server := &http.Server{
		Addr:              srvCfg.HTTPAddr,
		Handler:           httpapi.NewServer(svc, hub, tickets, logger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithFields(map[string]interface{}{
			"addr":        srvCfg.HTTPAddr,
			"score_limit": gameCfg.ScoreLimit,
			"auto_pass":   gameCfg.AutoPass().String(),
		}).Info("Listening.")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Shutdown: %v", err)
	}
	for _, id := range svc.Games() {
		svc.Close(id)
	}
}
