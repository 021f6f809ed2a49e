package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ServerConfig configures the standalone HTTP host and the simulator.
type ServerConfig struct {
	HTTPAddr       string
	DatabaseURL    string
	AutoMigrate    bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	TicketSecret   string
	GameConfigPath string
	LogLevel       string
}

// LoadServerConfig reads a .env file when present and then the process environment.
func LoadServerConfig() (ServerConfig, error) {
	_ = godotenv.Load()
	return ServerConfigFrom(os.Getenv)
}

// ServerConfigFrom builds the config from a lookup function.
func ServerConfigFrom(getenv func(string) string) (ServerConfig, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	c := ServerConfig{
		HTTPAddr:       get("HTTP_ADDR", ":8080"),
		DatabaseURL:    get("DATABASE_URL", ""),
		AutoMigrate:    asBool(getenv("AUTO_MIGRATE")),
		RedisAddr:      get("REDIS_ADDR", ""),
		RedisPassword:  getenv("REDIS_PASSWORD"),
		TicketSecret:   get("SEAT_TICKET_SECRET", ""),
		GameConfigPath: get("GAME_CONFIG", "data/game_config.json"),
		LogLevel:       get("LOG_LEVEL", "info"),
	}
	if db := get("REDIS_DB", "0"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("REDIS_DB: %w", err)
		}
		c.RedisDB = n
	}
	return c, nil
}

func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
