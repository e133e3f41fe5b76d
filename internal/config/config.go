package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AdamBeresnev/beerpong/internal/bracket"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath       string
	ServerPort         int
	SessionLifetime    time.Duration
	CORSAllowedOrigins []string

	// Used for tournament fields a create request leaves empty
	TournamentDefaults bracket.Config
}

// Load reads configuration from the environment, after loading a .env file
// if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath: envOr("DATABASE_PATH", "beerpong.db"),
	}

	var err error
	if cfg.ServerPort, err = envInt("SERVER_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}

	lifetime := envOr("SESSION_LIFETIME", "24h")
	if cfg.SessionLifetime, err = time.ParseDuration(lifetime); err != nil {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME %q: %w", lifetime, err)
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	d := &cfg.TournamentDefaults
	if d.BeersPerPlayer, err = envInt("DEFAULT_BEERS_PER_PLAYER", 1); err != nil {
		return nil, err
	}
	if d.TimeWindowMinutes, err = envInt("DEFAULT_TIME_WINDOW_MINUTES", 15); err != nil {
		return nil, err
	}
	if d.UndoWindowMinutes, err = envInt("DEFAULT_UNDO_WINDOW_MINUTES", 5); err != nil {
		return nil, err
	}
	d.CancellationPolicy = bracket.CancellationPolicy(envOr("DEFAULT_CANCELLATION_POLICY", string(bracket.KeepBeers)))
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tournament defaults: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}
