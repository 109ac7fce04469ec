// Package config loads the client's tunables from the environment, with a
// .env file honored in development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// ServerURL is the websocket base, e.g. ws://localhost:8080.
	ServerURL string
	// StatusAddr is where the local status API listens.
	StatusAddr string
	// SessionFile persists the {walletId, username} pair.
	SessionFile string
	// TurnMarginSec is subtracted from every turn duration before the local
	// timer starts. Tunable: the server remains the enforcement authority
	// either way.
	TurnMarginSec int
	// TickPeriod is the countdown render cadence.
	TickPeriod time.Duration
}

func Load() Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		ServerURL:     getEnv("CANNONFALL_SERVER_URL", "ws://localhost:8080"),
		StatusAddr:    getEnv("CANNONFALL_STATUS_ADDR", "127.0.0.1:8090"),
		SessionFile:   getEnv("CANNONFALL_SESSION_FILE", "session.json"),
		TurnMarginSec: getEnvInt("CANNONFALL_TURN_MARGIN_SEC", 1),
		TickPeriod:    time.Duration(getEnvInt("CANNONFALL_TICK_MS", 250)) * time.Millisecond,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
