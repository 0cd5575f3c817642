package configs

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configslog"
)

// AppConfig holds process configuration, loaded once from the environment.
type AppConfig struct {
	ListenAddr  string
	DatabaseDSN string
	// LockWait bounds how long a ledger operation waits for roster locks
	// before giving up with a Busy error.
	LockWait time.Duration
}

// LoadConfig reads .env (if present) and the environment. Missing values fall
// back to development defaults.
func LoadConfig() *AppConfig {
	if err := godotenv.Load(); err != nil {
		configslog.SLog.Info("No .env file found, using environment variables only")
	}

	cfg := &AppConfig{
		ListenAddr:  getEnv("LISTEN_ADDR", ":3000"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=persiber password=persiber dbname=persiber port=5432 sslmode=disable"),
		LockWait:    getEnvDuration("LOCK_WAIT", 5*time.Second),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		configslog.SLog.Warnf("Invalid duration for %s: %q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
