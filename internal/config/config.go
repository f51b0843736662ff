package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	UpstreamURL    string
	ServiceKey     string
	TriggerURL     string
	SnapshotPath   string
	Port           string
	FetchTimeout   time.Duration
	TriggerTimeout time.Duration
	CacheTTL       time.Duration
	LogLevel       slog.Level
}

// FromEnv loads configuration from the environment, reading a local .env
// first when present. The upstream store credentials are required: missing
// values are a startup-time fatal error, never a per-request one.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		UpstreamURL:    strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		ServiceKey:     os.Getenv("SUPABASE_SERVICE_KEY"),
		TriggerURL:     envOr("AI_TRIGGER_URL", "http://localhost:3001/api/ai/trigger"),
		SnapshotPath:   envOr("SNAPSHOT_PATH", "data_snapshot.json"),
		Port:           envOr("PORT", "8080"),
		FetchTimeout:   envSeconds("FETCH_TIMEOUT_SECONDS", 10*time.Second),
		TriggerTimeout: envSeconds("TRIGGER_TIMEOUT_SECONDS", 5*time.Second),
		CacheTTL:       envSeconds("CACHE_TTL_SECONDS", 30*time.Second),
		LogLevel:       slog.LevelInfo,
	}
	if os.Getenv("LOG_LEVEL") == "debug" {
		cfg.LogLevel = slog.LevelDebug
	}

	var missing []string
	if cfg.UpstreamURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if cfg.ServiceKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_KEY")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

// DataURL is the live query endpoint on the upstream collaborator.
func (c Config) DataURL() string {
	return c.UpstreamURL + "/api/dashboard/data"
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envSeconds(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v + "s")
	if err != nil {
		return def
	}
	return d
}
