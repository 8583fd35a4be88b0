package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AppName     = "ecosort"
	EnvFileName = "config.env"
)

const (
	defaultPort           = "5000"
	defaultDBPath         = "ecosort.db"
	defaultRequestTimeout = 60 * time.Second

	// DefaultMaxImageBytes is the payload ceiling advertised to clients.
	DefaultMaxImageBytes = 10 * 1024 * 1024
)

// Config holds the server configuration read from the environment.
type Config struct {
	// GeminiAPIKey is the credential for the multimodal model. The
	// server refuses to start without it.
	GeminiAPIKey string

	// Port the HTTP server listens on.
	Port string

	// AllowedOrigins for cross-origin requests. ["*"] allows all.
	AllowedOrigins []string

	// DBPath is the SQLite file backing the classification cache. An
	// empty value disables caching.
	DBPath string

	// RequestTimeout bounds one classification request end to end.
	RequestTimeout time.Duration

	// MaxImageBytes caps the decoded image payload size.
	MaxImageBytes int64
}

// ServerAddress returns the listen address for the HTTP server.
func (c *Config) ServerAddress() string {
	return net.JoinHostPort("", strings.TrimSpace(c.Port))
}

// LoadEnvFile loads environment variables from a local .env file, falling
// back to the config file in the user's config directory. Errors are
// ignored since neither file may exist.
func LoadEnvFile() {
	if err := godotenv.Load(); err == nil {
		return
	}
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// Load builds a Config from environment variables. GEMINI_API_KEY is
// required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		Port:           getEnvOrDefault("PORT", defaultPort),
		AllowedOrigins: parseOrigins(os.Getenv("ALLOWED_ORIGINS")),
		DBPath:         lookupEnvOrDefault("ECOSORT_DB_PATH", defaultDBPath),
		RequestTimeout: parseDurationOrDefault("REQUEST_TIMEOUT", defaultRequestTimeout),
		MaxImageBytes:  DefaultMaxImageBytes,
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}

	return cfg, nil
}

// parseOrigins splits a comma-separated origin list. An empty value allows
// all origins, matching the behavior when no client URL is configured.
func parseOrigins(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{"*"}
	}
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnvOrDefault keeps a set-but-empty value, so "" can mean
// "disabled" rather than falling back to the default.
func lookupEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
