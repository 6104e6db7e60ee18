// Package config provides application configuration with support for
// environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	Store   StoreConfig
	Auth    AuthConfig
	Catalog CatalogConfig
	Insight InsightConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	// DataPath is the directory holding the Badger database.
	DataPath string
}

// AuthConfig holds token verification configuration.
type AuthConfig struct {
	// KeyPath is where the PASETO symmetric key is stored (generated on
	// first run when absent).
	KeyPath string
	// AccessTokenDuration bounds token lifetime, e.g. 15m.
	AccessTokenDuration time.Duration
}

// CatalogConfig holds external book catalog configuration.
type CatalogConfig struct {
	// BaseURL of the Gutendex search endpoint.
	BaseURL string
	// RequestTimeout is the hard per-call deadline. Calls past it degrade
	// to empty results, they never fail the user request.
	RequestTimeout time.Duration
	// CacheTTL bounds how long a cached catalog page stays valid.
	CacheTTL time.Duration
	// RequestsPerSecond and Burst bound outbound request rate.
	RequestsPerSecond float64
	Burst             int
}

// InsightConfig tunes the recommendation gathering passes. Each pass
// queries up to PassCap signals with Limit records per query and stops
// merging once the pool reaches Target.
type InsightConfig struct {
	TopicPassCap int
	TopicLimit   int
	TopicTarget  int

	KeywordPassCap int
	KeywordLimit   int
	KeywordTarget  int

	// FallbackThreshold triggers the unfiltered popularity pass when the
	// pool is still smaller than this after both signal passes.
	FallbackThreshold int
	FallbackLimit     int
}

// Flags carries parsed command-line values into Load. Parsing is kept
// outside Load so tests can construct configs without touching the global
// flag set.
type Flags struct {
	Environment string
	LogLevel    string
	Port        string
	DataPath    string
	EnvFile     string
}

// Load builds configuration with precedence:
// 1. Command-line flags (highest).
// 2. Environment variables.
// 3. .env file.
// 4. Defaults (lowest).
func Load(flags Flags) (*Config, error) {
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// Missing .env files are fine.
	_ = loadEnvFile(envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(flags.Environment, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(flags.LogLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(flags.Port, "SERVER_PORT", "8080"),
		},
		Store: StoreConfig{
			DataPath: getConfigValue(flags.DataPath, "DATA_PATH", "./data"),
		},
		Auth: AuthConfig{
			KeyPath: getConfigValue("", "AUTH_KEY_PATH", "./data/auth.key"),
		},
		Catalog: CatalogConfig{
			BaseURL:           getConfigValue("", "CATALOG_BASE_URL", "https://gutendex.com/books"),
			RequestsPerSecond: getFloatConfigValue("", "CATALOG_RPS", 2.0),
			Burst:             getIntConfigValue("", "CATALOG_BURST", 4),
		},
		Insight: InsightConfig{
			TopicPassCap:      getIntConfigValue("", "INSIGHT_TOPIC_PASS_CAP", 3),
			TopicLimit:        getIntConfigValue("", "INSIGHT_TOPIC_LIMIT", 12),
			TopicTarget:       getIntConfigValue("", "INSIGHT_TOPIC_TARGET", 25),
			KeywordPassCap:    getIntConfigValue("", "INSIGHT_KEYWORD_PASS_CAP", 3),
			KeywordLimit:      getIntConfigValue("", "INSIGHT_KEYWORD_LIMIT", 8),
			KeywordTarget:     getIntConfigValue("", "INSIGHT_KEYWORD_TARGET", 20),
			FallbackThreshold: getIntConfigValue("", "INSIGHT_FALLBACK_THRESHOLD", 10),
			FallbackLimit:     getIntConfigValue("", "INSIGHT_FALLBACK_LIMIT", 15),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue("SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue("SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue("SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Auth.AccessTokenDuration, err = getDurationConfigValue("ACCESS_TOKEN_DURATION", "15m"); err != nil {
		return nil, err
	}
	if cfg.Catalog.RequestTimeout, err = getDurationConfigValue("CATALOG_REQUEST_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.Catalog.CacheTTL, err = getDurationConfigValue("CATALOG_CACHE_TTL", "1h"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getConfigValue returns the first non-empty value among flag, env var,
// and default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDurationConfigValue(envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue("", envKey, defaultValue)
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, raw, err)
	}
	return parsed, nil
}

// loadEnvFile reads KEY=VALUE lines into the process environment without
// overriding variables that are already set.
func loadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}
