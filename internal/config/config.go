package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/pmurley/afl-trade-bot/internal/recommender"
)

type Config struct {
	HTTPPort    string
	CORSOrigins []string
	LogLevel    string
	LogPretty   bool

	DataDir   string
	TeamStore string

	PlayerPoolSource    string
	CacheDuration       time.Duration
	PoolRefreshSchedule string

	ThresholdsFile        string
	Thresholds            recommender.Thresholds
	DefaultMaxRookiePrice int

	DiscordToken  string
	CommandPrefix string

	MCPAPIKey string

	Archive ArchiveConfig
}

// ArchiveConfig controls the scheduled S3 upload of the history log
type ArchiveConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Schedule  string
}

func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

func Load() (*Config, error) {
	cacheDuration := 5 * time.Minute
	if d := os.Getenv("CACHE_DURATION_MINUTES"); d != "" {
		if minutes, err := strconv.Atoi(d); err == nil && minutes > 0 {
			cacheDuration = time.Duration(minutes) * time.Minute
		}
	}

	maxRookiePrice := 300000
	if v := os.Getenv("DEFAULT_MAX_ROOKIE_PRICE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("DEFAULT_MAX_ROOKIE_PRICE must be a positive integer, got %q", v)
		}
		maxRookiePrice = n
	}

	cfg := &Config{
		HTTPPort:              getEnvOrDefault("HTTP_PORT", "8080"),
		CORSOrigins:           splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		LogPretty:             getEnvBool("LOG_PRETTY"),
		DataDir:               getEnvOrDefault("DATA_DIR", "./data"),
		TeamStore:             strings.ToLower(getEnvOrDefault("TEAM_STORE", "json")),
		PlayerPoolSource:      os.Getenv("PLAYER_POOL_SOURCE"),
		CacheDuration:         cacheDuration,
		PoolRefreshSchedule:   getEnvOrDefault("POOL_REFRESH_SCHEDULE", "@every 30m"),
		ThresholdsFile:        os.Getenv("THRESHOLDS_FILE"),
		DefaultMaxRookiePrice: maxRookiePrice,
		DiscordToken:          os.Getenv("DISCORD_TOKEN"),
		CommandPrefix:         getEnvOrDefault("COMMAND_PREFIX", "!"),
		MCPAPIKey:             os.Getenv("MCP_API_KEY"),
		Archive: ArchiveConfig{
			Bucket:    os.Getenv("ARCHIVE_S3_BUCKET"),
			Region:    getEnvOrDefault("ARCHIVE_S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("ARCHIVE_S3_ENDPOINT"),
			AccessKey: os.Getenv("ARCHIVE_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("ARCHIVE_S3_SECRET_KEY"),
			Schedule:  getEnvOrDefault("ARCHIVE_SCHEDULE", "@daily"),
		},
	}

	if cfg.TeamStore != "json" && cfg.TeamStore != "sqlite" {
		return nil, fmt.Errorf("TEAM_STORE must be json or sqlite, got %q", cfg.TeamStore)
	}

	thresholds, err := LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		return nil, err
	}
	cfg.Thresholds = thresholds

	return cfg, nil
}

// LoadThresholds decodes a TOML file on top of the default thresholds. An
// empty path returns the defaults.
func LoadThresholds(path string) (recommender.Thresholds, error) {
	t := recommender.DefaultThresholds()
	if path == "" {
		return t, nil
	}

	if _, err := toml.DecodeFile(path, &t); err != nil {
		return t, fmt.Errorf("failed to read thresholds file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
