package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "foxbridge"

// DefaultConfigFile is read when FOXBRIDGE_CONFIG_FILE is not set. A missing
// default file is not an error.
const DefaultConfigFile = "configs/foxbridge.yaml"

// DefaultBaseURL is applied after file and environment are merged.
const DefaultBaseURL = "https://apifox.com/api/v1/shared-docs"

// FileConfig defines the structure loaded from the YAML configuration file.
type FileConfig struct {
	Token            string  `yaml:"token"`
	BaseURL          string  `yaml:"base_url"`
	Categories       []int64 `yaml:"categories"`
	SnapshotDir      string  `yaml:"snapshot_dir"`
	FetchConcurrency int     `yaml:"fetch_concurrency"`
}

// Config holds the final application configuration, merged from file and environment variables.
// Fields are loaded from environment variables with the prefix "FOXBRIDGE_", overriding file settings.
type Config struct {
	// Config File Path (Loaded first from env)
	ConfigFilePath string `envconfig:"CONFIG_FILE" default:"configs/foxbridge.yaml"`

	// File-or-env fields. They carry no envconfig default so the second
	// environment pass leaves file values alone.
	Token            string  `envconfig:"TOKEN"`
	BaseURL          string  `envconfig:"BASE_URL"`
	Categories       []int64 `envconfig:"CATEGORIES"`
	SnapshotDir      string  `envconfig:"SNAPSHOT_DIR"`
	FetchConcurrency int     `envconfig:"FETCH_CONCURRENCY"`

	// Environment-only fields
	ListenAddr               string        `envconfig:"LISTEN_ADDR" default:":8080"`
	AdminAddr                string        `envconfig:"ADMIN_ADDR" default:":8081"`
	HTTPClientTimeout        time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	ShutdownTimeout          time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	SessionCacheSize         int           `envconfig:"SESSION_CACHE_SIZE" default:"64"`
	OtelExporterOtlpEndpoint string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool          `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string        `envconfig:"LOG_LEVEL" default:"info"`
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// Load reads a .env file if present, then environment variables (to get the
// file path), then the YAML file, and finally environment variables again so
// they override file settings.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	// 1. Load initial config from Env (primarily to get ConfigFilePath)
	var initialCfg Config
	if err := envconfig.Process(EnvPrefix, &initialCfg); err != nil {
		return nil, fmt.Errorf("failed to process initial environment variables: %w", err)
	}

	// 2. Load config from YAML file
	fileCfg, err := readFile(initialCfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}

	// 3. Start from file values, then process Env vars again for overrides.
	finalCfg := initialCfg
	finalCfg.Token = fileCfg.Token
	finalCfg.BaseURL = fileCfg.BaseURL
	finalCfg.Categories = fileCfg.Categories
	finalCfg.SnapshotDir = fileCfg.SnapshotDir
	finalCfg.FetchConcurrency = fileCfg.FetchConcurrency

	if err := envconfig.Process(EnvPrefix, &finalCfg); err != nil {
		return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
	}

	if finalCfg.BaseURL == "" {
		finalCfg.BaseURL = DefaultBaseURL
	}
	if finalCfg.FetchConcurrency < 0 {
		finalCfg.FetchConcurrency = 0
	}
	return &finalCfg, nil
}

func readFile(path string) (FileConfig, error) {
	var fileCfg FileConfig
	if path == "" {
		slog.Info("No config file path specified (FOXBRIDGE_CONFIG_FILE), using defaults/env vars only.")
		return fileCfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == DefaultConfigFile {
			slog.Debug("Default config file not found, using defaults/env vars only.", "path", path)
			return fileCfg, nil
		}
		return fileCfg, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fileCfg, fmt.Errorf("failed to unmarshal config file '%s': %w", path, err)
	}
	slog.Info("Loaded configuration from file.", "path", path)
	return fileCfg, nil
}
