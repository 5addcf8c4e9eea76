package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DataDir string        `mapstructure:"data_dir"`
	Storage StorageConfig `mapstructure:"storage"`
	Capture CaptureConfig `mapstructure:"capture"`
	Watch   WatchConfig   `mapstructure:"watch"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Log     LogConfig     `mapstructure:"log"`
}

type StorageConfig struct {
	Backend     string `mapstructure:"backend"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	// PollInterval is how often long-running commands check the backend for
	// writes made by other processes.
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type CaptureConfig struct {
	Debounce        time.Duration `mapstructure:"debounce"`
	DuplicateWindow time.Duration `mapstructure:"duplicate_window"`
}

type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type LLMConfig struct {
	Provider  string            `mapstructure:"provider"`
	Model     string            `mapstructure:"model"`
	BaseURL   string            `mapstructure:"base_url"`
	APIKey    string            `mapstructure:"api_key"`
	Headers   map[string]string `mapstructure:"headers"`
	TagPrompt string            `mapstructure:"tag_prompt"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads defaults, .env files, CONTEXTCLIPS_* environment variables and
// the optional config.yaml in the data directory into v, then validates.
// Flags bound to v before the call take precedence.
func Load(v *viper.Viper) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	defaultDataDir := filepath.Join(homeDir, ".contextclips")

	loadDotenv(".env", filepath.Join(defaultDataDir, ".env"))

	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.poll_interval", "1s")
	v.SetDefault("capture.debounce", "100ms")
	v.SetDefault("capture.duplicate_window", "5m")
	v.SetDefault("watch.interval", "500ms")
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.model", "claude-haiku-4-5-20251001")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")

	// Environment variable overrides, e.g. CONTEXTCLIPS_STORAGE_BACKEND
	v.SetEnvPrefix("CONTEXTCLIPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("data_dir"))
	v.AddConfigPath(defaultDataDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		slog.Debug("config file loaded", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDotenv never overrides variables that are already set.
func loadDotenv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("ignoring unreadable env file", "path", p, "err", err)
		}
	}
}

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir must not be empty")
	}

	switch c.Storage.Backend {
	case "sqlite", "file", "memory":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required when storage.backend is postgres")
		}
	default:
		return fmt.Errorf("storage.backend must be one of sqlite, file, memory, postgres (got %q)", c.Storage.Backend)
	}

	if c.Storage.PollInterval <= 0 {
		return fmt.Errorf("storage.poll_interval must be > 0 (got %s)", c.Storage.PollInterval)
	}

	if c.Capture.Debounce <= 0 {
		return fmt.Errorf("capture.debounce must be > 0 (got %s)", c.Capture.Debounce)
	}
	if c.Capture.DuplicateWindow < 0 {
		return fmt.Errorf("capture.duplicate_window must be >= 0 (got %s)", c.Capture.DuplicateWindow)
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be > 0 (got %s)", c.Watch.Interval)
	}

	switch c.LLM.Provider {
	case "anthropic", "openai", "openrouter":
	default:
		return fmt.Errorf("llm.provider must be one of anthropic, openai, openrouter (got %q)", c.LLM.Provider)
	}

	switch strings.ToLower(c.Log.Format) {
	case "auto", "text", "tint", "human", "json":
	default:
		return fmt.Errorf("log.format must be auto, text or json (got %q)", c.Log.Format)
	}

	return nil
}
