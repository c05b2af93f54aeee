package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pankajredekar/lemonmenu/internal/fetcher"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is looked up in the working directory
	DefaultConfigFile = "lemonmenu.yml"

	DefaultDatabaseURL   = "sqlite://lemonmenu.db"
	DefaultLogLevel      = "info"
	DefaultListenAddress = ":8080"
	DefaultHTTPTimeout   = fetcher.DefaultTimeout

	envPrefix = "LEMONMENU_"
)

type Config struct {
	DatabaseURL   string        `yaml:"database_url"`
	MenuURL       string        `yaml:"menu_url"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	LogLevel      string        `yaml:"log_level"`
	ListenAddress string        `yaml:"listen_address"`
}

// Default returns the configuration used when no file sets a value
func Default() *Config {
	return &Config{
		DatabaseURL:   DefaultDatabaseURL,
		MenuURL:       fetcher.DefaultMenuURL,
		HTTPTimeout:   DefaultHTTPTimeout,
		LogLevel:      DefaultLogLevel,
		ListenAddress: DefaultListenAddress,
	}
}

// LoadConfig reads configPath, then applies a .env file next to it and
// LEMONMENU_* environment variables on top.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Missing .env is fine; existing environment variables are never overwritten
	_ = godotenv.Load(filepath.Join(filepath.Dir(configPath), ".env"))
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// Set defaults for keys present but left blank
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = DefaultDatabaseURL
	}
	if cfg.MenuURL == "" {
		cfg.MenuURL = fetcher.DefaultMenuURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	// Resolve relative sqlite paths against the config file location
	if path, ok := strings.CutPrefix(cfg.DatabaseURL, "sqlite://"); ok && path != ":memory:" && !filepath.IsAbs(path) {
		cfg.DatabaseURL = "sqlite://" + filepath.Join(filepath.Dir(configPath), path)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(envPrefix + "DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv(envPrefix + "MENU_URL"); v != "" {
		c.MenuURL = v
	}
	if v := os.Getenv(envPrefix + "HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sHTTP_TIMEOUT: %w", envPrefix, err)
		}
		c.HTTPTimeout = d
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(envPrefix + "LISTEN_ADDRESS"); v != "" {
		c.ListenAddress = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required")
	}
	if !strings.HasPrefix(c.DatabaseURL, "sqlite://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("unsupported database_url scheme: %s", c.DatabaseURL)
	}
	if c.MenuURL == "" {
		return fmt.Errorf("menu_url is required")
	}
	u, err := url.Parse(c.MenuURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("menu_url must be an absolute http(s) URL: %s", c.MenuURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps log_level onto a slog.Level
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
