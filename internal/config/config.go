// Package config provides Viper-based configuration for the journal CLI
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete client configuration
type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	Storage StorageConfig `mapstructure:"storage"`
	Display DisplayConfig `mapstructure:"display"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
}

// ServiceConfig locates the entry service
type ServiceConfig struct {
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	EntryLimit int           `mapstructure:"entry_limit"`
}

// StorageConfig contains local database settings
type StorageConfig struct {
	DBPath          string `mapstructure:"db_path"`
	OfflineFallback bool   `mapstructure:"offline_fallback"`
}

// DisplayConfig contains presentation settings
type DisplayConfig struct {
	Locale     string `mapstructure:"locale"`
	Timezone   string `mapstructure:"timezone"`
	WindowDays int    `mapstructure:"window_days"`
	Colors     bool   `mapstructure:"colors"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the local dashboard server
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Location resolves the display timezone; empty means the process-local zone
func (c *Config) Location() (*time.Location, error) {
	if c.Display.Timezone == "" || c.Display.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Display.Timezone, err)
	}
	return loc, nil
}

// DefaultDir is where the config file and database live by default
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".journal"
	}
	return filepath.Join(home, ".config", "journal")
}

// Load reads configuration from file and environment variables
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(".")
	}

	// JOURNAL_SERVICE_URL, JOURNAL_DISPLAY_LOCALE, ...
	v.SetEnvPrefix("JOURNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.url", "")
	v.SetDefault("service.timeout", 15*time.Second)
	v.SetDefault("service.entry_limit", 50)

	v.SetDefault("storage.db_path", filepath.Join(DefaultDir(), "journal.db"))
	v.SetDefault("storage.offline_fallback", true)

	v.SetDefault("display.locale", "tr")
	v.SetDefault("display.timezone", "")
	v.SetDefault("display.window_days", 7)
	v.SetDefault("display.colors", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.addr", ":8080")
}

func validate(cfg *Config) error {
	if cfg.Service.Timeout < 0 {
		return fmt.Errorf("service.timeout must not be negative")
	}
	if cfg.Service.EntryLimit <= 0 {
		return fmt.Errorf("service.entry_limit must be positive, got %d", cfg.Service.EntryLimit)
	}
	if cfg.Display.WindowDays <= 0 {
		return fmt.Errorf("display.window_days must be positive, got %d", cfg.Display.WindowDays)
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid logging.format %q: must be console or json", cfg.Logging.Format)
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}
	return nil
}

// RequireService checks that a service address was configured. Commands
// that only read local state do not need one.
func (c *Config) RequireService() error {
	if strings.TrimSpace(c.Service.URL) == "" {
		return fmt.Errorf("no service URL configured: set service.url in %s or JOURNAL_SERVICE_URL",
			filepath.Join(DefaultDir(), "config.yaml"))
	}
	return nil
}
