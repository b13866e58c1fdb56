// Package config loads tb-asset configuration from a YAML file, TB_ASSET_*
// environment variables and built-in defaults, in that order of precedence
// (environment wins over the file).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config is created once at startup and read-only afterwards.
type Config struct {
	Database Database `mapstructure:"database"`
	Timeouts Timeouts `mapstructure:"timeouts"`
	Precheck Precheck `mapstructure:"precheck"`
	Log      Log      `mapstructure:"log"`
}

// Database configures the persistence sink and asset resolver.
type Database struct {
	Driver string `mapstructure:"driver"`
	// DSN, when set, is passed to the driver as is and the fields below are ignored.
	DSN         string `mapstructure:"dsn"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Name        string `mapstructure:"name"`
	Path        string `mapstructure:"path"` // sqlite only
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// Timeouts bound external command execution.
type Timeouts struct {
	Command    time.Duration `mapstructure:"command"`
	Privileged time.Duration `mapstructure:"privileged"`
}

// Precheck configures the connectivity check run before collection.
type Precheck struct {
	Enabled bool          `mapstructure:"enabled"`
	Address string        `mapstructure:"address"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Log configures the process logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration. An empty cfgFile searches the default locations
// and tolerates a missing file; an explicit cfgFile must exist.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("tb-asset")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/tb-asset")
		v.AddConfigPath("/etc/tb-asset")
	}

	v.SetDefault("database.driver", DriverMySQL)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "assets")
	v.SetDefault("database.path", "tb-asset.db")
	v.SetDefault("timeouts.command", "10s")
	v.SetDefault("timeouts.privileged", "30s")
	v.SetDefault("precheck.enabled", true)
	v.SetDefault("precheck.address", "8.8.8.8:53")
	v.SetDefault("precheck.timeout", "3s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("TB_ASSET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// auto_migrate has no default; it depends on the driver.
	_ = v.BindEnv("database.auto_migrate")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if !v.IsSet("database.auto_migrate") {
		cfg.Database.AutoMigrate = cfg.Database.Driver == DriverSQLite
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("database.driver %q is not supported (valid: %s, %s)", c.Database.Driver, DriverMySQL, DriverSQLite)
	}
	if c.Timeouts.Command <= 0 || c.Timeouts.Privileged <= 0 {
		return fmt.Errorf("timeouts must be positive (command=%s, privileged=%s)", c.Timeouts.Command, c.Timeouts.Privileged)
	}
	if c.Precheck.Enabled && c.Precheck.Address == "" {
		return errors.New("precheck.address is required when precheck is enabled")
	}
	return nil
}
