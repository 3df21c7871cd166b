// Package config loads the application configuration from a yaml file, a
// .env file and PARCELDASH_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"parceldash/internal/schema"
)

// Config is the application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Data          DataConfig          `mapstructure:"data"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Map           MapConfig           `mapstructure:"map"`
	Session       SessionConfig       `mapstructure:"session"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	AddSource bool   `mapstructure:"add_source"`
}

type ObservabilityConfig struct {
	EnableMetrics bool `mapstructure:"enable_metrics"`
	MetricsPort   int  `mapstructure:"metrics_port"`
}

// DataConfig selects where raw tables come from.
type DataConfig struct {
	// Source is "files" or "database".
	Source string `mapstructure:"source"`
	Dir    string `mapstructure:"dir"`
	// Files overrides the file of a variant ("large", "reduced").
	Files map[string]string `mapstructure:"files"`
	Sheet string            `mapstructure:"sheet"`
}

type DatabaseConfig struct {
	Driver         string            `mapstructure:"driver"` // oracle, postgres, sqlite
	Host           string            `mapstructure:"host"`
	Port           string            `mapstructure:"port"`
	Service        string            `mapstructure:"service"`
	Username       string            `mapstructure:"username"`
	Password       string            `mapstructure:"password"`
	WalletLocation string            `mapstructure:"wallet_location"`
	SSLMode        string            `mapstructure:"ssl_mode"`
	Path           string            `mapstructure:"path"`
	Tables         map[string]string `mapstructure:"tables"`
}

// MapConfig is the map view policy.
type MapConfig struct {
	SampleFraction float64  `mapstructure:"sample_fraction"`
	SampleSeed     int64    `mapstructure:"sample_seed"`
	ZoningFiles    []string `mapstructure:"zoning_files"`
	// StatePlane converts lat/lng to Texas North-Central feet before the
	// zoning lookup.
	StatePlane bool `mapstructure:"state_plane"`
}

type SessionConfig struct {
	DefaultVariant  string `mapstructure:"default_variant"`
	CacheMaxEntries int    `mapstructure:"cache_max_entries"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.add_source", false)

	v.SetDefault("observability.enable_metrics", false)
	v.SetDefault("observability.metrics_port", 9090)

	v.SetDefault("data.source", "files")
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.sheet", "")

	v.SetDefault("database.driver", "oracle")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "1521")
	v.SetDefault("database.service", "XE")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.wallet_location", "")
	v.SetDefault("database.ssl_mode", "")
	v.SetDefault("database.path", "")

	v.SetDefault("map.sample_fraction", 0.1)
	v.SetDefault("map.sample_seed", 10)
	v.SetDefault("map.state_plane", false)

	v.SetDefault("session.default_variant", "large")
	v.SetDefault("session.cache_max_entries", 256)
}

// legacyEnv keeps the DB_* variables of older .env files working.
var legacyEnv = map[string]string{
	"database.host":            "DB_HOST",
	"database.port":            "DB_PORT",
	"database.service":         "DB_SERVICE",
	"database.username":        "DB_USERNAME",
	"database.password":        "DB_PASSWORD",
	"database.wallet_location": "DB_WALLET_LOCATION",
}

// Load reads configPath (or ./configs/config.yaml, ./config.yaml when empty).
// A missing default config file is not an error; a missing explicit one is.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PARCELDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := "PARCELDASH_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server mode: %s, must be 'debug' or 'release'", c.Server.Mode)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'text'", c.Log.Format)
	}

	if c.Observability.EnableMetrics && (c.Observability.MetricsPort <= 0 || c.Observability.MetricsPort > 65535) {
		return fmt.Errorf("invalid metrics port: %d", c.Observability.MetricsPort)
	}

	switch c.Data.Source {
	case "files":
	case "database":
		switch c.Database.Driver {
		case "oracle", "postgres", "pgx":
			if c.Database.Host == "" {
				return fmt.Errorf("database.host is required")
			}
		case "sqlite":
			if c.Database.Path == "" {
				return fmt.Errorf("database.path is required for sqlite")
			}
		default:
			return fmt.Errorf("invalid database driver: %s", c.Database.Driver)
		}
		if len(c.Database.Tables) == 0 {
			return fmt.Errorf("database.tables is required when data.source is 'database'")
		}
	default:
		return fmt.Errorf("invalid data source: %s, must be 'files' or 'database'", c.Data.Source)
	}

	if !(c.Map.SampleFraction > 0 && c.Map.SampleFraction <= 1) {
		return fmt.Errorf("map.sample_fraction must be in (0, 1], got %v", c.Map.SampleFraction)
	}
	if _, err := schema.Parse(c.Session.DefaultVariant); err != nil {
		return fmt.Errorf("session.default_variant: %w", err)
	}
	if c.Session.CacheMaxEntries < 0 {
		return fmt.Errorf("session.cache_max_entries must not be negative")
	}
	return nil
}

// ServerAddr returns host:port for the HTTP server.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
