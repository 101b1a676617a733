package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Datastore   DatastoreConfig   `mapstructure:"datastore"`
	Completion  CompletionConfig  `mapstructure:"completion"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Log         LogConfig         `mapstructure:"log"`
	Cors        CorsConfig        `mapstructure:"cors"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
}

type ServerConfig struct {
	Port      string `mapstructure:"port"`
	StaticDir string `mapstructure:"static_dir"`
}

// Database driver selection
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite", "postgres" or "memory"
	Path   string `mapstructure:"path"`   // sqlite file
	URL    string `mapstructure:"url"`    // postgres DSN
}

type DatastoreConfig struct {
	Timeout int `mapstructure:"timeout"` // seconds, per remote call
}

type CompletionConfig struct {
	WriteMode string `mapstructure:"write_mode"` // "increment", "overwrite" or "transactional"
}

type AuthConfig struct {
	SessionSecret string `mapstructure:"session_secret"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LeaderboardConfig struct {
	Limit int `mapstructure:"limit"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	WriteModeIncrement     = "increment"
	WriteModeOverwrite     = "overwrite"
	WriteModeTransactional = "transactional"
)

const (
	minTimeout = 1
	maxTimeout = 300
)

// Load reads config.yaml (and config.local.yaml overrides), a .env file and
// RAMADAN_* environment variables, in that order of precedence.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("RAMADAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("database.url", "RAMADAN_DATABASE_URL", "DATABASE_URL")
	v.BindEnv("server.port", "RAMADAN_SERVER_PORT", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	v.SetConfigName("config.local")
	_ = v.MergeInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.static_dir", "./web/static")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "./ramadan.db")

	v.SetDefault("datastore.timeout", 15)
	v.SetDefault("completion.write_mode", WriteModeIncrement)

	v.SetDefault("auth.session_secret", "change-this-session-secret")
	v.SetDefault("log.level", "info")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:8081", "http://localhost:19006"})
	v.SetDefault("leaderboard.limit", 100)
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Completion.WriteMode {
	case WriteModeIncrement, WriteModeOverwrite, WriteModeTransactional:
	default:
		return fmt.Errorf("unsupported completion write mode: %s", c.Completion.WriteMode)
	}

	if c.Datastore.Timeout < minTimeout || c.Datastore.Timeout > maxTimeout {
		return fmt.Errorf("datastore.timeout must be between %d and %d seconds, got %d", minTimeout, maxTimeout, c.Datastore.Timeout)
	}

	if c.Leaderboard.Limit <= 0 {
		return fmt.Errorf("leaderboard.limit must be positive")
	}

	return nil
}

// DatastoreTimeout is the bound applied to every datastore call.
func (c *Config) DatastoreTimeout() time.Duration {
	return time.Duration(c.Datastore.Timeout) * time.Second
}
