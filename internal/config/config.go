// Package config loads server settings from the environment and
// command-line flags. Flags take precedence over environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Storage backends accepted by Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

const minSecretLength = 32

// Config holds runtime settings for the API server.
type Config struct {
	Addr string

	Driver       string
	DatabasePath string // sqlite file
	DatabaseURL  string // postgres DSN or mongo URI
	MongoDB      string

	JWTSecret  string
	TokenTTL   time.Duration // zero means tokens never expire
	BcryptCost int

	LoginRateLimit float64 // requests per second per client
	LoginRateBurst float64

	LogLevel slog.Level
}

func defaults() *Config {
	return &Config{
		Addr:           ":8080",
		Driver:         DriverSQLite,
		DatabasePath:   "todo-api.db",
		MongoDB:        "TodoApp",
		BcryptCost:     12,
		LoginRateLimit: 1,
		LoginRateBurst: 10,
		LogLevel:       slog.LevelInfo,
	}
}

// Load builds a Config from defaults, then getenv, then args (without the
// program name). The result is validated before it is returned.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := defaults()
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.applyFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	setString(&c.Driver, getenv("DATABASE_DRIVER"))
	setString(&c.DatabasePath, getenv("DATABASE_PATH"))
	setString(&c.DatabaseURL, getenv("DATABASE_URL"))
	setString(&c.MongoDB, getenv("MONGO_DATABASE"))
	setString(&c.JWTSecret, getenv("JWT_SECRET"))

	if v := getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		c.TokenTTL = d
	}
	if v := getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		c.BcryptCost = n
	}
	if v := getenv("LOGIN_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
		}
		c.LoginRateLimit = f
	}
	if v := getenv("LOGIN_RATE_BURST"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid LOGIN_RATE_BURST: %w", err)
		}
		c.LoginRateBurst = f
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}
	return nil
}

// applyFlags parses the supported flags:
//
//	-addr string       listen address (e.g. ":8080")
//	-db string         storage backend: sqlite, postgres or mongo
//	-db-path string    sqlite database file
//	-db-url string     postgres DSN or mongo URI
//	-jwt-secret string HMAC secret, at least 32 characters
//	-token-ttl dur     session token lifetime, 0 for none
//	-log-level string  debug, info, warn or error
func (c *Config) applyFlags(args []string) error {
	fs := flag.NewFlagSet("todo-api", flag.ContinueOnError)

	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address")
	fs.StringVar(&c.Driver, "db", c.Driver, "storage backend (sqlite, postgres, mongo)")
	fs.StringVar(&c.DatabasePath, "db-path", c.DatabasePath, "sqlite database file")
	fs.StringVar(&c.DatabaseURL, "db-url", c.DatabaseURL, "postgres DSN or mongo URI")
	fs.StringVar(&c.JWTSecret, "jwt-secret", c.JWTSecret, "HMAC secret for session tokens")
	fs.DurationVar(&c.TokenTTL, "token-ttl", c.TokenTTL, "session token lifetime (0 = no expiry)")
	fs.TextVar(&c.LogLevel, "log-level", c.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			return errors.New("DATABASE_PATH is required for the sqlite driver")
		}
	case DriverPostgres, DriverMongo:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s driver", c.Driver)
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.Driver)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters for HMAC-SHA256 security", minSecretLength)
	}
	if c.TokenTTL < 0 {
		return errors.New("TOKEN_TTL must not be negative")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost)
	}
	if c.LoginRateLimit < 0 || c.LoginRateBurst < 1 {
		return errors.New("LOGIN_RATE_LIMIT must be >= 0 and LOGIN_RATE_BURST >= 1")
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
