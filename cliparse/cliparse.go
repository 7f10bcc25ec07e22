// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration

	InventoryURL     string
	InventoryTimeout time.Duration

	LogLevel  string
	LogFormat string

	MetricsSchedule   string
	StalePauseAfter   time.Duration
	AutoCompleteEmpty bool
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed loading env file %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := pflag.NewFlagSet("chemucl", pflag.ContinueOnError)

	// Network and storage
	fs.IntVarP(&cfg.Port, "port", "p", 0, "Server port")
	fs.StringVarP(&cfg.DatabaseURL, "database-url", "d", "", "Database URL")
	fs.StringVarP(&cfg.DatabaseType, "database-type", "t", "", "Database type (sqlite or postgres)")

	// Shared session locks
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "Redis address for cross-instance audit locks")
	fs.StringVar(&cfg.RedisPassword, "redis-password", "", "Redis password (prefer env)")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "Redis database number")
	fs.DurationVar(&cfg.LockTTL, "lock-ttl", 0, "Expiry of a held audit lock")

	// Directory
	fs.StringVar(&cfg.InventoryURL, "inventory-url", "", "Inventory service base URL (default: local tables)")
	fs.DurationVar(&cfg.InventoryTimeout, "inventory-timeout", 0, "Inventory request timeout")

	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (json or console)")

	fs.StringVar(&cfg.MetricsSchedule, "metrics-schedule", "", "Cron spec for gauge refresh and stale pause report")
	fs.DurationVar(&cfg.StalePauseAfter, "stale-pause-after", 0, "Report audits paused longer than this")
	fs.BoolVar(&cfg.AutoCompleteEmpty, "auto-complete-empty", true, "Complete audits with no expected chemicals on location scan")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envOr("DATABASE_TYPE", "sqlite")
	}

	if cfg.RedisAddr == "" {
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	}
	if cfg.RedisPassword == "" {
		cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	}
	if !fs.Changed("redis-db") {
		n, err := envInt("REDIS_DB", 0)
		if err != nil {
			return Config{}, err
		}
		cfg.RedisDB = n
	}
	if cfg.LockTTL == 0 {
		d, err := envDuration("LOCK_TTL", 30*time.Second)
		if err != nil {
			return Config{}, err
		}
		cfg.LockTTL = d
	}

	if cfg.InventoryURL == "" {
		cfg.InventoryURL = os.Getenv("INVENTORY_URL")
	}
	if cfg.InventoryTimeout == 0 {
		d, err := envDuration("INVENTORY_TIMEOUT", 5*time.Second)
		if err != nil {
			return Config{}, err
		}
		cfg.InventoryTimeout = d
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = envOr("LOG_LEVEL", "info")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = envOr("LOG_FORMAT", "json")
	}

	if cfg.MetricsSchedule == "" {
		cfg.MetricsSchedule = envOr("METRICS_SCHEDULE", "@every 1m")
	}
	if cfg.StalePauseAfter == 0 {
		d, err := envDuration("STALE_PAUSE_AFTER", 24*time.Hour)
		if err != nil {
			return Config{}, err
		}
		cfg.StalePauseAfter = d
	}
	if !fs.Changed("auto-complete-empty") {
		if v := os.Getenv("AUTO_COMPLETE_EMPTY"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid AUTO_COMPLETE_EMPTY env variable")
			}
			cfg.AutoCompleteEmpty = b
		}
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
