// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

LoadEnvFile never overrides variables already present in the environment.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL connection string or SQLite file (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - RedisAddr, RedisPassword, RedisDB: shared audit locks (default: in-process)
  - LockTTL: expiry of a held redis lock (default: 30s)
  - InventoryURL, InventoryTimeout: external directory (default: local tables, 5s)
  - LogLevel, LogFormat: zap level and encoder (default: info, json)
  - MetricsSchedule: cron spec for background jobs (default: @every 1m)
  - StalePauseAfter: paused audits older than this are reported (default: 24h)
  - AutoCompleteEmpty: complete audits with no expected chemicals on scan (default: true)

# CLI Flags and Environment Variables

	-p, --port              PORT
	-d, --database-url      DATABASE_URL
	-t, --database-type     DATABASE_TYPE
	--redis-addr            REDIS_ADDR
	--redis-password        REDIS_PASSWORD
	--redis-db              REDIS_DB
	--lock-ttl              LOCK_TTL
	--inventory-url         INVENTORY_URL
	--inventory-timeout     INVENTORY_TIMEOUT
	--log-level             LOG_LEVEL
	--log-format            LOG_FORMAT
	--metrics-schedule      METRICS_SCHEDULE
	--stale-pause-after     STALE_PAUSE_AFTER
	--auto-complete-empty   AUTO_COMPLETE_EMPTY

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if DATABASE_URL is missing or a numeric, duration
or boolean variable does not parse.
*/
package cliparse
