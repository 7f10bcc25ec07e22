// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the chemucl audit API server.

chemucl runs physical inventory audits of a chemical store: an audit round
snapshots which chemicals are expected at each location, operators scan
location and chemical QR codes to verify them, and completing a location
turns everything not scanned into a missing record.

# Starting the Server

The server reads a .env file if present, then environment variables and CLI
flags:

	DATABASE_URL=file:audit.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB: share audit locks between instances
  - LOCK_TTL: expiry of a held audit lock (default: 30s)
  - INVENTORY_URL, INVENTORY_TIMEOUT: resolve codes against an inventory
    service instead of the local location and chemical tables
  - LOG_LEVEL, LOG_FORMAT: zap level and json or console output
  - METRICS_SCHEDULE: cron spec for gauge refresh (default: @every 1m)
  - STALE_PAUSE_AFTER: warn about audits paused longer than this (default: 24h)
  - AUTO_COMPLETE_EMPTY: complete audits with nothing expected on location
    scan (default: true)

# Architecture

  - audit: rounds, the scan protocol and the completion engine
  - store: transactional persistence of rounds, audits and records
  - directory: QR code and inventory lookups (SQL or HTTP)
  - lock: per-audit locks (in-process or redis)
  - handlers, router, middleware: HTTP surface
  - scheduler, metrics: cron jobs and prometheus collectors
  - cliparse, logger, db, models: configuration, zap setup, schema, types

See package documentation for each component.
*/
package main
