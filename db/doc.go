// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, dialects, and schema creation.

# Connecting

Open connects and pings either backend:

	conn, err := db.Open(db.Postgres, "postgres://...")
	conn, err := db.Open(db.SQLite, "file:audit.db")

SQLite connections are limited to a single open connection with foreign keys
enabled, which serializes writers.

# Dialects

Queries are written with postgres placeholders ($1, $2, ...). Rebind converts
them for sqlite, and ForUpdate yields the row-lock suffix used when a
transaction re-reads a session it is about to mutate:

	q := d.Rebind("SELECT status FROM audit_session WHERE id = $1" + d.ForUpdate())

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - location: inventory locations (read-only for audits)
  - chemical: inventory chemicals with their recorded location
  - audit_round: one audit campaign with pending/finished counters
  - audit_session: one location's audit within a round
  - audit_record: one expected chemical within a session

# Relationships

	audit_round 1──* audit_session   UNIQUE (round_id, location_id)
	audit_session 1──* audit_record  UNIQUE (session_id, chemical_id)

Audit foreign keys use ON DELETE CASCADE. Records copy chemical code and name
so later inventory edits never change an audit in progress.
*/
package db
