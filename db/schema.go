// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL is shared by postgres and sqlite, so it sticks to the common subset.
const schema = `
-- Inventory (owned by inventory management, read by the audit engine)
CREATE TABLE IF NOT EXISTS location (
    id TEXT PRIMARY KEY,
    qr_code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    building TEXT
);

CREATE TABLE IF NOT EXISTS chemical (
    id TEXT PRIMARY KEY,
    qr_code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    cas_number TEXT,
    location_id TEXT REFERENCES location(id)
);

CREATE INDEX IF NOT EXISTS idx_chemical_location_id ON chemical(location_id);

-- Audit rounds
CREATE TABLE IF NOT EXISTS audit_round (
    id TEXT PRIMARY KEY,
    round_number INTEGER NOT NULL UNIQUE,
    auditor TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'not_started' CHECK (status IN ('not_started', 'in_progress', 'paused', 'completed')),
    pending_count INTEGER NOT NULL DEFAULT 0 CHECK (pending_count >= 0),
    finished_count INTEGER NOT NULL DEFAULT 0 CHECK (finished_count >= 0),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    started_at TIMESTAMP,
    last_activity_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    completed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_round_status ON audit_round(status);

-- Audit sessions (one per location per round)
CREATE TABLE IF NOT EXISTS audit_session (
    id TEXT PRIMARY KEY,
    round_id TEXT NOT NULL REFERENCES audit_round(id) ON DELETE CASCADE,
    location_id TEXT NOT NULL,
    location_code TEXT NOT NULL,
    location_name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in_progress', 'paused', 'completed')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    started_at TIMESTAMP,
    paused_at TIMESTAMP,
    completed_at TIMESTAMP,
    UNIQUE (round_id, location_id)
);

CREATE INDEX IF NOT EXISTS idx_audit_session_round_id ON audit_session(round_id);
CREATE INDEX IF NOT EXISTS idx_audit_session_status ON audit_session(status);

-- Audit records (snapshot of the chemicals expected at a location)
CREATE TABLE IF NOT EXISTS audit_record (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES audit_session(id) ON DELETE CASCADE,
    chemical_id TEXT NOT NULL,
    chemical_code TEXT NOT NULL,
    chemical_name TEXT NOT NULL,
    cas_number TEXT,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'found', 'missing')),
    scanned_at TIMESTAMP,
    UNIQUE (session_id, chemical_id)
);

CREATE INDEX IF NOT EXISTS idx_audit_record_session_id ON audit_record(session_id);
CREATE INDEX IF NOT EXISTS idx_audit_record_status ON audit_record(status);
`
