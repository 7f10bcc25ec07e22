// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// RoundStatus is the lifecycle state of an audit round.
type RoundStatus string

// Round status constants
const (
	RoundNotStarted RoundStatus = "not_started"
	RoundInProgress RoundStatus = "in_progress"
	RoundPaused     RoundStatus = "paused"
	RoundCompleted  RoundStatus = "completed"
)

// SessionStatus is the lifecycle state of one location's audit.
type SessionStatus string

// Session status constants
const (
	SessionPending    SessionStatus = "pending"
	SessionInProgress SessionStatus = "in_progress"
	SessionPaused     SessionStatus = "paused"
	SessionCompleted  SessionStatus = "completed"
)

// RecordStatus is the verification outcome of one expected chemical.
type RecordStatus string

// Record status constants
const (
	RecordPending RecordStatus = "pending"
	RecordFound   RecordStatus = "found"
	RecordMissing RecordStatus = "missing"
)

// Inventory types (read-only for the audit engine)

type Location struct {
	ID       string `json:"id"`
	QRCode   string `json:"qr_code"`
	Name     string `json:"name"`
	Building string `json:"building,omitempty"`
}

type Chemical struct {
	ID         string `json:"id"`
	QRCode     string `json:"qr_code"`
	Name       string `json:"name"`
	CASNumber  string `json:"cas_number,omitempty"`
	LocationID string `json:"location_id"`
}

// Audit types

type AuditRound struct {
	ID             string      `json:"id"`
	RoundNumber    int         `json:"round_number"`
	Auditor        string      `json:"auditor"`
	Status         RoundStatus `json:"status"`
	PendingCount   int         `json:"pending_count"`
	FinishedCount  int         `json:"finished_count"`
	CreatedAt      time.Time   `json:"created_at"`
	StartedAt      *time.Time  `json:"started_at,omitempty"`
	LastActivityAt time.Time   `json:"last_activity_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
}

type AuditSession struct {
	ID           string        `json:"id"`
	RoundID      string        `json:"round_id"`
	LocationID   string        `json:"location_id"`
	LocationCode string        `json:"location_code"`
	LocationName string        `json:"location_name"`
	Status       SessionStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	PausedAt     *time.Time    `json:"paused_at,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// AuditRecord is a snapshot row: chemical fields are copied at round start
// and never follow later inventory edits.
type AuditRecord struct {
	ID           string       `json:"id"`
	SessionID    string       `json:"audit_id"`
	ChemicalID   string       `json:"chemical_id"`
	ChemicalCode string       `json:"chemical_code"`
	ChemicalName string       `json:"chemical_name"`
	CASNumber    string       `json:"cas_number,omitempty"`
	Status       RecordStatus `json:"status"`
	ScannedAt    *time.Time   `json:"scanned_at,omitempty"`
}

// AuditRecordDetail adds the owning session's location to a record.
type AuditRecordDetail struct {
	AuditRecord
	RoundID      string `json:"round_id"`
	LocationID   string `json:"location_id"`
	LocationCode string `json:"location_code"`
	LocationName string `json:"location_name"`
}

type SessionSnapshot struct {
	Session AuditSession  `json:"audit"`
	Records []AuditRecord `json:"records"`
}

type RoundDetail struct {
	Round    AuditRound     `json:"round"`
	Sessions []AuditSession `json:"audits"`
}

type CompletionResult struct {
	Session    AuditSession `json:"audit"`
	Round      AuditRound   `json:"round"`
	Reconciled int          `json:"reconciled_missing"`
}

// Request types

type StartRoundRequest struct {
	Auditor     string   `json:"auditor"`
	LocationIDs []string `json:"location_ids"`
}

type ScanRequest struct {
	Code string `json:"code"`
}

// Response types

type RecordListResponse struct {
	Records []AuditRecordDetail `json:"records"`
}

type RoundListResponse struct {
	Rounds []AuditRound `json:"rounds"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Status  string `json:"status,omitempty"`
}
