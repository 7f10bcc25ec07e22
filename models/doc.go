// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the audit API.

# Inventory Types

Read-only views of inventory owned elsewhere:

  - Location: a room or cabinet with a scannable QR code
  - Chemical: a container with a QR code and its recorded location

# Audit Types

  - AuditRound: one audit campaign over many locations, with pending and
    finished session counters
  - AuditSession: one location's audit inside a round
  - AuditRecord: the expected presence of one chemical in one session
  - AuditRecordDetail: a record joined with its session's location
  - SessionSnapshot: a session with its ordered records
  - RoundDetail: a round with its sessions
  - CompletionResult: outcome of the completion engine

# Request Types

  - StartRoundRequest: auditor, location_ids
  - ScanRequest: code

# Constants

Round status values:

	RoundNotStarted = "not_started"
	RoundInProgress = "in_progress"
	RoundPaused     = "paused"
	RoundCompleted  = "completed"

Session status values:

	SessionPending    = "pending"
	SessionInProgress = "in_progress"
	SessionPaused     = "paused"
	SessionCompleted  = "completed"

Record status values:

	RecordPending = "pending"
	RecordFound   = "found"
	RecordMissing = "missing"
*/
package models
