// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the audit API.

# Handler Types

Each handler is a struct over the audit service:

  - RoundHandler: round lifecycle, location scans and round-wide queries
  - AuditHandler: chemical scans, pause and completion of one location audit

Handlers are created via constructor functions:

	roundHandler := handlers.NewRoundHandler(svc, log)
	auditHandler := handlers.NewAuditHandler(svc, log)

# Scan Flow

An operator opens a location, scans what is on the shelves, then closes it:

	POST /rounds/{id}/scan-location   → ScanLocation (returns audit and records)
	POST /audits/{id}/scan-chemical   → ScanChemical (returns the record)
	POST /audits/{id}/pause           → PauseAudit
	POST /audits/{id}/complete        → CompleteAudit (pending records become missing)

Scanning the same chemical twice returns the found record again.

# Error Responses

Errors from the audit service are written with a stable code:

	{"error": "Conflict", "message": "...", "code": "session_not_active", "status": "paused"}

  - 422: invalid_code, unexpected_chemical, invalid_round
  - 404: round_not_found, session_not_found
  - 409: session_not_active, session_already_completed, invalid_state_transition
  - 500: internal (logged; message is generic)

Malformed JSON and a blank auditor are answered with 400 before reaching the
service. A blank scan code is passed through and comes back as invalid_code.
*/
package handlers
