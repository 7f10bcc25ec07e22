// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit implements the chemical inventory audit workflow.

# Rounds, Audits and Records

A round (audit general) covers a set of locations. Starting it creates one
pending audit per location and one pending record per chemical that the
directory lists at that location. The records are a snapshot: later inventory
edits do not change what the round audits against.

	detail, err := svc.StartRound(ctx, audit.StartRoundInput{
		Auditor:     "jdoe",
		LocationIDs: []string{"lab-101", "lab-102"},
	})

# Scan Protocol

Operators work through a location by scanning its QR code, then the codes of
the chemicals they find:

	snap, err := svc.ScanLocation(ctx, roundID, "LOC-101")
	rec, err := svc.ScanChemical(ctx, snap.Session.ID, "CHEM-0042")

ScanLocation starts a pending audit, resumes a paused one and re-enters an
in-progress one. ScanChemical requires an in-progress audit; a chemical that
is already found stays found, and a chemical outside the snapshot is reported
as ErrUnexpectedChemical without touching any record.

# Session Lifecycle

	pending ──scan location──> in_progress <──scan location── paused
	                                │  └────────pause─────────────┘
	                                └──complete──> completed

PauseAudit keeps pending records pending. CompleteAuditSession (from
in_progress or paused) turns every pending record into missing, completes the
audit and moves the round's pending/finished counters by one in a single
statement. The round completes when its pending count reaches zero.

# Concurrency

Every operation on an audit holds its lock.Locker key and re-reads the audit
row inside the transaction before deciding. Operations on different audits
never share a lock; round counters change only through the atomic counter
update, so audits finishing together cannot lose an update.

# Errors

Input errors (ErrInvalidCode, ErrUnexpectedChemical, ErrInvalidRound) point at
the scanned code or request. State errors are wrapped in *StateError carrying
the current status:

	if status, ok := audit.CurrentStatus(err); ok {
		// show status to the operator
	}

Anything else is a persistence failure and safe to retry: re-scans are
idempotent.
*/
package audit
