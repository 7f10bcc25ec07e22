// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/helenatai/chemucl/models"
)

const roundColumns = `id, round_number, auditor, status, pending_count, finished_count,
	created_at, started_at, last_activity_at, completed_at`

func scanRound(row rowScanner) (*models.AuditRound, error) {
	var r models.AuditRound
	var status string
	var startedAt, completedAt sql.NullTime
	err := row.Scan(
		&r.ID, &r.RoundNumber, &r.Auditor, &status, &r.PendingCount, &r.FinishedCount,
		&r.CreatedAt, &startedAt, &r.LastActivityAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Status = models.RoundStatus(status)
	r.StartedAt = timePtr(startedAt)
	r.CompletedAt = timePtr(completedAt)
	return &r, nil
}

// NextRoundNumber returns one more than the highest round number so far.
func (t *Tx) NextRoundNumber(ctx context.Context) (int, error) {
	var n int
	err := t.queryRow(ctx, `SELECT COALESCE(MAX(round_number), 0) + 1 FROM audit_round`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next round number: %w", err)
	}
	return n, nil
}

func (t *Tx) InsertRound(ctx context.Context, r *models.AuditRound) error {
	_, err := t.exec(ctx, `
		INSERT INTO audit_round (id, round_number, auditor, status, pending_count, finished_count,
		                         created_at, started_at, last_activity_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.ID, r.RoundNumber, r.Auditor, string(r.Status), r.PendingCount, r.FinishedCount,
		r.CreatedAt, nullTime(r.StartedAt), r.LastActivityAt, nullTime(r.CompletedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert round %d: %w", r.RoundNumber, ErrRoundNumberTaken)
		}
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

// GetRound loads a round; lock takes a row lock where the dialect has one.
func (t *Tx) GetRound(ctx context.Context, id string, lock bool) (*models.AuditRound, error) {
	row := t.queryRow(ctx, `SELECT `+roundColumns+` FROM audit_round WHERE id = $1`+t.lockSuffix(lock), id)
	r, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get round: %w", err)
	}
	return r, nil
}

func (t *Tx) ListRounds(ctx context.Context) ([]models.AuditRound, error) {
	rows, err := t.query(ctx, `SELECT `+roundColumns+` FROM audit_round ORDER BY round_number DESC`)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	rounds := []models.AuditRound{}
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		rounds = append(rounds, *r)
	}
	return rounds, rows.Err()
}

// FinishSession moves one session from pending to finished in a single
// statement and returns the new counters.
func (t *Tx) FinishSession(ctx context.Context, roundID string, at time.Time) (pending, finished int, err error) {
	err = t.queryRow(ctx, `
		UPDATE audit_round
		SET pending_count = pending_count - 1,
		    finished_count = finished_count + 1,
		    last_activity_at = $2
		WHERE id = $1 AND pending_count > 0
		RETURNING pending_count, finished_count
	`, roundID, at).Scan(&pending, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("round %s has no pending audits: %w", roundID, ErrNotFound)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("update round counters: %w", err)
	}
	return pending, finished, nil
}

// MarkRoundActive moves a not-started or paused round to in_progress and
// stamps its first start. Completed rounds are left alone.
func (t *Tx) MarkRoundActive(ctx context.Context, roundID string, at time.Time) error {
	_, err := t.exec(ctx, `
		UPDATE audit_round
		SET status = $2,
		    started_at = COALESCE(started_at, $3),
		    last_activity_at = $3
		WHERE id = $1 AND status <> $4
	`, roundID, string(models.RoundInProgress), at, string(models.RoundCompleted))
	if err != nil {
		return fmt.Errorf("activate round: %w", err)
	}
	return nil
}

// SetRoundStatus writes a lifecycle transition; completing stamps completed_at.
func (t *Tx) SetRoundStatus(ctx context.Context, roundID string, status models.RoundStatus, at time.Time) error {
	var completedAt *time.Time
	if status == models.RoundCompleted {
		completedAt = &at
	}
	res, err := t.exec(ctx, `
		UPDATE audit_round
		SET status = $2, last_activity_at = $3, completed_at = COALESCE(completed_at, $4)
		WHERE id = $1
	`, roundID, string(status), at, nullTime(completedAt))
	if err != nil {
		return fmt.Errorf("set round status: %w", err)
	}
	return expectOneRow(res)
}

func (t *Tx) TouchRound(ctx context.Context, roundID string, at time.Time) error {
	_, err := t.exec(ctx, `UPDATE audit_round SET last_activity_at = $2 WHERE id = $1`, roundID, at)
	if err != nil {
		return fmt.Errorf("touch round: %w", err)
	}
	return nil
}

func (s *Store) GetRound(ctx context.Context, id string) (*models.AuditRound, error) {
	return s.view().GetRound(ctx, id, false)
}

func (s *Store) ListRounds(ctx context.Context) ([]models.AuditRound, error) {
	return s.view().ListRounds(ctx)
}
