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

const sessionColumns = `id, round_id, location_id, location_code, location_name, status,
	created_at, started_at, paused_at, completed_at`

func scanSession(row rowScanner) (*models.AuditSession, error) {
	var s models.AuditSession
	var status string
	var startedAt, pausedAt, completedAt sql.NullTime
	err := row.Scan(
		&s.ID, &s.RoundID, &s.LocationID, &s.LocationCode, &s.LocationName, &status,
		&s.CreatedAt, &startedAt, &pausedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = models.SessionStatus(status)
	s.StartedAt = timePtr(startedAt)
	s.PausedAt = timePtr(pausedAt)
	s.CompletedAt = timePtr(completedAt)
	return &s, nil
}

// InsertSession adds a session. A second session for the same round and
// location violates UNIQUE (round_id, location_id) and returns ErrDuplicate.
func (t *Tx) InsertSession(ctx context.Context, s *models.AuditSession) error {
	_, err := t.exec(ctx, `
		INSERT INTO audit_session (id, round_id, location_id, location_code, location_name, status,
		                           created_at, started_at, paused_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.ID, s.RoundID, s.LocationID, s.LocationCode, s.LocationName, string(s.Status),
		s.CreatedAt, nullTime(s.StartedAt), nullTime(s.PausedAt), nullTime(s.CompletedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert audit for location %s: %w", s.LocationID, ErrDuplicate)
		}
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// GetSession loads a session; lock takes a row lock where the dialect has one.
func (t *Tx) GetSession(ctx context.Context, id string, lock bool) (*models.AuditSession, error) {
	row := t.queryRow(ctx, `SELECT `+sessionColumns+` FROM audit_session WHERE id = $1`+t.lockSuffix(lock), id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get audit: %w", err)
	}
	return s, nil
}

func (t *Tx) FindSessionByLocation(ctx context.Context, roundID, locationID string) (*models.AuditSession, error) {
	row := t.queryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM audit_session
		WHERE round_id = $1 AND location_id = $2
	`, roundID, locationID)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find audit by location: %w", err)
	}
	return s, nil
}

func (t *Tx) ListSessions(ctx context.Context, roundID string) ([]models.AuditSession, error) {
	rows, err := t.query(ctx, `
		SELECT `+sessionColumns+`
		FROM audit_session
		WHERE round_id = $1
		ORDER BY location_name, location_code, id
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()

	sessions := []models.AuditSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// UpdateSession writes the status and lifecycle stamps of s.
func (t *Tx) UpdateSession(ctx context.Context, s *models.AuditSession) error {
	res, err := t.exec(ctx, `
		UPDATE audit_session
		SET status = $2, started_at = $3, paused_at = $4, completed_at = $5
		WHERE id = $1
	`, s.ID, string(s.Status), nullTime(s.StartedAt), nullTime(s.PausedAt), nullTime(s.CompletedAt))
	if err != nil {
		return fmt.Errorf("update audit: %w", err)
	}
	return expectOneRow(res)
}

// CountSessionsByStatus counts sessions across all rounds that are not completed.
func (t *Tx) CountSessionsByStatus(ctx context.Context) (map[models.SessionStatus]int, error) {
	rows, err := t.query(ctx, `
		SELECT s.status, COUNT(*)
		FROM audit_session s
		JOIN audit_round r ON r.id = s.round_id
		WHERE r.status <> $1
		GROUP BY s.status
	`, string(models.RoundCompleted))
	if err != nil {
		return nil, fmt.Errorf("count audits: %w", err)
	}
	defer rows.Close()

	counts := map[models.SessionStatus]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan audit count: %w", err)
		}
		counts[models.SessionStatus(status)] = n
	}
	return counts, rows.Err()
}

// ListPausedBefore returns paused sessions whose pause is older than cutoff.
func (t *Tx) ListPausedBefore(ctx context.Context, cutoff time.Time) ([]models.AuditSession, error) {
	rows, err := t.query(ctx, `
		SELECT `+sessionColumns+`
		FROM audit_session
		WHERE status = $1 AND paused_at < $2
		ORDER BY paused_at
	`, string(models.SessionPaused), cutoff)
	if err != nil {
		return nil, fmt.Errorf("list paused audits: %w", err)
	}
	defer rows.Close()

	sessions := []models.AuditSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.AuditSession, error) {
	return s.view().GetSession(ctx, id, false)
}

func (s *Store) FindSessionByLocation(ctx context.Context, roundID, locationID string) (*models.AuditSession, error) {
	return s.view().FindSessionByLocation(ctx, roundID, locationID)
}

func (s *Store) ListSessions(ctx context.Context, roundID string) ([]models.AuditSession, error) {
	return s.view().ListSessions(ctx, roundID)
}

func (s *Store) CountSessionsByStatus(ctx context.Context) (map[models.SessionStatus]int, error) {
	return s.view().CountSessionsByStatus(ctx)
}

func (s *Store) ListPausedBefore(ctx context.Context, cutoff time.Time) ([]models.AuditSession, error) {
	return s.view().ListPausedBefore(ctx, cutoff)
}
