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

const recordColumns = `r.id, r.session_id, r.chemical_id, r.chemical_code, r.chemical_name,
	r.cas_number, r.status, r.scanned_at`

func scanRecord(row rowScanner, extra ...any) (*models.AuditRecord, error) {
	var rec models.AuditRecord
	var status string
	var cas sql.NullString
	var scannedAt sql.NullTime
	dest := []any{
		&rec.ID, &rec.SessionID, &rec.ChemicalID, &rec.ChemicalCode, &rec.ChemicalName,
		&cas, &status, &scannedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	rec.CASNumber = cas.String
	rec.Status = models.RecordStatus(status)
	rec.ScannedAt = timePtr(scannedAt)
	return &rec, nil
}

// InsertRecord adds one snapshot row. UNIQUE (session_id, chemical_id) keeps
// a chemical from being expected twice in one session.
func (t *Tx) InsertRecord(ctx context.Context, rec *models.AuditRecord) error {
	_, err := t.exec(ctx, `
		INSERT INTO audit_record (id, session_id, chemical_id, chemical_code, chemical_name,
		                          cas_number, status, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.SessionID, rec.ChemicalID, rec.ChemicalCode, rec.ChemicalName,
		nullString(rec.CASNumber), string(rec.Status), nullTime(rec.ScannedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert record for chemical %s: %w", rec.ChemicalID, ErrDuplicate)
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// ListRecords returns a session's records ordered by chemical name.
func (t *Tx) ListRecords(ctx context.Context, sessionID string) ([]models.AuditRecord, error) {
	rows, err := t.query(ctx, `
		SELECT `+recordColumns+`
		FROM audit_record r
		WHERE r.session_id = $1
		ORDER BY r.chemical_name, r.chemical_code, r.id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := []models.AuditRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (t *Tx) GetRecordByChemical(ctx context.Context, sessionID, chemicalID string) (*models.AuditRecord, error) {
	row := t.queryRow(ctx, `
		SELECT `+recordColumns+`
		FROM audit_record r
		WHERE r.session_id = $1 AND r.chemical_id = $2
	`, sessionID, chemicalID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// MarkRecordFound resolves a pending record. Records that are no longer
// pending are not touched and ErrNotFound is returned.
func (t *Tx) MarkRecordFound(ctx context.Context, recordID string, at time.Time) error {
	res, err := t.exec(ctx, `
		UPDATE audit_record
		SET status = $2, scanned_at = $3
		WHERE id = $1 AND status = $4
	`, recordID, string(models.RecordFound), at, string(models.RecordPending))
	if err != nil {
		return fmt.Errorf("mark record found: %w", err)
	}
	return expectOneRow(res)
}

// ReconcileMissing turns every pending record of the session into missing
// and reports how many changed.
func (t *Tx) ReconcileMissing(ctx context.Context, sessionID string) (int, error) {
	res, err := t.exec(ctx, `
		UPDATE audit_record
		SET status = $2
		WHERE session_id = $1 AND status = $3
	`, sessionID, string(models.RecordMissing), string(models.RecordPending))
	if err != nil {
		return 0, fmt.Errorf("reconcile missing records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reconcile missing records: %w", err)
	}
	return int(n), nil
}

func (t *Tx) listRecordDetails(ctx context.Context, where string, arg any) ([]models.AuditRecordDetail, error) {
	rows, err := t.query(ctx, `
		SELECT `+recordColumns+`, s.round_id, s.location_id, s.location_code, s.location_name
		FROM audit_record r
		JOIN audit_session s ON s.id = r.session_id
		WHERE `+where+`
		ORDER BY s.location_name, r.chemical_name, r.chemical_code, r.id
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("list record details: %w", err)
	}
	defer rows.Close()

	details := []models.AuditRecordDetail{}
	for rows.Next() {
		var d models.AuditRecordDetail
		rec, err := scanRecord(rows, &d.RoundID, &d.LocationID, &d.LocationCode, &d.LocationName)
		if err != nil {
			return nil, fmt.Errorf("scan record detail: %w", err)
		}
		d.AuditRecord = *rec
		details = append(details, d)
	}
	return details, rows.Err()
}

// FindAuditRecordsByAuditID lists a session's records with location detail.
func (t *Tx) FindAuditRecordsByAuditID(ctx context.Context, sessionID string) ([]models.AuditRecordDetail, error) {
	return t.listRecordDetails(ctx, "r.session_id = $1", sessionID)
}

// FindMissingRecordsByAuditGeneralID lists every missing record of a round.
func (t *Tx) FindMissingRecordsByAuditGeneralID(ctx context.Context, roundID string) ([]models.AuditRecordDetail, error) {
	return t.listRecordDetails(ctx, "s.round_id = $1 AND r.status = '"+string(models.RecordMissing)+"'", roundID)
}

func (s *Store) ListRecords(ctx context.Context, sessionID string) ([]models.AuditRecord, error) {
	return s.view().ListRecords(ctx, sessionID)
}

func (s *Store) FindAuditRecordsByAuditID(ctx context.Context, sessionID string) ([]models.AuditRecordDetail, error) {
	return s.view().FindAuditRecordsByAuditID(ctx, sessionID)
}

func (s *Store) FindMissingRecordsByAuditGeneralID(ctx context.Context, roundID string) ([]models.AuditRecordDetail, error) {
	return s.view().FindMissingRecordsByAuditGeneralID(ctx, roundID)
}
