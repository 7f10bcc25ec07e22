// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/helenatai/chemucl/directory"
	"github.com/helenatai/chemucl/metrics"
	"github.com/helenatai/chemucl/models"
	"github.com/helenatai/chemucl/store"
)

// ScanLocation opens (or re-enters) the audit for the scanned location in the
// round and returns it with its records. A pending audit starts, a paused one
// resumes. The round is marked in progress.
func (s *Service) ScanLocation(ctx context.Context, roundID, code string) (snap *models.SessionSnapshot, err error) {
	defer func() { s.metrics.ObserveScan(metrics.KindLocation, err) }()

	loc, err := s.dir.ResolveLocation(ctx, code)
	if errors.Is(err, directory.ErrNotFound) {
		return nil, fmt.Errorf("%w: no location with code %q", ErrInvalidCode, directory.NormalizeCode(code))
	}
	if err != nil {
		return nil, fmt.Errorf("resolve location: %w", err)
	}

	if _, err := s.loadRound(ctx, roundID); err != nil {
		return nil, err
	}
	found, err := s.store.FindSessionByLocation(ctx, roundID, loc.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s is not part of round %s", ErrSessionNotFound, loc.Name, roundID)
	}
	if err != nil {
		return nil, err
	}

	var completion *models.CompletionResult
	err = s.withSession(ctx, found.ID, func(tx *store.Tx, sess *models.AuditSession) error {
		now := s.now()
		switch sess.Status {
		case models.SessionCompleted:
			return stateError("scan location", ErrSessionAlreadyCompleted, sess.Status)
		case models.SessionPending:
			sess.Status = models.SessionInProgress
			sess.StartedAt = &now
		case models.SessionPaused:
			sess.Status = models.SessionInProgress
		}
		if err := tx.UpdateSession(ctx, sess); err != nil {
			return err
		}
		if err := tx.MarkRoundActive(ctx, sess.RoundID, now); err != nil {
			return err
		}

		records, err := tx.ListRecords(ctx, sess.ID)
		if err != nil {
			return err
		}
		if len(records) == 0 && s.autoCompleteEmpty {
			completion, err = s.complete(ctx, tx, sess)
			if err != nil {
				return err
			}
		}
		snap = &models.SessionSnapshot{Session: *sess, Records: records}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("location scanned",
		zap.String("round_id", roundID),
		zap.String("audit_id", snap.Session.ID),
		zap.String("location", snap.Session.LocationCode),
		zap.Int("records", len(snap.Records)),
	)
	s.afterCompletion(completion)
	return snap, nil
}

// ScanChemical verifies one chemical inside an in-progress audit. Scanning an
// already found chemical is a no-op that returns the existing record.
func (s *Service) ScanChemical(ctx context.Context, sessionID, code string) (rec *models.AuditRecord, err error) {
	defer func() { s.metrics.ObserveScan(metrics.KindChemical, err) }()

	chem, err := s.dir.ResolveChemical(ctx, code)
	if errors.Is(err, directory.ErrNotFound) {
		return nil, fmt.Errorf("%w: no chemical with code %q", ErrInvalidCode, directory.NormalizeCode(code))
	}
	if err != nil {
		return nil, fmt.Errorf("resolve chemical: %w", err)
	}

	err = s.withSession(ctx, sessionID, func(tx *store.Tx, sess *models.AuditSession) error {
		if sess.Status != models.SessionInProgress {
			return stateError("scan chemical", ErrSessionNotActive, sess.Status)
		}

		cur, err := tx.GetRecordByChemical(ctx, sess.ID, chem.ID)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s (%s) is not expected at %s", ErrUnexpectedChemical, chem.Name, chem.QRCode, sess.LocationName)
		}
		if err != nil {
			return err
		}
		if cur.Status == models.RecordFound {
			rec = cur
			return nil
		}

		now := s.now()
		if err := tx.MarkRecordFound(ctx, cur.ID, now); err != nil {
			return err
		}
		if err := tx.TouchRound(ctx, sess.RoundID, now); err != nil {
			return err
		}
		cur.Status = models.RecordFound
		cur.ScannedAt = &now
		rec = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("chemical scanned",
		zap.String("audit_id", sessionID),
		zap.String("chemical", rec.ChemicalCode),
		zap.String("status", string(rec.Status)),
	)
	return rec, nil
}

// PauseAudit suspends an in-progress audit. Found records stay found.
func (s *Service) PauseAudit(ctx context.Context, sessionID string) (*models.AuditSession, error) {
	var out models.AuditSession
	err := s.withSession(ctx, sessionID, func(tx *store.Tx, sess *models.AuditSession) error {
		if sess.Status != models.SessionInProgress {
			return stateError("pause audit", ErrInvalidStateTransition, sess.Status)
		}
		if err := s.pause(ctx, tx, sess); err != nil {
			return err
		}
		out = *sess
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("audit paused", zap.String("audit_id", sessionID), zap.String("round_id", out.RoundID))
	return &out, nil
}

func (s *Service) pause(ctx context.Context, tx *store.Tx, sess *models.AuditSession) error {
	now := s.now()
	sess.Status = models.SessionPaused
	sess.PausedAt = &now
	if err := tx.UpdateSession(ctx, sess); err != nil {
		return err
	}
	return tx.TouchRound(ctx, sess.RoundID, now)
}

// CompleteAuditSession finishes an in-progress or paused audit: pending
// records become missing and the round counters move by exactly one.
func (s *Service) CompleteAuditSession(ctx context.Context, sessionID string) (*models.CompletionResult, error) {
	var res *models.CompletionResult
	err := s.withSession(ctx, sessionID, func(tx *store.Tx, sess *models.AuditSession) error {
		switch sess.Status {
		case models.SessionInProgress, models.SessionPaused:
		default:
			return stateError("complete audit", ErrInvalidStateTransition, sess.Status)
		}
		var err error
		res, err = s.complete(ctx, tx, sess)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterCompletion(res)
	return res, nil
}

// complete runs the completion steps inside the caller's transaction while
// the session lock is held. sess is updated in place.
func (s *Service) complete(ctx context.Context, tx *store.Tx, sess *models.AuditSession) (*models.CompletionResult, error) {
	now := s.now()

	missing, err := tx.ReconcileMissing(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	sess.Status = models.SessionCompleted
	sess.CompletedAt = &now
	if err := tx.UpdateSession(ctx, sess); err != nil {
		return nil, err
	}

	pending, _, err := tx.FinishSession(ctx, sess.RoundID, now)
	if err != nil {
		return nil, err
	}
	if pending == 0 {
		if err := tx.SetRoundStatus(ctx, sess.RoundID, models.RoundCompleted, now); err != nil {
			return nil, err
		}
	}

	round, err := tx.GetRound(ctx, sess.RoundID, false)
	if err != nil {
		return nil, err
	}
	return &models.CompletionResult{Session: *sess, Round: *round, Reconciled: missing}, nil
}

// afterCompletion logs and counts a committed completion.
func (s *Service) afterCompletion(res *models.CompletionResult) {
	if res == nil {
		return
	}
	s.metrics.ObserveCompletion(res)
	s.logger.Info("audit completed",
		zap.String("audit_id", res.Session.ID),
		zap.String("round_id", res.Round.ID),
		zap.Int("missing", res.Reconciled),
		zap.Int("pending_audits", res.Round.PendingCount),
		zap.Int("finished_audits", res.Round.FinishedCount),
	)
	if res.Round.Status == models.RoundCompleted {
		s.logger.Info("audit round completed", zap.String("round_id", res.Round.ID), zap.Int("round_number", res.Round.RoundNumber))
	}
}
