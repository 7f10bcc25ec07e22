// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helenatai/chemucl/directory"
	"github.com/helenatai/chemucl/models"
	"github.com/helenatai/chemucl/store"
)

// roundNumberAttempts bounds retries when two rounds race for the same number.
const roundNumberAttempts = 3

type StartRoundInput struct {
	Auditor     string
	LocationIDs []string
}

type locationPlan struct {
	location  models.Location
	chemicals []models.Chemical
}

// StartRound creates a round with one pending audit per location and one
// pending record per chemical expected there. The expected sets are read from
// the directory before anything is written, and the whole round lands in one
// transaction.
func (s *Service) StartRound(ctx context.Context, in StartRoundInput) (*models.RoundDetail, error) {
	auditor := strings.TrimSpace(in.Auditor)
	if auditor == "" {
		return nil, fmt.Errorf("%w: auditor is required", ErrInvalidRound)
	}

	locations, err := s.targetLocations(ctx, in.LocationIDs)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("%w: no locations to audit", ErrInvalidRound)
	}

	plans := make([]locationPlan, 0, len(locations))
	for _, loc := range locations {
		chems, err := s.dir.ChemicalsAtLocation(ctx, loc.ID)
		if err != nil {
			return nil, fmt.Errorf("list chemicals at %s: %w", loc.ID, err)
		}
		plans = append(plans, locationPlan{location: loc, chemicals: uniqueChemicals(chems)})
	}

	var detail *models.RoundDetail
	for attempt := 1; attempt <= roundNumberAttempts; attempt++ {
		detail, err = s.insertRound(ctx, auditor, plans)
		if !errors.Is(err, store.ErrRoundNumberTaken) {
			break
		}
		s.logger.Debug("round number taken, retrying", zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, err
	}

	records := 0
	for _, p := range plans {
		records += len(p.chemicals)
	}
	s.logger.Info("audit round started",
		zap.String("round_id", detail.Round.ID),
		zap.Int("round_number", detail.Round.RoundNumber),
		zap.String("auditor", auditor),
		zap.Int("audits", len(detail.Sessions)),
		zap.Int("records", records),
	)
	return detail, nil
}

func (s *Service) insertRound(ctx context.Context, auditor string, plans []locationPlan) (*models.RoundDetail, error) {
	now := s.now()
	round := models.AuditRound{
		ID:             uuid.NewString(),
		Auditor:        auditor,
		Status:         models.RoundNotStarted,
		PendingCount:   len(plans),
		CreatedAt:      now,
		LastActivityAt: now,
	}
	sessions := make([]models.AuditSession, 0, len(plans))

	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		n, err := tx.NextRoundNumber(ctx)
		if err != nil {
			return err
		}
		round.RoundNumber = n
		if err := tx.InsertRound(ctx, &round); err != nil {
			return err
		}

		for _, p := range plans {
			sess := models.AuditSession{
				ID:           uuid.NewString(),
				RoundID:      round.ID,
				LocationID:   p.location.ID,
				LocationCode: p.location.QRCode,
				LocationName: p.location.Name,
				Status:       models.SessionPending,
				CreatedAt:    now,
			}
			if err := tx.InsertSession(ctx, &sess); err != nil {
				return err
			}
			for _, c := range p.chemicals {
				rec := models.AuditRecord{
					ID:           uuid.NewString(),
					SessionID:    sess.ID,
					ChemicalID:   c.ID,
					ChemicalCode: c.QRCode,
					ChemicalName: c.Name,
					CASNumber:    c.CASNumber,
					Status:       models.RecordPending,
				}
				if err := tx.InsertRecord(ctx, &rec); err != nil {
					return err
				}
			}
			sessions = append(sessions, sess)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.RoundDetail{Round: round, Sessions: sessions}, nil
}

// targetLocations resolves the requested location ids, or every known
// location when none are given. Duplicates collapse to one audit.
func (s *Service) targetLocations(ctx context.Context, ids []string) ([]models.Location, error) {
	if len(ids) == 0 {
		locs, err := s.dir.ListLocations(ctx)
		if err != nil {
			return nil, fmt.Errorf("list locations: %w", err)
		}
		seen := make(map[string]bool, len(locs))
		out := make([]models.Location, 0, len(locs))
		for _, loc := range locs {
			if seen[loc.ID] {
				continue
			}
			seen[loc.ID] = true
			out = append(out, loc)
		}
		return out, nil
	}

	seen := make(map[string]bool, len(ids))
	locs := make([]models.Location, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		loc, err := s.dir.Location(ctx, id)
		if errors.Is(err, directory.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown location %s", ErrInvalidRound, id)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve location %s: %w", id, err)
		}
		locs = append(locs, *loc)
	}
	return locs, nil
}

func uniqueChemicals(chems []models.Chemical) []models.Chemical {
	seen := make(map[string]bool, len(chems))
	out := make([]models.Chemical, 0, len(chems))
	for _, c := range chems {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// PauseRound pauses every in-progress audit of the round, then the round.
// The audits and the round change in one transaction, under every audit lock.
func (s *Service) PauseRound(ctx context.Context, roundID string) (*models.RoundDetail, error) {
	if _, err := s.loadRound(ctx, roundID); err != nil {
		return nil, err
	}
	sessions, err := s.store.ListSessions(ctx, roundID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
	}

	paused := 0
	err = s.withSessions(ctx, ids, func(tx *store.Tx) error {
		cur, err := tx.GetRound(ctx, roundID, true)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrRoundNotFound, roundID)
		}
		if err != nil {
			return err
		}
		if cur.Status != models.RoundInProgress && cur.Status != models.RoundNotStarted {
			return stateError("pause round", ErrInvalidStateTransition, cur.Status)
		}
		for _, id := range ids {
			sess, err := tx.GetSession(ctx, id, true)
			if err != nil {
				return err
			}
			if sess.Status != models.SessionInProgress {
				continue
			}
			if err := s.pause(ctx, tx, sess); err != nil {
				return err
			}
			paused++
		}
		return tx.SetRoundStatus(ctx, roundID, models.RoundPaused, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("audit round paused", zap.String("round_id", roundID), zap.Int("audits_paused", paused))
	return s.GetRound(ctx, roundID)
}

// ResumeRound reopens a paused round. Audits stay paused until their location
// is scanned again. A round paused before any scan goes back to not_started.
func (s *Service) ResumeRound(ctx context.Context, roundID string) (*models.RoundDetail, error) {
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		cur, err := tx.GetRound(ctx, roundID, true)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrRoundNotFound, roundID)
		}
		if err != nil {
			return err
		}
		if cur.Status != models.RoundPaused {
			return stateError("resume round", ErrInvalidStateTransition, cur.Status)
		}
		if cur.StartedAt == nil {
			return tx.SetRoundStatus(ctx, roundID, models.RoundNotStarted, s.now())
		}
		return tx.MarkRoundActive(ctx, roundID, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("audit round resumed", zap.String("round_id", roundID))
	return s.GetRound(ctx, roundID)
}

// CompleteRound force-completes every audit that is not completed yet, which
// reconciles their pending records to missing, and so completes the round.
func (s *Service) CompleteRound(ctx context.Context, roundID string) (*models.RoundDetail, error) {
	round, err := s.loadRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status == models.RoundCompleted {
		return nil, stateError("complete round", ErrInvalidStateTransition, round.Status)
	}

	sessions, err := s.store.ListSessions(ctx, roundID)
	if err != nil {
		return nil, err
	}
	for _, sess := range sessions {
		if sess.Status == models.SessionCompleted {
			continue
		}
		var res *models.CompletionResult
		err := s.withSession(ctx, sess.ID, func(tx *store.Tx, cur *models.AuditSession) error {
			if cur.Status == models.SessionCompleted {
				return nil
			}
			var err error
			res, err = s.complete(ctx, tx, cur)
			return err
		})
		if err != nil {
			return nil, err
		}
		s.afterCompletion(res)
	}

	return s.GetRound(ctx, roundID)
}

func (s *Service) loadRound(ctx context.Context, roundID string) (*models.AuditRound, error) {
	round, err := s.store.GetRound(ctx, roundID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRoundNotFound, roundID)
	}
	return round, err
}
