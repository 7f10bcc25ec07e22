// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/helenatai/chemucl/directory"
	"github.com/helenatai/chemucl/lock"
	"github.com/helenatai/chemucl/metrics"
	"github.com/helenatai/chemucl/models"
	"github.com/helenatai/chemucl/store"
)

// Service is the audit workflow engine: round lifecycle, the scan protocol,
// pause and completion.
type Service struct {
	store             *store.Store
	dir               directory.Resolver
	locks             lock.Locker
	metrics           *metrics.Metrics
	logger            *zap.Logger
	now               func() time.Time
	autoCompleteEmpty bool
}

type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records scans and completions on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAutoCompleteEmpty controls whether opening an audit with no expected
// chemicals completes it on the spot. On by default.
func WithAutoCompleteEmpty(on bool) Option {
	return func(s *Service) { s.autoCompleteEmpty = on }
}

func NewService(st *store.Store, dir directory.Resolver, locks lock.Locker, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = lock.NewKeyedMutex()
	}
	s := &Service{
		store:             st,
		dir:               dir,
		locks:             locks,
		logger:            logger,
		now:               func() time.Time { return time.Now().UTC() },
		autoCompleteEmpty: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// withSession holds the session's lock and runs fn in a transaction on a
// freshly locked copy of the session row.
func (s *Service) withSession(ctx context.Context, sessionID string, fn func(tx *store.Tx, sess *models.AuditSession) error) error {
	unlock, err := s.locks.Lock(ctx, lock.SessionKey(sessionID))
	if err != nil {
		return fmt.Errorf("lock audit %s: %w", sessionID, err)
	}
	defer unlock()

	return s.store.WithTx(ctx, func(tx *store.Tx) error {
		sess, err := tx.GetSession(ctx, sessionID, true)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		if err != nil {
			return err
		}
		return fn(tx, sess)
	})
}

// withSessions locks several audits in id order and runs fn in one
// transaction under all of those locks.
func (s *Service) withSessions(ctx context.Context, sessionIDs []string, fn func(tx *store.Tx) error) error {
	ids := slices.Clone(sessionIDs)
	slices.Sort(ids)
	for _, id := range slices.Compact(ids) {
		unlock, err := s.locks.Lock(ctx, lock.SessionKey(id))
		if err != nil {
			return fmt.Errorf("lock audit %s: %w", id, err)
		}
		defer unlock()
	}
	return s.store.WithTx(ctx, fn)
}

// GetRound returns a round with its audits.
func (s *Service) GetRound(ctx context.Context, roundID string) (*models.RoundDetail, error) {
	round, err := s.store.GetRound(ctx, roundID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRoundNotFound, roundID)
	}
	if err != nil {
		return nil, err
	}
	sessions, err := s.store.ListSessions(ctx, roundID)
	if err != nil {
		return nil, err
	}
	return &models.RoundDetail{Round: *round, Sessions: sessions}, nil
}

// ListSessions returns the audits of a round ordered by location.
func (s *Service) ListSessions(ctx context.Context, roundID string) ([]models.AuditSession, error) {
	if _, err := s.loadRound(ctx, roundID); err != nil {
		return nil, err
	}
	return s.store.ListSessions(ctx, roundID)
}

func (s *Service) ListRounds(ctx context.Context) ([]models.AuditRound, error) {
	return s.store.ListRounds(ctx)
}

// GetSession returns an audit with its ordered records.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*models.SessionSnapshot, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListRecords(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &models.SessionSnapshot{Session: *sess, Records: records}, nil
}

// FindAuditRecordsByAuditID lists an audit's records with location detail.
func (s *Service) FindAuditRecordsByAuditID(ctx context.Context, sessionID string) ([]models.AuditRecordDetail, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	return s.store.FindAuditRecordsByAuditID(ctx, sessionID)
}

// FindMissingRecordsByAuditGeneralID lists the missing records of a round.
func (s *Service) FindMissingRecordsByAuditGeneralID(ctx context.Context, roundID string) ([]models.AuditRecordDetail, error) {
	if _, err := s.store.GetRound(ctx, roundID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoundNotFound, roundID)
		}
		return nil, err
	}
	return s.store.FindMissingRecordsByAuditGeneralID(ctx, roundID)
}
