// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package scheduler runs periodic read-only jobs over the audit tables:
// refreshing the open-audit gauges and reporting audits left paused too long.
// Jobs never change audit state.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/helenatai/chemucl/metrics"
	"github.com/helenatai/chemucl/models"
	"github.com/helenatai/chemucl/store"
)

// jobTimeout bounds one scheduled run.
const jobTimeout = 30 * time.Second

type Scheduler struct {
	cron       *cron.Cron
	store      *store.Store
	metrics    *metrics.Metrics
	spec       string
	staleAfter time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// New creates a scheduler running on the cron spec (standard five fields or
// descriptors such as "@every 1m").
func New(st *store.Store, m *metrics.Metrics, spec string, staleAfter time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:       cron.New(),
		store:      st,
		metrics:    m,
		spec:       spec,
		staleAfter: staleAfter,
		now:        time.Now,
		logger:     logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("schedule audit jobs %q: %w", s.spec, err)
	}
	s.logger.Info("starting scheduler", zap.String("schedule", s.spec))
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.RefreshGauges(ctx); err != nil {
		s.logger.Error("failed to refresh audit gauges", zap.Error(err))
	}
	if _, err := s.ReportStalePaused(ctx); err != nil {
		s.logger.Error("failed to report stale audits", zap.Error(err))
	}
}

// RefreshGauges sets the open-audit gauges from the database.
func (s *Scheduler) RefreshGauges(ctx context.Context) error {
	counts, err := s.store.CountSessionsByStatus(ctx)
	if err != nil {
		return err
	}
	s.metrics.SetSessionCounts(counts)
	s.logger.Debug("audit gauges refreshed",
		zap.Int("pending", counts[models.SessionPending]),
		zap.Int("in_progress", counts[models.SessionInProgress]),
		zap.Int("paused", counts[models.SessionPaused]),
	)
	return nil
}

// ReportStalePaused logs every audit paused for longer than the stale
// threshold and returns them. A zero threshold disables the report.
func (s *Scheduler) ReportStalePaused(ctx context.Context) ([]models.AuditSession, error) {
	if s.staleAfter <= 0 {
		return nil, nil
	}
	now := s.now()
	stale, err := s.store.ListPausedBefore(ctx, now.Add(-s.staleAfter).UTC())
	if err != nil {
		return nil, err
	}
	for _, sess := range stale {
		s.logger.Warn("audit paused for a long time",
			zap.String("audit_id", sess.ID),
			zap.String("round_id", sess.RoundID),
			zap.String("location", sess.LocationCode),
			zap.String("paused", humanize.RelTime(*sess.PausedAt, now, "ago", "from now")),
		)
	}
	return stale, nil
}
