// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/helenatai/chemucl/audit"
	"github.com/helenatai/chemucl/db"
	"github.com/helenatai/chemucl/directory"
	"github.com/helenatai/chemucl/metrics"
	"github.com/helenatai/chemucl/store"
	"github.com/helenatai/chemucl/testutil"
)

type fixture struct {
	store *store.Store
	svc   *audit.Service
	clock *testutil.Clock
	round string
	audit map[string]string
}

// newFixture starts a round over two locations and pauses the LOC-1 audit
// three days before "now".
func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	testutil.SeedLocation(t, conn, "loc-1", "LOC-1", "Cold room")
	testutil.SeedLocation(t, conn, "loc-2", "LOC-2", "Solvent cabinet")
	testutil.SeedChemical(t, conn, "chem-1", "CHEM-1", "Acetone", "loc-1")
	testutil.SeedChemical(t, conn, "chem-2", "CHEM-2", "Toluene", "loc-2")

	clock := testutil.NewClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	st := store.New(conn, db.SQLite, nil)
	svc := audit.NewService(st, directory.NewSQLDirectory(conn, db.SQLite), nil, nil, audit.WithClock(clock.Now))

	ctx := t.Context()
	detail, err := svc.StartRound(ctx, audit.StartRoundInput{Auditor: "jdoe"})
	require.NoError(t, err)

	f := &fixture{store: st, svc: svc, clock: clock, round: detail.Round.ID, audit: map[string]string{}}
	for _, s := range detail.Sessions {
		f.audit[s.LocationCode] = s.ID
	}

	_, err = svc.ScanLocation(ctx, f.round, "LOC-1")
	require.NoError(t, err)
	_, err = svc.PauseAudit(ctx, f.audit["LOC-1"])
	require.NoError(t, err)

	clock.Advance(72 * time.Hour)
	return f
}

func TestRefreshGauges(t *testing.T) {
	f := newFixture(t)
	m := metrics.New(prometheus.NewRegistry())
	s := New(f.store, m, "@every 1m", 24*time.Hour, nil)

	require.NoError(t, s.RefreshGauges(t.Context()))

	assert.Equal(t, 1.0, promtest.ToFloat64(m.SessionsByStatus.WithLabelValues("paused")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.SessionsByStatus.WithLabelValues("pending")))
	assert.Equal(t, 0.0, promtest.ToFloat64(m.SessionsByStatus.WithLabelValues("in_progress")))

	// Completed rounds drop out of the gauges.
	_, err := f.svc.CompleteRound(t.Context(), f.round)
	require.NoError(t, err)
	require.NoError(t, s.RefreshGauges(t.Context()))
	assert.Equal(t, 0.0, promtest.ToFloat64(m.SessionsByStatus.WithLabelValues("paused")))
}

func TestReportStalePaused(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zap.WarnLevel)
	s := New(f.store, nil, "@every 1m", 24*time.Hour, zap.New(core))
	s.now = f.clock.Now

	stale, err := s.ReportStalePaused(t.Context())
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, f.audit["LOC-1"], stale[0].ID)

	entries := logs.FilterMessage("audit paused for a long time").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "LOC-1", fields["location"])
	assert.True(t, strings.HasSuffix(fields["paused"].(string), "ago"), "got %v", fields["paused"])
}

func TestReportStalePaused_RecentPauseIgnored(t *testing.T) {
	f := newFixture(t)
	s := New(f.store, nil, "@every 1m", 7*24*time.Hour, nil)
	s.now = f.clock.Now

	stale, err := s.ReportStalePaused(t.Context())
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestReportStalePaused_Disabled(t *testing.T) {
	f := newFixture(t)
	s := New(f.store, nil, "@every 1m", 0, nil)

	stale, err := s.ReportStalePaused(t.Context())
	require.NoError(t, err)
	assert.Nil(t, stale)
}

func TestStart_InvalidSchedule(t *testing.T) {
	f := newFixture(t)
	s := New(f.store, nil, "every now and then", time.Hour, nil)

	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	f := newFixture(t)
	s := New(f.store, nil, "@every 1h", time.Hour, nil)

	require.NoError(t, s.Start())
	s.Stop()
}
