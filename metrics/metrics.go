// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes prometheus collectors for the audit workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/helenatai/chemucl/models"
)

// Scan kinds and outcomes used as label values.
const (
	KindLocation = "location"
	KindChemical = "chemical"

	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Scans             *prometheus.CounterVec
	SessionsCompleted prometheus.Counter
	RoundsCompleted   prometheus.Counter
	RecordsMissing    prometheus.Counter
	SessionsByStatus  *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chemucl",
			Subsystem: "audit",
			Name:      "scans_total",
			Help:      "QR scans processed, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		SessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chemucl",
			Subsystem: "audit",
			Name:      "sessions_completed_total",
			Help:      "Location audits completed.",
		}),
		RoundsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chemucl",
			Subsystem: "audit",
			Name:      "rounds_completed_total",
			Help:      "Audit rounds completed.",
		}),
		RecordsMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chemucl",
			Subsystem: "audit",
			Name:      "records_missing_total",
			Help:      "Records reconciled to missing at completion.",
		}),
		SessionsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "chemucl",
			Subsystem: "audit",
			Name:      "open_sessions",
			Help:      "Audits in rounds that are not completed, by status.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(m.Scans, m.SessionsCompleted, m.RoundsCompleted, m.RecordsMissing, m.SessionsByStatus)
	}
	return m
}

// ObserveScan counts one scan; err decides the outcome label.
func (m *Metrics) ObserveScan(kind string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.Scans.WithLabelValues(kind, outcome).Inc()
}

// ObserveCompletion records a committed session completion.
func (m *Metrics) ObserveCompletion(res *models.CompletionResult) {
	if m == nil || res == nil {
		return
	}
	m.SessionsCompleted.Inc()
	m.RecordsMissing.Add(float64(res.Reconciled))
	if res.Round.Status == models.RoundCompleted && res.Round.PendingCount == 0 {
		m.RoundsCompleted.Inc()
	}
}

// SetSessionCounts replaces the gauge values with counts.
func (m *Metrics) SetSessionCounts(counts map[models.SessionStatus]int) {
	if m == nil {
		return
	}
	for _, st := range []models.SessionStatus{
		models.SessionPending, models.SessionInProgress, models.SessionPaused, models.SessionCompleted,
	} {
		m.SessionsByStatus.WithLabelValues(string(st)).Set(float64(counts[st]))
	}
}
