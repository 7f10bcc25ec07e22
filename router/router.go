// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/helenatai/chemucl/audit"
	"github.com/helenatai/chemucl/handlers"
	"github.com/helenatai/chemucl/middleware"
)

// NewRouter registers every endpoint. A nil gatherer leaves /metrics unmounted.
func NewRouter(svc *audit.Service, gatherer prometheus.Gatherer, logger *zap.Logger) *http.ServeMux {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	// Initialize handlers
	roundHandler := handlers.NewRoundHandler(svc, logger)
	auditHandler := handlers.NewAuditHandler(svc, logger)

	with := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(logger, h)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Round lifecycle
	mux.HandleFunc("POST /rounds", with(roundHandler.StartRound))
	mux.HandleFunc("GET /rounds", with(roundHandler.ListRounds))
	mux.HandleFunc("GET /rounds/{id}", with(roundHandler.GetRound))
	mux.HandleFunc("GET /rounds/{id}/audits", with(roundHandler.ListAudits))
	mux.HandleFunc("POST /rounds/{id}/pause", with(roundHandler.PauseRound))
	mux.HandleFunc("POST /rounds/{id}/resume", with(roundHandler.ResumeRound))
	mux.HandleFunc("POST /rounds/{id}/complete", with(roundHandler.CompleteRound))
	mux.HandleFunc("GET /rounds/{id}/missing", with(roundHandler.MissingRecords))

	// Scan protocol
	mux.HandleFunc("POST /rounds/{id}/scan-location", with(roundHandler.ScanLocation))
	mux.HandleFunc("POST /audits/{id}/scan-chemical", with(auditHandler.ScanChemical))

	// Location audits
	mux.HandleFunc("GET /audits/{id}", with(auditHandler.GetAudit))
	mux.HandleFunc("GET /audits/{id}/records", with(auditHandler.Records))
	mux.HandleFunc("POST /audits/{id}/pause", with(auditHandler.PauseAudit))
	mux.HandleFunc("POST /audits/{id}/complete", with(auditHandler.CompleteAudit))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("chemucl audit API v1"))
	})

	return mux
}
