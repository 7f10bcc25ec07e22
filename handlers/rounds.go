// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/helenatai/chemucl/audit"
	"github.com/helenatai/chemucl/middleware"
	"github.com/helenatai/chemucl/models"
)

type RoundHandler struct {
	svc    *audit.Service
	logger *zap.Logger
}

func NewRoundHandler(svc *audit.Service, logger *zap.Logger) *RoundHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoundHandler{svc: svc, logger: logger}
}

// StartRound handles POST /rounds
func (h *RoundHandler) StartRound(w http.ResponseWriter, r *http.Request) {
	var req models.StartRoundRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Auditor) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "auditor is required")
		return
	}

	detail, err := h.svc.StartRound(r.Context(), audit.StartRoundInput{
		Auditor:     req.Auditor,
		LocationIDs: req.LocationIDs,
	})
	if err != nil {
		writeError(w, h.logger, "start round", err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, detail)
}

// ListRounds handles GET /rounds
func (h *RoundHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.svc.ListRounds(r.Context())
	if err != nil {
		writeError(w, h.logger, "list rounds", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.RoundListResponse{Rounds: rounds})
}

// GetRound handles GET /rounds/{id}
func (h *RoundHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetRound(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "get round", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, detail)
}

// ListAudits handles GET /rounds/{id}/audits
func (h *RoundHandler) ListAudits(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.ListSessions(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "list audits", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string][]models.AuditSession{"audits": sessions})
}

// ScanLocation handles POST /rounds/{id}/scan-location
func (h *RoundHandler) ScanLocation(w http.ResponseWriter, r *http.Request) {
	var req models.ScanRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	snap, err := h.svc.ScanLocation(r.Context(), r.PathValue("id"), req.Code)
	if err != nil {
		writeError(w, h.logger, "scan location", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, snap)
}

// PauseRound handles POST /rounds/{id}/pause
func (h *RoundHandler) PauseRound(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.PauseRound(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "pause round", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, detail)
}

// ResumeRound handles POST /rounds/{id}/resume
func (h *RoundHandler) ResumeRound(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.ResumeRound(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "resume round", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, detail)
}

// CompleteRound handles POST /rounds/{id}/complete
func (h *RoundHandler) CompleteRound(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.CompleteRound(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "complete round", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, detail)
}

// MissingRecords handles GET /rounds/{id}/missing
func (h *RoundHandler) MissingRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.FindMissingRecordsByAuditGeneralID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "list missing records", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.RecordListResponse{Records: records})
}
