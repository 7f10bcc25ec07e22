// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/helenatai/chemucl/audit"
	"github.com/helenatai/chemucl/middleware"
	"github.com/helenatai/chemucl/models"
)

// AuditHandler serves operations on a single location audit.
type AuditHandler struct {
	svc    *audit.Service
	logger *zap.Logger
}

func NewAuditHandler(svc *audit.Service, logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{svc: svc, logger: logger}
}

// GetAudit handles GET /audits/{id}
func (h *AuditHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "get audit", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, snap)
}

// ScanChemical handles POST /audits/{id}/scan-chemical
func (h *AuditHandler) ScanChemical(w http.ResponseWriter, r *http.Request) {
	var req models.ScanRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	rec, err := h.svc.ScanChemical(r.Context(), r.PathValue("id"), req.Code)
	if err != nil {
		writeError(w, h.logger, "scan chemical", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, rec)
}

// PauseAudit handles POST /audits/{id}/pause
func (h *AuditHandler) PauseAudit(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.PauseAudit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "pause audit", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, sess)
}

// CompleteAudit handles POST /audits/{id}/complete
func (h *AuditHandler) CompleteAudit(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.CompleteAuditSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "complete audit", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}

// Records handles GET /audits/{id}/records
func (h *AuditHandler) Records(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.FindAuditRecordsByAuditID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, "list audit records", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.RecordListResponse{Records: records})
}
