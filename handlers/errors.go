// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/helenatai/chemucl/audit"
	"github.com/helenatai/chemucl/middleware"
)

// statusFor maps an audit error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, audit.ErrInvalidCode),
		errors.Is(err, audit.ErrUnexpectedChemical),
		errors.Is(err, audit.ErrInvalidRound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, audit.ErrRoundNotFound),
		errors.Is(err, audit.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, audit.ErrSessionNotActive),
		errors.Is(err, audit.ErrSessionAlreadyCompleted),
		errors.Is(err, audit.ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError reports err to the client. Persistence failures are logged and
// answered with a generic message.
func writeError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err))
		middleware.CodedErrorResponse(w, code, audit.Code(err), "Database error", "")
		return
	}
	status, _ := audit.CurrentStatus(err)
	middleware.CodedErrorResponse(w, code, audit.Code(err), err.Error(), status)
}
