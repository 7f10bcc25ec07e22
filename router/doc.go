// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the audit API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, registry, log)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics   - Prometheus exposition (when a gatherer is given)

Rounds:

	POST /rounds                  - Start a round over locations
	GET  /rounds                  - List rounds, newest first
	GET  /rounds/{id}             - Round with its audits
	GET  /rounds/{id}/audits      - Audits of a round
	POST /rounds/{id}/pause       - Pause the round and its open audits
	POST /rounds/{id}/resume      - Resume a paused round
	POST /rounds/{id}/complete    - Force-complete every open audit
	GET  /rounds/{id}/missing     - Missing records across the round

Scan protocol:

	POST /rounds/{id}/scan-location  - {"code": "..."} opens the location's audit
	POST /audits/{id}/scan-chemical  - {"code": "..."} marks a chemical found

Location audits:

	GET  /audits/{id}           - Audit with its records
	GET  /audits/{id}/records   - Records with location detail
	POST /audits/{id}/pause     - Pause an in-progress audit
	POST /audits/{id}/complete  - Reconcile and complete

# Errors

Audit errors map to 422 (bad code or request), 404 (unknown round or audit)
and 409 (illegal in the current state, with the status in the body).
*/
package router
