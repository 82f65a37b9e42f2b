// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Vote API.

# Route Registration

	mux := router.NewRouter(db, engine, cfg, m)

Every API route is wrapped with request logging and a per-pattern request
counter. Mutating routes additionally require caller credentials
(X-Caller-ID, X-Caller-Key).

# Endpoints

Operational:

	GET /health  - Liveness
	GET /metrics - Prometheus exposition
	GET /        - Banner

Callers:

	POST /callers             - Issue caller id and key
	GET  /callers/me          - Caller info
	GET  /callers/me/sessions - Sessions administered or joined

Sessions (transitions are admin only):

	POST /sessions
	GET  /sessions, /sessions/{id}
	POST /sessions/{id}/proposals-registration/start
	POST /sessions/{id}/proposals-registration/stop
	POST /sessions/{id}/voting/start
	POST /sessions/{id}/voting/stop
	GET  /sessions/{id}/events

Registries and voting:

	POST, GET /sessions/{id}/voters
	GET       /sessions/{id}/voters/{voter}
	POST, GET /sessions/{id}/proposals
	GET       /sessions/{id}/proposals/{pid}
	POST      /sessions/{id}/votes
	POST      /sessions/{id}/tally
	GET       /sessions/{id}/results
*/
package router
