// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/ports"
	"github.com/danielhkuo/quickly-vote/voting"
)

type SessionHandler struct {
	engine *voting.Engine
	cfg    cliparse.Config
}

func NewSessionHandler(engine *voting.Engine, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{engine: engine, cfg: cfg}
}

// Create handles POST /sessions
// The caller becomes the session admin
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	admin, ok := caller(w, r)
	if !ok {
		return
	}

	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	session, err := h.engine.CreateSession(r.Context(), admin, req.Name, req.Description)
	if err != nil {
		writeError(w, "create_session", err)
		return
	}

	slog.Info("session created via api", "session_id", session.ID, "admin", admin)
	middleware.JSONResponse(w, http.StatusCreated, session)
}

// Get handles GET /sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.engine.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, "get_session", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, session)
}

// List handles GET /sessions
// Optional filters: ?admin=<caller id>&phase=<phase name>
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := ports.SessionFilter{Admin: r.URL.Query().Get("admin")}
	if name := r.URL.Query().Get("phase"); name != "" {
		phase, err := models.ParsePhase(name)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Phase = &phase
	}

	sessions, err := h.engine.ListSessions(r.Context(), filter)
	if err != nil {
		writeError(w, "list_sessions", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListSessionsResponse{Sessions: sessions})
}

// StartProposalsRegistration handles POST /sessions/{id}/proposals-registration/start
func (h *SessionHandler) StartProposalsRegistration(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "start_proposals_registration", h.engine.StartProposalsRegistration)
}

// StopProposalsRegistration handles POST /sessions/{id}/proposals-registration/stop
func (h *SessionHandler) StopProposalsRegistration(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "stop_proposals_registration", h.engine.StopProposalsRegistration)
}

// StartVoting handles POST /sessions/{id}/voting/start
func (h *SessionHandler) StartVoting(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "start_voting_session", h.engine.StartVotingSession)
}

// StopVoting handles POST /sessions/{id}/voting/stop
func (h *SessionHandler) StopVoting(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "stop_voting_session", h.engine.StopVotingSession)
}

type transitionFunc func(ctx context.Context, sessionID uint64, caller string) (models.Session, error)

func (h *SessionHandler) transition(w http.ResponseWriter, r *http.Request, op string, fn transitionFunc) {
	admin, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	session, err := fn(r.Context(), id, admin)
	if err != nil {
		writeError(w, op, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, session)
}

// ListEvents handles GET /sessions/{id}/events
// ?after=<sequence> returns only newer notifications
func (h *SessionHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var after uint64
	if raw := r.URL.Query().Get("after"); raw != "" {
		v, err := parseUint(raw, 64)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "after must be a non-negative integer")
			return
		}
		after = v
	}

	events, err := h.engine.ListEvents(r.Context(), id, after)
	if err != nil {
		writeError(w, "list_events", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListEventsResponse{Events: events})
}
