// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/voting"
)

type VoterHandler struct {
	engine *voting.Engine
	cfg    cliparse.Config
}

func NewVoterHandler(engine *voting.Engine, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{engine: engine, cfg: cfg}
}

// Register handles POST /sessions/{id}/voters
// Admin only; the body names the caller id being admitted
func (h *VoterHandler) Register(w http.ResponseWriter, r *http.Request) {
	admin, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	voter, err := h.engine.RegisterVoter(r.Context(), id, admin, req.Voter)
	if err != nil {
		writeError(w, "register_voter", err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, voter)
}

// List handles GET /sessions/{id}/voters
func (h *VoterHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	voters, err := h.engine.ListVoters(r.Context(), id)
	if err != nil {
		writeError(w, "list_voters", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListVotersResponse{Voters: voters})
}

// Get handles GET /sessions/{id}/voters/{voter}
func (h *VoterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	voter, err := h.engine.GetVoter(r.Context(), id, r.PathValue("voter"))
	if err != nil {
		writeError(w, "get_voter", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voter)
}
