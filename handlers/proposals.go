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

type ProposalHandler struct {
	engine *voting.Engine
	cfg    cliparse.Config
}

func NewProposalHandler(engine *voting.Engine, cfg cliparse.Config) *ProposalHandler {
	return &ProposalHandler{engine: engine, cfg: cfg}
}

// Register handles POST /sessions/{id}/proposals
func (h *ProposalHandler) Register(w http.ResponseWriter, r *http.Request) {
	proposer, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req models.RegisterProposalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	proposal, err := h.engine.RegisterProposal(r.Context(), id, proposer, req.Description)
	if err != nil {
		writeError(w, "register_proposal", err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, proposal)
}

// List handles GET /sessions/{id}/proposals
func (h *ProposalHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	proposals, err := h.engine.ListProposals(r.Context(), id)
	if err != nil {
		writeError(w, "list_proposals", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListProposalsResponse{Proposals: proposals})
}

// Get handles GET /sessions/{id}/proposals/{pid}
func (h *ProposalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	pid, ok := proposalID(w, r)
	if !ok {
		return
	}

	proposal, err := h.engine.GetProposal(r.Context(), id, pid)
	if err != nil {
		writeError(w, "get_proposal", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, proposal)
}
