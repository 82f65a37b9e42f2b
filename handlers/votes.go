// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/voting"
)

type VoteHandler struct {
	engine *voting.Engine
	cfg    cliparse.Config
}

func NewVoteHandler(engine *voting.Engine, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{engine: engine, cfg: cfg}
}

// Cast handles POST /sessions/{id}/votes
func (h *VoteHandler) Cast(w http.ResponseWriter, r *http.Request) {
	voter, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	record, err := h.engine.CastVote(r.Context(), id, voter, req.ProposalID)
	if err != nil {
		writeError(w, "cast_vote", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, record)
}

// Tally handles POST /sessions/{id}/tally
// An empty body or an omitted proposal_ids tallies every stored proposal
func (h *VoteHandler) Tally(w http.ResponseWriter, r *http.Request) {
	admin, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req models.TallyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var (
		result models.SessionResult
		err    error
	)
	if req.ProposalIDs == nil {
		result, err = h.engine.TallyStored(r.Context(), id, admin)
	} else {
		result, err = h.engine.Tally(r.Context(), id, admin, req.ProposalIDs)
	}
	if err != nil {
		writeError(w, "tally", err)
		return
	}

	slog.Info("tally completed via api", "session_id", id, "winners", len(result.WinningProposalIDs))
	middleware.JSONResponse(w, http.StatusOK, result)
}

// GetResult handles GET /sessions/{id}/results
// 409 until the session is tallied
func (h *VoteHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	result, err := h.engine.GetResult(r.Context(), id)
	if err != nil {
		writeError(w, "get_result", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, result)
}
