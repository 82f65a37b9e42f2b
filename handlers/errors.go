// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/voting"
)

var errStatus = []struct {
	err    error
	status int
}{
	{voting.ErrValidation, http.StatusBadRequest},
	{voting.ErrIncompleteProposalSet, http.StatusBadRequest},

	{voting.ErrUnauthorized, http.StatusForbidden},
	{voting.ErrAdminCannotBeVoter, http.StatusForbidden},
	{voting.ErrAdminCannotPropose, http.StatusForbidden},
	{voting.ErrAdminCannotVote, http.StatusForbidden},
	{voting.ErrNotARegisteredVoter, http.StatusForbidden},

	{voting.ErrSessionNotFound, http.StatusNotFound},
	{voting.ErrVoterNotFound, http.StatusNotFound},
	{voting.ErrProposalNotFound, http.StatusNotFound},

	{voting.ErrInvalidPhase, http.StatusConflict},
	{voting.ErrAlreadyRegistered, http.StatusConflict},
	{voting.ErrAlreadyVoted, http.StatusConflict},
	{voting.ErrTooManyProposals, http.StatusConflict},
	{voting.ErrTooManyWinners, http.StatusConflict},
	{voting.ErrNotTallied, http.StatusConflict},
}

// statusFor maps a workflow error to its HTTP status
func statusFor(err error) int {
	for _, es := range errStatus {
		if errors.Is(err, es.err) {
			return es.status
		}
	}
	return http.StatusInternalServerError
}

// writeError answers with the status and code of a workflow error.
// Anything else is logged and reported as an internal error.
func writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "operation", op, "error", err)
		middleware.ErrorResponse(w, status, "Internal error")
		return
	}
	middleware.ErrorResponseCode(w, status, voting.Code(err), err.Error())
}

// caller returns the verified caller or answers 401
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Caller-ID and X-Caller-Key headers required")
	}
	return id, ok
}

func parseUint(s string, bits int) (uint64, error) {
	return strconv.ParseUint(s, 10, bits)
}

// sessionID parses the {id} path value or answers 400
func sessionID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := parseUint(r.PathValue("id"), 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id must be a non-negative integer")
		return 0, false
	}
	return id, true
}

// proposalID parses the {pid} path value or answers 400
func proposalID(w http.ResponseWriter, r *http.Request) (uint8, bool) {
	id, err := parseUint(r.PathValue("pid"), 8)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "proposal id must be between 0 and 255")
		return 0, false
	}
	return uint8(id), true
}
