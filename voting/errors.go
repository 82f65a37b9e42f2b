// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import "errors"

var (
	ErrUnauthorized          = errors.New("caller is not the session admin")
	ErrInvalidPhase          = errors.New("operation not allowed in the current phase")
	ErrAlreadyRegistered     = errors.New("voter already registered")
	ErrAlreadyVoted          = errors.New("voter already voted")
	ErrAdminCannotBeVoter    = errors.New("admin cannot be registered as a voter")
	ErrAdminCannotPropose    = errors.New("admin cannot register proposals")
	ErrAdminCannotVote       = errors.New("admin cannot vote")
	ErrNotARegisteredVoter   = errors.New("caller is not a registered voter")
	ErrValidation            = errors.New("validation failed")
	ErrIncompleteProposalSet = errors.New("proposal set does not match the session")
	ErrTooManyProposals      = errors.New("proposal id space exhausted")
	ErrTooManyWinners        = errors.New("tied winners exceed the recordable maximum")

	ErrSessionNotFound  = errors.New("session not found")
	ErrVoterNotFound    = errors.New("voter not found")
	ErrProposalNotFound = errors.New("proposal not found")
	ErrNotTallied       = errors.New("session has not been tallied")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrUnauthorized, "unauthorized"},
	{ErrInvalidPhase, "invalid_phase"},
	{ErrAlreadyRegistered, "already_registered"},
	{ErrAlreadyVoted, "already_voted"},
	{ErrAdminCannotBeVoter, "admin_cannot_be_voter"},
	{ErrAdminCannotPropose, "admin_cannot_propose"},
	{ErrAdminCannotVote, "admin_cannot_vote"},
	{ErrNotARegisteredVoter, "not_a_registered_voter"},
	{ErrValidation, "validation_error"},
	{ErrIncompleteProposalSet, "incomplete_proposal_set"},
	{ErrTooManyProposals, "too_many_proposals"},
	{ErrTooManyWinners, "too_many_winners"},
	{ErrSessionNotFound, "session_not_found"},
	{ErrVoterNotFound, "voter_not_found"},
	{ErrProposalNotFound, "proposal_not_found"},
	{ErrNotTallied, "not_tallied"},
}

// Code returns a stable identifier for a workflow error, or "" for
// anything else
func Code(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}

// IsRejection reports whether err is a failed precondition rather than
// an infrastructure failure
func IsRejection(err error) bool {
	return Code(err) != ""
}
