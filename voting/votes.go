// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielhkuo/quickly-vote/event"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/ports"
)

// CastVote records the caller's single vote. Voting for
// models.BlankProposalID is a blank vote.
func (e *Engine) CastVote(ctx context.Context, sessionID uint64, caller string, proposalID uint8) (models.Voter, error) {
	var voter models.Voter
	err := e.run(ctx, "cast_vote", e.sessionLock(sessionID), func(t *txn) error {
		s, err := loadSession(ctx, t, sessionID)
		if err != nil {
			return err
		}
		if caller == s.Admin {
			return fmt.Errorf("%w: session %d", ErrAdminCannotVote, s.ID)
		}
		if err := requirePhase(s, models.PhaseVotingSessionStarted); err != nil {
			return err
		}
		v, found, err := lookupVoter(ctx, t, s.ID, caller)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %q in session %d", ErrNotARegisteredVoter, caller, s.ID)
		}
		if v.HasVoted {
			return fmt.Errorf("%w: %q in session %d", ErrAlreadyVoted, caller, s.ID)
		}

		p, err := t.GetProposal(ctx, s.ID, proposalID)
		if errors.Is(err, ports.ErrNotFound) {
			return fmt.Errorf("%w: %d in session %d", ErrProposalNotFound, proposalID, s.ID)
		}
		if err != nil {
			return err
		}

		votedAt := t.now
		v.HasVoted = true
		v.VotedProposalID = p.ProposalID
		v.VotedAt = &votedAt
		if err := t.UpdateVoter(ctx, v); err != nil {
			return err
		}

		p.VoteCount++
		if err := t.UpdateProposal(ctx, p); err != nil {
			return err
		}

		t.emit(event.TypeVoteCast, s.ID, event.VoteCastEvent{
			SessionID:  s.ID,
			Voter:      caller,
			ProposalID: p.ProposalID,
		})
		voter = v
		return nil
	})
	if err != nil {
		return models.Voter{}, err
	}

	e.logger.Info("vote cast", "session_id", sessionID, "voter", caller, "proposal_id", proposalID)
	return voter, nil
}
