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

// RegisterProposal records a proposal authored by a registered voter.
// Ids are dense: the blank proposal holds 1 and each registration takes
// the next one.
func (e *Engine) RegisterProposal(ctx context.Context, sessionID uint64, caller, description string) (models.Proposal, error) {
	if description == "" {
		return models.Proposal{}, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if len(description) > models.MaxProposalDescription {
		return models.Proposal{}, fmt.Errorf("%w: description exceeds %d bytes", ErrValidation, models.MaxProposalDescription)
	}

	var proposal models.Proposal
	err := e.run(ctx, "register_proposal", e.sessionLock(sessionID), func(t *txn) error {
		s, err := loadSession(ctx, t, sessionID)
		if err != nil {
			return err
		}
		if caller == s.Admin {
			return fmt.Errorf("%w: session %d", ErrAdminCannotPropose, s.ID)
		}
		author, found, err := lookupVoter(ctx, t, s.ID, caller)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %q in session %d", ErrNotARegisteredVoter, caller, s.ID)
		}
		if err := requirePhase(s, models.PhaseProposalsRegistrationStarted); err != nil {
			return err
		}
		if int(s.ProposalCount) >= models.MaxProposals {
			return fmt.Errorf("%w: session %d already holds %d proposals", ErrTooManyProposals, s.ID, s.ProposalCount)
		}

		proposal = models.Proposal{
			SessionID:   s.ID,
			ProposalID:  s.ProposalCount + 1,
			Description: description,
			Proposer:    caller,
			CreatedAt:   t.now,
		}
		if err := t.InsertProposal(ctx, proposal); err != nil {
			if errors.Is(err, ports.ErrDuplicate) {
				return fmt.Errorf("%w: proposal id %d already taken", ErrTooManyProposals, proposal.ProposalID)
			}
			return err
		}

		author.ProposalsAuthored++
		if err := t.UpdateVoter(ctx, author); err != nil {
			return err
		}

		s.ProposalCount++
		s.UpdatedAt = t.now
		if err := t.UpdateSession(ctx, s); err != nil {
			return err
		}

		t.emit(event.TypeProposalRegistered, s.ID, event.ProposalRegisteredEvent{
			SessionID:   s.ID,
			ProposalID:  proposal.ProposalID,
			Proposer:    caller,
			Description: description,
		})
		return nil
	})
	if err != nil {
		return models.Proposal{}, err
	}

	e.logger.Info("proposal registered",
		"session_id", sessionID,
		"proposal_id", proposal.ProposalID,
		"proposer", caller,
	)
	return proposal, nil
}

// GetProposal returns one proposal of the session
func (e *Engine) GetProposal(ctx context.Context, sessionID uint64, proposalID uint8) (models.Proposal, error) {
	if _, err := loadSession(ctx, e.store, sessionID); err != nil {
		return models.Proposal{}, err
	}
	p, err := e.store.GetProposal(ctx, sessionID, proposalID)
	if errors.Is(err, ports.ErrNotFound) {
		return p, fmt.Errorf("%w: %d in session %d", ErrProposalNotFound, proposalID, sessionID)
	}
	return p, err
}

// ListProposals returns every proposal of the session, blank first
func (e *Engine) ListProposals(ctx context.Context, sessionID uint64) ([]models.Proposal, error) {
	if _, err := loadSession(ctx, e.store, sessionID); err != nil {
		return nil, err
	}
	return e.store.ListProposals(ctx, sessionID)
}
