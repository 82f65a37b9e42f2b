// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"fmt"

	"github.com/danielhkuo/quickly-vote/event"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/ports"
)

// CreateSession opens a new session administered by creator
func (e *Engine) CreateSession(ctx context.Context, creator, name, description string) (models.Session, error) {
	if creator == "" {
		return models.Session{}, fmt.Errorf("%w: creator identity is required", ErrValidation)
	}
	if len(name) > models.MaxSessionNameLen {
		return models.Session{}, fmt.Errorf("%w: name exceeds %d bytes", ErrValidation, models.MaxSessionNameLen)
	}
	if len(description) > models.MaxSessionDescriptionLen {
		return models.Session{}, fmt.Errorf("%w: description exceeds %d bytes", ErrValidation, models.MaxSessionDescriptionLen)
	}

	var session models.Session
	err := e.run(ctx, "create_session", &e.registryMu, func(t *txn) error {
		id, err := t.NextSessionID(ctx)
		if err != nil {
			return err
		}

		session = models.Session{
			ID:          id,
			Admin:       creator,
			Name:        name,
			Description: description,
			Phase:       models.PhaseRegisteringVoters,
			CreatedAt:   t.now,
			UpdatedAt:   t.now,
		}
		if err := t.InsertSession(ctx, session); err != nil {
			return err
		}

		t.emit(event.TypePhaseChanged, id, event.PhaseChangedEvent{
			SessionID: id,
			Current:   models.PhaseRegisteringVoters,
		})
		t.emit(event.TypeSessionCreated, id, event.SessionCreatedEvent{
			SessionID:   id,
			Admin:       creator,
			Name:        name,
			Description: description,
		})
		return nil
	})
	if err != nil {
		return models.Session{}, err
	}

	e.logger.Info("session created", "session_id", session.ID, "admin", creator)
	return session, nil
}

// StartProposalsRegistration opens proposal registration and inserts the
// blank proposal
func (e *Engine) StartProposalsRegistration(ctx context.Context, sessionID uint64, caller string) (models.Session, error) {
	return e.advance(ctx, "start_proposals_registration", sessionID, caller,
		models.PhaseRegisteringVoters,
		func(t *txn, s *models.Session) error {
			blank := models.Proposal{
				SessionID:   s.ID,
				ProposalID:  models.BlankProposalID,
				Description: models.BlankProposalDescription,
				Proposer:    s.Admin,
				CreatedAt:   t.now,
			}
			if err := t.InsertProposal(ctx, blank); err != nil {
				return err
			}
			s.ProposalCount = 1

			t.emit(event.TypeProposalRegistered, s.ID, event.ProposalRegisteredEvent{
				SessionID:   s.ID,
				ProposalID:  blank.ProposalID,
				Proposer:    blank.Proposer,
				Description: blank.Description,
			})
			return nil
		})
}

// StopProposalsRegistration closes proposal registration
func (e *Engine) StopProposalsRegistration(ctx context.Context, sessionID uint64, caller string) (models.Session, error) {
	return e.advance(ctx, "stop_proposals_registration", sessionID, caller, models.PhaseProposalsRegistrationStarted, nil)
}

// StartVotingSession opens voting once proposals are closed
func (e *Engine) StartVotingSession(ctx context.Context, sessionID uint64, caller string) (models.Session, error) {
	return e.advance(ctx, "start_voting_session", sessionID, caller, models.PhaseProposalsRegistrationEnded, nil)
}

// StopVotingSession closes voting; the session can then be tallied
func (e *Engine) StopVotingSession(ctx context.Context, sessionID uint64, caller string) (models.Session, error) {
	return e.advance(ctx, "stop_voting_session", sessionID, caller, models.PhaseVotingSessionStarted, nil)
}

// advance moves an admin-owned session from one phase to the next. then,
// if set, runs before the phase-changed notification is queued so its own
// notifications come first.
func (e *Engine) advance(
	ctx context.Context,
	op string,
	sessionID uint64,
	caller string,
	from models.Phase,
	then func(t *txn, s *models.Session) error,
) (models.Session, error) {
	var session models.Session
	err := e.run(ctx, op, e.sessionLock(sessionID), func(t *txn) error {
		s, err := loadSession(ctx, t, sessionID)
		if err != nil {
			return err
		}
		if err := requireAdmin(s, caller); err != nil {
			return err
		}
		if err := requirePhase(s, from); err != nil {
			return err
		}

		previous := s.Phase
		s.Phase = from.Next()
		s.UpdatedAt = t.now

		if then != nil {
			if err := then(t, &s); err != nil {
				return err
			}
		}

		t.emit(event.TypePhaseChanged, s.ID, event.PhaseChangedEvent{
			SessionID: s.ID,
			Previous:  &previous,
			Current:   s.Phase,
		})

		if err := t.UpdateSession(ctx, s); err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		return models.Session{}, err
	}

	e.logger.Info("session phase changed",
		"session_id", sessionID,
		"phase", session.Phase.String(),
	)
	return session, nil
}

// GetSession returns the session or ErrSessionNotFound
func (e *Engine) GetSession(ctx context.Context, sessionID uint64) (models.Session, error) {
	return loadSession(ctx, e.store, sessionID)
}

// ListSessions returns sessions matching filter in id order
func (e *Engine) ListSessions(ctx context.Context, filter ports.SessionFilter) ([]models.Session, error) {
	return e.store.ListSessions(ctx, filter)
}

// ListEvents returns committed notifications with a sequence greater
// than after, oldest first
func (e *Engine) ListEvents(ctx context.Context, sessionID uint64, after uint64) ([]models.Event, error) {
	if _, err := loadSession(ctx, e.store, sessionID); err != nil {
		return nil, err
	}
	return e.store.ListEvents(ctx, sessionID, after)
}
