// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/danielhkuo/quickly-vote/event"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/ports"
)

// RegisterVoter admits voter to the session. Only the admin may call it,
// and only while voters are being registered.
func (e *Engine) RegisterVoter(ctx context.Context, sessionID uint64, caller, voter string) (models.Voter, error) {
	if voter == "" {
		return models.Voter{}, fmt.Errorf("%w: voter identity is required", ErrValidation)
	}

	var record models.Voter
	err := e.run(ctx, "register_voter", e.sessionLock(sessionID), func(t *txn) error {
		s, err := loadSession(ctx, t, sessionID)
		if err != nil {
			return err
		}
		if err := requireAdmin(s, caller); err != nil {
			return err
		}
		if voter == s.Admin {
			return fmt.Errorf("%w: session %d", ErrAdminCannotBeVoter, s.ID)
		}
		if err := requirePhase(s, models.PhaseRegisteringVoters); err != nil {
			return err
		}

		_, found, err := lookupVoter(ctx, t, s.ID, voter)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: %q in session %d", ErrAlreadyRegistered, voter, s.ID)
		}
		if s.VoterCount == math.MaxUint32 {
			return fmt.Errorf("%w: voter count limit reached", ErrValidation)
		}

		record = models.Voter{
			SessionID:    s.ID,
			Voter:        voter,
			Ordinal:      s.VoterCount + 1,
			RegisteredAt: t.now,
		}
		if err := t.InsertVoter(ctx, record); err != nil {
			if errors.Is(err, ports.ErrDuplicate) {
				return fmt.Errorf("%w: %q in session %d", ErrAlreadyRegistered, voter, s.ID)
			}
			return err
		}

		s.VoterCount++
		s.UpdatedAt = t.now
		if err := t.UpdateSession(ctx, s); err != nil {
			return err
		}

		t.emit(event.TypeVoterRegistered, s.ID, event.VoterRegisteredEvent{
			SessionID: s.ID,
			Voter:     voter,
			Ordinal:   record.Ordinal,
		})
		return nil
	})
	if err != nil {
		return models.Voter{}, err
	}

	e.logger.Info("voter registered",
		"session_id", sessionID,
		"voter", voter,
		"ordinal", record.Ordinal,
	)
	return record, nil
}

// GetVoter returns the voter's record in the session
func (e *Engine) GetVoter(ctx context.Context, sessionID uint64, voter string) (models.Voter, error) {
	if _, err := loadSession(ctx, e.store, sessionID); err != nil {
		return models.Voter{}, err
	}
	v, found, err := lookupVoter(ctx, e.store, sessionID, voter)
	if err != nil {
		return models.Voter{}, err
	}
	if !found {
		return models.Voter{}, fmt.Errorf("%w: %q in session %d", ErrVoterNotFound, voter, sessionID)
	}
	return v, nil
}

// ListVoters returns the session's voters in registration order
func (e *Engine) ListVoters(ctx context.Context, sessionID uint64) ([]models.Voter, error) {
	if _, err := loadSession(ctx, e.store, sessionID); err != nil {
		return nil, err
	}
	return e.store.ListVoters(ctx, sessionID)
}
