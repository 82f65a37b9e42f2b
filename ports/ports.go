// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ports

import (
	"context"
	"errors"

	"github.com/danielhkuo/quickly-vote/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// SessionFilter narrows ListSessions. Zero value lists everything.
type SessionFilter struct {
	Admin string
	Phase *models.Phase
}

// Reader is the read side shared by the store and its transactions
type Reader interface {
	GetSession(ctx context.Context, id uint64) (models.Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]models.Session, error)
	GetVoter(ctx context.Context, sessionID uint64, voter string) (models.Voter, error)
	ListVoters(ctx context.Context, sessionID uint64) ([]models.Voter, error)
	GetProposal(ctx context.Context, sessionID uint64, proposalID uint8) (models.Proposal, error)
	ListProposals(ctx context.Context, sessionID uint64) ([]models.Proposal, error)
	ListEvents(ctx context.Context, sessionID uint64, afterSequence uint64) ([]models.Event, error)
}

// Tx is one all-or-nothing unit of work
type Tx interface {
	Reader

	// NextSessionID returns the registry counter and advances it by one
	NextSessionID(ctx context.Context) (uint64, error)

	InsertSession(ctx context.Context, s models.Session) error
	UpdateSession(ctx context.Context, s models.Session) error
	InsertVoter(ctx context.Context, v models.Voter) error
	UpdateVoter(ctx context.Context, v models.Voter) error
	InsertProposal(ctx context.Context, p models.Proposal) error
	UpdateProposal(ctx context.Context, p models.Proposal) error

	// AppendEvent stores e with the next per-session sequence number
	AppendEvent(ctx context.Context, e models.Event) (models.Event, error)
}

// Store persists sessions, voters, proposals and the event log.
// Update commits only when fn returns nil.
type Store interface {
	Reader
	Update(ctx context.Context, fn func(tx Tx) error) error
}
