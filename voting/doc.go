// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements the session workflow: the global session
registry, the phase state machine, voter and proposal registries, vote
casting and the tally.

# Engine

	engine := voting.NewEngine(store,
		voting.WithEventBus(bus),
		voting.WithMetrics(m),
	)

	s, err := engine.CreateSession(ctx, admin, "Board 2025", "Annual board vote")

Every mutating method runs as one ports.Store transaction while holding
an exclusive lock for the session, so calls against one session are
serialized and calls against different sessions run in parallel. Session
creation is serialized on the registry instead.

# Phases

	RegisteringVoters             RegisterVoter
	ProposalsRegistrationStarted  RegisterProposal
	ProposalsRegistrationEnded
	VotingSessionStarted          CastVote
	VotingSessionEnded            Tally
	VotesTallied                  (terminal)

Transitions are admin-only and move exactly one step:
StartProposalsRegistration, StopProposalsRegistration,
StartVotingSession, StopVotingSession and Tally.

# Errors

All preconditions are checked before anything is written. A failed check
returns one of the sentinel errors (ErrUnauthorized, ErrInvalidPhase,
ErrAlreadyRegistered, ...) wrapped with context; match with errors.Is.
Code maps them to stable strings for API responses.

# Notifications

Each operation queues its notifications in order. They are written to the
event log in the same transaction and published on the event bus after
commit, so a rejected call emits nothing.

# Tally

ComputeTally is a pure function over the session's proposals. Tally
checks the caller's proposal set against the stored proposals before
computing: it must name every non-blank proposal exactly once.
*/
package voting
