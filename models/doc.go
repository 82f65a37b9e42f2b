// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateSessionRequest: name, description
  - RegisterVoterRequest: voter
  - RegisterProposalRequest: description
  - CastVoteRequest: proposal_id
  - TallyRequest: proposal_ids (optional)
  - RegisterCallerRequest: label

# Response Types

  - RegisterCallerResponse: caller_id, caller_key
  - ListSessionsResponse, ListVotersResponse, ListProposalsResponse
  - ListEventsResponse, CallerSessionsResponse
  - ErrorResponse: error, message, code

# Domain Types

  - Session: admin, bounded name and description, phase, counters, result
  - SessionResult: total, blank, abstention, winning proposal ids
  - Voter: per-session voter record with ordinal and vote status
  - Proposal: per-session proposal with running vote count
  - Event: committed notification from the event log

# Phases

Sessions walk forward through six phases, one step at a time:

	RegisteringVoters → ProposalsRegistrationStarted → ProposalsRegistrationEnded
	→ VotingSessionStarted → VotingSessionEnded → VotesTallied

Phase marshals to JSON by name. VotesTallied is absorbing.

# Constants

Bounds:

	MaxSessionNameLen        = 20
	MaxSessionDescriptionLen = 80
	MaxProposalDescription   = 255
	MaxProposals             = 255
	MaxWinningProposals      = 10

Proposal id 1 is the blank proposal, created when proposal registration opens.
*/
package models
