// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Vote API.

# Handler Types

  - SessionHandler: session creation, queries, phase transitions and events
  - VoterHandler: voter registration and lookup
  - ProposalHandler: proposal registration and lookup
  - VoteHandler: vote casting, tally and results
  - CallerHandler: caller identities and their sessions

Workflow handlers wrap a *voting.Engine; CallerHandler works on the
caller table directly:

	sessionHandler := handlers.NewSessionHandler(engine, cfg)
	callerHandler := handlers.NewCallerHandler(db, cfg)

# Session Lifecycle

	POST /sessions                                  → Create (caller becomes admin)
	POST /sessions/{id}/voters                      → Register voter (admin)
	POST /sessions/{id}/proposals-registration/start → blank proposal inserted
	POST /sessions/{id}/proposals                   → Register proposal (voters)
	POST /sessions/{id}/proposals-registration/stop
	POST /sessions/{id}/voting/start
	POST /sessions/{id}/votes                       → Cast (voters, once)
	POST /sessions/{id}/voting/stop
	POST /sessions/{id}/tally                       → Tally (admin)
	GET  /sessions/{id}/results

Mutating routes need X-Caller-ID and X-Caller-Key; see POST /callers.

# Errors

Workflow errors are answered with a JSON body carrying a stable code:

	{"error":"Conflict","message":"voter already voted: ...","code":"already_voted"}

Validation and incomplete proposal sets are 400, permission failures 403,
unknown sessions, voters and proposals 404, and phase or uniqueness
conflicts 409.
*/
package handlers
