// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Vote API server.

Quickly Vote runs multi-round permissioned votes: an administrator opens a
session, registers voters, collects proposals, runs the vote and tallies
the result into one or more winners.

# Commands

	quickly-vote [flags]          serve the HTTP API (same as serve)
	quickly-vote serve [flags]    serve the HTTP API
	quickly-vote migrate [flags]  create the database schema and exit

Flags are shared by every command:

	quickly-vote -p 3318 -t sqlite -d "file:votes.db" --caller-salt s3cret

# Configuration

Values are layered defaults, YAML file (--config), .env file (--env-file,
./.env when present), environment, then explicit flags.

Required settings:

  - DATABASE_URL (-d): PostgreSQL or SQLite connection string
  - CALLER_KEY_SALT (--caller-salt): Secret for caller key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DEBUG (--debug): Debug logging with source locations

# Architecture

  - voting: session workflow engine (phases, voters, proposals, votes, tally)
  - db: schema, connections and the transactional store behind the engine
  - ports: storage interfaces the engine depends on
  - event: in-process bus for notifications published after commit
  - metrics: Prometheus collectors for operations, events and requests
  - handlers: HTTP request handlers over the engine
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, caller authentication, JSON helpers
  - models: Domain, request and response types
  - auth: Caller identity and key generation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
