// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation, and the SQL
implementation of ports.Store.

# Connections

Open selects the driver from the configured database type:

	conn, err := db.Open(ctx, db.TypeSQLite, "file:quickly-vote.db")
	conn, err := db.Open(ctx, db.TypePostgres, "postgres://...")

SQLite uses modernc.org/sqlite (pure Go) and PostgreSQL uses lib/pq.
Statements use $N placeholders, which both drivers accept.

# Schema Creation

CreateSchema initializes all required tables and seeds the registry row:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS and ON CONFLICT DO NOTHING.

# Tables

  - registry: Single row holding the next session id
  - voting_session: Session metadata, phase, counters, and tally result
  - voter: One row per (session_id, voter), unique ordinal per session
  - proposal: One row per (session_id, proposal_id)
  - event_log: Append-only notifications, unique (session_id, seq)
  - caller: Issued caller identities

# Relationships

	registry 1──* voting_session
	voting_session 1──* voter
	voting_session 1──* proposal
	voting_session 1──* event_log

Nothing is ever deleted, so foreign keys carry no cascade rules.

# Store

NewStore wraps a connection pool. Update runs a function inside a single
transaction and commits only when it returns nil:

	err := store.Update(ctx, func(tx ports.Tx) error {
		id, err := tx.NextSessionID(ctx)
		...
	})

Unique key violations surface as ports.ErrDuplicate and missing rows as
ports.ErrNotFound.
*/
package db
