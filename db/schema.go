// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application and seeds
// the session registry row. Safe to call multiple times.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL sticks to the subset shared by SQLite and PostgreSQL.
const schema = `
-- Global session registry (single row)
CREATE TABLE IF NOT EXISTS registry (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    session_count BIGINT NOT NULL
);

INSERT INTO registry (id, session_count) VALUES (1, 0) ON CONFLICT (id) DO NOTHING;

-- Sessions
CREATE TABLE IF NOT EXISTS voting_session (
    id BIGINT PRIMARY KEY,
    admin TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    phase INTEGER NOT NULL DEFAULT 0 CHECK (phase BETWEEN 0 AND 5),
    voter_count BIGINT NOT NULL DEFAULT 0,
    proposal_count INTEGER NOT NULL DEFAULT 0 CHECK (proposal_count BETWEEN 0 AND 255),
    total_votes BIGINT,
    blank_votes BIGINT,
    abstention BIGINT,
    winning_proposal_ids TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_voting_session_admin ON voting_session(admin);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    session_id BIGINT NOT NULL REFERENCES voting_session(id),
    voter TEXT NOT NULL,
    voter_ordinal BIGINT NOT NULL,
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    voted_proposal_id INTEGER NOT NULL DEFAULT 0,
    proposals_authored INTEGER NOT NULL DEFAULT 0,
    registered_at TIMESTAMP NOT NULL,
    voted_at TIMESTAMP,
    PRIMARY KEY (session_id, voter),
    UNIQUE (session_id, voter_ordinal)
);

CREATE INDEX IF NOT EXISTS idx_voter_voter ON voter(voter);

-- Proposals
CREATE TABLE IF NOT EXISTS proposal (
    session_id BIGINT NOT NULL REFERENCES voting_session(id),
    proposal_id INTEGER NOT NULL CHECK (proposal_id BETWEEN 1 AND 255),
    description TEXT NOT NULL,
    proposer TEXT NOT NULL,
    vote_count BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (session_id, proposal_id)
);

-- Append-only notifications
CREATE TABLE IF NOT EXISTS event_log (
    id TEXT PRIMARY KEY,
    session_id BIGINT NOT NULL,
    seq BIGINT NOT NULL,
    event_type TEXT NOT NULL,
    payload TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL,
    UNIQUE (session_id, seq)
);

-- Issued caller identities
CREATE TABLE IF NOT EXISTS caller (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    last_seen_at TIMESTAMP NOT NULL
);
`
