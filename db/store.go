// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/ports"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	reader
	db *sql.DB

	// rowLocks is set on PostgreSQL, where several processes may share
	// the database
	rowLocks bool
}

var _ ports.Store = (*Store)(nil)

// NewStore wraps db. On PostgreSQL, transactions lock the session row
// they read so concurrent processes serialize per session. SQLite
// serializes writers on its own.
func NewStore(db *sql.DB) *Store {
	_, postgres := db.Driver().(*pq.Driver)
	return &Store{reader: reader{q: db}, db: db, rowLocks: postgres}
}

// Update runs fn inside a transaction and commits only if fn returns nil
func (s *Store) Update(ctx context.Context, fn func(tx ports.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&tx{reader: reader{q: sqlTx}, tx: sqlTx, rowLocks: s.rowLocks}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type tx struct {
	reader
	tx       *sql.Tx
	rowLocks bool
}

var _ ports.Tx = (*tx)(nil)

// GetSession reads the session row, holding it until commit when row
// locks are enabled
func (t *tx) GetSession(ctx context.Context, id uint64) (models.Session, error) {
	row := t.tx.QueryRowContext(ctx, sessionQuery(t.rowLocks), id)
	s, err := scanSession(row)
	if err != nil {
		return s, translate(err, fmt.Sprintf("session %d", id))
	}
	return s, nil
}

func (t *tx) NextSessionID(ctx context.Context) (uint64, error) {
	var id uint64
	err := t.tx.QueryRowContext(ctx, `
		UPDATE registry
		SET session_count = session_count + 1
		WHERE id = 1
		RETURNING session_count - 1
	`).Scan(&id)
	if err != nil {
		return 0, translate(err, "advance session registry")
	}
	return id, nil
}

func (t *tx) InsertSession(ctx context.Context, s models.Session) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO voting_session (id, admin, name, description, phase, voter_count, proposal_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, s.ID, s.Admin, s.Name, s.Description, int(s.Phase), s.VoterCount, int(s.ProposalCount), s.CreatedAt, s.UpdatedAt)
	return translate(err, "insert session")
}

func (t *tx) UpdateSession(ctx context.Context, s models.Session) error {
	var total, blank, abstention sql.NullInt64
	var winners sql.NullString
	if s.Result != nil {
		total = sql.NullInt64{Int64: int64(s.Result.TotalVotes), Valid: true}
		blank = sql.NullInt64{Int64: int64(s.Result.BlankVotes), Valid: true}
		abstention = sql.NullInt64{Int64: int64(s.Result.Abstention), Valid: true}
		encoded, err := json.Marshal(s.Result.WinningProposalIDs)
		if err != nil {
			return fmt.Errorf("encode winning proposals: %w", err)
		}
		winners = sql.NullString{String: string(encoded), Valid: true}
	}

	res, err := t.tx.ExecContext(ctx, `
		UPDATE voting_session
		SET phase = $1, voter_count = $2, proposal_count = $3,
		    total_votes = $4, blank_votes = $5, abstention = $6, winning_proposal_ids = $7,
		    updated_at = $8
		WHERE id = $9
	`, int(s.Phase), s.VoterCount, int(s.ProposalCount), total, blank, abstention, winners, s.UpdatedAt, s.ID)
	if err != nil {
		return translate(err, "update session")
	}
	return requireRow(res, "update session")
}

func (t *tx) InsertVoter(ctx context.Context, v models.Voter) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO voter (session_id, voter, voter_ordinal, has_voted, voted_proposal_id, proposals_authored, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, v.SessionID, v.Voter, v.Ordinal, v.HasVoted, int(v.VotedProposalID), int(v.ProposalsAuthored), v.RegisteredAt)
	return translate(err, "insert voter")
}

func (t *tx) UpdateVoter(ctx context.Context, v models.Voter) error {
	var votedAt sql.NullTime
	if v.VotedAt != nil {
		votedAt = sql.NullTime{Time: *v.VotedAt, Valid: true}
	}
	res, err := t.tx.ExecContext(ctx, `
		UPDATE voter
		SET has_voted = $1, voted_proposal_id = $2, proposals_authored = $3, voted_at = $4
		WHERE session_id = $5 AND voter = $6
	`, v.HasVoted, int(v.VotedProposalID), int(v.ProposalsAuthored), votedAt, v.SessionID, v.Voter)
	if err != nil {
		return translate(err, "update voter")
	}
	return requireRow(res, "update voter")
}

func (t *tx) InsertProposal(ctx context.Context, p models.Proposal) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO proposal (session_id, proposal_id, description, proposer, vote_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.SessionID, int(p.ProposalID), p.Description, p.Proposer, p.VoteCount, p.CreatedAt)
	return translate(err, "insert proposal")
}

func (t *tx) UpdateProposal(ctx context.Context, p models.Proposal) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE proposal
		SET vote_count = $1
		WHERE session_id = $2 AND proposal_id = $3
	`, p.VoteCount, p.SessionID, int(p.ProposalID))
	if err != nil {
		return translate(err, "update proposal")
	}
	return requireRow(res, "update proposal")
}

func (t *tx) AppendEvent(ctx context.Context, e models.Event) (models.Event, error) {
	err := t.tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM event_log WHERE session_id = $1
	`, e.SessionID).Scan(&e.Sequence)
	if err != nil {
		return e, translate(err, "next event sequence")
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO event_log (id, session_id, seq, event_type, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.SessionID, e.Sequence, e.Type, string(e.Payload), e.OccurredAt)
	if err != nil {
		return e, translate(err, "append event")
	}
	return e, nil
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ports.ErrNotFound)
	}
	return nil
}

// reader implements ports.Reader over any queryer
type reader struct {
	q queryer
}

const sessionColumns = `
	id, admin, name, description, phase, voter_count, proposal_count,
	total_votes, blank_votes, abstention, winning_proposal_ids, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	var phase, proposalCount int
	var total, blank, abstention sql.NullInt64
	var winners sql.NullString

	err := row.Scan(
		&s.ID, &s.Admin, &s.Name, &s.Description, &phase, &s.VoterCount, &proposalCount,
		&total, &blank, &abstention, &winners, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return s, err
	}
	s.Phase = models.Phase(phase)
	s.ProposalCount = uint8(proposalCount)

	if total.Valid {
		result := &models.SessionResult{
			TotalVotes:         uint32(total.Int64),
			BlankVotes:         uint32(blank.Int64),
			Abstention:         uint32(abstention.Int64),
			WinningProposalIDs: models.ProposalIDList{},
		}
		if winners.Valid && winners.String != "" {
			if err := json.Unmarshal([]byte(winners.String), &result.WinningProposalIDs); err != nil {
				return s, fmt.Errorf("decode winning proposals: %w", err)
			}
		}
		s.Result = result
	}
	return s, nil
}

func sessionQuery(forUpdate bool) string {
	query := `SELECT ` + sessionColumns + ` FROM voting_session WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	return query
}

func (r reader) GetSession(ctx context.Context, id uint64) (models.Session, error) {
	row := r.q.QueryRowContext(ctx, sessionQuery(false), id)
	s, err := scanSession(row)
	if err != nil {
		return s, translate(err, fmt.Sprintf("session %d", id))
	}
	return s, nil
}

func (r reader) ListSessions(ctx context.Context, filter ports.SessionFilter) ([]models.Session, error) {
	var where []string
	var args []any
	if filter.Admin != "" {
		args = append(args, filter.Admin)
		where = append(where, fmt.Sprintf("admin = $%d", len(args)))
	}
	if filter.Phase != nil {
		args = append(args, int(*filter.Phase))
		where = append(where, fmt.Sprintf("phase = $%d", len(args)))
	}

	query := `SELECT ` + sessionColumns + ` FROM voting_session`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "list sessions")
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, translate(err, "scan session")
		}
		sessions = append(sessions, s)
	}
	return sessions, translate(rows.Err(), "list sessions")
}

const voterColumns = `
	session_id, voter, voter_ordinal, has_voted, voted_proposal_id, proposals_authored, registered_at, voted_at`

func scanVoter(row rowScanner) (models.Voter, error) {
	var v models.Voter
	var votedProposal, authored int
	var votedAt sql.NullTime

	err := row.Scan(&v.SessionID, &v.Voter, &v.Ordinal, &v.HasVoted, &votedProposal, &authored, &v.RegisteredAt, &votedAt)
	if err != nil {
		return v, err
	}
	v.VotedProposalID = uint8(votedProposal)
	v.ProposalsAuthored = uint8(authored)
	if votedAt.Valid {
		t := votedAt.Time
		v.VotedAt = &t
	}
	return v, nil
}

func (r reader) GetVoter(ctx context.Context, sessionID uint64, voter string) (models.Voter, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+voterColumns+` FROM voter WHERE session_id = $1 AND voter = $2`, sessionID, voter)
	v, err := scanVoter(row)
	if err != nil {
		return v, translate(err, fmt.Sprintf("voter %q in session %d", voter, sessionID))
	}
	return v, nil
}

func (r reader) ListVoters(ctx context.Context, sessionID uint64) ([]models.Voter, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+voterColumns+` FROM voter WHERE session_id = $1 ORDER BY voter_ordinal`, sessionID)
	if err != nil {
		return nil, translate(err, "list voters")
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		v, err := scanVoter(rows)
		if err != nil {
			return nil, translate(err, "scan voter")
		}
		voters = append(voters, v)
	}
	return voters, translate(rows.Err(), "list voters")
}

const proposalColumns = `session_id, proposal_id, description, proposer, vote_count, created_at`

func scanProposal(row rowScanner) (models.Proposal, error) {
	var p models.Proposal
	var id int
	err := row.Scan(&p.SessionID, &id, &p.Description, &p.Proposer, &p.VoteCount, &p.CreatedAt)
	p.ProposalID = uint8(id)
	return p, err
}

func (r reader) GetProposal(ctx context.Context, sessionID uint64, proposalID uint8) (models.Proposal, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposal WHERE session_id = $1 AND proposal_id = $2`, sessionID, int(proposalID))
	p, err := scanProposal(row)
	if err != nil {
		return p, translate(err, fmt.Sprintf("proposal %d in session %d", proposalID, sessionID))
	}
	return p, nil
}

func (r reader) ListProposals(ctx context.Context, sessionID uint64) ([]models.Proposal, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+proposalColumns+` FROM proposal WHERE session_id = $1 ORDER BY proposal_id`, sessionID)
	if err != nil {
		return nil, translate(err, "list proposals")
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, translate(err, "scan proposal")
		}
		proposals = append(proposals, p)
	}
	return proposals, translate(rows.Err(), "list proposals")
}

func (r reader) ListEvents(ctx context.Context, sessionID uint64, afterSequence uint64) ([]models.Event, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, session_id, seq, event_type, payload, occurred_at
		FROM event_log
		WHERE session_id = $1 AND seq > $2
		ORDER BY seq
	`, sessionID, afterSequence)
	if err != nil {
		return nil, translate(err, "list events")
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		var payload string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Sequence, &e.Type, &payload, &e.OccurredAt); err != nil {
			return nil, translate(err, "scan event")
		}
		e.Payload = json.RawMessage(payload)
		events = append(events, e)
	}
	return events, translate(rows.Err(), "list events")
}
