package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Phase is the workflow step a session is in
type Phase uint8

const (
	PhaseRegisteringVoters Phase = iota
	PhaseProposalsRegistrationStarted
	PhaseProposalsRegistrationEnded
	PhaseVotingSessionStarted
	PhaseVotingSessionEnded
	PhaseVotesTallied
)

var phaseNames = [...]string{
	"RegisteringVoters",
	"ProposalsRegistrationStarted",
	"ProposalsRegistrationEnded",
	"VotingSessionStarted",
	"VotingSessionEnded",
	"VotesTallied",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// Valid reports whether p is one of the six known phases
func (p Phase) Valid() bool {
	return int(p) < len(phaseNames)
}

// Next returns the phase that follows p. VotesTallied is absorbing.
func (p Phase) Next() Phase {
	if p >= PhaseVotesTallied {
		return PhaseVotesTallied
	}
	return p + 1
}

func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown phase %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	phase, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = phase
	return nil
}

// ParsePhase maps a phase name back to its value
func ParsePhase(name string) (Phase, error) {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", name)
}

// Field bounds
const (
	MaxSessionNameLen        = 20
	MaxSessionDescriptionLen = 80
	MaxProposalDescription   = 255
	MaxProposals             = 255
	MaxWinningProposals      = 10
)

// Reserved blank proposal
const (
	BlankProposalID          uint8 = 1
	BlankProposalDescription       = "blank"
)

// Caller roles within a session
const (
	RoleAdmin = "admin"
	RoleVoter = "voter"
)

// Request types

type CreateSessionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type RegisterVoterRequest struct {
	Voter string `json:"voter"`
}

type RegisterProposalRequest struct {
	Description string `json:"description"`
}

type CastVoteRequest struct {
	ProposalID uint8 `json:"proposal_id"`
}

// ProposalIDs may be omitted, in which case the stored set is used
type TallyRequest struct {
	ProposalIDs ProposalIDList `json:"proposal_ids,omitempty"`
}

type RegisterCallerRequest struct {
	Label string `json:"label"`
}

// Response types

type RegisterCallerResponse struct {
	CallerID  string `json:"caller_id"`
	CallerKey string `json:"caller_key"`
}

type ListSessionsResponse struct {
	Sessions []Session `json:"sessions"`
}

type ListVotersResponse struct {
	Voters []Voter `json:"voters"`
}

type ListProposalsResponse struct {
	Proposals []Proposal `json:"proposals"`
}

type ListEventsResponse struct {
	Events []Event `json:"events"`
}

type CallerSessionsResponse struct {
	Sessions []CallerSessionSummary `json:"sessions"`
}

// Domain types

type Session struct {
	ID            uint64         `json:"id"`
	Admin         string         `json:"admin"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Phase         Phase          `json:"phase"`
	VoterCount    uint32         `json:"voter_count"`
	ProposalCount uint8          `json:"proposal_count"`
	Result        *SessionResult `json:"result,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type SessionResult struct {
	TotalVotes         uint32         `json:"total_votes"`
	BlankVotes         uint32         `json:"blank_votes"`
	Abstention         uint32         `json:"abstention"`
	WinningProposalIDs ProposalIDList `json:"winning_proposal_ids"`
}

// ProposalIDList encodes as a JSON array of numbers instead of base64
type ProposalIDList []uint8

func (l ProposalIDList) MarshalJSON() ([]byte, error) {
	ids := make([]int, len(l))
	for i, id := range l {
		ids[i] = int(id)
	}
	return json.Marshal(ids)
}

func (l *ProposalIDList) UnmarshalJSON(data []byte) error {
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	if ids == nil {
		*l = nil
		return nil
	}
	out := make(ProposalIDList, len(ids))
	for i, id := range ids {
		if id < 0 || id > MaxProposals {
			return fmt.Errorf("proposal id %d out of range", id)
		}
		out[i] = uint8(id)
	}
	*l = out
	return nil
}

type Voter struct {
	SessionID         uint64     `json:"session_id"`
	Voter             string     `json:"voter"`
	Ordinal           uint32     `json:"voter_ordinal"`
	HasVoted          bool       `json:"has_voted"`
	VotedProposalID   uint8      `json:"voted_proposal_id"`
	ProposalsAuthored uint8      `json:"proposals_authored"`
	RegisteredAt      time.Time  `json:"registered_at"`
	VotedAt           *time.Time `json:"voted_at,omitempty"`
}

type Proposal struct {
	SessionID   uint64    `json:"session_id"`
	ProposalID  uint8     `json:"proposal_id"`
	Description string    `json:"description"`
	Proposer    string    `json:"proposer"`
	VoteCount   uint32    `json:"vote_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsBlank reports whether p is the reserved blank proposal
func (p Proposal) IsBlank() bool {
	return p.ProposalID == BlankProposalID
}

// Event is a committed notification as stored in the event log
type Event struct {
	ID         string          `json:"id"`
	SessionID  uint64          `json:"session_id"`
	Sequence   uint64          `json:"sequence"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type CallerInfo struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

type CallerSessionSummary struct {
	SessionID uint64 `json:"session_id"`
	Name      string `json:"name"`
	Phase     Phase  `json:"phase"`
	Role      string `json:"role"`
	HasVoted  bool   `json:"has_voted"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
