// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/testutil"
	"github.com/danielhkuo/quickly-vote/voting"
)

type testEnv struct {
	db     *sql.DB
	cfg    cliparse.Config
	engine *voting.Engine

	sessions  *SessionHandler
	voters    *VoterHandler
	proposals *ProposalHandler
	votes     *VoteHandler
	callers   *CallerHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { db.Close() })

	cfg := testutil.GetTestConfig()
	engine := testutil.NewTestEngine(db)

	return &testEnv{
		db:        db,
		cfg:       cfg,
		engine:    engine,
		sessions:  NewSessionHandler(engine, cfg),
		voters:    NewVoterHandler(engine, cfg),
		proposals: NewProposalHandler(engine, cfg),
		votes:     NewVoteHandler(engine, cfg),
		callers:   NewCallerHandler(db, cfg),
	}
}

// serve runs handler behind caller verification, as the router does for
// mutating routes
func (e *testEnv) serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	middleware.WithCaller(e.cfg.CallerKeySalt, handler)(w, req)
	return w
}

// serveOpen runs a handler that needs no caller credentials
func (e *testEnv) serveOpen(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func withSession(req *http.Request, id uint64) *http.Request {
	req.SetPathValue("id", strconv.FormatUint(id, 10))
	return req
}

func sessionPath(id uint64, suffix string) string {
	return "/sessions/" + strconv.FormatUint(id, 10) + suffix
}

// seedSession drives a session administered by admin to phase, admitting
// voters and registering one proposal per description on the way.
// Proposals are authored by the first voter.
func (e *testEnv) seedSession(t *testing.T, admin string, phase models.Phase, voters []string, proposals []string) models.Session {
	t.Helper()
	ctx := context.Background()

	s, err := e.engine.CreateSession(ctx, admin, "Board", "Annual vote")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	for _, v := range voters {
		if _, err := e.engine.RegisterVoter(ctx, s.ID, admin, v); err != nil {
			t.Fatalf("Failed to register voter %s: %v", v, err)
		}
	}

	steps := []func(context.Context, uint64, string) (models.Session, error){
		e.engine.StartProposalsRegistration,
		e.engine.StopProposalsRegistration,
		e.engine.StartVotingSession,
		e.engine.StopVotingSession,
	}
	for i, step := range steps {
		if s.Phase >= phase {
			break
		}
		if s, err = step(ctx, s.ID, admin); err != nil {
			t.Fatalf("Failed to advance session (step %d): %v", i, err)
		}
		if s.Phase == models.PhaseProposalsRegistrationStarted {
			for _, desc := range proposals {
				if _, err := e.engine.RegisterProposal(ctx, s.ID, voters[0], desc); err != nil {
					t.Fatalf("Failed to register proposal %q: %v", desc, err)
				}
			}
		}
	}
	if phase == models.PhaseVotesTallied {
		if _, err := e.engine.TallyStored(ctx, s.ID, admin); err != nil {
			t.Fatalf("Failed to tally: %v", err)
		}
	}

	s, err = e.engine.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("Failed to reload session: %v", err)
	}
	if s.Phase != phase {
		t.Fatalf("Seeded session is %s, wanted %s", s.Phase, phase)
	}
	return s
}
