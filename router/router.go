// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/handlers"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/voting"
)

const banner = "quickly-vote API v1"

func NewRouter(db *sql.DB, engine *voting.Engine, cfg cliparse.Config, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	sessionHandler := handlers.NewSessionHandler(engine, cfg)
	voterHandler := handlers.NewVoterHandler(engine, cfg)
	proposalHandler := handlers.NewProposalHandler(engine, cfg)
	voteHandler := handlers.NewVoteHandler(engine, cfg)
	callerHandler := handlers.NewCallerHandler(db, cfg)

	// open routes are public, authed routes require caller credentials
	open := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, m.WithRequestCounter(pattern, middleware.WithLogging(h)))
	}
	authed := func(pattern string, h http.HandlerFunc) {
		open(pattern, middleware.WithCaller(cfg.CallerKeySalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", m.Handler())

	// Caller identities
	open("POST /callers", callerHandler.Register)
	authed("GET /callers/me", callerHandler.GetMe)
	authed("GET /callers/me/sessions", callerHandler.GetMySessions)

	// Sessions and phase transitions (admin)
	authed("POST /sessions", sessionHandler.Create)
	open("GET /sessions", sessionHandler.List)
	open("GET /sessions/{id}", sessionHandler.Get)
	authed("POST /sessions/{id}/proposals-registration/start", sessionHandler.StartProposalsRegistration)
	authed("POST /sessions/{id}/proposals-registration/stop", sessionHandler.StopProposalsRegistration)
	authed("POST /sessions/{id}/voting/start", sessionHandler.StartVoting)
	authed("POST /sessions/{id}/voting/stop", sessionHandler.StopVoting)
	open("GET /sessions/{id}/events", sessionHandler.ListEvents)

	// Voter registry
	authed("POST /sessions/{id}/voters", voterHandler.Register)
	open("GET /sessions/{id}/voters", voterHandler.List)
	open("GET /sessions/{id}/voters/{voter}", voterHandler.Get)

	// Proposal registry
	authed("POST /sessions/{id}/proposals", proposalHandler.Register)
	open("GET /sessions/{id}/proposals", proposalHandler.List)
	open("GET /sessions/{id}/proposals/{pid}", proposalHandler.Get)

	// Voting and tally
	authed("POST /sessions/{id}/votes", voteHandler.Cast)
	authed("POST /sessions/{id}/tally", voteHandler.Tally)
	open("GET /sessions/{id}/results", voteHandler.GetResult)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(banner))
	})

	return mux
}
