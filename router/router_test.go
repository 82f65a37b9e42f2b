// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/testutil"
	"github.com/danielhkuo/quickly-vote/voting"
)

func newTestRouter(t *testing.T) (*http.ServeMux, *sql.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	m := metrics.New(prometheus.NewRegistry())
	engine := testutil.NewTestEngine(db, voting.WithMetrics(m))
	return NewRouter(db, engine, testutil.GetTestConfig(), m), db
}

func TestHealthEndpoint(t *testing.T) {
	mux, db := newTestRouter(t)
	defer db.Close()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, db := newTestRouter(t)
	defer db.Close()

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != banner {
		t.Errorf("Expected body '%s', got '%s'", banner, w.Body.String())
	}

	t.Run("unknown path", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/nope", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestRouteExistence(t *testing.T) {
	mux, db := newTestRouter(t)
	defer db.Close()

	// Routes respond (handler is invoked); 400, 401, 404 and 409 are all
	// valid handler outcomes here
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"GET", "/metrics"},

		{"POST", "/callers"},
		{"GET", "/callers/me"},
		{"GET", "/callers/me/sessions"},

		{"POST", "/sessions"},
		{"GET", "/sessions"},
		{"GET", "/sessions/0"},
		{"POST", "/sessions/0/proposals-registration/start"},
		{"POST", "/sessions/0/proposals-registration/stop"},
		{"POST", "/sessions/0/voting/start"},
		{"POST", "/sessions/0/voting/stop"},
		{"GET", "/sessions/0/events"},

		{"POST", "/sessions/0/voters"},
		{"GET", "/sessions/0/voters"},
		{"GET", "/sessions/0/voters/someone"},

		{"POST", "/sessions/0/proposals"},
		{"GET", "/sessions/0/proposals"},
		{"GET", "/sessions/0/proposals/1"},

		{"POST", "/sessions/0/votes"},
		{"POST", "/sessions/0/tally"},
		{"GET", "/sessions/0/results"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMutatingRoutesRequireCaller(t *testing.T) {
	mux, db := newTestRouter(t)
	defer db.Close()

	paths := []string{
		"/sessions",
		"/sessions/0/voters",
		"/sessions/0/proposals-registration/start",
		"/sessions/0/proposals",
		"/sessions/0/votes",
		"/sessions/0/tally",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := testutil.MakeRequest("POST", path, map[string]string{}, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			testutil.AssertStatus(t, w, http.StatusUnauthorized)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, db := newTestRouter(t)
	defer db.Close()

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"DELETE", "/sessions/0"},
		{"PUT", "/sessions/0/voters"},
		{"GET", "/sessions/0/tally"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestSessionThroughRouter(t *testing.T) {
	mux, db := newTestRouter(t)
	defer db.Close()

	// Issue a caller identity
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/callers", models.RegisterCallerRequest{Label: "admin"}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var caller models.RegisterCallerResponse
	testutil.AssertJSON(t, w, &caller)
	headers := map[string]string{"X-Caller-ID": caller.CallerID, "X-Caller-Key": caller.CallerKey}

	// Create a session and read it back through the path parameter
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/sessions", models.CreateSessionRequest{Name: "Routed"}, headers))
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/sessions/0", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var session models.Session
	testutil.AssertJSON(t, w, &session)
	if session.Name != "Routed" || session.Admin != caller.CallerID {
		t.Errorf("Unexpected session: %+v", session)
	}

	// Blank proposal appears once proposals open
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/sessions/0/proposals-registration/start", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/sessions/0/proposals/1", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Requests are counted per route pattern
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/metrics", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	body := w.Body.String()
	if !strings.Contains(body, `quickly_vote_http_requests_total{code="201",method="POST",route="POST /sessions"} 1`) {
		t.Errorf("Expected session creation to be counted, got:\n%s", body)
	}
	if !strings.Contains(body, `quickly_vote_operations_total`) {
		t.Error("Expected operation metrics to be exported")
	}
}
