// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/voting"
)

// TestCallerSalt signs caller keys in tests
const TestCallerSalt = "test-caller-salt"

// MemoryURL returns the URL of a fresh, private in-memory SQLite database
func MemoryURL() string {
	return "file:" + uuid.NewString() + "?mode=memory&cache=shared"
}

// SetupTestDB creates a fresh in-memory database with the full schema.
// Each call gets its own database so tests can run in parallel.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.TypeSQLite, MemoryURL())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   MemoryURL(),
		DatabaseType:  db.TypeSQLite,
		CallerKeySalt: TestCallerSalt,
	}
}

// DiscardLogger drops everything
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestEngine builds an engine over conn with logging silenced
func NewTestEngine(conn *sql.DB, opts ...voting.Option) *voting.Engine {
	opts = append([]voting.Option{voting.WithLogger(DiscardLogger())}, opts...)
	return voting.NewEngine(db.NewStore(conn), opts...)
}

// NewCaller issues a caller identity and returns its id along with the
// headers that authenticate it
func NewCaller(t *testing.T, cfg cliparse.Config) (string, map[string]string) {
	t.Helper()

	callerID, err := auth.GenerateCallerID()
	if err != nil {
		t.Fatalf("Failed to generate caller id: %v", err)
	}
	return callerID, CallerHeaders(cfg, callerID)
}

// CallerHeaders returns the credential headers for callerID
func CallerHeaders(cfg cliparse.Config, callerID string) map[string]string {
	return map[string]string{
		middleware.HeaderCallerID:  callerID,
		middleware.HeaderCallerKey: auth.GenerateCallerKey(callerID, cfg.CallerKeySalt),
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
