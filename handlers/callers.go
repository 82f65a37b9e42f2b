// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

const maxCallerLabelLen = 64

type CallerHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewCallerHandler(db *sql.DB, cfg cliparse.Config) *CallerHandler {
	return &CallerHandler{db: db, cfg: cfg}
}

// Register handles POST /callers
// Issues a new caller id and the key that authenticates it
func (h *CallerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterCallerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Label) > maxCallerLabelLen {
		middleware.ErrorResponse(w, http.StatusBadRequest, "label must be at most 64 bytes")
		return
	}

	callerID, err := auth.GenerateCallerID()
	if err != nil {
		slog.Error("failed to generate caller ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register caller")
		return
	}

	now := time.Now().UTC()
	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO caller (id, label, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4)
	`, callerID, req.Label, now, now)
	if err != nil {
		slog.Error("failed to insert caller", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register caller")
		return
	}

	slog.Info("caller registered", "caller_id", callerID)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterCallerResponse{
		CallerID:  callerID,
		CallerKey: auth.GenerateCallerKey(callerID, h.cfg.CallerKeySalt),
	})
}

// GetMe handles GET /callers/me
func (h *CallerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	callerID, ok := caller(w, r)
	if !ok {
		return
	}

	var info models.CallerInfo
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, label, created_at, last_seen_at
		FROM caller
		WHERE id = $1
	`, callerID).Scan(&info.ID, &info.Label, &info.CreatedAt, &info.LastSeenAt)

	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Caller not registered")
		return
	}
	if err != nil {
		slog.Error("failed to query caller", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.touch(r, callerID)
	middleware.JSONResponse(w, http.StatusOK, info)
}

// GetMySessions handles GET /callers/me/sessions
// Lists sessions the caller administers or is registered in
func (h *CallerHandler) GetMySessions(w http.ResponseWriter, r *http.Request) {
	callerID, ok := caller(w, r)
	if !ok {
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT s.id, s.name, s.phase, 'admin', FALSE
		FROM voting_session s
		WHERE s.admin = $1
		UNION ALL
		SELECT s.id, s.name, s.phase, 'voter', v.has_voted
		FROM voter v
		JOIN voting_session s ON s.id = v.session_id
		WHERE v.voter = $1
		ORDER BY 1
	`, callerID)
	if err != nil {
		slog.Error("failed to query caller sessions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	sessions := []models.CallerSessionSummary{}
	for rows.Next() {
		var summary models.CallerSessionSummary
		var phase int
		if err := rows.Scan(
			&summary.SessionID,
			&summary.Name,
			&phase,
			&summary.Role,
			&summary.HasVoted,
		); err != nil {
			slog.Error("failed to scan caller session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		summary.Phase = models.Phase(phase)
		sessions = append(sessions, summary)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate caller sessions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	rows.Close()

	h.touch(r, callerID)
	middleware.JSONResponse(w, http.StatusOK, models.CallerSessionsResponse{Sessions: sessions})
}

// touch updates last_seen_at; failures are only logged
func (h *CallerHandler) touch(r *http.Request, callerID string) {
	_, err := h.db.ExecContext(r.Context(), `
		UPDATE caller SET last_seen_at = $1 WHERE id = $2
	`, time.Now().UTC(), callerID)
	if err != nil {
		slog.Error("failed to update caller last_seen_at", "error", err)
	}
}
