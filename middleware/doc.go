// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, client IP) and completion (status,
duration_ms).

# Caller Credentials

Mutating routes require X-Caller-ID and X-Caller-Key:

	mux.HandleFunc("POST /sessions", middleware.WithLogging(
		middleware.WithCaller(cfg.CallerKeySalt, h.Create)))

	caller, _ := middleware.CallerFromContext(r.Context())

Missing or invalid credentials are answered with 401 before the handler
runs.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.ErrorResponseCode(w, http.StatusConflict, "already_voted", "message")

	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

GetClientIP returns the original client address behind proxies
(X-Forwarded-For, X-Real-IP).
*/
package middleware
