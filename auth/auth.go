// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCallerKey = errors.New("invalid caller key")
	ErrMissingCaller    = errors.New("caller credentials required")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateCallerID creates a new opaque caller identity
func GenerateCallerID() (string, error) {
	return GenerateID(16)
}

// GenerateCallerKey derives the HMAC key that proves ownership of a caller
// identity. Deterministic, so keys never need to be stored.
func GenerateCallerKey(callerID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(callerID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// VerifyCaller checks the key presented for callerID
func VerifyCaller(callerID, callerKey, salt string) error {
	if callerID == "" || callerKey == "" {
		return ErrMissingCaller
	}
	expected := GenerateCallerKey(callerID, salt)
	if !hmac.Equal([]byte(callerKey), []byte(expected)) {
		return ErrInvalidCallerKey
	}
	return nil
}
