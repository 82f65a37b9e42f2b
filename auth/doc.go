// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides caller identity generation and verification.

# Caller Identities

Every mutating API call is made on behalf of a caller identity. A caller
is issued a random opaque ID together with an HMAC-SHA256 key:

	callerID, err := auth.GenerateCallerID()
	callerKey := auth.GenerateCallerKey(callerID, salt)

Requests present both values, and the server checks them with:

	err := auth.VerifyCaller(callerID, callerKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same caller ID and salt always produce the same key. This allows
verification without storing the key in the database.

The verified caller ID is the identity the voting engine sees: the creator
of a session becomes its admin, and voters are registered by caller ID.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
