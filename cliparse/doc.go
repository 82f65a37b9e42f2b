// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a validated Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite or PostgreSQL connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - CallerKeySalt: Secret for caller key HMAC (required)
  - Debug: Debug logging

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-caller-salt  Caller key salt
	-debug        Debug logging
	-config       YAML config file
	-env-file     .env file (default: ./.env if present)

# Layers

Settings are resolved from lowest to highest precedence:

 1. Defaults
 2. YAML config file (-config)
 3. .env file, which only fills variables not already set
 4. Environment variables
 5. CLI flags that were explicitly set

Environment variable names:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	CALLER_KEY_SALT → -caller-salt
	DEBUG           → -debug

YAML keys use camel case: port, databaseUrl, databaseType, callerKeySalt, debug.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - CALLER_KEY_SALT must be provided
  - DATABASE_TYPE must be sqlite or postgres
*/
package cliparse
