// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ports declares the storage boundary used by the voting engine.

The db package implements Store on top of database/sql. Lookups that find
nothing return ErrNotFound; inserts that hit a composite unique key return
ErrDuplicate, so callers can match both with errors.Is regardless of the
SQL driver in use.
*/
package ports
