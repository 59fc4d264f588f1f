// Package store implements all database access for Home Sale. Functions take
// a context and *sql.DB and return models; multi-write flows run inside a
// single transaction.
package store

import (
	"errors"
	"time"
)

// ErrItemUnavailable is returned when a reservation attempt loses the claim:
// the item's status was no longer 'available' at claim time. Callers should
// treat it as a user-facing conflict, not a retryable failure.
var ErrItemUnavailable = errors.New("item is no longer available")

// ErrInvalidTransition is returned when a status change is not permitted by
// the item or reservation state machine.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrNotFound is returned by mutating operations when the target row does
// not exist.
var ErrNotFound = errors.New("not found")

// sqliteTime formats a Go time in the CURRENT_TIMESTAMP column format
// (UTC 'YYYY-MM-DD HH:MM:SS'), keeping SQL timestamp comparisons
// lexicographic. All time parameters bound by this package go through it.
func sqliteTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
