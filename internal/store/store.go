// Package store is the bun-backed entity store for events, students
// and registrations. All mutating operations run inside a single
// database transaction; the store's isolation is the only concurrency
// boundary the service relies on.
package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate")
	// ErrCapacityExceeded is returned when a conditional registration
	// insert finds the event already at capacity.
	ErrCapacityExceeded = errors.New("capacity exceeded")
)

type Store struct {
	Bun *bun.DB
}

func New(db *bun.DB) *Store {
	return &Store{Bun: db}
}

// wrapNotFound maps the driver's empty-result error onto ErrNotFound.
func wrapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// isUniqueViolation matches unique-constraint errors from both the
// Postgres driver ("duplicate key value violates unique constraint")
// and SQLite ("UNIQUE constraint failed").
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
