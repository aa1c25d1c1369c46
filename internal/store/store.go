// Package store persists users and analysed pricing scenarios in SQLite.
package store

import (
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to another user.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
)

// Store wraps the SQLite handle.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// New returns a Store using db.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}
