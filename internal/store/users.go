package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	BusinessName string    `db:"business_name" json:"business_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

const userColumns = `id, email, password_hash, COALESCE(business_name, '') AS business_name, created_at, updated_at`

// CreateUser inserts a new user. Emails are compared case-insensitively.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash, businessName string) (User, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("begin create user transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	email = normalizeEmail(email)

	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email); err != nil {
		return User{}, fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		return User{}, ErrEmailTaken
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		BusinessName: businessName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, business_name, created_at, updated_at)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?)
	`, u.ID, u.Email, u.PasswordHash, u.BusinessName, u.CreatedAt, u.UpdatedAt); err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return User{}, fmt.Errorf("commit create user transaction: %w", err)
	}
	return u, nil
}

// UserByEmail looks a user up by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user by email: %w", err)
	}
	return u, nil
}

// UserByID looks a user up by id.
func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user by id: %w", err)
	}
	return u, nil
}

// UpdateUserProfile changes the editable profile fields and returns the updated user.
func (s *Store) UpdateUserProfile(ctx context.Context, id, businessName string) (User, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET
			business_name = NULLIF(?, ''),
			updated_at = ?
		WHERE id = ?
	`, businessName, s.now(), id)
	if err != nil {
		return User{}, fmt.Errorf("update user profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, fmt.Errorf("update user profile: %w", err)
	}
	if affected == 0 {
		return User{}, ErrNotFound
	}

	return s.UserByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
