package domain

import (
	"context"
	"time"
)

// AccessAuth is the only token kind issued for sessions.
const AccessAuth = "auth"

// Token is one active session of a user.
type Token struct {
	Access string
	Value  string
}

// User represents a registered account. A user holds one token per active login.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Tokens       []Token
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasToken reports whether value is one of the user's active auth tokens.
func (u *User) HasToken(value string) bool {
	for _, t := range u.Tokens {
		if t.Access == AccessAuth && t.Value == value {
			return true
		}
	}
	return false
}

// UserRepository defines persistence operations for users and their tokens.
type UserRepository interface {
	// Create assigns ID and timestamps. Returns ErrDuplicateEmail when the
	// email is already registered.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// AddToken appends a token to the user's list. Returns ErrNotFound if
	// the user does not exist.
	AddToken(ctx context.Context, userID string, token Token) error
	// RemoveToken removes every entry carrying value. Removing a token that
	// is not present is not an error.
	RemoveToken(ctx context.Context, userID, value string) error
}
