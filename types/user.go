package types

import "time"

// User represents a registered account.
// Accounts are created on registration and are not modified afterwards.
type User struct {
	// ID is the unique identifier of the user, assigned by the store.
	ID int64 `json:"id" db:"id"`

	// Email is the user's login address, stored trimmed and lowercased.
	// It is unique across all users.
	Email string `json:"email" db:"email"`

	// Name is the user's display name.
	Name string `json:"name" db:"name"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
