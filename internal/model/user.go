// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// PasswordHash is the bcrypt digest of the user's password — never the
// password itself. The `json:"-"` tag keeps it out of every API response:
// encoding/json skips the field entirely, so a handler can return a *User
// directly without leaking the digest.
//
// Usernames are unique (enforced by a UNIQUE constraint in the DB). Accounts
// are never updated after registration and deletion is not supported.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
