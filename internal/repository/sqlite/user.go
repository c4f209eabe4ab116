package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/playlistify/internal/apperror"
	"github.com/sakif/playlistify/internal/model"
	"github.com/sakif/playlistify/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user row.
//
// ID GENERATION WITH xid:
// xid generates globally unique IDs that are 20 chars, URL-safe, and sortable
// by creation time (they start with a timestamp). Example: "cv37rs3pp9olc6atsptg".
//
// The username column is UNIQUE; a violation is translated into
// apperror.ErrConflict so the service layer can report "username taken"
// without knowing anything about SQLite error strings.
//
// NOTE ON NAMING: playlist methods own the short names (Create, GetByID)
// because *DB implements both repositories on one receiver — the user
// methods carry the User infix to keep the method sets disjoint.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at)
		 VALUES (?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: creating user %q: %w", user.Username, err)
	}

	return nil
}

// GetUserByUsername retrieves a user by their unique username.
// Returns apperror.ErrNotFound if no user exists with that name.
//
// sql.ErrNoRows is not really an error — it just means "no matching row".
// We translate it to our domain's NotFound so callers never see driver
// details. This translation happens at every lookup in this package.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}

	return &u, nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &u, nil
}
