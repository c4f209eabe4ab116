// Package service — authentication business logic.
//
// AuthService is the business logic layer for identity. It sits between the
// HTTP handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt)
//
// KEY RESPONSIBILITIES:
//   - Register: validate the username/password, hash, store
//   - Authenticate: look up the user and verify the password
//   - Encapsulate all identity rules in one place, away from HTTP concerns
//
// Session issuing (the JWT cookie) is NOT here — the handler owns it, because
// it also owns the catalog handshake that rides along with login.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/playlistify/internal/apperror"
	"github.com/sakif/playlistify/internal/auth"
	"github.com/sakif/playlistify/internal/model"
	"github.com/sakif/playlistify/internal/repository"
)

// Validation constants for registration.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
	MinPasswordLength = 8
)

// AuthService handles the identity business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - passwords  *auth.PasswordService      → bcrypt hashing/verification
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register validates credentials, hashes the password, and stores the user.
//
// VALIDATION RULES:
//   - username: trimmed, 3-32 characters, required
//   - password: at least 8 characters, never trimmed (spaces are legal in
//     passwords; silently changing them would break login later)
//
// A taken username surfaces as apperror.ErrConflict — but note the check is
// NOT "look up first, then insert". The repository relies on the UNIQUE
// constraint, so two concurrent registrations of the same name race safely:
// exactly one wins, the other gets the conflict.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	digest, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: digest,
	}

	// The repository maps the UNIQUE violation to ErrConflict — pass it
	// straight through, the handler knows what 409 looks like.
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Authenticate verifies a username/password pair.
//
// THE (user, ok, err) RETURN SHAPE:
// Bad credentials are NOT an error — they are a normal, expected outcome of
// a login form. So:
//
//	ok=true,  err=nil → credentials valid, user returned
//	ok=false, err=nil → unknown username OR wrong password
//	err != nil        → something actually broke (DB down, etc.)
//
// Unknown-user and wrong-password are deliberately indistinguishable to the
// caller. The login page shows one generic message either way, which avoids
// leaking which usernames exist.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, false, nil
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("service/auth: looking up user %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, false, nil
	}

	return user, true, nil
}

// GetUserByID returns the user for the given internal ID.
//
// Used by the profile handler to resolve the {id} path segment after the
// middleware has already established who the VIEWER is.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return user, nil
}
