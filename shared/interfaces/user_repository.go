package interfaces

import (
	"context"
	"user-service/shared/models"
)

// UserRepository defines the interface for user document persistence (e.g., MongoDB).
// Implementations wrap driver failures with models.ErrDatabase.
type UserRepository interface {
	// EnsureIndexes creates the unique username index if it does not exist.
	EnsureIndexes(ctx context.Context) error

	// CreateUser inserts a new user document.
	// Returns models.ErrUserAlreadyExists on a duplicate username.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves a user regardless of deprecation.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetActiveUserByUsername retrieves a non-deprecated user.
	// Returns models.ErrUserNotFound if no such user exists.
	GetActiveUserByUsername(ctx context.Context, username string) (*models.User, error)

	// SetSession stores token and expiry on the non-deprecated user.
	// Reports whether a document matched.
	SetSession(ctx context.Context, username, token string, validUntil int64) (bool, error)

	// ClearSessionByToken clears token and expiry on the user holding token.
	// Reports whether a document matched.
	ClearSessionByToken(ctx context.Context, token string) (bool, error)

	// ClearSessionByUsername clears token and expiry on the user.
	ClearSessionByUsername(ctx context.Context, username string) error

	// UpdateProfile overwrites the profile fields of the non-deprecated user
	// and returns the updated document.
	// Returns models.ErrUserNotFound if no document matched.
	UpdateProfile(ctx context.Context, username string, profile models.Profile) (*models.User, error)

	// DeprecateUser marks the non-deprecated user holding token as deprecated
	// and clears its session. Reports whether a document matched.
	DeprecateUser(ctx context.Context, username, token string) (bool, error)
}
