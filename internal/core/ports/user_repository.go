package ports

import (
	"context"

	"github.com/peoplehub/accounts-api/internal/core/domain"
)

// UserRepository defines persistence operations for user records.
//
// FindByEmail and FindByUsername return domain.ErrUserNotFound when no record
// matches. Create must surface store-level unique-constraint violations as
// domain.ErrEmailTaken or domain.ErrUsernameTaken — those errors, not the
// lookup fast path, are the authoritative duplicate signal.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// AssignRoles writes one assignment row per role. Called exactly once per user.
	AssignRoles(ctx context.Context, userID string, roles []domain.Role) error
	// RoleNames re-reads the role names associated with the user from the
	// store. Used as the source of truth for token claims.
	RoleNames(ctx context.Context, userID string) ([]string, error)
	SetRefreshToken(ctx context.Context, userID, refreshToken string) error
	// Delete removes the user and its role assignments. Used only to
	// compensate a failed registration.
	Delete(ctx context.Context, userID string) error
}
