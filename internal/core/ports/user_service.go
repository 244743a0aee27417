package ports

import (
	"context"

	"github.com/peoplehub/accounts-api/internal/core/domain"
)

// UserService exposes read-only account lookups for the authenticated routes.
type UserService interface {
	// ListUsers returns all registered users. Admin-only; RBAC is enforced by
	// the transport layer.
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}
