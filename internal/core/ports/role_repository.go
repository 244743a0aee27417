package ports

import (
	"context"

	"github.com/peoplehub/accounts-api/internal/core/domain"
)

// RoleRepository defines persistence operations for role reference data.
type RoleRepository interface {
	// FindByNames returns the subset of roles whose names exist in the store.
	// Unknown names are not an error; they are simply absent from the result.
	FindByNames(ctx context.Context, names []string) ([]domain.Role, error)
	// EnsureDefault returns the role named "user", creating it with rank 1 if
	// absent. Must be idempotent under concurrent callers; the store's unique
	// index on role name is the guard, not caller-side locking.
	EnsureDefault(ctx context.Context) (domain.Role, error)
}
