package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/peoplehub/accounts-api/internal/core/domain"
	"github.com/peoplehub/accounts-api/internal/core/ports"
)

type roleResolver struct {
	repo ports.RoleRepository
	log  zerolog.Logger
}

// NewRoleResolver returns a RoleResolver backed by the role repository.
func NewRoleResolver(repo ports.RoleRepository, log zerolog.Logger) RoleResolver {
	return &roleResolver{repo: repo, log: log}
}

// Resolve trims the requested names and returns the subset that exists in
// the store. Matching is case-sensitive, the same as the unique index on role
// name. Names that match no role are dropped, not rejected; the caller
// applies the default-role fallback when nothing resolves.
func (r *roleResolver) Resolve(ctx context.Context, names []string) ([]domain.Role, error) {
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			normalized = append(normalized, name)
		}
	}
	if len(normalized) == 0 {
		return nil, nil
	}

	roles, err := r.repo.FindByNames(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if len(roles) < len(normalized) {
		r.log.Debug().
			Strs("requested", normalized).
			Int("resolved", len(roles)).
			Msg("some requested roles do not exist")
	}
	return roles, nil
}

// EnsureDefault returns the "user" role, creating it with rank 1 on first
// use. Idempotence under concurrent callers is delegated to the store's
// unique index on role name.
func (r *roleResolver) EnsureDefault(ctx context.Context) (domain.Role, error) {
	return r.repo.EnsureDefault(ctx)
}
