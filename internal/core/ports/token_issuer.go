package ports

import (
	"context"

	"github.com/peoplehub/accounts-api/internal/core/domain"
)

// IssueInput binds a token pair to a user identity, the registration nonce,
// and the role names read back from the store.
type IssueInput struct {
	UserID    string
	Email     string
	Nonce     string
	RoleNames []string
}

// TokenIssuer mints the access/refresh pair at the end of registration. Both
// tokens are self-contained signed credentials carrying at least the user id,
// role names, issued-at, and expiry. Issuers should treat repeated calls with
// the same nonce as a retry and return the previously minted pair.
type TokenIssuer interface {
	Issue(ctx context.Context, input IssueInput) (domain.TokenPair, error)
}
