package ports

import "context"

// RegisterInput carries all data needed to register a new account. Field
// syntax and lengths are validated at the transport boundary before the
// service runs; RequestedRoles is already normalized from the wire's
// string-or-array form into a plain slice (nil when omitted).
type RegisterInput struct {
	Email          string
	RequestedRoles []string
	FirstName      string
	LastName       string
	Username       string
	Password       string
}

// RegisterResult is the acknowledgement returned on success. Tokens and other
// sensitive fields are deliberately absent: the endpoint's contract returns
// only a message, with credentials delivered out of band.
type RegisterResult struct {
	Message string
}

// RegistrationService orchestrates the registration workflow: uniqueness
// checks, role resolution, user creation, role association, and token
// issuance, as one logical unit of work.
type RegistrationService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
}
