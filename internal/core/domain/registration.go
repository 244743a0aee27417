package domain

import "time"

// TokenPair is the credential pair minted at the end of registration.
// Derived, not persisted as an entity; only the refresh token is stored,
// on the user record.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegistrationEvent is the audit record emitted after a registration commits.
type RegistrationEvent struct {
	UserID    string
	Email     string
	Username  string
	RoleNames []string
	Timestamp time.Time
}
