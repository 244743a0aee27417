package domain

import (
	"errors"
	"time"
)

var ErrEmailTaken = errors.New("email already registered")
var ErrUsernameTaken = errors.New("username has been registered")
var ErrUserNotFound = errors.New("user not found")
var ErrRoleNotFound = errors.New("role not found")
var ErrDependencyUnavailable = errors.New("dependency unavailable")

// User models a registered account. Email and username are each unique across
// all users; the store enforces this with unique indexes.
type User struct {
	ID                    string    `json:"id"`
	Email                 string    `json:"email"`
	Username              string    `json:"username"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	PasswordHash          string    `json:"-"`
	RegistrationToken     string    `json:"-"`
	RegistrationTimestamp time.Time `json:"registration_timestamp"`
	// RefreshToken is empty until token issuance completes, then written once.
	RefreshToken  string    `json:"-"`
	ImageURL      string    `json:"image"`
	CoverPhotoURL string    `json:"cover_photo"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
