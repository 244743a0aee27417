package domain

import "time"

const (
	// DefaultRoleName is the fallback role every user receives when no
	// requested role resolves. Created lazily with DefaultRoleRank.
	DefaultRoleName = "user"
	DefaultRoleRank = 1

	RoleAdmin = "admin"
)

// Role is immutable reference data shared many-to-many with users.
// Name is unique across all roles.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// RoleAssignment links a user to a role. Written exactly once, at registration.
type RoleAssignment struct {
	UserID     string    `json:"user_id"`
	RoleID     string    `json:"role_id"`
	AssignedAt time.Time `json:"assigned_at"`
}
