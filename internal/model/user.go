package model

import "time"

// Role is the closed set of roles a user can hold. Policy tables in
// internal/policy are keyed on this type; adding a role requires
// extending every table.
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User represents an authenticated identity: who the caller is, their role,
// and the department they belong to. The core treats it as read-only input;
// the only mutation path is the admin-gated role update in the user service.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	Department   string    `json:"department"`
	CreatedAt    time.Time `json:"created_at"`
	PasswordHash string    `json:"-"`
}
