package domain

import "time"

// Role is a user's role within the school.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleStudent Role = "student"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleStudent:
		return true
	}
	return false
}

// User is an account holder: administrator, staff member or student.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

// IsAdmin reports whether the caller has administrator rights.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// BootstrapMarker records that the initial administrator was registered.
type BootstrapMarker struct {
	AdminID     string
	CompletedAt time.Time
}
