package user

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's primary role (matches user_role enum)
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// User represents a registered account
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStaff returns true if user is municipality staff
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff
}

// CanTriage returns true if user may appear in the admin triage surface
func (u *User) CanTriage() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

// IsValidRole checks if role is a known role name
func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleCitizen, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// Summary is the public projection of a user attached to reports,
// comments and assignments.
type Summary struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Name  string    `db:"name" json:"name"`
	Email string    `db:"email" json:"email"`
}
