package models

import "time"

// Role is the account role on the platform.
type Role string

const (
	RoleMentor    Role = "Mentor"
	RoleProfessor Role = "Professor"
	RoleStudent   Role = "Student"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleMentor, RoleProfessor, RoleStudent:
		return true
	}
	return false
}

// Account represents a registered platform user.
type Account struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Role              Role       `json:"role"`
	PasswordHash      string     `json:"-"`
	IsVerified        bool       `json:"is_verified"`
	ResetOTPCode      *string    `json:"-"`
	ResetOTPExpiresAt *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
}
