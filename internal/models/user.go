package models

import "time"

// UserRole represents the available roles for the authorization gate.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleSecretaria UserRole = "SECRETARIA"
)

// Valid reports whether the role is one the gate understands.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleSecretaria
}

// User represents an operator account stored in the users table. Accounts are
// created by the seed CLI; roles are immutable through the API.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
