package domain

import "time"

// Role is the coarse-grained permission tag carried in tokens.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// User is the authoritative account record. RefreshToken holds the single
// currently-honored refresh token for the account, nil when logged out.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        *string
	Role         Role
	PasswordHash string
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
