package domain

import (
	"strings"
	"time"
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User models an account that can log in with a password, an external
// identity provider, or both.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Authorities returns the role claims carried by tokens issued for u.
func (u *User) Authorities() []string {
	if u.Role == "" {
		return []string{}
	}
	return []string{u.Role}
}

// ValidRole reports whether role is one the service knows how to grant.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// NormalizeEmail is the form emails are stored and looked up in. Identity
// providers do not agree on case.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
