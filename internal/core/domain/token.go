package domain

import "time"

// TokenType is the only scheme tokens are issued for.
const TokenType = "Bearer"

// Claims is the payload carried inside a signed token.
type Claims struct {
	Subject     string
	Authorities []string
	ExpiresAt   time.Time
}

// HasAuthority reports whether role is among the claimed authorities.
func (c *Claims) HasAuthority(role string) bool {
	for _, a := range c.Authorities {
		if a == role {
			return true
		}
	}
	return false
}

// Token is a freshly issued, signed credential.
type Token struct {
	Value     string
	Type      string
	ExpiresIn int64 // seconds
	Subject   string
	ExpiresAt time.Time
}

// ExternalIdentity is what an identity provider asserts about the end user
// after a successful authorization code exchange.
type ExternalIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}
