package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotRegistered  = errors.New("user not registered")
	ErrContactNotFound    = errors.New("contact not found")
	ErrInvalidUser        = errors.New("username, password and a valid role are required")

	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid token")
	ErrForbidden       = errors.New("access forbidden")
	ErrTokenIssuance   = errors.New("token issuance failed")

	ErrInvalidOAuthState = errors.New("invalid oauth state")
)
