package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/redmath/phonebook/internal/core/domain"
)

// DefaultTokenTTL is the lifetime of every issued token.
const DefaultTokenTTL = 3600 * time.Second

type tokenClaims struct {
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 tokens with a single process-wide
// key supplied at construction.
type TokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source used for exp and validation.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewTokenService(signingKey []byte, opts ...TokenOption) *TokenService {
	key := make([]byte, len(signingKey))
	copy(key, signingKey)

	s := &TokenService{key: key, ttl: DefaultTokenTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for subject carrying authorities in the given order.
func (s *TokenService) Issue(subject string, authorities []string) (*domain.Token, error) {
	if len(s.key) == 0 {
		return nil, fmt.Errorf("%w: empty signing key", domain.ErrTokenIssuance)
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)

	auths := make([]string, len(authorities))
	copy(auths, authorities)

	claims := tokenClaims{
		Authorities: auths,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenIssuance, err)
	}

	return &domain.Token{
		Value:     signed,
		Type:      domain.TokenType,
		ExpiresIn: int64(s.ttl / time.Second),
		Subject:   subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
// Every failure is reported as domain.ErrInvalidToken.
func (s *TokenService) Verify(raw string) (*domain.Claims, error) {
	if raw == "" || len(s.key) == 0 {
		return nil, domain.ErrInvalidToken
	}

	claims := &tokenClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", domain.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	auths := claims.Authorities
	if auths == nil {
		auths = []string{}
	}

	return &domain.Claims{
		Subject:     claims.Subject,
		Authorities: auths,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}
