package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/redmath/phonebook/internal/core/domain"
	"github.com/redmath/phonebook/internal/core/ports"
	"github.com/redmath/phonebook/internal/metrics"
)

// placeholderPassword is hashed once per AuthService. Its hash only ever
// stands in for a missing one and never grants access.
const placeholderPassword = "phonebook-placeholder-password"

// AuthService implements the username/password login flow.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger

	// dummyHash is verified against when there is no stored hash, so every
	// rejected login costs one hash comparison.
	dummyHash string
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	dummy, err := hasher.Hash(placeholderPassword)
	if err != nil {
		log.Error().Err(err).Msg("placeholder hash failed")
	}
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, log: log, dummyHash: dummy}
}

// Login verifies username/password and issues a token whose subject is the
// username. An unknown username and a wrong password are both reported as
// domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	if username == "" || password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.FlowPassword, "invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			s.log.Warn().Msg("login rejected")
			metrics.LoginAttemptsTotal.WithLabelValues(metrics.FlowPassword, "invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.FlowPassword, "error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.verify(password, user.PasswordHash) {
		s.log.Warn().Msg("login rejected")
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.FlowPassword, "invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username, user.Authorities())
	if err != nil {
		s.log.Error().Err(err).Str("subject", user.Username).Msg("token issuance failed")
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.FlowPassword, "error").Inc()
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues(metrics.FlowPassword, "success").Inc()
	metrics.TokensIssuedTotal.Inc()
	s.log.Info().Str("subject", user.Username).Msg("user logged in")

	return token, nil
}

// verify checks password against hash. Accounts without a hash (OAuth only)
// never verify but still pay for one comparison.
func (s *AuthService) verify(password, hash string) bool {
	if hash == "" {
		s.hasher.Verify(password, s.dummyHash)
		return false
	}
	return s.hasher.Verify(password, hash)
}
