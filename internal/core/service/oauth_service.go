package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/redmath/phonebook/internal/core/domain"
	"github.com/redmath/phonebook/internal/core/ports"
	"github.com/redmath/phonebook/internal/metrics"
)

// ProvisioningPolicy decides what happens when an externally authenticated
// email has no local account.
type ProvisioningPolicy string

const (
	// PolicyStrict rejects unknown emails with domain.ErrUserNotRegistered.
	PolicyStrict ProvisioningPolicy = "strict"
	// PolicyAutoProvision creates a ROLE_USER account on first login.
	PolicyAutoProvision ProvisioningPolicy = "auto"
)

// ParsePolicy maps a configuration value to a ProvisioningPolicy.
func ParsePolicy(s string) (ProvisioningPolicy, error) {
	switch ProvisioningPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyStrict:
		return PolicyStrict, nil
	case PolicyAutoProvision:
		return PolicyAutoProvision, nil
	default:
		return "", fmt.Errorf("unknown oauth provisioning policy %q", s)
	}
}

// OAuthService implements the OAuth provisioning flow.
type OAuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenIssuer
	policy ProvisioningPolicy
	log    zerolog.Logger
}

func NewOAuthService(repo ports.UserRepository, tokens ports.TokenIssuer, policy ProvisioningPolicy, log zerolog.Logger) *OAuthService {
	if policy == "" {
		policy = PolicyStrict
	}
	return &OAuthService{repo: repo, tokens: tokens, policy: policy, log: log}
}

// Policy returns the provisioning policy in effect.
func (s *OAuthService) Policy() ProvisioningPolicy { return s.policy }

// Authenticate looks up (or, under PolicyAutoProvision, creates) the local
// account for identity.Email and issues a token whose subject is the email.
func (s *OAuthService) Authenticate(ctx context.Context, identity domain.ExternalIdentity) (*domain.Token, error) {
	email := domain.NormalizeEmail(identity.Email)
	if email == "" {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.FlowOAuth, "invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserNotFound):
		if s.policy != PolicyAutoProvision {
			s.log.Warn().Str("provider", identity.Provider).Msg("oauth login for unregistered email")
			metrics.LoginAttemptsTotal.WithLabelValues(metrics.FlowOAuth, "not_registered").Inc()
			return nil, domain.ErrUserNotRegistered
		}
		user, err = s.provision(ctx, email, identity)
		if err != nil {
			metrics.LoginAttemptsTotal.WithLabelValues(metrics.FlowOAuth, "error").Inc()
			return nil, err
		}
	default:
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.FlowOAuth, "error").Inc()
		return nil, fmt.Errorf("oauth login: %w", err)
	}

	token, err := s.tokens.Issue(email, user.Authorities())
	if err != nil {
		s.log.Error().Err(err).Str("subject", email).Msg("token issuance failed")
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.FlowOAuth, "error").Inc()
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues(metrics.FlowOAuth, "success").Inc()
	metrics.TokensIssuedTotal.Inc()
	s.log.Info().Str("subject", email).Str("provider", identity.Provider).Msg("oauth user logged in")

	return token, nil
}

// provision creates the local account. A conflict means a concurrent login
// (or an existing username) won the insert; the email is re-read once, and
// if the conflict was on the username the insert is retried with the email
// as username.
func (s *OAuthService) provision(ctx context.Context, email string, identity domain.ExternalIdentity) (*domain.User, error) {
	username := strings.TrimSpace(identity.Name)
	if username == "" {
		username = email
	}

	created, err := s.create(ctx, username, email)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, domain.ErrUserExists) {
		return nil, fmt.Errorf("oauth provision: %w", err)
	}

	existing, lookupErr := s.repo.FindByEmail(ctx, email)
	if lookupErr == nil {
		return existing, nil
	}
	if !errors.Is(lookupErr, domain.ErrUserNotFound) || username == email {
		return nil, fmt.Errorf("oauth provision: %w", err)
	}

	created, err = s.create(ctx, email, email)
	if err == nil {
		return created, nil
	}
	if errors.Is(err, domain.ErrUserExists) {
		if existing, lookupErr := s.repo.FindByEmail(ctx, email); lookupErr == nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("oauth provision: %w", err)
}

func (s *OAuthService) create(ctx context.Context, username, email string) (*domain.User, error) {
	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:  username,
		Email:     email,
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	metrics.OAuthUsersProvisionedTotal.Inc()
	s.log.Info().Str("username", created.Username).Msg("oauth user provisioned")
	return created, nil
}
