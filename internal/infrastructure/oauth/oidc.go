package oauth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/redmath/phonebook/internal/core/domain"
)

// OIDCProvider implements OpenID Connect login. The identity comes from the
// verified ID token; an explicit email_verified=false is rejected.
type OIDCProvider struct {
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
}

// NewOIDCProvider discovers the issuer's endpoints and keys.
func NewOIDCProvider(ctx context.Context, cfg Config) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	return newOIDCProvider(cfg, provider.Endpoint(), verifier), nil
}

func newOIDCProvider(cfg Config, endpoint oauth2.Endpoint, verifier *oidc.IDTokenVerifier) *OIDCProvider {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}

	return &OIDCProvider{
		verifier: verifier,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
		},
	}
}

func (p *OIDCProvider) Name() string { return KindOIDC }

func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
}

func (p *OIDCProvider) Exchange(ctx context.Context, code string) (*domain.ExternalIdentity, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("missing id_token in response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse id token claims: %w", err)
	}
	if claims.Email == "" {
		return nil, ErrMissingEmail
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return nil, ErrUnverified
	}

	return &domain.ExternalIdentity{
		Provider: KindOIDC,
		Subject:  idToken.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
	}, nil
}
