package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/redmath/phonebook/internal/core/domain"
)

// UserInfoProvider is a plain OAuth2 provider. After the code exchange the
// identity is read from the userinfo endpoint using the email and name keys.
type UserInfoProvider struct {
	oauth2Config *oauth2.Config
	userInfoURL  string
}

func NewUserInfoProvider(cfg Config) (*UserInfoProvider, error) {
	if cfg.AuthURL == "" || cfg.TokenURL == "" {
		return nil, fmt.Errorf("oauth2: auth and token urls are required")
	}
	if cfg.UserInfoURL == "" {
		return nil, fmt.Errorf("oauth2: userinfo url is required")
	}

	return &UserInfoProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes,
		},
		userInfoURL: cfg.UserInfoURL,
	}, nil
}

func (p *UserInfoProvider) Name() string { return KindOAuth2 }

func (p *UserInfoProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

func (p *UserInfoProvider) Exchange(ctx context.Context, code string) (*domain.ExternalIdentity, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	resp, err := p.oauth2Config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	identity := &domain.ExternalIdentity{
		Provider: KindOAuth2,
		Subject:  stringClaim(info, "sub"),
		Email:    stringClaim(info, "email"),
		Name:     stringClaim(info, "name"),
	}
	if identity.Subject == "" {
		identity.Subject = stringClaim(info, "id")
	}
	if identity.Email == "" {
		return nil, ErrMissingEmail
	}
	return identity, nil
}
