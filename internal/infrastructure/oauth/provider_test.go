package oauth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// newOAuth2Server serves a token endpoint that accepts the code "good" and a
// userinfo endpoint returning info for the bearer "access-123".
func newOAuth2Server(t *testing.T, info map[string]any, idToken func() string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(w, map[string]string{"error": "invalid_grant"})
			return
		}
		resp := map[string]any{"access_token": "access-123", "token_type": "Bearer", "expires_in": 3600}
		if idToken != nil {
			resp["id_token"] = idToken()
		}
		writeJSON(w, resp)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, info)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), KindOAuth2, Config{})
	assert.ErrorContains(t, err, "client id is required")

	_, err = New(context.Background(), "saml", Config{ClientID: "c"})
	assert.ErrorContains(t, err, "unknown provider")

	_, err = New(context.Background(), KindOAuth2, Config{ClientID: "c", AuthURL: "https://idp/auth", TokenURL: "https://idp/token"})
	assert.ErrorContains(t, err, "userinfo url is required")
}

func TestUserInfoProvider_AuthCodeURL(t *testing.T) {
	p, err := NewUserInfoProvider(Config{
		ClientID:    "client",
		RedirectURL: "http://localhost:8080/login/oauth2/code",
		Scopes:      []string{"email", "profile"},
		AuthURL:     "https://idp.example.com/authorize",
		TokenURL:    "https://idp.example.com/token",
		UserInfoURL: "https://idp.example.com/userinfo",
	})
	require.NoError(t, err)

	u, err := url.Parse(p.AuthCodeURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "idp.example.com", u.Host)
	assert.Equal(t, "state-1", u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))
	assert.Equal(t, "code", u.Query().Get("response_type"))
	assert.Equal(t, "email profile", u.Query().Get("scope"))
}

func TestUserInfoProvider_Exchange(t *testing.T) {
	srv := newOAuth2Server(t, map[string]any{"sub": "42", "email": "kim@example.com", "name": "Kim Lee"}, nil)
	p, err := NewUserInfoProvider(Config{
		ClientID: "client", ClientSecret: "secret",
		AuthURL: srv.URL + "/authorize", TokenURL: srv.URL + "/token", UserInfoURL: srv.URL + "/userinfo",
	})
	require.NoError(t, err)

	id, err := p.Exchange(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "kim@example.com", id.Email)
	assert.Equal(t, "Kim Lee", id.Name)
	assert.Equal(t, "42", id.Subject)
	assert.Equal(t, KindOAuth2, id.Provider)
}

func TestUserInfoProvider_ExchangeErrors(t *testing.T) {
	srv := newOAuth2Server(t, map[string]any{"sub": "42", "name": "No Mail"}, nil)
	p, err := NewUserInfoProvider(Config{
		ClientID: "client", ClientSecret: "secret",
		AuthURL: srv.URL + "/authorize", TokenURL: srv.URL + "/token", UserInfoURL: srv.URL + "/userinfo",
	})
	require.NoError(t, err)

	_, err = p.Exchange(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCode)

	_, err = p.Exchange(context.Background(), "bad")
	assert.ErrorContains(t, err, "exchange code")

	_, err = p.Exchange(context.Background(), "good")
	assert.ErrorIs(t, err, ErrMissingEmail)
}

type idTokenFixture struct {
	key    *rsa.PrivateKey
	issuer string
	claims jwt.MapClaims
}

func newIDTokenFixture(t *testing.T, issuer string) *idTokenFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &idTokenFixture{
		key:    key,
		issuer: issuer,
		claims: jwt.MapClaims{
			"iss":            issuer,
			"aud":            "client",
			"sub":            "google-oauth2|1",
			"iat":            time.Now().Unix(),
			"exp":            time.Now().Add(time.Hour).Unix(),
			"email":          "kim@example.com",
			"email_verified": true,
			"name":           "Kim Lee",
		},
	}
}

func (f *idTokenFixture) sign(t *testing.T) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, f.claims).SignedString(f.key)
	require.NoError(t, err)
	return raw
}

func (f *idTokenFixture) verifier() *oidc.IDTokenVerifier {
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&f.key.PublicKey}}
	return oidc.NewVerifier(f.issuer, keys, &oidc.Config{ClientID: "client"})
}

func newTestOIDCProvider(t *testing.T, fixture *idTokenFixture) *OIDCProvider {
	t.Helper()
	srv := newOAuth2Server(t, nil, func() string { return fixture.sign(t) })
	return newOIDCProvider(
		Config{ClientID: "client", ClientSecret: "secret"},
		oauth2.Endpoint{AuthURL: srv.URL + "/authorize", TokenURL: srv.URL + "/token"},
		fixture.verifier(),
	)
}

func TestOIDCProvider_Exchange(t *testing.T) {
	fixture := newIDTokenFixture(t, "https://issuer.example.com")
	p := newTestOIDCProvider(t, fixture)

	id, err := p.Exchange(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "kim@example.com", id.Email)
	assert.Equal(t, "Kim Lee", id.Name)
	assert.Equal(t, "google-oauth2|1", id.Subject)
	assert.Equal(t, KindOIDC, id.Provider)
}

func TestOIDCProvider_RejectsUnverifiedEmail(t *testing.T) {
	fixture := newIDTokenFixture(t, "https://issuer.example.com")
	fixture.claims["email_verified"] = false
	p := newTestOIDCProvider(t, fixture)

	_, err := p.Exchange(context.Background(), "good")
	assert.ErrorIs(t, err, ErrUnverified)
}

func TestOIDCProvider_RejectsForeignAudience(t *testing.T) {
	fixture := newIDTokenFixture(t, "https://issuer.example.com")
	fixture.claims["aud"] = "someone-else"
	p := newTestOIDCProvider(t, fixture)

	_, err := p.Exchange(context.Background(), "good")
	assert.ErrorContains(t, err, "verify id token")
}

func TestOIDCProvider_RejectsWrongSigningKey(t *testing.T) {
	fixture := newIDTokenFixture(t, "https://issuer.example.com")
	p := newTestOIDCProvider(t, fixture)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	fixture.key = other

	_, err = p.Exchange(context.Background(), "good")
	assert.ErrorContains(t, err, "verify id token")
}

func TestNewOIDCProvider_Discovery(t *testing.T) {
	var issuer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]any{
			"issuer":                 issuer,
			"authorization_endpoint": issuer + "/authorize",
			"token_endpoint":         issuer + "/token",
			"jwks_uri":               issuer + "/keys",
			"userinfo_endpoint":      issuer + "/userinfo",
		})
	}))
	defer srv.Close()
	issuer = srv.URL

	p, err := New(context.Background(), KindOIDC, Config{ClientID: "client", IssuerURL: issuer})
	require.NoError(t, err)
	assert.Equal(t, KindOIDC, p.Name())
	assert.True(t, strings.HasPrefix(p.AuthCodeURL("s"), issuer+"/authorize?"))
	assert.Contains(t, p.AuthCodeURL("s"), "scope=openid+email+profile")
}
