package middleware

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/redmath/phonebook/internal/core/domain"
	"github.com/redmath/phonebook/internal/core/service"
)

func issue(t *testing.T, tokens *service.TokenService, subject string, roles ...string) string {
	t.Helper()
	tok, err := tokens.Issue(subject, roles)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok.Value
}

func runAuth(t *testing.T, verifier *service.TokenService, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(verifier)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := service.NewTokenService([]byte("secret"))
	rec, c, called := runAuth(t, tokens, "Bearer "+issue(t, tokens, "alice", domain.RoleAdmin, domain.RoleUser))

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected next to be called with 200, got %d", rec.Code)
	}
	if c.Get(ContextKeySubject) != "alice" {
		t.Fatalf("subject not set")
	}
	claims, ok := c.Get(ContextKeyClaims).(*domain.Claims)
	if !ok || !reflect.DeepEqual(claims.Authorities, []string{domain.RoleAdmin, domain.RoleUser}) {
		t.Fatalf("claims not set: %+v", c.Get(ContextKeyClaims))
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tokens := service.NewTokenService([]byte("secret"))
	other := service.NewTokenService([]byte("other-secret"))
	expired := service.NewTokenService([]byte("secret"), service.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}))

	cases := map[string]string{
		"missing header":  "",
		"wrong scheme":    "Token abc",
		"empty bearer":    "Bearer ",
		"malformed token": "Bearer not-a-token",
		"wrong key":       "Bearer " + issue(t, other, "alice", domain.RoleAdmin),
		"expired":         "Bearer " + issue(t, expired, "alice", domain.RoleAdmin),
	}
	for name, header := range cases {
		rec, _, called := runAuth(t, tokens, header)
		if called {
			t.Fatalf("%s: should not reach next", name)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestAuthMiddleware_SchemeCaseInsensitive(t *testing.T) {
	tokens := service.NewTokenService([]byte("secret"))
	rec, _, called := runAuth(t, tokens, "bearer "+issue(t, tokens, "alice", domain.RoleUser))
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected lowercase scheme to be accepted, got %d", rec.Code)
	}
}
