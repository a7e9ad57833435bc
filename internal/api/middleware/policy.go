package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/redmath/phonebook/internal/core/domain"
	"github.com/redmath/phonebook/internal/core/ports"
)

// Access is the protection level of a route.
type Access int

const (
	// Authenticated requires a valid token. It is the fallback for routes
	// no rule matches.
	Authenticated Access = iota
	// Public needs no token.
	Public
	// RequireRole needs a valid token carrying Rule.Role.
	RequireRole
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case RequireRole:
		return "role"
	default:
		return "authenticated"
	}
}

// Rule protects routes by method and echo route template. An empty Method
// matches every method; a Path ending in "*" matches any suffix.
type Rule struct {
	Method string
	Path   string
	Access Access
	Role   string
}

func (r Rule) matches(method, path string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	if prefix, ok := strings.CutSuffix(r.Path, "*"); ok {
		return strings.HasPrefix(path, prefix)
	}
	return r.Path == path
}

// Policy is an ordered rule table; the first matching rule wins.
type Policy struct {
	rules []Rule
}

func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: append([]Rule(nil), rules...)}
}

// Resolve returns the rule that applies to a request.
func (p *Policy) Resolve(method, path string) Rule {
	for _, r := range p.rules {
		if r.matches(method, path) {
			return r
		}
	}
	return Rule{Method: method, Path: path, Access: Authenticated}
}

// DefaultPolicy is the phonebook route table. /users and /api/getContacts
// stay public to match the existing clients.
func DefaultPolicy() *Policy {
	admin := func(method, path string) Rule {
		return Rule{Method: method, Path: path, Access: RequireRole, Role: domain.RoleAdmin}
	}
	public := func(method, path string) Rule {
		return Rule{Method: method, Path: path, Access: Public}
	}

	return NewPolicy(
		public(http.MethodPost, "/api/login"),
		public(http.MethodGet, "/oauth2/authorization"),
		public(http.MethodGet, "/login/oauth2/code"),
		public(http.MethodGet, "/health"),
		public(http.MethodGet, "/health/ready"),
		public(http.MethodGet, "/metrics"),
		public(http.MethodGet, "/swagger/*"),
		public(http.MethodGet, "/users"),
		public(http.MethodGet, "/api/getContacts"),
		public(http.MethodPost, "/api/saveContact"),
		admin(http.MethodPut, "/api/updateContact"),
		admin(http.MethodDelete, "/api/deleteContact/:id"),
		admin(http.MethodDelete, "/api/deleteAll"),
		admin(http.MethodDelete, "/deleteUser/:id"),
	)
}

// Authorize enforces p on every request. It must be registered with e.Use so
// it runs after routing and c.Path() holds the route template.
func Authorize(p *Policy, verifier ports.TokenVerifier) echo.MiddlewareFunc {
	auth := Auth(verifier)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		authenticated := auth(next)
		roleGated := make(map[string]echo.HandlerFunc)
		for _, r := range p.rules {
			if r.Access == RequireRole {
				if _, ok := roleGated[r.Role]; !ok {
					roleGated[r.Role] = auth(RBAC(r.Role)(next))
				}
			}
		}

		return func(c echo.Context) error {
			rule := p.Resolve(c.Request().Method, c.Path())
			switch rule.Access {
			case Public:
				return next(c)
			case RequireRole:
				return roleGated[rule.Role](c)
			default:
				return authenticated(c)
			}
		}
	}
}
