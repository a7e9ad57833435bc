package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/redmath/phonebook/internal/core/domain"
)

// RBAC lets the request through when the token carries any of the given
// authorities. It must run after Auth.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ContextKeyClaims).(*domain.Claims)
			if !ok || claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			for _, role := range allowedRoles {
				if claims.HasAuthority(role) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
		}
	}
}
