package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/redmath/phonebook/internal/api/middleware"
	"github.com/redmath/phonebook/internal/core/domain"
)

// ctxClaims returns the claims injected by the Auth middleware. Their absence
// means the route was wired without authentication.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := c.Get(middleware.ContextKeyClaims).(*domain.Claims)
	if !ok || claims == nil || claims.Subject == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}

// bindAndValidate decodes the JSON body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
