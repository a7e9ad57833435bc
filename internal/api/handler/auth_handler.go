package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/redmath/phonebook/internal/core/domain"
	"github.com/redmath/phonebook/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is shared by password and OAuth login. Email carries the
// token subject, which is the username for password login.
type loginResponse struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Email       string `json:"email"`
}

func newLoginResponse(t *domain.Token) loginResponse {
	return loginResponse{
		TokenType:   t.Type,
		AccessToken: t.Value,
		ExpiresIn:   t.ExpiresIn,
		Email:       t.Subject,
	}
}

type meResponse struct {
	Subject     string   `json:"subject"`
	Authorities []string `json:"authorities"`
}

// Login authenticates a user and returns a signed access token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newLoginResponse(token))
}

// Me returns the identity carried by the presented token.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	authorities := claims.Authorities
	if authorities == nil {
		authorities = []string{}
	}
	return c.JSON(http.StatusOK, meResponse{Subject: claims.Subject, Authorities: authorities})
}
