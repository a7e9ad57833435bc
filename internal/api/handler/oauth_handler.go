package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/redmath/phonebook/internal/core/domain"
	"github.com/redmath/phonebook/internal/core/ports"
)

// StateTTL bounds how long a user may take at the identity provider.
const StateTTL = 10 * time.Minute

// OAuthHandler drives the authorization code flow. A nil provider means
// OAuth login is disabled and both endpoints answer 404.
type OAuthHandler struct {
	provider    ports.IdentityProvider
	states      ports.StateStore
	service     ports.OAuthService
	frontendURL string
	log         zerolog.Logger
}

func NewOAuthHandler(
	provider ports.IdentityProvider,
	states ports.StateStore,
	service ports.OAuthService,
	frontendURL string,
	log zerolog.Logger,
) *OAuthHandler {
	return &OAuthHandler{
		provider:    provider,
		states:      states,
		service:     service,
		frontendURL: frontendURL,
		log:         log,
	}
}

// Authorize redirects the browser to the identity provider.
//
// @Summary      Start OAuth login
// @Tags         auth
// @Success      302
// @Failure      404  {object}  map[string]string
// @Router       /oauth2/authorization [get]
func (h *OAuthHandler) Authorize(c echo.Context) error {
	if h.provider == nil {
		return echo.NewHTTPError(http.StatusNotFound, "oauth login is not configured")
	}

	state := uuid.NewString()
	if err := h.states.Save(c.Request().Context(), state, StateTTL); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// Callback completes the flow: it checks state, exchanges the code, maps the
// identity to a local account and hands the token to the client.
//
// @Summary      OAuth callback
// @Tags         auth
// @Produce      json
// @Param        code   query     string  true  "Authorization code"
// @Param        state  query     string  true  "State issued by /oauth2/authorization"
// @Success      200    {object}  loginResponse
// @Success      302
// @Failure      400    {object}  map[string]string
// @Router       /login/oauth2/code [get]
func (h *OAuthHandler) Callback(c echo.Context) error {
	if h.provider == nil {
		return echo.NewHTTPError(http.StatusNotFound, "oauth login is not configured")
	}

	if providerErr := c.QueryParam("error"); providerErr != "" {
		h.log.Warn().Str("error", providerErr).Msg("identity provider rejected login")
		return echo.NewHTTPError(http.StatusBadRequest, "oauth login failed: "+providerErr)
	}

	ctx := c.Request().Context()
	ok, err := h.states.Consume(ctx, c.QueryParam("state"))
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidOAuthState
	}

	identity, err := h.provider.Exchange(ctx, c.QueryParam("code"))
	if err != nil {
		h.log.Warn().Err(err).Str("provider", h.provider.Name()).Msg("oauth code exchange failed")
		return echo.NewHTTPError(http.StatusBadRequest, "oauth login failed")
	}

	token, err := h.service.Authenticate(ctx, *identity)
	if err != nil {
		return err
	}

	if h.frontendURL == "" {
		return c.JSON(http.StatusOK, newLoginResponse(token))
	}

	target, err := url.Parse(h.frontendURL)
	if err != nil {
		return err
	}
	q := target.Query()
	q.Set("token", token.Value)
	q.Set("email", token.Subject)
	target.RawQuery = q.Encode()
	return c.Redirect(http.StatusFound, target.String())
}
