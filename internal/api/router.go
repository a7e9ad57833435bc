package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/redmath/phonebook/docs"
	"github.com/redmath/phonebook/internal/api/handler"
	"github.com/redmath/phonebook/internal/api/middleware"
	"github.com/redmath/phonebook/internal/core/ports"
	"github.com/redmath/phonebook/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth     ports.AuthService
	OAuth    ports.OAuthService
	Users    ports.UserService
	Contacts ports.ContactService
	Verifier ports.TokenVerifier

	// Provider and States are nil when OAuth login is disabled.
	Provider ports.IdentityProvider
	States   ports.StateStore

	// FrontendRedirectURL, when set, receives the token after OAuth login.
	FrontendRedirectURL string
	CORSAllowOrigins    []string

	// Policy defaults to middleware.DefaultPolicy.
	Policy *middleware.Policy
	// Pingers are checked by /health/ready, keyed by name.
	Pingers map[string]handlers.Pinger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if d.Policy == nil {
		d.Policy = middleware.DefaultPolicy()
	}

	promMiddleware, err := echoprometheus.MiddlewareConfig{
		Namespace:  "phonebook",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}.ToMiddleware()
	if err != nil {
		return nil, err
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	if len(d.CORSAllowOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: d.CORSAllowOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}
	e.Use(promMiddleware)
	e.Use(middleware.Authorize(d.Policy, d.Verifier))

	authHandler := handler.NewAuthHandler(d.Auth)
	oauthHandler := handler.NewOAuthHandler(d.Provider, d.States, d.OAuth, d.FrontendRedirectURL, d.Logger)
	userHandler := handler.NewUserHandler(d.Users)
	contactHandler := handler.NewContactHandler(d.Contacts)

	// --- Auth routes ---
	e.POST("/api/login", authHandler.Login)
	e.GET("/api/me", authHandler.Me)
	e.GET("/oauth2/authorization", oauthHandler.Authorize)
	e.GET("/login/oauth2/code", oauthHandler.Callback)

	// --- Users ---
	e.GET("/users", userHandler.List)
	e.POST("/users/add", userHandler.Add)
	e.DELETE("/deleteUser/:id", userHandler.Delete)

	// --- Contacts ---
	e.GET("/api/getContacts", contactHandler.List)
	e.POST("/api/saveContact", contactHandler.Save)
	e.PUT("/api/updateContact", contactHandler.Update)
	e.DELETE("/api/deleteContact/:id", contactHandler.Delete)
	e.DELETE("/api/deleteAll", contactHandler.DeleteAll)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(d.Pingers).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			switch {
			case v.Status >= 500:
				event = log.Error().Err(v.Error)
			case v.Error != nil:
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
