// Command phonebook serves the PhoneBook HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/redmath/phonebook/internal/api"
	"github.com/redmath/phonebook/internal/core/service"
	"github.com/redmath/phonebook/internal/infrastructure/config"
	"github.com/redmath/phonebook/internal/infrastructure/oauth"
	"github.com/redmath/phonebook/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// Init is a no-op when run got far enough to configure the logger.
		log := logger.Init(logger.Options{Service: "phonebook"})
		log.Error().Err(err).Msg("phonebook exited")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx, envconfig.OsLookuper())
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Pretty(),
		Service: "phonebook",
	})

	st, err := openStores(ctx, cfg, logger.With("store"))
	if err != nil {
		return err
	}
	defer st.Close()

	hasher := service.NewBcryptHasher(bcrypt.DefaultCost)
	tokens := service.NewTokenService([]byte(cfg.JWTSigningKey))
	users := service.NewUserService(st.users, hasher, logger.With("users"))

	if err := users.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email); err != nil {
		return err
	}

	policy, err := service.ParsePolicy(cfg.OAuth.Provisioning)
	if err != nil {
		return err
	}

	deps := api.Deps{
		Auth:                service.NewAuthService(st.users, hasher, tokens, logger.With("auth")),
		OAuth:               service.NewOAuthService(st.users, tokens, policy, logger.With("oauth")),
		Users:               users,
		Contacts:            service.NewContactService(st.contacts, logger.With("contacts")),
		Verifier:            tokens,
		States:              st.states,
		FrontendRedirectURL: cfg.OAuth.FrontendRedirectURL,
		CORSAllowOrigins:    cfg.CORSAllowOrigins,
		Pingers:             st.pingers,
		Logger:              log,
	}

	if cfg.OAuth.Enabled() {
		provider, err := oauth.New(ctx, cfg.OAuth.Provider, oauth.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
			Scopes:       cfg.OAuth.Scopes,
			IssuerURL:    cfg.OAuth.IssuerURL,
			AuthURL:      cfg.OAuth.AuthURL,
			TokenURL:     cfg.OAuth.TokenURL,
			UserInfoURL:  cfg.OAuth.UserInfoURL,
		})
		if err != nil {
			return err
		}
		deps.Provider = provider
		log.Info().Str("provider", provider.Name()).Str("provisioning", string(policy)).Msg("oauth login enabled")
	}

	e, err := api.NewRouter(deps)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("phonebook listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(e.Shutdown, log)
	})
	return g.Wait()
}

func shutdown(fn func(context.Context) error, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Msg("shutting down")
	if err := fn(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
