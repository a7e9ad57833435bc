package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SIGNING_KEY": "secret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.StoreDriver != DriverMemory || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.OAuth.Provisioning != "strict" || cfg.OAuth.Enabled() {
		t.Fatalf("expected strict, disabled oauth by default: %+v", cfg.OAuth)
	}
	if strings.Join(cfg.OAuth.Scopes, " ") != "openid email profile" {
		t.Fatalf("unexpected scopes: %v", cfg.OAuth.Scopes)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.PoolSize != 10 {
		t.Fatalf("redis must be opt-in with a pool of 10, got %+v", cfg.Redis)
	}
	if cfg.Mongo.Timeout != 10*time.Second {
		t.Fatalf("unexpected mongo timeout: %v", cfg.Mongo.Timeout)
	}
	if !cfg.Pretty() {
		t.Fatalf("development env should log pretty")
	}
}

func TestLoad_RequiresSigningKey(t *testing.T) {
	_, err := Load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err == nil || !strings.Contains(err.Error(), "JWT_SIGNING_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SIGNING_KEY":    "secret",
		"ENV":                "production",
		"STORE_DRIVER":       "postgres",
		"POSTGRES_DSN":       "postgres://localhost/phonebook",
		"OAUTH_PROVIDER":     "oidc",
		"OAUTH_CLIENT_ID":    "client",
		"OAUTH_PROVISIONING": "auto",
		"CORS_ALLOW_ORIGINS": "http://localhost:3000,https://app.example.com",
		"ADMIN_USERNAME":     "root",
		"ADMIN_PASSWORD":     "toor",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Pretty() {
		t.Fatalf("production env must log JSON")
	}
	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[1] != "https://app.example.com" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowOrigins)
	}
	if !cfg.OAuth.Enabled() || cfg.OAuth.Provisioning != "auto" || cfg.Admin.Username != "root" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := func() map[string]string {
		return map[string]string{"JWT_SIGNING_KEY": "secret"}
	}
	cases := map[string]struct {
		env  map[string]string
		want string
	}{
		"unknown driver":     {map[string]string{"STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		"postgres no dsn":    {map[string]string{"STORE_DRIVER": "postgres"}, "POSTGRES_DSN"},
		"unknown policy":     {map[string]string{"OAUTH_PROVISIONING": "maybe"}, "OAUTH_PROVISIONING"},
		"unknown provider":   {map[string]string{"OAUTH_PROVIDER": "saml"}, "OAUTH_PROVIDER"},
		"provider no client": {map[string]string{"OAUTH_PROVIDER": "oauth2"}, "OAUTH_CLIENT_ID"},
	}
	for name, tc := range cases {
		env := base()
		for k, v := range tc.env {
			env[k] = v
		}
		_, err := Load(context.Background(), envconfig.MapLookuper(env))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error mentioning %s, got %v", name, tc.want, err)
		}
	}
}
