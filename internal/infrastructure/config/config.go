package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSigningKey is the HMAC-SHA256 key for access tokens.
	JWTSigningKey string `env:"JWT_SIGNING_KEY, required"`

	StoreDriver string `env:"STORE_DRIVER, default=memory"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS"`

	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	OAuth    OAuthConfig
	Admin    AdminConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,  default=phonebook"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN"`
}

// RedisConfig backs the OAuth state store. An empty Addr keeps state in memory.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

type OAuthConfig struct {
	// Provider is "oidc", "oauth2" or empty to disable OAuth login.
	Provider     string   `env:"OAUTH_PROVIDER"`
	ClientID     string   `env:"OAUTH_CLIENT_ID"`
	ClientSecret string   `env:"OAUTH_CLIENT_SECRET"`
	RedirectURL  string   `env:"OAUTH_REDIRECT_URL"`
	IssuerURL    string   `env:"OAUTH_ISSUER_URL, default=https://accounts.google.com"`
	AuthURL      string   `env:"OAUTH_AUTH_URL"`
	TokenURL     string   `env:"OAUTH_TOKEN_URL"`
	UserInfoURL  string   `env:"OAUTH_USERINFO_URL"`
	Scopes       []string `env:"OAUTH_SCOPES, default=openid,email,profile"`
	Provisioning string   `env:"OAUTH_PROVISIONING, default=strict"`

	FrontendRedirectURL string `env:"OAUTH_FRONTEND_REDIRECT_URL"`
}

// AdminConfig seeds a ROLE_ADMIN account at startup when username and
// password are both set.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Password string `env:"ADMIN_PASSWORD"`
	Email    string `env:"ADMIN_EMAIL"`
}

// Enabled reports whether OAuth login is configured.
func (c OAuthConfig) Enabled() bool { return c.Provider != "" }

// Pretty reports whether logs should be human readable.
func (c *Config) Pretty() bool { return strings.EqualFold(c.Env, "development") }

// Load reads configuration from l (envconfig.OsLookuper() in production) and
// validates it.
func Load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverMemory, DriverMongo:
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch strings.ToLower(c.OAuth.Provisioning) {
	case "strict", "auto":
	default:
		errs = append(errs, fmt.Errorf("unknown OAUTH_PROVISIONING %q", c.OAuth.Provisioning))
	}

	switch c.OAuth.Provider {
	case "":
	case "oidc", "oauth2":
		if c.OAuth.ClientID == "" {
			errs = append(errs, errors.New("OAUTH_CLIENT_ID is required when OAUTH_PROVIDER is set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown OAUTH_PROVIDER %q", c.OAuth.Provider))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
