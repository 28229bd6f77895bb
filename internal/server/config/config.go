// Package config handles configuration for the account service: defaults,
// an optional JSON file, environment variables and command-line flags,
// applied in that order.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vincentino1/account-service/internal/server/auth"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DefaultSecretKey is a placeholder for local development only. Validate
	// refuses it when Env is production.
	DefaultSecretKey = "dev-secret-change-me"
)

// Config holds runtime settings for the account service.
//
// Fields:
//   - Env: "development" or "production".
//   - HTTPAddr / GRPCAddr: bind addresses of the public HTTP API and the gRPC endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). When no source sets it, it is
//     composed from the DB_* parts.
//   - DB: host, port, name, user and password of the database, plus SSL.
//     DBSSL also adds sslmode=require to a DatabaseDSN that names no sslmode.
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - AccessTokenTTL: lifetime of issued access tokens.
//   - BcryptCost: password hashing work factor, 4..15.
//   - RedisURL: optional Redis in front of the revocation table; empty disables it.
//   - RevocationCacheTTL: upper bound on how long a cached revocation lives.
//   - PurgeInterval: how often expired revocations are deleted; 0 disables.
//   - AllowedOrigins: CORS allow-list; empty allows any origin.
//   - LogFormat: "zap" or "slog".
type Config struct {
	Env                string        `env:"APP_ENV"`
	HTTPAddr           string        `env:"HTTP_ADDR"`
	GRPCAddr           string        `env:"GRPC_ADDR"`
	DatabaseDSN        string        `env:"DATABASE_URL"`
	DBHost             string        `env:"DB_HOST"`
	DBPort             int           `env:"DB_PORT"`
	DBName             string        `env:"DB_NAME"`
	DBUser             string        `env:"DB_USER"`
	DBPassword         string        `env:"DB_PASSWORD"`
	DBSSL              bool          `env:"DB_SSL"`
	SecretKey          string        `env:"JWT_SECRET"`
	AccessTokenTTL     time.Duration `env:"JWT_EXPIRES_IN"`
	BcryptCost         int           `env:"BCRYPT_ROUNDS"`
	RedisURL           string        `env:"REDIS_URL"`
	RevocationCacheTTL time.Duration `env:"REVOCATION_CACHE_TTL"`
	PurgeInterval      time.Duration `env:"PURGE_INTERVAL"`
	AllowedOrigins     []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	LogFormat          string        `env:"LOG_FORMAT"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret and database credentials are insecure and must be
// overridden outside development.
func (c *Config) LoadDefaults() {
	c.Env = EnvDevelopment
	c.HTTPAddr = ":3001"
	c.GRPCAddr = ":50051"
	c.DatabaseDSN = ""
	c.DBHost = "localhost"
	c.DBPort = 5432
	c.DBName = "vogueThreads"
	c.DBUser = "devEccomerce"
	c.DBPassword = "devEccomerce$"
	c.DBSSL = false
	c.SecretKey = DefaultSecretKey
	c.AccessTokenTTL = time.Hour
	c.BcryptCost = auth.DefaultCost
	c.RedisURL = ""
	c.RevocationCacheTTL = time.Hour
	c.PurgeInterval = time.Hour
	c.AllowedOrigins = nil
	c.LogFormat = "zap"
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate checks the invariants the service relies on at startup.
func (c *Config) Validate() error {
	var errs []error

	if c.BcryptCost < auth.MinCost || c.BcryptCost > auth.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", c.BcryptCost, auth.MinCost, auth.MaxCost))
	}
	if c.DBPort <= 0 || c.DBPort > 65535 {
		errs = append(errs, fmt.Errorf("db port %d out of range", c.DBPort))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("access token ttl must be positive"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.IsProduction() && c.SecretKey == DefaultSecretKey {
		errs = append(errs, errors.New("default secret key is not allowed in production"))
	}
	if c.PurgeInterval < 0 {
		errs = append(errs, errors.New("purge interval must not be negative"))
	}
	for _, origin := range c.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, fmt.Errorf("allowed origin %q must start with http:// or https://", origin))
		}
	}
	if c.LogFormat != "zap" && c.LogFormat != "slog" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// Load builds a Config from defaults, then overlays the JSON file named by
// -c/-config, the environment and finally the flags found in args.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	cfg.resolveDSN()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// resolveDSN fills DatabaseDSN from the DB_* parts when nothing set it and
// applies DBSSL to an explicit DSN that does not choose an sslmode.
func (c *Config) resolveDSN() {
	if c.DatabaseDSN == "" {
		c.DatabaseDSN = c.composeDSN()
		return
	}
	if !c.DBSSL {
		return
	}
	u, err := url.Parse(c.DatabaseDSN)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return
	}
	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "require")
		u.RawQuery = q.Encode()
		c.DatabaseDSN = u.String()
	}
}

func (c *Config) composeDSN() string {
	sslmode := "disable"
	if c.DBSSL {
		sslmode = "require"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + sslmode,
	}
	return u.String()
}

// LoadConfig is Load applied to the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
