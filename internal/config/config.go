package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	API      APIConfig      `env:",prefix=API_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`

	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers name the client. Empty means the peer address is the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=storyboard"`
	Password string `env:"PASSWORD,default=storyboard"`
	DBName   string `env:"DB,default=storyboard"`
	SSLMode  string `env:"SSLMODE,default=disable"`

	// AutoMigrate applies pending migrations when the server starts
	AutoMigrate bool `env:"AUTO_MIGRATE,default=false"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// APIConfig controls the versioned REST surface
type APIConfig struct {
	PathPrefix      string `env:"PATH_PREFIX,default=/v1"`
	PageSizeDefault int    `env:"PAGE_SIZE_DEFAULT,default=100"`
	PageSizeMax     int    `env:"PAGE_SIZE_MAX,default=500"`
}

type SecurityConfig struct {
	RateLimitRequests  int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow    Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
	TokenPurgeInterval Duration `env:"TOKEN_PURGE_INTERVAL,default=1h"` // 0 disables the janitor
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// URL returns the connection string in URL form, as required by the migration driver
func (p PostgresConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}

	return u.String()
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Validate checks the values envconfig cannot express in tags
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.PathPrefix, "/") {
		return fmt.Errorf("API_PATH_PREFIX must start with '/', got %q", c.API.PathPrefix)
	}

	if c.API.PageSizeDefault <= 0 || c.API.PageSizeMax <= 0 {
		return errors.New("API page sizes must be positive")
	}

	if c.API.PageSizeDefault > c.API.PageSizeMax {
		return fmt.Errorf("API_PAGE_SIZE_DEFAULT (%d) exceeds API_PAGE_SIZE_MAX (%d)",
			c.API.PageSizeDefault, c.API.PageSizeMax)
	}

	if c.Security.RateLimitRequests <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS must be positive")
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		return errors.New("CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	if c.Security.TokenPurgeInterval.Duration < 0 {
		return errors.New("TOKEN_PURGE_INTERVAL must not be negative")
	}

	return nil
}

// Load loads configuration from environment variables, reading a .env file first when one exists
func Load(ctx context.Context) (*Config, error) {
	// a missing .env is the normal case outside local development
	_ = godotenv.Load()

	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith loads configuration from the given lookuper
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var config Config

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &config,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
