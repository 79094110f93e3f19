package apitest

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"

	"github.com/prperemyshlev/storyboard-api/internal/config"
)

// DefaultPathPrefix is prepended to request paths unless RequestOptions.PathPrefix says otherwise
const DefaultPathPrefix = "/v1"

// adminEnvPrefix namespaces the connection settings of the server that hosts test databases,
// e.g. TEST_POSTGRES_HOST
const adminEnvPrefix = "TEST_"

// TestConfig returns a fresh application configuration for tests.
// The expired token janitor is off and the write rate limit is generous.
func TestConfig() *config.Config {
	cfg, err := config.LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":                  "test",
		"API_PATH_PREFIX":      DefaultPathPrefix,
		"RATE_LIMIT_REQUESTS":  "1000",
		"TOKEN_PURGE_INTERVAL": "0",
	}))
	if err != nil {
		// only reachable if the defaults themselves are broken
		panic(fmt.Sprintf("apitest: invalid default configuration: %v", err))
	}

	return cfg
}

type adminConfig struct {
	Postgres config.PostgresConfig `env:",prefix=POSTGRES_"`
}

// LoadAdminConfig reads the TEST_POSTGRES_* settings of the server on which
// per-test databases are created. The maintenance database "postgres" is used
// unless TEST_POSTGRES_DB names another one.
func LoadAdminConfig(ctx context.Context, lookuper envconfig.Lookuper) (config.PostgresConfig, error) {
	var cfg adminConfig

	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target: &cfg,
		Lookuper: envconfig.MultiLookuper(
			envconfig.PrefixLookuper(adminEnvPrefix, lookuper),
			envconfig.MapLookuper(map[string]string{"POSTGRES_DB": "postgres"}),
		),
	})
	if err != nil {
		return config.PostgresConfig{}, fmt.Errorf("failed to load test database configuration: %w", err)
	}

	return cfg.Postgres, nil
}
