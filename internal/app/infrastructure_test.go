package app_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prperemyshlev/storyboard-api/internal/apitest"
	"github.com/prperemyshlev/storyboard-api/internal/app"
	"github.com/prperemyshlev/storyboard-api/internal/config"
	"github.com/prperemyshlev/storyboard-api/pkg/database"
)

// serverConfig points a server configuration at the harness database and Redis
func serverConfig(t *testing.T, h *apitest.Harness) config.Config {
	t.Helper()

	cfg := *h.Config

	host, port, err := net.SplitHostPort(h.Redis.Client.Options().Addr)
	require.NoError(t, err)
	cfg.Redis.Host, cfg.Redis.Port = host, port

	return cfg
}

func TestNewInfrastructure(t *testing.T) {
	h := apitest.New(t)
	ctx := context.Background()

	infra, err := app.NewInfrastructure(ctx, serverConfig(t, h))
	require.NoError(t, err)

	require.NoError(t, infra.Postgres().Ping(ctx))
	require.NoError(t, infra.Redis().Ping(ctx))
	assert.NotNil(t, infra.MetricsHandler())

	require.NoError(t, infra.Shutdown(ctx))
	assert.Error(t, infra.Postgres().Ping(ctx))
}

func TestNewInfrastructureChecksSchema(t *testing.T) {
	h := apitest.New(t)
	ctx := context.Background()
	cfg := serverConfig(t, h)

	require.NoError(t, database.MigrateDown(cfg.Postgres.URL(), 1))

	_, err := app.NewInfrastructure(ctx, cfg)
	require.ErrorIs(t, err, database.ErrSchemaOutdated)

	cfg.Postgres.AutoMigrate = true
	infra, err := app.NewInfrastructure(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = infra.Shutdown(ctx) })

	latest, err := database.LatestVersion()
	require.NoError(t, err)

	version, dirty, err := database.MigrationVersion(cfg.Postgres.URL())
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, latest, version)
}

func TestNewInfrastructureUnreachableRedis(t *testing.T) {
	h := apitest.New(t)
	cfg := serverConfig(t, h)
	cfg.Redis.Port = "1"

	_, err := app.NewInfrastructure(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
