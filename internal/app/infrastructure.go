package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/prperemyshlev/storyboard-api/internal/config"
	"github.com/prperemyshlev/storyboard-api/pkg/database"
	"github.com/prperemyshlev/storyboard-api/pkg/observability"
)

// Infrastructure is what the application needs from the outside world.
// The server owns its connections; the test harness shares its own.
type Infrastructure interface {
	Postgres() *database.Postgres
	Redis() *database.Redis
	Logger() *zap.Logger
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &infrastructure{}

// NewInfrastructure connects to PostgreSQL and Redis within ctx and refuses
// to start on a schema that is behind the embedded migrations. With
// POSTGRES_AUTO_MIGRATE set, pending migrations are applied first.
func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	i := &infrastructure{logger: logger}
	if err := i.connect(ctx, cfg); err != nil {
		return nil, errors.Join(err, i.close())
	}

	return i, nil
}

func (i *infrastructure) connect(ctx context.Context, cfg config.Config) error {
	postgres, err := database.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	i.postgres = postgres

	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(cfg.Postgres.URL()); err != nil {
			return err
		}
	}

	version, err := database.CheckSchema(cfg.Postgres.URL())
	if err != nil {
		return err
	}
	i.logger.Info("Database schema checked",
		zap.String("database", cfg.Postgres.DBName),
		zap.Uint("version", version),
	)

	redis, err := database.NewRedis(ctx, cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	i.redis = redis

	meterProvider, metricsHandler, err := observability.InitTelemetry(serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.meterProvider = meterProvider
	i.metricsHandler = metricsHandler

	return nil
}

func (i *infrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	return errors.Join(i.close(), observability.Shutdown(ctx, i.meterProvider, i.logger))
}

// close releases the connections opened so far
func (i *infrastructure) close() error {
	var errs []error

	if i.postgres != nil {
		errs = append(errs, i.postgres.Close())
	}
	if i.redis != nil {
		errs = append(errs, i.redis.Close())
	}

	return errors.Join(errs...)
}
