package apitest

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/prperemyshlev/storyboard-api/internal/app"
	"github.com/prperemyshlev/storyboard-api/pkg/database"
	"github.com/prperemyshlev/storyboard-api/pkg/observability"
)

// testInfrastructure hands the harness connections to the application.
// Shutdown leaves them open; the harness closes them itself.
type testInfrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ app.Infrastructure = (*testInfrastructure)(nil)

func newTestInfrastructure(pg *database.Postgres, rdb *database.Redis, logger *zap.Logger) (*testInfrastructure, error) {
	meterProvider, metricsHandler, err := observability.InitTelemetry("storyboard-api-test")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	return &testInfrastructure{
		postgres:       pg,
		redis:          rdb,
		logger:         logger,
		metricsHandler: metricsHandler,
		meterProvider:  meterProvider,
	}, nil
}

func (i *testInfrastructure) Postgres() *database.Postgres { return i.postgres }
func (i *testInfrastructure) Redis() *database.Redis { return i.redis }
func (i *testInfrastructure) Logger() *zap.Logger { return i.logger }
func (i *testInfrastructure) MetricsHandler() http.Handler { return i.metricsHandler }
func (i *testInfrastructure) MeterProvider() *metric.MeterProvider { return i.meterProvider }

func (i *testInfrastructure) Shutdown(ctx context.Context) error {
	return i.meterProvider.Shutdown(ctx)
}
