// Package apitest drives the API in-process against a throwaway PostgreSQL
// database and an in-memory Redis. Each Harness owns one freshly migrated
// database which is dropped when the test ends.
package apitest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/prperemyshlev/storyboard-api/internal/app"
	"github.com/prperemyshlev/storyboard-api/internal/config"
	"github.com/prperemyshlev/storyboard-api/internal/domain"
	"github.com/prperemyshlev/storyboard-api/internal/repository"
	"github.com/prperemyshlev/storyboard-api/pkg/database"
)

const (
	testDBPrefix     = "storyboard_test_db_"
	adminPingTimeout = 3 * time.Second

	// tokenLifetime is how far BuildAccessToken moves expires_at from now
	tokenLifetime = 3600
)

// Harness is a per-test functional test environment
type Harness struct {
	t testing.TB

	// Config is what MakeApp builds the application from. Modify it through Configure.
	Config *config.Config
	// DefaultHeaders are sent with every request unless overridden per call
	DefaultHeaders http.Header

	App      *app.App
	Postgres *database.Postgres
	Redis    *database.Redis
	Logger   *zap.Logger

	admin   config.PostgresConfig
	dbName  string
	handler http.Handler
}

// New provisions a database, an in-memory Redis and a running application
// for t. The test is skipped in -short mode or when the TEST_POSTGRES_*
// server cannot be reached; every later provisioning failure is fatal.
func New(t testing.TB) *Harness {
	t.Helper()

	if testing.Short() {
		t.Skip("functional test needs PostgreSQL, skipped in -short mode")
	}

	admin, err := LoadAdminConfig(context.Background(), envconfig.OsLookuper())
	if err != nil {
		t.Fatalf("apitest: %v", err)
	}

	if err := ping(admin); err != nil {
		t.Skipf("apitest: PostgreSQL at %s:%s unavailable: %v", admin.Host, admin.Port, err)
	}

	gin.SetMode(gin.TestMode)

	h := &Harness{
		t:              t,
		Config:         TestConfig(),
		DefaultHeaders: make(http.Header),
		Logger:         zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel)),
		admin:          admin,
	}

	h.SetupDatabase()
	h.setupRedis()
	h.MakeApp(h.Config)

	t.Cleanup(h.reset)

	return h
}

// SetupDatabase creates a uniquely named database, migrates it to the
// latest schema and schedules its removal. Calling it again switches the
// harness to a new database; every database keeps its own pool until its
// cleanup runs.
func (h *Harness) SetupDatabase() {
	h.t.Helper()
	ctx := context.Background()

	name := testDBPrefix + strings.ReplaceAll(uuid.NewString(), "-", "_")

	admin, err := database.NewPostgres(ctx, h.admin.DSN())
	if err != nil {
		h.t.Fatalf("apitest: connect to admin database: %v", err)
	}
	defer admin.Close()

	if _, err := admin.DB.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		h.t.Fatalf("apitest: create database %s: %v", name, err)
	}

	var pg *database.Postgres
	h.t.Cleanup(func() { h.dropDatabase(name, pg) })

	cfg := h.admin
	cfg.DBName = name

	if err := database.Migrate(cfg.URL()); err != nil {
		h.t.Fatalf("apitest: migrate %s: %v", name, err)
	}

	pg, err = database.NewPostgres(ctx, cfg.DSN())
	if err != nil {
		h.t.Fatalf("apitest: connect to %s: %v", name, err)
	}

	h.Postgres = pg
	h.dbName = name
	h.Config.Postgres = cfg
}

// DatabaseName returns the name of the database owned by this harness
func (h *Harness) DatabaseName() string {
	return h.dbName
}

// LoadData inserts entities directly into the database in one transaction
// and returns them with their ids filled in
func (h *Harness) LoadData(entities ...any) []any {
	h.t.Helper()

	if err := repository.NewFixtureLoader(h.Postgres).Insert(context.Background(), entities...); err != nil {
		h.t.Fatalf("apitest: load data: %v", err)
	}

	return entities
}

// BuildAccessToken stores a token for userID that expires an hour from now,
// or expired an hour ago. The user is not looked up.
func (h *Harness) BuildAccessToken(userID int64, expired bool) *domain.AccessToken {
	h.t.Helper()

	expiresIn := tokenLifetime
	if expired {
		expiresIn = -tokenLifetime
	}

	now := time.Now().UTC()
	token := &domain.AccessToken{
		UserID:      userID,
		AccessToken: uuid.NewString(),
		ExpiresIn:   expiresIn,
		ExpiresAt:   now.Add(time.Duration(expiresIn) * time.Second),
		CreatedAt:   now,
	}

	h.LoadData(token)
	return token
}

// Authorize makes token the default bearer credential
func (h *Harness) Authorize(token *domain.AccessToken) {
	h.DefaultHeaders.Set("Authorization", "Bearer "+token.AccessToken)
}

// MakeApp builds the application from cfg on top of the harness database
// and Redis, replacing the current one. Nothing listens on a socket.
func (h *Harness) MakeApp(cfg *config.Config) *app.App {
	h.t.Helper()

	h.dropApp()

	infra, err := newTestInfrastructure(h.Postgres, h.Redis, h.Logger)
	if err != nil {
		h.t.Fatalf("apitest: %v", err)
	}

	a, err := app.NewApp(infra, cfg)
	if err != nil {
		h.t.Fatalf("apitest: build application: %v", err)
	}

	h.App = a
	h.handler = a.Router()
	return a
}

// Configure applies fn to the configuration and rebuilds the application.
// The configuration is restored when the test ends.
func (h *Harness) Configure(fn func(*config.Config)) {
	h.t.Helper()

	fn(h.Config)
	h.MakeApp(h.Config)
}

func (h *Harness) setupRedis() {
	h.t.Helper()

	mr := miniredis.RunT(h.t)

	rdb, err := database.NewRedis(context.Background(), mr.Addr(), "", 0)
	if err != nil {
		h.t.Fatalf("apitest: connect to miniredis: %v", err)
	}
	h.t.Cleanup(func() { _ = rdb.Close() })

	h.Redis = rdb
}

// reset runs on every test end regardless of outcome
func (h *Harness) reset() {
	h.dropApp()
	h.Config = TestConfig()
	h.DefaultHeaders = make(http.Header)
}

func (h *Harness) dropApp() {
	if h.App != nil {
		// the test infrastructure leaves postgres and redis to the harness
		if err := h.App.Shutdown(); err != nil {
			h.t.Logf("apitest: shutdown application: %v", err)
		}
	}
	h.App = nil
	h.handler = nil
}

func (h *Harness) dropDatabase(name string, pg *database.Postgres) {
	if pg != nil {
		_ = pg.Close()
		if h.Postgres == pg {
			h.Postgres = nil
		}
	}

	ctx := context.Background()

	admin, err := database.NewPostgres(ctx, h.admin.DSN())
	if err != nil {
		h.t.Errorf("apitest: drop %s: %v", name, err)
		return
	}
	defer admin.Close()

	stmt := fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", pq.QuoteIdentifier(name))
	if _, err := admin.DB.ExecContext(ctx, stmt); err != nil {
		h.t.Errorf("apitest: drop %s: %v", name, err)
	}
}

func ping(cfg config.PostgresConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), adminPingTimeout)
	defer cancel()

	pg, err := database.NewPostgres(ctx, cfg.DSN())
	if err != nil {
		return err
	}

	return pg.Close()
}
