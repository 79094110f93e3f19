package apitest

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prperemyshlev/storyboard-api/internal/config"
	"github.com/prperemyshlev/storyboard-api/internal/domain"
	"github.com/prperemyshlev/storyboard-api/pkg/database"
)

func TestDatabaseLifecycle(t *testing.T) {
	var (
		name  string
		admin config.PostgresConfig
	)

	t.Run("provision", func(t *testing.T) {
		h := New(t)
		name, admin = h.DatabaseName(), h.admin

		assert.Regexp(t, `^storyboard_test_db_[0-9a-f_]{36}$`, name)

		version, dirty, err := database.MigrationVersion(h.Config.Postgres.URL())
		require.NoError(t, err)
		assert.False(t, dirty)
		assert.NotZero(t, version)
	})

	if name == "" {
		t.Skip("database was not provisioned")
	}

	assert.False(t, databaseExists(t, admin, name), "database must be dropped when the test ends")
}

func databaseExists(t *testing.T, admin config.PostgresConfig, name string) bool {
	t.Helper()

	pg, err := database.NewPostgres(context.Background(), admin.DSN())
	require.NoError(t, err)
	defer pg.Close()

	var exists bool
	err = pg.DB.QueryRowContext(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestStateIsResetWhenTestEnds(t *testing.T) {
	endings := map[string]func(t *testing.T){
		"finished": func(*testing.T) {},
		"stopped":  func(t *testing.T) { t.SkipNow() },
	}

	for name, end := range endings {
		var h *Harness

		t.Run(name, func(t *testing.T) {
			h = New(t)
			h.Configure(func(cfg *config.Config) { cfg.API.PathPrefix = "/v2" })
			h.DefaultHeaders.Set("Authorization", "Bearer stale")
			end(t)
		})

		if h == nil {
			t.Skip("database was not provisioned")
		}

		assert.Nil(t, h.App, name)
		assert.Empty(t, h.DefaultHeaders, name)
		assert.Equal(t, DefaultPathPrefix, h.Config.API.PathPrefix, name)
		assert.Nil(t, h.Postgres, name)
	}
}

func TestSetupDatabaseAgain(t *testing.T) {
	var (
		first, second string
		admin         config.PostgresConfig
	)

	t.Run("switch", func(t *testing.T) {
		ctx := context.Background()
		h := New(t)
		firstPool := h.Postgres
		first, admin = h.DatabaseName(), h.admin

		h.SetupDatabase()
		second = h.DatabaseName()

		require.NotEqual(t, first, second)
		require.NotSame(t, firstPool, h.Postgres)
		assert.Equal(t, second, h.Config.Postgres.DBName)

		// the first pool stays open until its own database is dropped
		require.NoError(t, firstPool.Ping(ctx))
		require.NoError(t, h.Postgres.Ping(ctx))

		h.MakeApp(h.Config)
		var projects []map[string]any
		_, err := h.GetJSON("/projects", &projects, RequestOptions{})
		require.NoError(t, err)
		assert.Empty(t, projects)
	})

	if first == "" {
		t.Skip("database was not provisioned")
	}

	assert.False(t, databaseExists(t, admin, first))
	assert.False(t, databaseExists(t, admin, second))
}

func TestEveryHarnessGetsItsOwnDatabase(t *testing.T) {
	a := New(t)
	b := New(t)
	assert.NotEqual(t, a.DatabaseName(), b.DatabaseName())

	a.LoadData(&domain.Project{Name: "only-in-a"})

	var count int
	require.NoError(t, b.Postgres.DB.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&count))
	assert.Zero(t, count)
}

func TestBuildAccessToken(t *testing.T) {
	h := New(t)
	h.LoadData(&domain.User{ID: 1, Username: "superuser", Email: "superuser@example.com", FullName: "Super User", IsSuperuser: true})

	before := time.Now()
	valid := h.BuildAccessToken(1, false)
	expired := h.BuildAccessToken(1, true)

	assert.NotEqual(t, valid.AccessToken, expired.AccessToken)
	assert.Equal(t, 3600, valid.ExpiresIn)
	assert.Equal(t, -3600, expired.ExpiresIn)
	assert.WithinDuration(t, before.Add(time.Hour), valid.ExpiresAt, 5*time.Second)
	assert.WithinDuration(t, before.Add(-time.Hour), expired.ExpiresAt, 5*time.Second)

	h.Authorize(valid)
	_, err := h.GetJSON("/auth/me", nil, RequestOptions{})
	require.NoError(t, err)

	h.Authorize(expired)
	resp, err := h.GetJSON("/auth/me", nil, RequestOptions{ExpectErrors: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}

func TestLoadDataKeepsExplicitIDs(t *testing.T) {
	h := New(t)

	entities := h.LoadData(
		&domain.User{ID: 5, Username: "five", Email: "five@example.com"},
		&domain.Project{ID: 10, Name: "seeded"},
	)
	require.Len(t, entities, 2)
	assert.Equal(t, int64(10), entities[1].(*domain.Project).ID)

	// the sequence continues after the explicit id
	created := &domain.Project{Name: "next"}
	h.LoadData(created)
	assert.Equal(t, int64(11), created.ID)
}

func TestConfigureRebuildsApp(t *testing.T) {
	h := New(t)
	h.LoadData(&domain.User{ID: 1, Username: "superuser", Email: "su@example.com", IsSuperuser: true})
	h.Authorize(h.BuildAccessToken(1, false))

	first := h.App
	h.Configure(func(cfg *config.Config) { cfg.API.PathPrefix = "/v2" })
	assert.NotSame(t, first, h.App)

	v2 := "/v2"
	_, err := h.GetJSON("/projects", nil, RequestOptions{PathPrefix: &v2})
	require.NoError(t, err)

	resp, err := h.GetJSON("/projects", nil, RequestOptions{ExpectErrors: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}
