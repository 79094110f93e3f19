package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prperemyshlev/storyboard-api/internal/domain"
	"github.com/prperemyshlev/storyboard-api/pkg/database"
)

// FixtureLoader writes domain entities straight into the database,
// bypassing the HTTP API. Used to seed test databases.
type FixtureLoader struct {
	db *database.Postgres
}

// NewFixtureLoader creates a fixture loader on db
func NewFixtureLoader(db *database.Postgres) *FixtureLoader {
	return &FixtureLoader{db: db}
}

// Insert stores every entity in a single transaction. Either all of them
// are committed or none is. Supported types are *domain.User,
// *domain.AccessToken and *domain.Project.
func (l *FixtureLoader) Insert(ctx context.Context, entities ...any) error {
	tx, err := l.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin fixture transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	touched := make(map[string]bool)
	for i, e := range entities {
		var table string
		switch v := e.(type) {
		case *domain.User:
			table, err = "users", insertUser(ctx, tx, v)
		case *domain.AccessToken:
			table, err = "access_tokens", insertToken(ctx, tx, v)
		case *domain.Project:
			table, err = "projects", insertProject(ctx, tx, v)
		default:
			return fmt.Errorf("fixture %d (%T): %w", i, e, ErrUnsupportedFixture)
		}
		if err != nil {
			return fmt.Errorf("fixture %d (%T): %w", i, e, err)
		}
		touched[table] = true
	}

	// rows inserted with explicit ids leave the sequences behind
	for table := range touched {
		if err := resyncSequence(ctx, tx, table); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fixtures: %w", err)
	}

	return nil
}

func resyncSequence(ctx context.Context, tx *sql.Tx, table string) error {
	stmt := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %[1]s`,
		table,
	)
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to resync %s id sequence: %w", table, err)
	}

	return nil
}
