package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/prperemyshlev/storyboard-api/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, opts domain.ListOptions) ([]*domain.User, int, error)
	UpdateLastLogin(ctx context.Context, id int64) error
}

// TokenRepository defines methods for access token operations
type TokenRepository interface {
	Create(ctx context.Context, token *domain.AccessToken) error
	GetByToken(ctx context.Context, token string) (*domain.AccessToken, error)
	Delete(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ProjectRepository defines methods for project operations
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, opts domain.ListOptions) ([]*domain.Project, int, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id int64) error
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
