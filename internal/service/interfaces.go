package service

import (
	"context"

	"github.com/prperemyshlev/storyboard-api/internal/domain"
	"github.com/prperemyshlev/storyboard-api/internal/dto"
)

// ProjectService defines project CRUD operations
type ProjectService interface {
	List(ctx context.Context, opts domain.ListOptions) ([]*domain.Project, int, error)
	Get(ctx context.Context, id int64) (*domain.Project, error)
	Create(ctx context.Context, req *dto.CreateProjectRequest) (*domain.Project, error)
	Update(ctx context.Context, id int64, req *dto.UpdateProjectRequest) (*domain.Project, error)
	Delete(ctx context.Context, id int64) error
}

// UserService defines read access to users
type UserService interface {
	List(ctx context.Context, opts domain.ListOptions) ([]*domain.User, int, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
}

// AuthService resolves and revokes bearer tokens
type AuthService interface {
	Authenticate(ctx context.Context, token string) (*domain.User, *domain.AccessToken, error)
	Revoke(ctx context.Context, token *domain.AccessToken) error
	PurgeExpired(ctx context.Context) (int64, error)
}
