package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prperemyshlev/storyboard-api/internal/domain"
	"github.com/prperemyshlev/storyboard-api/internal/repository"
)

type fakeProjectRepo struct {
	mu       sync.Mutex
	nextID   int64
	projects map[int64]domain.Project
	writes   int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{nextID: 1, projects: make(map[int64]domain.Project)}
}

func (r *fakeProjectRepo) Create(_ context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.projects {
		if existing.Name == p.Name {
			return repository.ErrDuplicateProjectName
		}
	}
	p.ID = r.nextID
	r.nextID++
	r.projects[p.ID] = *p
	r.writes++
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id int64) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %d: %w", id, repository.ErrNotFound)
	}
	return &p, nil
}

func (r *fakeProjectRepo) List(_ context.Context, _ domain.ListOptions) ([]*domain.Project, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Project, 0, len(r.projects))
	for id := int64(1); id < r.nextID; id++ {
		if p, ok := r.projects[id]; ok {
			out = append(out, &p)
		}
	}
	return out, len(out), nil
}

func (r *fakeProjectRepo) Update(_ context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.projects[p.ID] = *p
	r.writes++
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.projects, id)
	r.writes++
	return nil
}

type fakeUserRepo struct {
	users      map[int64]*domain.User
	lastLogins map[int64]int
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int64]*domain.User), lastLogins: make(map[int64]int)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) List(_ context.Context, _ domain.ListOptions) ([]*domain.User, int, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	r.lastLogins[id]++
	return nil
}

type fakeTokenRepo struct {
	tokens map[string]*domain.AccessToken
}

func newFakeTokenRepo(tokens ...*domain.AccessToken) *fakeTokenRepo {
	r := &fakeTokenRepo{tokens: make(map[string]*domain.AccessToken)}
	for _, t := range tokens {
		r.tokens[t.AccessToken] = t
	}
	return r
}

func (r *fakeTokenRepo) Create(_ context.Context, t *domain.AccessToken) error {
	r.tokens[t.AccessToken] = t
	return nil
}

func (r *fakeTokenRepo) GetByToken(_ context.Context, token string) (*domain.AccessToken, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (r *fakeTokenRepo) Delete(_ context.Context, id int64) error {
	for k, t := range r.tokens {
		if t.ID == id {
			delete(r.tokens, k)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range r.tokens {
		if t.IsExpired(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}
