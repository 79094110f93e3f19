package service

import (
	"context"
	"fmt"

	"github.com/prperemyshlev/storyboard-api/internal/domain"
	"github.com/prperemyshlev/storyboard-api/internal/dto"
	"github.com/prperemyshlev/storyboard-api/internal/repository"
)

type projectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new project service
func NewProjectService(projectRepo repository.ProjectRepository) ProjectService {
	return &projectService{projectRepo: projectRepo}
}

func (s *projectService) List(ctx context.Context, opts domain.ListOptions) ([]*domain.Project, int, error) {
	projects, total, err := s.projectRepo.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

func (s *projectService) Get(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// Create validates the request and persists a new project
func (s *projectService) Create(ctx context.Context, req *dto.CreateProjectRequest) (*domain.Project, error) {
	if err := ValidateProjectName(req.Name); err != nil {
		return nil, err
	}
	if err := ValidateDescription(req.Description); err != nil {
		return nil, err
	}

	project := &domain.Project{
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// Update applies the fields present in req. Nothing is written when any of them is invalid.
func (s *projectService) Update(ctx context.Context, id int64, req *dto.UpdateProjectRequest) (*domain.Project, error) {
	if req.ID != nil && *req.ID != id {
		return nil, ErrIDMismatch
	}
	if req.Name != nil {
		if err := ValidateProjectName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if err := ValidateDescription(*req.Description); err != nil {
			return nil, err
		}
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if req.Name == nil && req.Description == nil {
		return project, nil
	}
	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

func (s *projectService) Delete(ctx context.Context, id int64) error {
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}
