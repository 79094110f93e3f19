package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/storyboard-api/internal/domain"
	"github.com/prperemyshlev/storyboard-api/pkg/database"
)

const projectSelect = `SELECT id, name, description, created_at, updated_at FROM projects`

var projectColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"description": "description",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

type projectRepository struct {
	db *database.Postgres
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *database.Postgres) ProjectRepository {
	return &projectRepository{db: db}
}

// Create inserts a project and fills in its id and timestamps
func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	return insertProject(ctx, r.db.DB, project)
}

func insertProject(ctx context.Context, q querier, project *domain.Project) error {
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = now
	}

	var err error
	if project.ID != 0 {
		_, err = q.ExecContext(ctx, `
			INSERT INTO projects (id, name, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, project.ID, project.Name, project.Description, project.CreatedAt, project.UpdatedAt)
	} else {
		err = q.QueryRowContext(ctx, `
			INSERT INTO projects (name, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, project.Name, project.Description, project.CreatedAt, project.UpdatedAt).Scan(&project.ID)
	}

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("project %q: %w", project.Name, ErrDuplicateProjectName)
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID
func (r *projectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := scanProject(r.db.DB.QueryRowContext(ctx, projectSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project with id %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project by id: %w", err)
	}

	return project, nil
}

// List returns one page of projects and the total number of matches
func (r *projectRepository) List(ctx context.Context, opts domain.ListOptions) ([]*domain.Project, int, error) {
	q, err := buildListQuery(projectColumns, opts)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.DB.QueryRowContext(ctx, q.countSQL("projects"), q.args...).Scan(&total); err != nil {
		if isDataException(err) {
			return nil, 0, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	rows, err := r.db.DB.QueryContext(ctx, q.selectSQL(projectSelect), q.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*domain.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, total, nil
}

// Update writes name and description and bumps updated_at
func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	project.UpdatedAt = time.Now().UTC()

	err := r.db.DB.QueryRowContext(ctx, `
		UPDATE projects
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
		RETURNING created_at
	`, project.Name, project.Description, project.UpdatedAt, project.ID).Scan(&project.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("project with id %d not found: %w", project.ID, ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("project %q: %w", project.Name, ErrDuplicateProjectName)
		}
		return fmt.Errorf("failed to update project: %w", err)
	}

	return nil
}

// Delete deletes a project by ID
func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("project with id %d not found: %w", id, ErrNotFound)
	}

	return nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	p := &domain.Project{}
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	return p, nil
}
