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

const userSelect = `SELECT id, username, email, full_name, is_superuser, last_login, created_at, updated_at FROM users`

var userColumns = map[string]string{
	"id":           "id",
	"username":     "username",
	"email":        "email",
	"full_name":    "full_name",
	"is_superuser": "is_superuser",
	"created_at":   "created_at",
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return insertUser(ctx, r.db.DB, user)
}

// insertUser keeps a caller supplied id, otherwise lets the sequence assign one
func insertUser(ctx context.Context, q querier, user *domain.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	var err error
	if user.ID != 0 {
		_, err = q.ExecContext(ctx, `
			INSERT INTO users (id, username, email, full_name, is_superuser, last_login, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, user.ID, user.Username, user.Email, user.FullName, user.IsSuperuser, user.LastLogin, user.CreatedAt, user.UpdatedAt)
	} else {
		err = q.QueryRowContext(ctx, `
			INSERT INTO users (username, email, full_name, is_superuser, last_login, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, user.Username, user.Email, user.FullName, user.IsSuperuser, user.LastLogin, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
	}

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Username, ErrDuplicateUser)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := scanUser(r.db.DB.QueryRowContext(ctx, userSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// List returns one page of users and the total number of matches
func (r *userRepository) List(ctx context.Context, opts domain.ListOptions) ([]*domain.User, int, error) {
	q, err := buildListQuery(userColumns, opts)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.DB.QueryRowContext(ctx, q.countSQL("users"), q.args...).Scan(&total); err != nil {
		if isDataException(err) {
			return nil, 0, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := r.db.DB.QueryContext(ctx, q.selectSQL(userSelect), q.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, total, nil
}

// UpdateLastLogin stamps the last time the user authenticated
func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	result, err := r.db.DB.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %d not found: %w", id, ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var lastLogin sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.IsSuperuser,
		&lastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}

	return user, nil
}
