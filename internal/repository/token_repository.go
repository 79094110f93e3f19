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

const tokenSelect = `SELECT id, user_id, access_token, expires_in, expires_at, created_at FROM access_tokens`

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new access token repository
func NewTokenRepository(db *database.Postgres) TokenRepository {
	return &tokenRepository{db: db}
}

// Create stores an access token
func (r *tokenRepository) Create(ctx context.Context, token *domain.AccessToken) error {
	return insertToken(ctx, r.db.DB, token)
}

func insertToken(ctx context.Context, q querier, token *domain.AccessToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	var err error
	if token.ID != 0 {
		_, err = q.ExecContext(ctx, `
			INSERT INTO access_tokens (id, user_id, access_token, expires_in, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, token.ID, token.UserID, token.AccessToken, token.ExpiresIn, token.ExpiresAt, token.CreatedAt)
	} else {
		err = q.QueryRowContext(ctx, `
			INSERT INTO access_tokens (user_id, access_token, expires_in, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, token.UserID, token.AccessToken, token.ExpiresIn, token.ExpiresAt, token.CreatedAt).Scan(&token.ID)
	}

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create token: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// GetByToken retrieves an access token by its bearer string
func (r *tokenRepository) GetByToken(ctx context.Context, token string) (*domain.AccessToken, error) {
	t, err := scanToken(r.db.DB.QueryRowContext(ctx, tokenSelect+` WHERE access_token = $1`, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("access token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return t, nil
}

// Delete deletes an access token by ID
func (r *tokenRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM access_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("token with id %d not found: %w", id, ErrNotFound)
	}

	return nil
}

// DeleteExpired deletes every token that expired before now
func (r *tokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM access_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n, nil
}

func scanToken(row rowScanner) (*domain.AccessToken, error) {
	t := &domain.AccessToken{}
	err := row.Scan(&t.ID, &t.UserID, &t.AccessToken, &t.ExpiresIn, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	return t, nil
}
