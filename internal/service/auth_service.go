package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prperemyshlev/storyboard-api/internal/domain"
	"github.com/prperemyshlev/storyboard-api/internal/repository"
)

// authService implements AuthService interface
type authService struct {
	userRepo         repository.UserRepository
	tokenRepo        repository.TokenRepository
	blacklistService *TokenBlacklistService
	logger           *zap.Logger
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	blacklistService *TokenBlacklistService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		tokenRepo:        tokenRepo,
		blacklistService: blacklistService,
		logger:           logger,
		now:              time.Now,
	}
}

// Authenticate resolves a bearer token to its owner. Expiry is checked
// here, against the clock, on every call.
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, *domain.AccessToken, error) {
	if token == "" {
		return nil, nil, ErrUnauthorized
	}

	revoked, err := s.blacklistService.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if revoked {
		return nil, nil, ErrTokenRevoked
	}

	accessToken, err := s.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown access token", ErrUnauthorized)
		}
		return nil, nil, fmt.Errorf("failed to get access token: %w", err)
	}

	if accessToken.IsExpired(s.now()) {
		return nil, nil, ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, accessToken.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: token owner no longer exists", ErrUnauthorized)
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.Int64("user_id", user.ID), zap.Error(err))
	} else {
		now := s.now().UTC()
		user.LastLogin = &now
	}

	return user, accessToken, nil
}

// Revoke blacklists the token for the rest of its lifetime and deletes it
func (s *authService) Revoke(ctx context.Context, token *domain.AccessToken) error {
	if err := s.blacklistService.AddToken(ctx, token.AccessToken, token.ExpiresAt.Sub(s.now())); err != nil {
		return err
	}

	if err := s.tokenRepo.Delete(ctx, token.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete access token: %w", err)
	}

	return nil
}

// PurgeExpired deletes every access token past its expiry
func (s *authService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", err)
	}

	return n, nil
}
