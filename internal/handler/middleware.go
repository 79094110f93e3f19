package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prperemyshlev/storyboard-api/internal/domain"
	"github.com/prperemyshlev/storyboard-api/internal/service"
)

const (
	ctxUser        = "user"
	ctxAccessToken = "access_token"
)

// AuthMiddleware requires a valid bearer token and stores its owner in the context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			respondError(c, err)
			return
		}

		if !authenticate(c, authService, token) {
			return
		}

		c.Next()
	}
}

// OptionalAuthMiddleware authenticates the request when it carries an
// Authorization header and lets anonymous requests through
func OptionalAuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		token, err := bearerToken(c)
		if err != nil {
			respondError(c, err)
			return
		}

		if !authenticate(c, authService, token) {
			return
		}

		c.Next()
	}
}

// SuperuserRequired rejects requests whose user is not a superuser.
// Must run after AuthMiddleware or OptionalAuthMiddleware.
func SuperuserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			respondError(c, service.ErrUnauthorized)
			return
		}

		if !user.IsSuperuser {
			respondError(c, service.ErrForbidden)
			return
		}

		c.Next()
	}
}

// CurrentUser returns the authenticated user, if any
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

// CurrentToken returns the access token the request authenticated with
func CurrentToken(c *gin.Context) (*domain.AccessToken, bool) {
	v, ok := c.Get(ctxAccessToken)
	if !ok {
		return nil, false
	}
	token, ok := v.(*domain.AccessToken)
	return token, ok
}

func authenticate(c *gin.Context, authService service.AuthService, token string) bool {
	user, accessToken, err := authService.Authenticate(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return false
	}

	c.Set(ctxUser, user)
	c.Set(ctxAccessToken, accessToken)
	return true
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", service.ErrUnauthorized
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", service.ErrUnauthorized
	}

	return strings.TrimSpace(token), nil
}
