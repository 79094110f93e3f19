package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prperemyshlev/storyboard-api/internal/service"
)

// AuthHandler handles requests about the caller's own credentials
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, user)
}

// RevokeToken handles DELETE /auth/token. The presented token stops working immediately.
func (h *AuthHandler) RevokeToken(c *gin.Context) {
	token, ok := CurrentToken(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	if err := h.authService.Revoke(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
