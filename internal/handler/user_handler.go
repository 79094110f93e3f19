package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prperemyshlev/storyboard-api/internal/config"
	"github.com/prperemyshlev/storyboard-api/internal/service"
)

// UserHandler handles user requests
type UserHandler struct {
	userService service.UserService
	api         config.APIConfig
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService service.UserService, api config.APIConfig) *UserHandler {
	return &UserHandler{
		userService: userService,
		api:         api,
	}
}

// List handles GET /users
func (h *UserHandler) List(c *gin.Context) {
	opts, err := parseListOptions(c, h.api)
	if err != nil {
		respondError(c, err)
		return
	}

	users, total, err := h.userService.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	setPageHeaders(c, opts, total)
	c.JSON(http.StatusOK, users)
}

// Get handles GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
