package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prperemyshlev/storyboard-api/internal/config"
	"github.com/prperemyshlev/storyboard-api/internal/dto"
	"github.com/prperemyshlev/storyboard-api/internal/service"
)

// ProjectHandler handles project requests
type ProjectHandler struct {
	projectService service.ProjectService
	api            config.APIConfig
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService service.ProjectService, api config.APIConfig) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		api:            api,
	}
}

// List handles GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	opts, err := parseListOptions(c, h.api)
	if err != nil {
		respondError(c, err)
		return
	}

	projects, total, err := h.projectService.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	setPageHeaders(c, opts, total)
	c.JSON(http.StatusOK, projects)
}

// Get handles GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// Update handles PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// Delete handles DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
