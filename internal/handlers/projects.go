package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mockforge/mockforge/internal/services"
	"github.com/mockforge/mockforge/internal/types"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProjectHandler handles project management routes
type ProjectHandler struct {
	DB *gorm.DB
}

type createProjectRequest struct {
	Name string `json:"name"`
}

// CreateProject handles POST /api/projects
// @Summary Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param body body createProjectRequest true "Project name"
// @Success 201 {object} models.Project
// @Failure 400 {object} utils.ErrorEnvelope
// @Router /projects [post]
func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	var req createProjectRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return types.NewInvalidJSON()
	}
	if strings.TrimSpace(req.Name) == "" {
		return &types.APIError{
			Status:  fiber.StatusBadRequest,
			Message: "Project name is required",
		}
	}

	project, err := services.CreateProject(h.DB, strings.TrimSpace(req.Name))
	if err != nil {
		log.Error().Err(err).Msg("project create failed")
		return types.NewInternalError()
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

// ListProjects handles GET /api/projects
// @Summary List all projects
// @Tags Projects
// @Produce json
// @Success 200 {array} models.Project
// @Router /projects [get]
func (h *ProjectHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := services.GetProjects(h.DB)
	if err != nil {
		log.Error().Err(err).Msg("project listing failed")
		return types.NewInternalError()
	}
	return c.Status(fiber.StatusOK).JSON(projects)
}

// GetProject handles GET /api/projects/:projectId
// @Summary Get a project with its resources
// @Tags Projects
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} utils.ErrorEnvelope
// @Router /projects/{projectId} [get]
func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	id := c.Params("projectId")

	project, err := services.GetProject(h.DB, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return &types.APIError{
				Status:  fiber.StatusNotFound,
				Message: "Project not found",
			}
		}
		log.Error().Err(err).Str("project", id).Msg("project lookup failed")
		return types.NewInternalError()
	}

	return c.Status(fiber.StatusOK).JSON(project)
}

// DeleteProject handles DELETE /api/projects/:projectId
// @Summary Delete a project and everything under it
// @Tags Projects
// @Param projectId path string true "Project ID"
// @Success 204
// @Failure 404 {object} utils.ErrorEnvelope
// @Router /projects/{projectId} [delete]
func (h *ProjectHandler) DeleteProject(c *fiber.Ctx) error {
	id := c.Params("projectId")

	if err := services.DeleteProject(h.DB, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return &types.APIError{
				Status:  fiber.StatusNotFound,
				Message: "Project not found",
			}
		}
		log.Error().Err(err).Str("project", id).Msg("project delete failed")
		return types.NewInternalError()
	}

	return c.SendStatus(fiber.StatusNoContent)
}
