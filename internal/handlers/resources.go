package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mockforge/mockforge/internal/codegen"
	"github.com/mockforge/mockforge/internal/config"
	"github.com/mockforge/mockforge/internal/faker"
	"github.com/mockforge/mockforge/internal/models"
	"github.com/mockforge/mockforge/internal/services"
	"github.com/mockforge/mockforge/internal/types"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ResourceHandler handles resource management routes
type ResourceHandler struct {
	DB       *gorm.DB
	Registry *faker.Registry
	Config   *config.Config
}

type createResourceRequest struct {
	services.ResourceInput
	Count types.FlexUint64 `json:"count"`
}

type resourceResponse struct {
	Resource    *models.Resource `json:"resource"`
	RecordCount int64            `json:"recordCount"`
}

// CreateResource handles POST /api/projects/:projectId/resources
// @Summary Create a resource and generate its initial record set
// @Tags Resources
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param body body createResourceRequest true "Resource definition"
// @Success 201 {object} resourceResponse
// @Failure 400 {object} utils.ErrorEnvelope
// @Failure 404 {object} utils.ErrorEnvelope
// @Router /projects/{projectId}/resources [post]
func (h *ResourceHandler) CreateResource(c *fiber.Ctx) error {
	projectID := c.Params("projectId")

	if _, err := services.GetProject(h.DB, projectID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return &types.APIError{
				Status:  fiber.StatusNotFound,
				Message: "Project not found",
			}
		}
		log.Error().Err(err).Str("project", projectID).Msg("project lookup failed")
		return types.NewInternalError()
	}

	var req createResourceRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return types.NewInvalidJSON()
	}

	resource, err := services.CreateResource(h.DB, projectID, req.ResourceInput)
	if err != nil {
		if errors.Is(err, services.ErrInvalidName) {
			return &types.APIError{
				Status:  fiber.StatusBadRequest,
				Message: "Resource name must be a lowercase slug (letters, numbers, hyphens)",
			}
		}
		if errors.Is(err, services.ErrInvalidTemplate) {
			return types.NewInvalidJSON()
		}
		log.Error().Err(err).Str("project", projectID).Msg("resource create failed")
		return types.NewInternalError()
	}

	count := h.clampCount(req.Count.Int())
	if err := services.Generate(h.DB, h.Registry, projectID, resource.ID, count); err != nil {
		log.Error().Err(err).Str("resource", resource.ID).Msg("initial generation failed")
		return types.NewInternalError()
	}

	return c.Status(fiber.StatusCreated).JSON(resourceResponse{
		Resource:    resource,
		RecordCount: int64(count),
	})
}

// ListResources handles GET /api/projects/:projectId/resources
// @Summary List a project's resources
// @Tags Resources
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {array} models.Resource
// @Router /projects/{projectId}/resources [get]
func (h *ResourceHandler) ListResources(c *fiber.Ctx) error {
	resources, err := services.GetProjectResources(h.DB, c.Params("projectId"))
	if err != nil {
		log.Error().Err(err).Msg("resource listing failed")
		return types.NewInternalError()
	}
	return c.Status(fiber.StatusOK).JSON(resources)
}

// GetResource handles GET /api/resources/:resourceId
// @Summary Get a resource with its record count
// @Tags Resources
// @Produce json
// @Param resourceId path string true "Resource ID"
// @Success 200 {object} resourceResponse
// @Failure 404 {object} utils.ErrorEnvelope
// @Router /resources/{resourceId} [get]
func (h *ResourceHandler) GetResource(c *fiber.Ctx) error {
	resource, count, err := h.findResource(c)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(resourceResponse{
		Resource:    resource,
		RecordCount: count,
	})
}

// DeleteResource handles DELETE /api/resources/:resourceId
// @Summary Delete a resource and its records
// @Tags Resources
// @Param resourceId path string true "Resource ID"
// @Success 204
// @Failure 404 {object} utils.ErrorEnvelope
// @Router /resources/{resourceId} [delete]
func (h *ResourceHandler) DeleteResource(c *fiber.Ctx) error {
	id := c.Params("resourceId")

	if err := services.DeleteResource(h.DB, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return resourceNotFound()
		}
		log.Error().Err(err).Str("resource", id).Msg("resource delete failed")
		return types.NewInternalError()
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateMethods handles PUT /api/resources/:resourceId/methods
// @Summary Toggle the verbs a resource responds to
// @Tags Resources
// @Accept json
// @Produce json
// @Param resourceId path string true "Resource ID"
// @Param body body map[string]bool true "Allow-flag updates"
// @Success 200 {object} models.Resource
// @Failure 400 {object} utils.ErrorEnvelope
// @Failure 404 {object} utils.ErrorEnvelope
// @Router /resources/{resourceId}/methods [put]
func (h *ResourceHandler) UpdateMethods(c *fiber.Ctx) error {
	var updates map[string]bool
	if err := json.Unmarshal(c.Body(), &updates); err != nil {
		return types.NewInvalidJSON()
	}
	if len(updates) == 0 {
		return &types.APIError{
			Status:  fiber.StatusBadRequest,
			Message: "No method flags provided",
		}
	}

	if invalid := services.ValidateMethodFlags(updates); len(invalid) > 0 {
		sort.Strings(invalid)
		return &types.APIError{
			Status: fiber.StatusBadRequest,
			Message: fmt.Sprintf("Invalid methods: %s. Allowed: allowGet, allowGetById, allowPost, allowPut, allowDelete",
				strings.Join(invalid, ", ")),
		}
	}

	resource, err := services.UpdateMethods(h.DB, c.Params("resourceId"), updates)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return resourceNotFound()
		}
		log.Error().Err(err).Msg("method update failed")
		return types.NewInternalError()
	}

	return c.Status(fiber.StatusOK).JSON(resource)
}

type endpointTemplateRequest struct {
	EndpointTemplate json.RawMessage `json:"endpointTemplate"`
}

// UpdateEndpointTemplate handles PUT /api/resources/:resourceId/endpoint-template
// @Summary Replace the GET-collection response template
// @Tags Resources
// @Accept json
// @Produce json
// @Param resourceId path string true "Resource ID"
// @Param body body endpointTemplateRequest true "New endpoint template"
// @Success 200 {object} models.Resource
// @Failure 400 {object} utils.ErrorEnvelope
// @Failure 404 {object} utils.ErrorEnvelope
// @Router /resources/{resourceId}/endpoint-template [put]
func (h *ResourceHandler) UpdateEndpointTemplate(c *fiber.Ctx) error {
	var req endpointTemplateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return types.NewInvalidJSON()
	}
	if len(req.EndpointTemplate) == 0 || !json.Valid(req.EndpointTemplate) {
		return types.NewInvalidJSON()
	}

	resource, err := services.UpdateEndpointTemplate(h.DB, c.Params("resourceId"), req.EndpointTemplate)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return resourceNotFound()
		}
		log.Error().Err(err).Msg("endpoint template update failed")
		return types.NewInternalError()
	}

	return c.Status(fiber.StatusOK).JSON(resource)
}

type templateRequest struct {
	Template json.RawMessage  `json:"template"`
	Count    types.FlexUint64 `json:"count"`
}

// UpdateTemplate handles PUT /api/resources/:resourceId/template
// @Summary Replace the generation template and regenerate records
// @Tags Resources
// @Accept json
// @Produce json
// @Param resourceId path string true "Resource ID"
// @Param body body templateRequest true "New template and record count"
// @Success 200 {object} resourceResponse
// @Failure 400 {object} utils.ErrorEnvelope
// @Failure 404 {object} utils.ErrorEnvelope
// @Router /resources/{resourceId}/template [put]
func (h *ResourceHandler) UpdateTemplate(c *fiber.Ctx) error {
	var req templateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return types.NewInvalidJSON()
	}
	if len(req.Template) == 0 {
		return &types.APIError{
			Status:  fiber.StatusBadRequest,
			Message: "Template is required",
		}
	}

	id := c.Params("resourceId")
	count := h.clampCount(req.Count.Int())

	err := services.UpdateTemplate(h.DB, h.Registry, id, req.Template, count)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTemplate) {
			return types.NewInvalidJSON()
		}
		if errors.Is(err, services.ErrNotFound) {
			return resourceNotFound()
		}
		log.Error().Err(err).Str("resource", id).Msg("template update failed")
		return types.NewInternalError()
	}

	resource, total, err := services.GetResource(h.DB, id)
	if err != nil {
		log.Error().Err(err).Str("resource", id).Msg("resource reload failed")
		return types.NewInternalError()
	}

	return c.Status(fiber.StatusOK).JSON(resourceResponse{
		Resource:    resource,
		RecordCount: total,
	})
}

type idTypeRequest struct {
	UseIncrementalIDs bool `json:"useIncrementalIds"`
}

// UpdateIDType handles PUT /api/resources/:resourceId/id-type
// @Summary Switch between sequential and random record ids
// @Description Flips the ID strategy and rewrites every existing record's id under the new scheme
// @Tags Resources
// @Accept json
// @Produce json
// @Param resourceId path string true "Resource ID"
// @Param body body idTypeRequest true "ID strategy"
// @Success 200 {object} models.Resource
// @Failure 400 {object} utils.ErrorEnvelope
// @Failure 404 {object} utils.ErrorEnvelope
// @Router /resources/{resourceId}/id-type [put]
func (h *ResourceHandler) UpdateIDType(c *fiber.Ctx) error {
	var req idTypeRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return types.NewInvalidJSON()
	}

	id := c.Params("resourceId")
	if err := services.UpdateIDType(h.DB, id, req.UseIncrementalIDs); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return resourceNotFound()
		}
		log.Error().Err(err).Str("resource", id).Msg("id type update failed")
		return types.NewInternalError()
	}

	resource, _, err := services.GetResource(h.DB, id)
	if err != nil {
		log.Error().Err(err).Str("resource", id).Msg("resource reload failed")
		return types.NewInternalError()
	}

	return c.Status(fiber.StatusOK).JSON(resource)
}

type generateRequest struct {
	Count types.FlexUint64 `json:"count"`
}

// GenerateRecords handles POST /api/resources/:resourceId/generate
// @Summary Regenerate a resource's record set from its template
// @Tags Resources
// @Accept json
// @Produce json
// @Param resourceId path string true "Resource ID"
// @Param body body generateRequest false "Record count"
// @Success 200 {object} resourceResponse
// @Failure 404 {object} utils.ErrorEnvelope
// @Router /resources/{resourceId}/generate [post]
func (h *ResourceHandler) GenerateRecords(c *fiber.Ctx) error {
	var req generateRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return types.NewInvalidJSON()
		}
	}

	resource, _, err := h.findResource(c)
	if err != nil {
		return err
	}

	count := h.clampCount(req.Count.Int())
	if err := services.Generate(h.DB, h.Registry, resource.ProjectID, resource.ID, count); err != nil {
		log.Error().Err(err).Str("resource", resource.ID).Msg("generation failed")
		return types.NewInternalError()
	}

	return c.Status(fiber.StatusOK).JSON(resourceResponse{
		Resource:    resource,
		RecordCount: int64(count),
	})
}

type codeResponse struct {
	Framework string `json:"framework"`
	Code      string `json:"code"`
}

// GetCode handles GET /api/resources/:resourceId/code?framework=express
// @Summary Get a client snippet for the resource's endpoints
// @Tags Resources
// @Produce json
// @Param resourceId path string true "Resource ID"
// @Param framework query string true "express, fastapi or nextjs"
// @Success 200 {object} codeResponse
// @Failure 400 {object} utils.ErrorEnvelope
// @Failure 404 {object} utils.ErrorEnvelope
// @Router /resources/{resourceId}/code [get]
func (h *ResourceHandler) GetCode(c *fiber.Ctx) error {
	resource, _, err := h.findResource(c)
	if err != nil {
		return err
	}

	framework := c.Query("framework", codegen.FrameworkExpress)
	code, genErr := codegen.Snippet(framework, toCodegen(resource), c.BaseURL())
	if genErr != nil {
		return &types.APIError{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Unknown framework %s. Supported: express, fastapi, nextjs", framework),
		}
	}

	return c.Status(fiber.StatusOK).JSON(codeResponse{
		Framework: framework,
		Code:      code,
	})
}

// GetCurl handles GET /api/resources/:resourceId/curl
// @Summary Get runnable curl commands for the resource's enabled verbs
// @Tags Resources
// @Produce json
// @Param resourceId path string true "Resource ID"
// @Success 200 {array} codegen.CurlCommand
// @Failure 404 {object} utils.ErrorEnvelope
// @Router /resources/{resourceId}/curl [get]
func (h *ResourceHandler) GetCurl(c *fiber.Ctx) error {
	resource, _, err := h.findResource(c)
	if err != nil {
		return err
	}

	commands := codegen.CurlCommands(toCodegen(resource), c.BaseURL())
	return c.Status(fiber.StatusOK).JSON(commands)
}

func (h *ResourceHandler) findResource(c *fiber.Ctx) (*models.Resource, int64, error) {
	id := c.Params("resourceId")

	resource, count, err := services.GetResource(h.DB, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, 0, resourceNotFound()
		}
		log.Error().Err(err).Str("resource", id).Msg("resource lookup failed")
		return nil, 0, types.NewInternalError()
	}
	return resource, count, nil
}

// clampCount folds a requested record count into configured bounds. Zero or
// absent means the configured default.
func (h *ResourceHandler) clampCount(count int) int {
	if count <= 0 {
		return h.Config.DefaultGenerateCount
	}
	if count > h.Config.MaxGenerateCount {
		return h.Config.MaxGenerateCount
	}
	return count
}

func toCodegen(res *models.Resource) codegen.Resource {
	return codegen.Resource{
		ProjectID:    res.ProjectID,
		Name:         res.Name,
		Version:      res.Version,
		Template:     res.Template.JSON,
		AllowGet:     res.AllowGet,
		AllowGetByID: res.AllowGetByID,
		AllowPost:    res.AllowPost,
		AllowPut:     res.AllowPut,
		AllowDelete:  res.AllowDelete,
	}
}

func resourceNotFound() *types.APIError {
	return &types.APIError{
		Status:  fiber.StatusNotFound,
		Message: "Resource not found",
	}
}
