package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/mockforge/mockforge/internal/faker"
	"github.com/mockforge/mockforge/internal/models"
	"github.com/mockforge/mockforge/internal/services"
	"github.com/mockforge/mockforge/internal/types"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MockAPIHandler serves the dynamic mock endpoints under
// /api/:projectId/:version/:resource.
type MockAPIHandler struct {
	DB       *gorm.DB
	Registry *faker.Registry
}

// resolveResource maps the request path to a resource definition. The version
// segment must match the resource's configured endpoint.
func (h *MockAPIHandler) resolveResource(c *fiber.Ctx) (*models.Resource, error) {
	projectID := c.Params("projectId")
	version := c.Params("version")
	name := c.Params("resource")

	resource, err := services.FindResourceByName(h.DB, projectID, name)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, types.NewResourceNotFound(name)
		}
		log.Error().Err(err).Str("project", projectID).Str("resource", name).
			Msg("resource lookup failed")
		return nil, types.NewInternalError()
	}

	if resource.Endpoint != fmt.Sprintf("%s/%s", version, name) {
		return nil, types.NewResourceNotFound(name)
	}
	return resource, nil
}

// ListRecords handles GET /api/:projectId/:version/:resource
// @Summary List mock records
// @Description Get all records of a mock resource, shaped by its endpoint template
// @Tags MockAPI
// @Produce json
// @Param projectId path string true "Project ID"
// @Param version path string true "API version segment"
// @Param resource path string true "Resource name"
// @Success 200 {object} interface{}
// @Failure 404 {object} utils.ErrorEnvelope
// @Failure 405 {object} utils.ErrorEnvelope
// @Router /{projectId}/{version}/{resource} [get]
func (h *MockAPIHandler) ListRecords(c *fiber.Ctx) error {
	resource, err := h.resolveResource(c)
	if err != nil {
		return err
	}
	if !resource.AllowGet {
		return types.NewMethodNotAllowed("GET")
	}

	records, err := services.ListOrderedRecordData(h.DB, resource)
	if err != nil {
		log.Error().Err(err).Str("resource", resource.ID).Msg("record listing failed")
		return types.NewInternalError()
	}

	return c.Status(fiber.StatusOK).
		JSON(services.ShapeResponse(resource.EndpointTemplate.JSON, records))
}

// GetRecord handles GET /api/:projectId/:version/:resource/:id
// @Summary Get one mock record
// @Description Get a single record by its id field
// @Tags MockAPI
// @Produce json
// @Param projectId path string true "Project ID"
// @Param version path string true "API version segment"
// @Param resource path string true "Resource name"
// @Param id path string true "Record ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorEnvelope
// @Failure 405 {object} utils.ErrorEnvelope
// @Router /{projectId}/{version}/{resource}/{id} [get]
func (h *MockAPIHandler) GetRecord(c *fiber.Ctx) error {
	resource, err := h.resolveResource(c)
	if err != nil {
		return err
	}
	if !resource.AllowGetByID {
		return types.NewMethodNotAllowed("GET")
	}

	id := c.Params("id")
	record, err := services.FindRecordByExternalID(h.DB, resource.ID, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return types.NewRecordNotFound(id)
		}
		log.Error().Err(err).Str("resource", resource.ID).Msg("record lookup failed")
		return types.NewInternalError()
	}

	// The stored blob already carries the template field order.
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(record.Data.JSON)
}

// CreateRecord handles POST /api/:projectId/:version/:resource
// @Summary Create a mock record
// @Description Create a record from the request body; macro strings are resolved, unknown fields rejected
// @Tags MockAPI
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param version path string true "API version segment"
// @Param resource path string true "Resource name"
// @Param body body map[string]interface{} true "Record fields"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorEnvelope
// @Failure 404 {object} utils.ErrorEnvelope
// @Failure 405 {object} utils.ErrorEnvelope
// @Router /{projectId}/{version}/{resource} [post]
func (h *MockAPIHandler) CreateRecord(c *fiber.Ctx) error {
	resource, err := h.resolveResource(c)
	if err != nil {
		return err
	}
	if !resource.AllowPost {
		return types.NewMethodNotAllowed("POST")
	}

	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return types.NewInvalidJSON()
	}

	templateKeys := services.TemplateKeysOf(resource)
	if invalid := invalidBodyFields(body, templateKeys); len(invalid) > 0 {
		return types.NewInvalidFields(invalid, templateKeys)
	}

	count, err := services.CountRecords(h.DB, resource.ID)
	if err != nil {
		log.Error().Err(err).Str("resource", resource.ID).Msg("record count failed")
		return types.NewInternalError()
	}

	data := faker.Compile(body, h.Registry)
	data["id"] = services.NewExternalID(resource.UseIncrementalIDs, int(count)+1)

	blob, err := services.EncodeRecordBlob(data, templateKeys)
	if err != nil {
		return types.NewInternalError()
	}

	record, err := services.CreateRecord(h.DB, resource.ID, data["id"].(string), blob)
	if err != nil {
		log.Error().Err(err).Str("resource", resource.ID).Msg("record create failed")
		return types.NewInternalError()
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusCreated).Send(record.Data.JSON)
}

// UpdateRecord handles PUT /api/:projectId/:version/:resource/:id
// @Summary Replace a mock record
// @Description Replace a record's fields; the path id always wins over any id in the body
// @Tags MockAPI
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param version path string true "API version segment"
// @Param resource path string true "Resource name"
// @Param id path string true "Record ID"
// @Param body body map[string]interface{} true "Replacement fields"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorEnvelope
// @Failure 404 {object} utils.ErrorEnvelope
// @Failure 405 {object} utils.ErrorEnvelope
// @Router /{projectId}/{version}/{resource}/{id} [put]
func (h *MockAPIHandler) UpdateRecord(c *fiber.Ctx) error {
	resource, err := h.resolveResource(c)
	if err != nil {
		return err
	}
	if !resource.AllowPut {
		return types.NewMethodNotAllowed("PUT")
	}

	id := c.Params("id")
	record, err := services.FindRecordByExternalID(h.DB, resource.ID, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return types.NewRecordNotFound(id)
		}
		log.Error().Err(err).Str("resource", resource.ID).Msg("record lookup failed")
		return types.NewInternalError()
	}

	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return types.NewInvalidJSON()
	}

	data := faker.Compile(body, h.Registry)
	data["id"] = id

	blob, err := services.EncodeRecordBlob(data, services.TemplateKeysOf(resource))
	if err != nil {
		return types.NewInternalError()
	}

	if err := services.UpdateRecord(h.DB, record, blob); err != nil {
		log.Error().Err(err).Str("resource", resource.ID).Msg("record update failed")
		return types.NewInternalError()
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(blob)
}

// DeleteRecord handles DELETE /api/:projectId/:version/:resource/:id
// @Summary Delete a mock record
// @Tags MockAPI
// @Param projectId path string true "Project ID"
// @Param version path string true "API version segment"
// @Param resource path string true "Resource name"
// @Param id path string true "Record ID"
// @Success 204
// @Failure 404 {object} utils.ErrorEnvelope
// @Failure 405 {object} utils.ErrorEnvelope
// @Router /{projectId}/{version}/{resource}/{id} [delete]
func (h *MockAPIHandler) DeleteRecord(c *fiber.Ctx) error {
	resource, err := h.resolveResource(c)
	if err != nil {
		return err
	}
	if !resource.AllowDelete {
		return types.NewMethodNotAllowed("DELETE")
	}

	id := c.Params("id")
	record, err := services.FindRecordByExternalID(h.DB, resource.ID, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return types.NewRecordNotFound(id)
		}
		log.Error().Err(err).Str("resource", resource.ID).Msg("record lookup failed")
		return types.NewInternalError()
	}

	if err := services.DeleteRecord(h.DB, record); err != nil {
		log.Error().Err(err).Str("resource", resource.ID).Msg("record delete failed")
		return types.NewInternalError()
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// invalidBodyFields returns the body keys outside the template schema.
func invalidBodyFields(body map[string]interface{}, templateKeys []string) []string {
	allowed := make(map[string]struct{}, len(templateKeys))
	for _, key := range templateKeys {
		allowed[key] = struct{}{}
	}

	var invalid []string
	for key := range body {
		if _, ok := allowed[key]; !ok {
			invalid = append(invalid, key)
		}
	}
	sort.Strings(invalid)
	return invalid
}
