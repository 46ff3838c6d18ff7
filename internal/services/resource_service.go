package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mockforge/mockforge/internal/faker"
	"github.com/mockforge/mockforge/internal/models"
	"gorm.io/gorm"
)

// defaultEndpointTemplate makes GET-collection return the plain record array.
const defaultEndpointTemplate = `"$mockData"`

// ResourceInput carries everything needed to create a resource. Template is
// the materialized JSON template, kept raw so the author's key order survives
// storage; Fields, when present, is the authoring tree and takes precedence.
type ResourceInput struct {
	Name             string                `json:"name"`
	Version          string                `json:"version"`
	Template         json.RawMessage       `json:"template"`
	Fields           []faker.TemplateField `json:"fields"`
	EndpointTemplate json.RawMessage       `json:"endpointTemplate"`

	AllowGet     *bool `json:"allowGet"`
	AllowGetByID *bool `json:"allowGetById"`
	AllowPost    *bool `json:"allowPost"`
	AllowPut     *bool `json:"allowPut"`
	AllowDelete  *bool `json:"allowDelete"`

	UseIncrementalIDs bool `json:"useIncrementalIds"`
}

// ErrInvalidName rejects resource names that are not URL-safe slugs.
var ErrInvalidName = errors.New("resource name must be a lowercase slug")

// ErrInvalidTemplate rejects template documents that are not valid JSON.
var ErrInvalidTemplate = errors.New("template must be a valid JSON document")

// CreateResource validates and persists a resource definition. Allow-flags
// default to true, the endpoint template to "$mockData".
func CreateResource(db *gorm.DB, projectID string, input ResourceInput) (*models.Resource, error) {
	if !faker.ValidSlug(input.Name) {
		return nil, ErrInvalidName
	}

	version := input.Version
	if version == "" {
		version = "v1"
	}

	templateJSON := []byte(input.Template)
	if len(input.Fields) > 0 {
		flattened, err := faker.FlattenJSON(input.Fields)
		if err != nil {
			return nil, err
		}
		templateJSON = flattened
	}
	if len(templateJSON) == 0 {
		templateJSON = []byte("{}")
	}
	if !json.Valid(templateJSON) {
		return nil, ErrInvalidTemplate
	}

	endpointTemplate := []byte(defaultEndpointTemplate)
	if len(input.EndpointTemplate) > 0 {
		endpointTemplate = input.EndpointTemplate
	}

	resource := models.Resource{
		ID:                uuid.NewString(),
		Name:              input.Name,
		Version:           version,
		Endpoint:          fmt.Sprintf("%s/%s", version, input.Name),
		Template:          models.NewJSON(templateJSON),
		EndpointTemplate:  models.NewJSON(endpointTemplate),
		AllowGet:          boolOrTrue(input.AllowGet),
		AllowGetByID:      boolOrTrue(input.AllowGetByID),
		AllowPost:         boolOrTrue(input.AllowPost),
		AllowPut:          boolOrTrue(input.AllowPut),
		AllowDelete:       boolOrTrue(input.AllowDelete),
		UseIncrementalIDs: input.UseIncrementalIDs,
		ProjectID:         projectID,
	}

	if err := db.Create(&resource).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// GetResource returns one resource by id with its record count.
func GetResource(db *gorm.DB, id string) (*models.Resource, int64, error) {
	var resource models.Resource
	if err := db.Where("id = ?", id).First(&resource).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}

	count, err := CountRecords(db, resource.ID)
	if err != nil {
		return nil, 0, err
	}
	return &resource, count, nil
}

// GetProjectResources lists a project's resources, newest first.
func GetProjectResources(db *gorm.DB, projectID string) ([]models.Resource, error) {
	var resources []models.Resource
	err := db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}

// FindResourceByName resolves the resource serving a mock endpoint. Lookups
// key on (project, slug); the unique index guarantees a single match.
func FindResourceByName(db *gorm.DB, projectID, name string) (*models.Resource, error) {
	var resource models.Resource
	err := db.Where("project_id = ? AND name = ?", projectID, name).
		First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &resource, nil
}

// DeleteResource removes a resource and its records.
func DeleteResource(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var resource models.Resource
		if err := tx.Where("id = ?", id).First(&resource).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("resource_id = ?", id).
			Delete(&models.MockRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&resource).Error
	})
}

// allowFlagColumns maps the five recognized allow-flag keys to their columns.
var allowFlagColumns = map[string]string{
	"allowGet":     "allow_get",
	"allowGetById": "allow_get_by_id",
	"allowPost":    "allow_post",
	"allowPut":     "allow_put",
	"allowDelete":  "allow_delete",
}

// ValidateMethodFlags returns the body keys that are not recognized
// allow-flags.
func ValidateMethodFlags(updates map[string]bool) []string {
	var invalid []string
	for key := range updates {
		if _, ok := allowFlagColumns[key]; !ok {
			invalid = append(invalid, key)
		}
	}
	return invalid
}

// UpdateMethods applies validated allow-flag updates.
func UpdateMethods(db *gorm.DB, resourceID string, updates map[string]bool) (*models.Resource, error) {
	columns := make(map[string]interface{}, len(updates))
	for key, value := range updates {
		columns[allowFlagColumns[key]] = value
	}

	result := db.Model(&models.Resource{}).
		Where("id = ?", resourceID).
		Updates(columns)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	resource, _, err := GetResource(db, resourceID)
	return resource, err
}

// UpdateEndpointTemplate replaces the GET-collection response template.
func UpdateEndpointTemplate(db *gorm.DB, resourceID string, template json.RawMessage) (*models.Resource, error) {
	result := db.Model(&models.Resource{}).
		Where("id = ?", resourceID).
		Update("endpoint_template", models.NewJSON(template))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	resource, _, err := GetResource(db, resourceID)
	return resource, err
}

// UpdateTemplate replaces the generation template and regenerates the record
// set against it. The raw document is stored as-is to keep the author's key
// order.
func UpdateTemplate(db *gorm.DB, reg *faker.Registry, resourceID string, template json.RawMessage, count int) error {
	if len(template) == 0 || !json.Valid(template) {
		return ErrInvalidTemplate
	}

	var resource models.Resource
	if err := db.Where("id = ?", resourceID).First(&resource).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := db.Model(&resource).
		Update("template", models.NewJSON(template)).Error; err != nil {
		return err
	}

	return Generate(db, reg, resource.ProjectID, resourceID, count)
}

// UpdateIDType flips the ID strategy and re-assigns every existing record's
// external id under the new scheme. The whole rewrite runs in one
// transaction; a retry recomputes the same target ids.
func UpdateIDType(db *gorm.DB, resourceID string, useIncrementalIDs bool) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var resource models.Resource
		if err := tx.Where("id = ?", resourceID).First(&resource).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&resource).
			Update("use_incremental_ids", useIncrementalIDs).Error; err != nil {
			return err
		}

		return ReassignExternalIDs(tx, resourceID, useIncrementalIDs)
	})
}

// TemplateKeysOf returns a resource template's top-level keys in declared
// order.
func TemplateKeysOf(resource *models.Resource) []string {
	return faker.TemplateKeys(resource.Template.JSON)
}

func boolOrTrue(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
