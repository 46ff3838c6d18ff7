package services

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/mockforge/mockforge/internal/faker"
	"github.com/mockforge/mockforge/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// insertBatchSize bounds statement size during bulk generation.
const insertBatchSize = 100

// NewExternalID produces a record's user-visible id. Sequential mode yields
// the stringified 1-based position; random mode a globally-unique token.
func NewExternalID(useIncrementalIDs bool, position int) string {
	if useIncrementalIDs {
		return strconv.Itoa(position)
	}
	return uuid.NewString()
}

// Generate replaces a resource's record set with count freshly compiled
// records. The delete and insert phases share one transaction so concurrent
// readers never observe a half-replaced set.
func Generate(db *gorm.DB, reg *faker.Registry, projectID, resourceID string, count int) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var resource models.Resource
		err := tx.Where("id = ? AND project_id = ?", resourceID, projectID).
			First(&resource).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("resource_id = ?", resourceID).
			Delete(&models.MockRecord{}).Error; err != nil {
			return err
		}

		var template map[string]interface{}
		if err := json.Unmarshal(resource.Template.JSON, &template); err != nil {
			return err
		}
		templateKeys := faker.TemplateKeys(resource.Template.JSON)

		records := make([]models.MockRecord, 0, count)
		for i := 0; i < count; i++ {
			externalID := NewExternalID(resource.UseIncrementalIDs, i+1)

			data := faker.Compile(template, reg)
			data["id"] = externalID

			blob, err := EncodeRecordBlob(data, templateKeys)
			if err != nil {
				return err
			}

			records = append(records, models.MockRecord{
				ResourceID: resourceID,
				ExternalID: externalID,
				Data:       models.NewJSON(blob),
			})
		}

		if len(records) > 0 {
			if err := tx.CreateInBatches(records, insertBatchSize).Error; err != nil {
				return err
			}
		}

		log.Info().
			Str("resource", resourceID).
			Int("count", count).
			Msg("regenerated mock records")

		return nil
	})
}

// ReassignExternalIDs rewrites every record's external id under the given
// strategy, in the resource's existing iteration order. Only the id field of
// each blob changes; storage identity is untouched. Callers supply the
// enclosing transaction.
func ReassignExternalIDs(tx *gorm.DB, resourceID string, useIncrementalIDs bool) error {
	var resource models.Resource
	if err := tx.Where("id = ?", resourceID).First(&resource).Error; err != nil {
		return err
	}
	templateKeys := faker.TemplateKeys(resource.Template.JSON)

	var records []models.MockRecord
	if err := tx.Where("resource_id = ?", resourceID).
		Order("created_at ASC, record_id ASC").
		Find(&records).Error; err != nil {
		return err
	}

	for i := range records {
		newID := NewExternalID(useIncrementalIDs, i+1)

		var data map[string]interface{}
		if err := json.Unmarshal(records[i].Data.JSON, &data); err != nil {
			return err
		}
		data["id"] = newID

		blob, err := EncodeRecordBlob(data, templateKeys)
		if err != nil {
			return err
		}

		err = tx.Model(&models.MockRecord{}).
			Where("record_id = ?", records[i].RecordID).
			Updates(map[string]interface{}{
				"external_id": newID,
				"data":        models.NewJSON(blob),
			}).Error
		if err != nil {
			return err
		}
	}

	return nil
}
