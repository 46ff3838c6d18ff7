package services

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/mockforge/mockforge/internal/models"
	"github.com/mockforge/mockforge/internal/utils"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// ListRecords returns a resource's records in creation order.
func ListRecords(db *gorm.DB, resourceID string) ([]models.MockRecord, error) {
	var records []models.MockRecord
	err := db.Where("resource_id = ?", resourceID).
		Order("created_at ASC, record_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListOrderedRecordData returns the decoded blobs of a resource's records in
// creation order, each re-ordered to the template's declared field order:
// id first, then template keys present in the record. Fields outside the
// template schema are not part of the collection view.
func ListOrderedRecordData(db *gorm.DB, resource *models.Resource) ([]*utils.OrderedMap, error) {
	records, err := ListRecords(db, resource.ID)
	if err != nil {
		return nil, err
	}

	templateKeys := TemplateKeysOf(resource)

	data := make([]*utils.OrderedMap, 0, len(records))
	for i := range records {
		blob, err := DecodeRecordData(&records[i])
		if err != nil {
			return nil, err
		}
		data = append(data, OrderRecordData(blob, templateKeys))
	}
	return data, nil
}

// CountRecords returns a resource's record count.
func CountRecords(db *gorm.DB, resourceID string) (int64, error) {
	var count int64
	err := db.Model(&models.MockRecord{}).
		Where("resource_id = ?", resourceID).
		Count(&count).Error
	return count, err
}

// FindRecordByExternalID looks a record up by the user-visible id embedded
// in its blob, served by the materialized external_id column.
func FindRecordByExternalID(db *gorm.DB, resourceID, externalID string) (*models.MockRecord, error) {
	query := db.Where("resource_id = ? AND external_id = ?", resourceID, externalID)
	if db.Dialector.Name() == "mysql" {
		query = query.Clauses(hints.UseIndex("idx_mock_records_resource_external"))
	}

	var record models.MockRecord
	if err := query.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// CreateRecord persists a single record blob. The blob's "id" field is
// mirrored into the indexed external_id column.
func CreateRecord(db *gorm.DB, resourceID, externalID string, blob []byte) (*models.MockRecord, error) {
	record := models.MockRecord{
		ResourceID: resourceID,
		ExternalID: externalID,
		Data:       models.NewJSON(blob),
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateRecord replaces a record's blob in place. The external id never
// changes on update; callers pin the blob's id field before the call.
func UpdateRecord(db *gorm.DB, record *models.MockRecord, blob []byte) error {
	return db.Model(record).
		Update("data", models.NewJSON(blob)).Error
}

// DeleteRecord removes a record by storage identity.
func DeleteRecord(db *gorm.DB, record *models.MockRecord) error {
	return db.Delete(record).Error
}

// DecodeRecordData unmarshals a record blob.
func DecodeRecordData(record *models.MockRecord) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(record.Data.JSON, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// OrderRecordData builds the ordered collection view of a blob: id first,
// then template keys present in the data, in template order.
func OrderRecordData(data map[string]interface{}, templateKeys []string) *utils.OrderedMap {
	ordered := utils.NewOrderedMap()
	ordered.Set("id", data["id"])

	for _, key := range templateKeys {
		if key == "id" {
			continue
		}
		if value, ok := data[key]; ok {
			ordered.Set(key, value)
		}
	}

	return ordered
}

// EncodeRecordBlob marshals a record blob with stable field order: id first,
// template keys next, then any remaining keys alphabetically.
func EncodeRecordBlob(data map[string]interface{}, templateKeys []string) ([]byte, error) {
	ordered := utils.NewOrderedMap()
	ordered.Set("id", data["id"])

	seen := map[string]struct{}{"id": {}}
	for _, key := range templateKeys {
		if key == "id" {
			continue
		}
		if value, ok := data[key]; ok {
			ordered.Set(key, value)
			seen[key] = struct{}{}
		}
	}

	var extras []string
	for key := range data {
		if _, ok := seen[key]; !ok {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	for _, key := range extras {
		ordered.Set(key, data[key])
	}

	return json.Marshal(ordered)
}
