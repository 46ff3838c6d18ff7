package models

import (
	"time"
)

// MockRecord is one materialized data row for a resource. The numeric primary
// key is storage identity only; the user-visible identifier lives inside the
// Data blob as "id". ExternalID is a materialized copy of that blob field,
// kept in sync on every write so by-id lookups hit an index instead of
// scanning and decoding every blob for the resource.
type MockRecord struct {
	RecordID   uint64 `gorm:"primaryKey;autoIncrement"`
	ResourceID string `gorm:"size:36;not null;index:idx_mock_records_resource_external"`
	ExternalID string `gorm:"column:external_id;size:64;not null;index:idx_mock_records_resource_external"`
	Data       JSON   `gorm:"type:json"`
	CreatedAt  time.Time
}

// TableName overrides the table name for MockRecord
func (MockRecord) TableName() string {
	return "mock_records"
}
