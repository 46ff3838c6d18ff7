package models

import (
	"time"
)

// Resource is the central entity: a named JSON shape served behind a
// configurable mock endpoint. Template holds the materialized generation
// template (macro strings, nested objects, arrays). EndpointTemplate shapes
// the GET-collection response and may contain the $mockData and $count
// sentinels.
//
// Name is a URL-safe slug, unique within a project.
type Resource struct {
	ID               string `gorm:"primaryKey;size:36"`
	Name             string `gorm:"size:255;not null;uniqueIndex:idx_resources_project_name"`
	Version          string `gorm:"size:32;not null;default:v1"`
	Endpoint         string `gorm:"size:512;not null"`
	Template         JSON   `gorm:"type:json"`
	EndpointTemplate JSON   `gorm:"type:json"`

	AllowGet     bool `gorm:"not null;default:true"`
	AllowGetByID bool `gorm:"column:allow_get_by_id;not null;default:true"`
	AllowPost    bool `gorm:"not null;default:true"`
	AllowPut     bool `gorm:"not null;default:true"`
	AllowDelete  bool `gorm:"not null;default:true"`

	UseIncrementalIDs bool `gorm:"column:use_incremental_ids;not null;default:false"`

	ProjectID string `gorm:"size:36;not null;index;uniqueIndex:idx_resources_project_name"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Records   []MockRecord `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for Resource
func (Resource) TableName() string {
	return "resources"
}
