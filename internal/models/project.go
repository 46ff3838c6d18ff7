package models

import (
	"time"
)

// Project is a named grouping of mock resources. Deleting a project
// cascades to its resources and their records.
type Project struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Resources []Resource `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}
