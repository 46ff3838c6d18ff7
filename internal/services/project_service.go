package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/mockforge/mockforge/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound marks lookups that matched nothing. Handlers translate it to a
// 404 envelope.
var ErrNotFound = errors.New("not found")

// CreateProject creates a named project.
func CreateProject(db *gorm.DB, name string) (*models.Project, error) {
	project := models.Project{
		ID:   uuid.NewString(),
		Name: name,
	}
	if err := db.Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProjects returns all projects with their resources, newest first.
func GetProjects(db *gorm.DB) ([]models.Project, error) {
	var projects []models.Project
	err := db.Preload("Resources").
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns one project with its resources.
func GetProject(db *gorm.DB, id string) (*models.Project, error) {
	var project models.Project
	err := db.Preload("Resources").
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes a project, its resources, and their records.
func DeleteProject(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Where("id = ?", id).First(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// Cascade by hand as well: SQLite setups may not enforce the FK
		// constraint depending on pragma settings.
		var resourceIDs []string
		if err := tx.Model(&models.Resource{}).
			Where("project_id = ?", id).
			Pluck("id", &resourceIDs).Error; err != nil {
			return err
		}
		if len(resourceIDs) > 0 {
			if err := tx.Where("resource_id IN ?", resourceIDs).
				Delete(&models.MockRecord{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", id).
				Delete(&models.Resource{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&project).Error
	})
}
