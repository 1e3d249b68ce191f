package repository

import (
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
)

// settingRepository implements the SettingRepository interface
type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new business settings repository instance
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get() (*models.BusinessSettings, error) {
	var settings models.BusinessSettings
	err := r.db.First(&settings, 1).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingRepository) Save(settings *models.BusinessSettings) error {
	return models.SaveBusinessSettings(r.db, settings)
}
