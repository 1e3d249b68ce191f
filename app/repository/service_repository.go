package repository

import (
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
)

// serviceRepository implements the ServiceRepository interface
type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new service catalog repository instance
func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(service *models.Service) error {
	return r.db.Create(service).Error
}

func (r *serviceRepository) GetByID(id uint) (*models.Service, error) {
	var service models.Service
	err := r.db.First(&service, id).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// GetActive returns the bookable services, sorted by name.
func (r *serviceRepository) GetActive() ([]models.Service, error) {
	var services []models.Service
	err := r.db.Where("active = ?", true).Order("name ASC").Find(&services).Error
	return services, err
}

// GetAll returns every service, active ones first.
func (r *serviceRepository) GetAll() ([]models.Service, error) {
	var services []models.Service
	err := r.db.Order("active DESC").Order("name ASC").Find(&services).Error
	return services, err
}

func (r *serviceRepository) Update(service *models.Service) error {
	return r.db.Save(service).Error
}
