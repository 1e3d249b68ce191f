package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
)

// planRequestRepository implements the PlanRequestRepository interface
type planRequestRepository struct {
	db *gorm.DB
}

// NewPlanRequestRepository creates a new plan request repository instance
func NewPlanRequestRepository(db *gorm.DB) PlanRequestRepository {
	return &planRequestRepository{db: db}
}

func (r *planRequestRepository) Create(request *models.MonthlyPlanRequest) error {
	return r.db.Create(request).Error
}

func (r *planRequestRepository) GetByID(id uuid.UUID) (*models.MonthlyPlanRequest, error) {
	var request models.MonthlyPlanRequest
	err := r.db.First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *planRequestRepository) GetByCustomerID(customerID uint) ([]models.MonthlyPlanRequest, error) {
	var requests []models.MonthlyPlanRequest
	err := r.db.Where("customer_id = ?", customerID).
		Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *planRequestRepository) GetAll() ([]models.MonthlyPlanRequest, error) {
	var requests []models.MonthlyPlanRequest
	err := r.db.Preload("Customer").Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *planRequestRepository) Update(request *models.MonthlyPlanRequest) error {
	return r.db.Save(request).Error
}
