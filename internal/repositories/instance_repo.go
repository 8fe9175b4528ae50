package repositories

import (
	"context"

	"github.com/contabhub/onety-sub018/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Instance Repository GORM Implementation
// ===========================================================================

// instanceRepo implements InstanceRepository with GORM.
type instanceRepo struct {
	db *gorm.DB
}

// NewInstanceRepository creates a new InstanceRepository instance.
func NewInstanceRepository(db *gorm.DB) InstanceRepository {
	return &instanceRepo{db: db}
}

// FindByID looks an instance up by primary key.
func (r *instanceRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Instance, error) {
	var instance models.Instance
	if err := r.db.WithContext(ctx).First(&instance, id).Error; err != nil {
		return nil, err
	}
	return &instance, nil
}

// FindByExternalID looks an instance up by the gateway-side identifier.
func (r *instanceRepo) FindByExternalID(ctx context.Context, externalID string) (*models.Instance, error) {
	var instance models.Instance
	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

// FindDefaultByCompany returns the company's default instance, if any.
func (r *instanceRepo) FindDefaultByCompany(ctx context.Context, companyID uuid.UUID) (*models.Instance, error) {
	var instance models.Instance
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND is_default = ?", companyID, true).
		First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

// Create inserts a new instance.
func (r *instanceRepo) Create(ctx context.Context, instance *models.Instance) error {
	return r.db.WithContext(ctx).Create(instance).Error
}
