package repositories

import (
	"context"

	"github.com/contabhub/onety-sub018/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Company Repository GORM Implementation
// ===========================================================================

// companyRepo implements CompanyRepository with GORM.
type companyRepo struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new CompanyRepository instance.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepo{db: db}
}

// FindByID looks a company up by primary key.
func (r *companyRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// Create inserts a new company.
func (r *companyRepo) Create(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}
