package repositories

import (
	"context"

	"github.com/contabhub/onety-sub018/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Contact Repository GORM Implementation
// ===========================================================================

// contactRepo implements ContactRepository with GORM.
type contactRepo struct {
	db *gorm.DB
}

// NewContactRepository creates a new ContactRepository instance.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepo{db: db}
}

// FindByID looks a contact up by primary key.
func (r *contactRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).First(&contact, id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindByPhone looks a contact up by canonical phone within a company.
func (r *contactRepo) FindByPhone(ctx context.Context, companyID uuid.UUID, phone string) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND phone = ?", companyID, phone).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// Create inserts a new contact.
func (r *contactRepo) Create(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// Update persists changes to a contact.
func (r *contactRepo) Update(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}
