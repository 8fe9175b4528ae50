package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// BaseModel is the base struct for all models.
// Carries the shared columns: UUID primary key, timestamps, soft delete.
// ===========================================================================

// BaseModel holds the columns shared by every model.
type BaseModel struct {
	// ID is the UUID primary key, generated if absent.
	ID uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`

	// CreatedAt record creation time.
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`

	// UpdatedAt most recent update time.
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	// DeletedAt soft delete marker.
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate generates the UUID when none was provided.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// GetID returns the model's ID.
func (b *BaseModel) GetID() uuid.UUID {
	return b.ID
}
