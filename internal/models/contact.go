package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// ===========================================================================
// Contact
// A customer identified by phone number, scoped to a company. The identity
// key (phone, company) is logically unique but not enforced by a database
// constraint; concurrent first-contact messages can race into duplicates.
// ===========================================================================

// ContactLabels is a JSONB list of label names attached to a contact.
type ContactLabels []string

// Value implements driver.Valuer for JSONB.
func (l ContactLabels) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB.
func (l *ContactLabels) Scan(value interface{}) error {
	if value == nil {
		*l = []string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, l)
}

// Contact represents a customer.
type Contact struct {
	BaseModel

	// CompanyID owning company.
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	// Name customer name. Falls back to a phone-derived name when the
	// gateway never delivered one.
	Name string `gorm:"size:255;not null" json:"name"`

	// Phone canonical phone number (digits only, country code prefixed).
	// Identity key together with CompanyID.
	Phone string `gorm:"size:50;not null;index" json:"phone"`

	// Email optional email address.
	Email *string `gorm:"size:255" json:"email,omitempty"`

	// Labels labels attached by the team.
	Labels ContactLabels `gorm:"type:jsonb;default:'[]'" json:"labels"`

	// Relations
	Company       Company        `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Conversations []Conversation `gorm:"foreignKey:ContactID" json:"conversations,omitempty"`
}

// TableName returns the table name.
func (Contact) TableName() string {
	return "contacts"
}
