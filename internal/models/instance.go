package models

import "github.com/google/uuid"

// ===========================================================================
// Instance (routing instance)
// A gateway connection owned by one of the company's teams. Inbound
// messages arrive addressed to an instance; conversations are owned by one.
// ===========================================================================

// Instance represents a messaging-gateway connection.
type Instance struct {
	BaseModel

	// CompanyID owning company.
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	// Name human-readable name (e.g. "Suporte", "Vendas").
	Name string `gorm:"size:255;not null" json:"name"`

	// ExternalID the instance identifier on the gateway side. Inbound
	// payloads reference this value.
	ExternalID string `gorm:"size:255;not null;index" json:"external_id"`

	// Token gateway credential for outbound calls. Never exposed.
	Token string `gorm:"size:500" json:"-"`

	// IsDefault marks the company's default-team instance. Brand-new
	// conversations are attached here regardless of which instance the
	// first message physically arrived on.
	IsDefault bool `gorm:"default:false;index" json:"is_default"`

	// Relations
	Company       Company        `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Conversations []Conversation `gorm:"foreignKey:InstanceID" json:"conversations,omitempty"`
}

// TableName returns the table name.
func (Instance) TableName() string {
	return "instances"
}
