package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// ===========================================================================
// WebhookSubscription
// An external subscriber interested in a company's domain events.
// Subscription CRUD lives elsewhere; fan-out only reads these rows.
// ===========================================================================

// SubscriptionStatus lifecycle state of a subscription.
type SubscriptionStatus string

const (
	// SubscriptionActive the subscriber receives deliveries.
	SubscriptionActive SubscriptionStatus = "active"

	// SubscriptionInactive the subscriber is paused; fan-out skips it.
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// EventTypes is a JSONB list of subscribed event type names.
type EventTypes []string

// Value implements driver.Valuer for JSONB.
func (t EventTypes) Value() (driver.Value, error) {
	if t == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB.
func (t *EventTypes) Scan(value interface{}) error {
	if value == nil {
		*t = []string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, t)
}

// Contains reports whether eventType is subscribed.
func (t EventTypes) Contains(eventType string) bool {
	for _, e := range t {
		if e == eventType {
			return true
		}
	}
	return false
}

// WebhookSubscription represents one external subscriber.
type WebhookSubscription struct {
	BaseModel

	// CompanyID owning company.
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	// URL delivery endpoint.
	URL string `gorm:"size:1000;not null" json:"url"`

	// Secret shared secret used by the delivery worker to sign payloads.
	// Never exposed.
	Secret string `gorm:"size:255" json:"-"`

	// Status active/inactive.
	Status SubscriptionStatus `gorm:"size:20;not null;default:'active';index" json:"status"`

	// Events subscribed event types.
	Events EventTypes `gorm:"type:jsonb;default:'[]'" json:"events"`

	// Relations
	Company    Company           `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Deliveries []WebhookDelivery `gorm:"foreignKey:SubscriptionID" json:"deliveries,omitempty"`
}

// TableName returns the table name.
func (WebhookSubscription) TableName() string {
	return "webhook_subscriptions"
}

// IsActive reports whether the subscription receives deliveries.
func (s *WebhookSubscription) IsActive() bool { return s.Status == SubscriptionActive }
