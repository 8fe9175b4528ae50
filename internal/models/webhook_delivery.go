package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ===========================================================================
// WebhookDelivery
// One pending delivery of a domain event to one subscriber. Created by the
// fan-out queue, consumed and retried by the external delivery worker.
// ===========================================================================

// DeliveryStatus delivery lifecycle state.
type DeliveryStatus string

const (
	// DeliveryPending waiting to be picked up by the worker.
	DeliveryPending DeliveryStatus = "pending"

	// DeliveryDelivering claimed by the worker.
	DeliveryDelivering DeliveryStatus = "delivering"

	// DeliveryDelivered acknowledged by the subscriber.
	DeliveryDelivered DeliveryStatus = "delivered"

	// DeliveryFailed exhausted its attempts.
	DeliveryFailed DeliveryStatus = "failed"
)

// EventSnapshot is the immutable JSONB payload captured at enqueue time.
type EventSnapshot json.RawMessage

// Value implements driver.Valuer for JSONB.
func (s EventSnapshot) Value() (driver.Value, error) {
	if len(s) == 0 {
		return []byte("{}"), nil
	}
	return []byte(s), nil
}

// Scan implements sql.Scanner for JSONB.
func (s *EventSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = EventSnapshot("{}")
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	*s = append((*s)[0:0], bytes...)
	return nil
}

// MarshalJSON renders the raw snapshot as-is.
func (s EventSnapshot) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte(s), nil
}

// UnmarshalJSON stores the raw snapshot as-is.
func (s *EventSnapshot) UnmarshalJSON(data []byte) error {
	*s = append((*s)[0:0], data...)
	return nil
}

// WebhookDelivery represents one queued delivery.
type WebhookDelivery struct {
	BaseModel

	// CompanyID owning company.
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	// SubscriptionID target subscriber.
	SubscriptionID uuid.UUID `gorm:"type:uuid;not null;index" json:"subscription_id"`

	// EventType the domain event name (e.g. "MESSAGE_RECEIVED").
	EventType string `gorm:"size:100;not null;index" json:"event_type"`

	// Payload immutable event snapshot captured at enqueue time.
	Payload EventSnapshot `gorm:"type:jsonb;not null;default:'{}'" json:"payload"`

	// Status pending/delivering/delivered/failed.
	Status DeliveryStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`

	// Attempts number of delivery attempts so far.
	Attempts int `gorm:"default:0" json:"attempts"`

	// NextRetryAt when the worker should try again.
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`

	// LastError last delivery failure, if any.
	LastError *string `gorm:"type:text" json:"last_error,omitempty"`

	// Relations
	Subscription WebhookSubscription `gorm:"foreignKey:SubscriptionID" json:"subscription,omitempty"`
}

// TableName returns the table name.
func (WebhookDelivery) TableName() string {
	return "webhook_deliveries"
}

// IsPending reports whether the delivery still awaits its first pickup.
func (d *WebhookDelivery) IsPending() bool { return d.Status == DeliveryPending }
