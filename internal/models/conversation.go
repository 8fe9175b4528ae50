package models

import (
	"time"

	"github.com/google/uuid"
)

// ===========================================================================
// Conversation
// A thread between a company's team and one customer phone number. At most
// one non-closed conversation should exist per (phone, company); this is a
// best-effort invariant enforced only by query-time most-recently-updated
// selection, not by a constraint.
// ===========================================================================

// ConversationStatus conversation lifecycle state.
type ConversationStatus string

const (
	// StatusOpen the conversation is live and receives inbound messages.
	StatusOpen ConversationStatus = "open"

	// StatusClosed the conversation was finished. A new inbound message
	// from the same phone opens a fresh conversation.
	StatusClosed ConversationStatus = "closed"
)

// Conversation represents one customer thread.
type Conversation struct {
	BaseModel

	// InstanceID the routing instance that owns this conversation.
	InstanceID uuid.UUID `gorm:"type:uuid;not null;index" json:"instance_id"`

	// ContactID linked contact. Nullable: contact linkage is best-effort
	// and its failure never blocks conversation creation.
	ContactID *uuid.UUID `gorm:"type:uuid;index" json:"contact_id,omitempty"`

	// CustomerName display name as delivered by the gateway.
	CustomerName string `gorm:"size:255" json:"customer_name"`

	// CustomerPhone canonical customer phone. Lookup key.
	CustomerPhone string `gorm:"size:50;not null;index" json:"customer_phone"`

	// Status open or closed.
	Status ConversationStatus `gorm:"size:20;not null;default:'open';index" json:"status"`

	// AssignedUserID agent assigned by actions outside this pipeline.
	AssignedUserID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_user_id,omitempty"`

	// LastMessageAt time of the most recent message.
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`

	// LastMessagePreview preview of the most recent message (max 500 chars).
	LastMessagePreview *string `gorm:"size:500" json:"last_message_preview,omitempty"`

	// Relations
	Instance Instance  `gorm:"foreignKey:InstanceID" json:"instance,omitempty"`
	Contact  *Contact  `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// TableName returns the table name.
func (Conversation) TableName() string {
	return "conversations"
}

// IsOpen reports whether the conversation is open.
func (c *Conversation) IsOpen() bool { return c.Status == StatusOpen }

// IsClosed reports whether the conversation is closed.
func (c *Conversation) IsClosed() bool { return c.Status == StatusClosed }

// Close closes the conversation.
func (c *Conversation) Close() {
	c.Status = StatusClosed
}

// Reopen reopens a closed conversation.
func (c *Conversation) Reopen() {
	c.Status = StatusOpen
}

// UpdateLastMessage refreshes the last-message preview columns.
func (c *Conversation) UpdateLastMessage(content string, at time.Time) {
	c.LastMessageAt = &at
	if len(content) > 500 {
		preview := content[:497] + "..."
		c.LastMessagePreview = &preview
	} else {
		c.LastMessagePreview = &content
	}
}
