package models

import (
	"github.com/google/uuid"
)

// ===========================================================================
// Message
// One message inside a conversation. Append-only: rows are created exactly
// once per normalized inbound message and never updated except the read flag.
// ===========================================================================

// SenderType who produced a message.
type SenderType string

const (
	// SenderCustomer inbound message from the customer.
	SenderCustomer SenderType = "customer"

	// SenderUser message written by an agent.
	SenderUser SenderType = "user"

	// SenderSystem automated message.
	SenderSystem SenderType = "system"
)

// MessageType content kind of a message.
type MessageType string

const (
	TypeText    MessageType = "text"
	TypeAudio   MessageType = "audio"
	TypeImage   MessageType = "image"
	TypeVideo   MessageType = "video"
	TypeFile    MessageType = "file"
	TypeUnknown MessageType = "unknown"
)

// Message represents one message.
type Message struct {
	BaseModel

	// ConversationID owning conversation.
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"conversation_id"`

	// SenderType customer, user or system.
	SenderType SenderType `gorm:"size:20;not null" json:"sender_type"`

	// Type content kind.
	Type MessageType `gorm:"size:20;not null;default:'text'" json:"type"`

	// Content text body, or the caption of a media message.
	Content string `gorm:"type:text" json:"content"`

	// MediaURL durable media URL produced by the resolution chain. May hold
	// a raw gateway reference when every upload tier failed, or be empty.
	MediaURL *string `gorm:"size:1000" json:"media_url,omitempty"`

	// GatewayMessageID the message id assigned by the gateway. Indexed but
	// not unique: inbound ingestion performs no deduplication.
	GatewayMessageID *string `gorm:"size:255;index" json:"gateway_message_id,omitempty"`

	// IsRead whether the team has read the message.
	IsRead bool `gorm:"default:false" json:"is_read"`

	// Relations
	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"conversation,omitempty"`
}

// TableName returns the table name.
func (Message) TableName() string {
	return "messages"
}

// IsMedia reports whether the message carries media content.
func (m *Message) IsMedia() bool {
	return m.Type != TypeText && m.Type != TypeUnknown
}

// MarkAsRead flips the read flag, the only mutation a message ever sees.
func (m *Message) MarkAsRead() {
	m.IsRead = true
}

// Preview returns a content preview suitable for conversation listings.
func (m *Message) Preview(maxLen int) string {
	if m.Content == "" && m.IsMedia() {
		return "[" + string(m.Type) + "]"
	}
	if len(m.Content) > maxLen {
		return m.Content[:maxLen-3] + "..."
	}
	return m.Content
}
