package realtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ===========================================================================
// Socket Bridge Client
// Pushes UI refresh signals to the socket bridge over HTTP. Notifications
// are best-effort: a failure here must never fail message ingestion, so
// callers log the error and move on.
// ===========================================================================

// Publisher pushes realtime events scoped to a company room.
type Publisher interface {
	// NotifyNewConversation signals that a conversation was created.
	NotifyNewConversation(companyID uuid.UUID, event *ConversationEvent) error

	// NotifyNewMessage signals that an inbound message arrived.
	NotifyNewMessage(companyID uuid.UUID, event *MessageEvent) error

	// NotifyConversationUpdated signals that conversation metadata changed.
	NotifyConversationUpdated(companyID uuid.UUID, event *ConversationEvent) error
}

// MessageEvent describes a new message to connected agents.
type MessageEvent struct {
	Type           string    `json:"type"`
	MessageID      uuid.UUID `json:"message_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderType     string    `json:"sender_type"`
	MessageType    string    `json:"message_type"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	CustomerName   string    `json:"customer_name,omitempty"`
	CustomerPhone  string    `json:"customer_phone,omitempty"`
}

// ConversationEvent describes a conversation change to connected agents.
type ConversationEvent struct {
	Type           string    `json:"type"`
	ConversationID uuid.UUID `json:"conversation_id"`
	InstanceID     uuid.UUID `json:"instance_id"`
	Status         string    `json:"status,omitempty"`
	CustomerName   string    `json:"customer_name,omitempty"`
	CustomerPhone  string    `json:"customer_phone,omitempty"`
}

// SocketClient implements Publisher against the socket bridge HTTP API.
type SocketClient struct {
	url    string
	apiKey string
	client *http.Client
	log    *zap.Logger
}

// NewSocketClient creates a new socket bridge client.
func NewSocketClient(url, apiKey string, log *zap.Logger) *SocketClient {
	return &SocketClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

// emitRequest is the bridge's publish envelope.
type emitRequest struct {
	Room  string      `json:"room"`
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func (c *SocketClient) emit(companyID uuid.UUID, event string, data interface{}) error {
	body, err := json.Marshal(emitRequest{
		Room:  "company:" + companyID.String(),
		Event: event,
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", c.url+"/emit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.log.Warn("socket emit failed", zap.Error(err))
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("socket emit bad status",
			zap.Int("status", resp.StatusCode),
			zap.String("event", event),
		)
		return fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	c.log.Debug("socket event emitted", zap.String("event", event))
	return nil
}

// NotifyNewConversation signals that a conversation was created.
func (c *SocketClient) NotifyNewConversation(companyID uuid.UUID, event *ConversationEvent) error {
	event.Type = "new_conversation"
	return c.emit(companyID, "new_conversation", event)
}

// NotifyNewMessage signals that an inbound message arrived.
func (c *SocketClient) NotifyNewMessage(companyID uuid.UUID, event *MessageEvent) error {
	event.Type = "new_message"
	return c.emit(companyID, "new_message", event)
}

// NotifyConversationUpdated signals that conversation metadata changed.
func (c *SocketClient) NotifyConversationUpdated(companyID uuid.UUID, event *ConversationEvent) error {
	event.Type = "conversation_updated"
	return c.emit(companyID, "conversation_updated", event)
}

// ===========================================================================
// No-op implementation
// ===========================================================================

// NoopPublisher discards every event. Used when no bridge is configured
// and in tests.
type NoopPublisher struct{}

func (NoopPublisher) NotifyNewConversation(uuid.UUID, *ConversationEvent) error { return nil }
func (NoopPublisher) NotifyNewMessage(uuid.UUID, *MessageEvent) error           { return nil }
func (NoopPublisher) NotifyConversationUpdated(uuid.UUID, *ConversationEvent) error {
	return nil
}
