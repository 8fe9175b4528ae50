package dto

import "github.com/google/uuid"

// ===========================================================================
// Response DTOs
// Standard response shapes for the webhook boundary.
// ===========================================================================

// Response is the generic API envelope.
type Response struct {
	// Success whether the request succeeded.
	Success bool `json:"success"`

	// Data payload when successful.
	Data interface{} `json:"data,omitempty"`

	// Error details when not.
	Error *APIError `json:"error,omitempty"`
}

// APIError is the standard error shape.
type APIError struct {
	// Code machine-readable error code (e.g. "NOT_FOUND").
	Code string `json:"code"`

	// Message human-readable detail.
	Message string `json:"message"`
}

// InboundAck is the acknowledgement returned to a gateway after an inbound
// message was fully ingested.
type InboundAck struct {
	Success        bool      `json:"success"`
	ConversationID uuid.UUID `json:"conversationId"`
	MessageID      uuid.UUID `json:"messageId"`
	MessageType    string    `json:"messageType"`
	Content        string    `json:"content"`
}

// IgnoredAck acknowledges a gateway event the pipeline deliberately skips.
// Returned with 200 so the gateway does not retry.
type IgnoredAck struct {
	Ignored bool `json:"ignored"`
}

// ===========================================================================
// Response Builders
// ===========================================================================

// Success builds a success envelope.
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// Error builds an error envelope.
func Error(code, message string) Response {
	return Response{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	}
}
