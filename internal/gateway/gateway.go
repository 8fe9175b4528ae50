package gateway

import (
	"fmt"
	"sync"
)

// ===========================================================================
// Gateway abstractions.
// A gateway is an external messaging provider pushing customer messages at
// us via webhook. Each provider has its own payload shape; a Normalizer
// maps it into the canonical InboundMessage consumed by the pipeline.
// ===========================================================================

// Type is the content kind detected from the payload shape.
type Type string

const (
	TypeText    Type = "text"
	TypeAudio   Type = "audio"
	TypeImage   Type = "image"
	TypeVideo   Type = "video"
	TypeFile    Type = "file"
	TypeUnknown Type = "unknown"
)

// InboundMessage is the canonical representation of one inbound customer
// message, whatever gateway it arrived from.
type InboundMessage struct {
	// Gateway the source gateway name ("zapi", "evolution").
	Gateway string

	// InstanceRef the gateway-side instance identifier the message arrived
	// on. Resolved against the instance directory; unknown refs are a 404.
	InstanceRef string

	// InstanceName the gateway-side instance name, when the payload carries
	// one. Needed by the media decrypt tier.
	InstanceName string

	// GatewayMessageID the message id assigned by the gateway.
	GatewayMessageID string

	// CustomerPhone raw customer phone as delivered. Canonicalized later.
	CustomerPhone string

	// CustomerName display name as delivered, may be empty.
	CustomerName string

	// AvatarURL customer avatar, may be empty.
	AvatarURL string

	// Type detected content kind.
	Type Type

	// Content text body or media caption.
	Content string

	// Media reference for non-text messages, input to the resolution chain.
	Media *MediaRef
}

// MediaRef describes where the bytes of a media message can be obtained.
// The resolution chain consumes the fields in tier order: inline payload,
// encrypted reference, bare remote URL.
type MediaRef struct {
	// Kind the message kind, drives MIME defaults and the store resource type.
	Kind Type

	// InlineBase64 media bytes delivered inline by the gateway, base64.
	InlineBase64 string

	// Encrypted reference for the external decryption service.
	Encrypted *EncryptedRef

	// RemoteURL bare remote URL, possibly end-to-end encrypted and unusable
	// as-is. Last-resort value when every upload tier fails.
	RemoteURL string

	// MimeType as declared by the gateway, may be empty.
	MimeType string

	// FileName as declared by the gateway, may be empty.
	FileName string
}

// EncryptedRef keys a decryption-service call.
type EncryptedRef struct {
	// InstanceName the gateway instance name owning the media.
	InstanceName string

	// MessageID the gateway message id.
	MessageID string

	// RemoteChatID the gateway-side conversation id (e.g. a WhatsApp JID).
	RemoteChatID string
}

// Normalizer maps one gateway's raw webhook body into the canonical model.
// Implementations are pure: no I/O, deterministic type detection.
type Normalizer interface {
	// Name returns the gateway name this normalizer handles.
	Name() string

	// Normalize parses and maps a raw webhook body.
	// Returns apperrors.ErrInvalidInput for malformed/incomplete payloads,
	// apperrors.ErrUnsupportedMessageType for unknown message kinds and
	// apperrors.ErrIgnoredEvent for events the pipeline does not process.
	Normalize(body []byte) (*InboundMessage, error)
}

// ===========================================================================
// Registry
// ===========================================================================

// Registry holds the registered gateway normalizers, keyed by name.
type Registry struct {
	mu         sync.RWMutex
	normalizer map[string]Normalizer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		normalizer: make(map[string]Normalizer),
	}
}

// Register adds a normalizer, overwriting any previous one for the name.
func (r *Registry) Register(n Normalizer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.normalizer[n.Name()] = n
}

// Get returns the normalizer for a gateway name.
func (r *Registry) Get(name string) (Normalizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, exists := r.normalizer[name]
	if !exists {
		return nil, fmt.Errorf("gateway %q is not registered", name)
	}
	return n, nil
}

// Names returns every registered gateway name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.normalizer))
	for name := range r.normalizer {
		names = append(names, name)
	}
	return names
}
