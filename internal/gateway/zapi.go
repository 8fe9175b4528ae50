package gateway

import (
	"encoding/json"

	apperrors "github.com/contabhub/onety-sub018/internal/errors"
)

// ===========================================================================
// Z-API Gateway (flat push format)
// One JSON object per message, with the content kind expressed as exactly
// one of the text/audio/image/video/document sub-objects.
// ===========================================================================

// ZAPINormalizer maps Z-API push payloads into the canonical model.
type ZAPINormalizer struct{}

// NewZAPINormalizer creates the Z-API normalizer.
func NewZAPINormalizer() *ZAPINormalizer {
	return &ZAPINormalizer{}
}

// Name returns "zapi".
func (n *ZAPINormalizer) Name() string {
	return "zapi"
}

// ===========================================================================
// Payload structures
// ===========================================================================

// zapiPayload is the flat push shape.
type zapiPayload struct {
	InstanceID string `json:"instanceId"`
	MessageID  string `json:"messageId"`
	Phone      string `json:"phone"`
	ChatName   string `json:"chatName"`
	SenderName string `json:"senderName"`
	Photo      string `json:"photo"`

	// Exactly one of the following is present; the first non-nil field is
	// the discriminator.
	Text     *zapiText  `json:"text"`
	Audio    *zapiMedia `json:"audio"`
	Image    *zapiMedia `json:"image"`
	Video    *zapiMedia `json:"video"`
	Document *zapiMedia `json:"document"`
}

type zapiText struct {
	Message string `json:"message"`
}

type zapiMedia struct {
	AudioURL    string `json:"audioUrl"`
	ImageURL    string `json:"imageUrl"`
	VideoURL    string `json:"videoUrl"`
	DocumentURL string `json:"documentUrl"`
	Caption     string `json:"caption"`
	MimeType    string `json:"mimeType"`
	FileName    string `json:"fileName"`
	Base64      string `json:"base64"`
}

// url returns whichever *Url field the kind populated.
func (m *zapiMedia) url() string {
	switch {
	case m.AudioURL != "":
		return m.AudioURL
	case m.ImageURL != "":
		return m.ImageURL
	case m.VideoURL != "":
		return m.VideoURL
	default:
		return m.DocumentURL
	}
}

// ===========================================================================
// Normalization
// ===========================================================================

// Normalize maps a Z-API push into the canonical model.
func (n *ZAPINormalizer) Normalize(body []byte) (*InboundMessage, error) {
	var payload zapiPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "invalid JSON payload")
	}

	if payload.InstanceID == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "missing instanceId")
	}
	if payload.Phone == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "missing phone")
	}

	name := payload.ChatName
	if name == "" {
		name = payload.SenderName
	}

	inbound := &InboundMessage{
		Gateway:          n.Name(),
		InstanceRef:      payload.InstanceID,
		GatewayMessageID: payload.MessageID,
		CustomerPhone:    payload.Phone,
		CustomerName:     name,
		AvatarURL:        payload.Photo,
	}

	switch {
	case payload.Text != nil:
		inbound.Type = TypeText
		inbound.Content = payload.Text.Message
	case payload.Audio != nil:
		n.fillMedia(inbound, TypeAudio, payload.Audio)
	case payload.Image != nil:
		n.fillMedia(inbound, TypeImage, payload.Image)
	case payload.Video != nil:
		n.fillMedia(inbound, TypeVideo, payload.Video)
	case payload.Document != nil:
		n.fillMedia(inbound, TypeFile, payload.Document)
	default:
		return nil, apperrors.New(apperrors.ErrUnsupportedMessageType, "payload carries no supported message kind")
	}

	return inbound, nil
}

// fillMedia populates the media fields of the canonical message.
func (n *ZAPINormalizer) fillMedia(inbound *InboundMessage, kind Type, media *zapiMedia) {
	inbound.Type = kind
	inbound.Content = media.Caption
	inbound.Media = &MediaRef{
		Kind:         kind,
		InlineBase64: media.Base64,
		RemoteURL:    media.url(),
		MimeType:     media.MimeType,
		FileName:     media.FileName,
	}
}
