package gateway

import (
	"encoding/json"
	"strings"

	apperrors "github.com/contabhub/onety-sub018/internal/errors"
)

// ===========================================================================
// Evolution Gateway (event-envelope format)
// Every webhook is an event envelope; only "messages.upsert" events carry
// an inbound message, nested under data.message with one sub-object per
// content kind. Media URLs are end-to-end encrypted, so the encrypted
// reference (instance name, message id, remote JID) matters more than the
// URL itself.
// ===========================================================================

// eventMessagesUpsert is the only envelope event this pipeline processes.
const eventMessagesUpsert = "messages.upsert"

// jidSuffix terminates individual WhatsApp JIDs.
const jidSuffix = "@s.whatsapp.net"

// EvolutionNormalizer maps Evolution API envelopes into the canonical model.
type EvolutionNormalizer struct{}

// NewEvolutionNormalizer creates the Evolution normalizer.
func NewEvolutionNormalizer() *EvolutionNormalizer {
	return &EvolutionNormalizer{}
}

// Name returns "evolution".
func (n *EvolutionNormalizer) Name() string {
	return "evolution"
}

// ===========================================================================
// Payload structures
// ===========================================================================

type evolutionEnvelope struct {
	Event    string         `json:"event"`
	Instance string         `json:"instance"`
	Data     *evolutionData `json:"data"`
}

type evolutionData struct {
	InstanceID string            `json:"instanceId"`
	Key        evolutionKey      `json:"key"`
	PushName   string            `json:"pushName"`
	Message    *evolutionMessage `json:"message"`
}

type evolutionKey struct {
	ID        string `json:"id"`
	RemoteJid string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
}

type evolutionMessage struct {
	Conversation    string          `json:"conversation"`
	AudioMessage    *evolutionMedia `json:"audioMessage"`
	ImageMessage    *evolutionMedia `json:"imageMessage"`
	VideoMessage    *evolutionMedia `json:"videoMessage"`
	DocumentMessage *evolutionMedia `json:"documentMessage"`

	// Base64 inline media bytes, present when the gateway is configured to
	// embed them in the webhook.
	Base64 string `json:"base64"`
}

type evolutionMedia struct {
	URL      string `json:"url"`
	Mimetype string `json:"mimetype"`
	Caption  string `json:"caption"`
	FileName string `json:"fileName"`
}

// ===========================================================================
// Normalization
// ===========================================================================

// Normalize maps an Evolution envelope into the canonical model.
// Non-upsert events, missing message bodies and our own outbound echoes are
// acknowledged as ignored.
func (n *EvolutionNormalizer) Normalize(body []byte) (*InboundMessage, error) {
	var envelope evolutionEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "invalid JSON payload")
	}

	if envelope.Event != eventMessagesUpsert {
		return nil, apperrors.New(apperrors.ErrIgnoredEvent, "event is not a message upsert")
	}
	if envelope.Data == nil || envelope.Data.Message == nil {
		return nil, apperrors.New(apperrors.ErrIgnoredEvent, "envelope carries no message")
	}
	if envelope.Data.Key.FromMe {
		return nil, apperrors.New(apperrors.ErrIgnoredEvent, "own outbound echo")
	}

	data := envelope.Data
	if data.InstanceID == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "missing data.instanceId")
	}
	if data.Key.RemoteJid == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "missing data.key.remoteJid")
	}

	inbound := &InboundMessage{
		Gateway:          n.Name(),
		InstanceRef:      data.InstanceID,
		InstanceName:     envelope.Instance,
		GatewayMessageID: data.Key.ID,
		CustomerPhone:    phoneFromJid(data.Key.RemoteJid),
		CustomerName:     data.PushName,
	}

	msg := data.Message
	switch {
	case msg.Conversation != "":
		inbound.Type = TypeText
		inbound.Content = msg.Conversation
	case msg.AudioMessage != nil:
		n.fillMedia(inbound, TypeAudio, msg, msg.AudioMessage, envelope.Instance, data.Key)
	case msg.ImageMessage != nil:
		n.fillMedia(inbound, TypeImage, msg, msg.ImageMessage, envelope.Instance, data.Key)
	case msg.VideoMessage != nil:
		n.fillMedia(inbound, TypeVideo, msg, msg.VideoMessage, envelope.Instance, data.Key)
	case msg.DocumentMessage != nil:
		n.fillMedia(inbound, TypeFile, msg, msg.DocumentMessage, envelope.Instance, data.Key)
	default:
		return nil, apperrors.New(apperrors.ErrUnsupportedMessageType, "message carries no supported kind")
	}

	return inbound, nil
}

// fillMedia populates the media fields of the canonical message.
func (n *EvolutionNormalizer) fillMedia(inbound *InboundMessage, kind Type, msg *evolutionMessage, media *evolutionMedia, instanceName string, key evolutionKey) {
	inbound.Type = kind
	inbound.Content = media.Caption
	inbound.Media = &MediaRef{
		Kind:         kind,
		InlineBase64: msg.Base64,
		RemoteURL:    media.URL,
		MimeType:     media.Mimetype,
		FileName:     media.FileName,
		Encrypted: &EncryptedRef{
			InstanceName: instanceName,
			MessageID:    key.ID,
			RemoteChatID: key.RemoteJid,
		},
	}
}

// phoneFromJid extracts the phone number from an individual WhatsApp JID.
func phoneFromJid(jid string) string {
	return strings.TrimSuffix(jid, jidSuffix)
}
