package gateway_test

import (
	"testing"

	apperrors "github.com/contabhub/onety-sub018/internal/errors"
	"github.com/contabhub/onety-sub018/internal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvolutionNormalize_Text(t *testing.T) {
	body := []byte(`{
		"event": "messages.upsert",
		"instance": "suporte",
		"data": {
			"instanceId": "inst-ev-01",
			"key": {"id": "3EB0A", "remoteJid": "5511999990000@s.whatsapp.net", "fromMe": false},
			"pushName": "Carlos Lima",
			"message": {"conversation": "bom dia"}
		}
	}`)

	inbound, err := gateway.NewEvolutionNormalizer().Normalize(body)
	require.NoError(t, err)

	assert.Equal(t, "evolution", inbound.Gateway)
	assert.Equal(t, "inst-ev-01", inbound.InstanceRef)
	assert.Equal(t, "suporte", inbound.InstanceName)
	assert.Equal(t, "3EB0A", inbound.GatewayMessageID)
	assert.Equal(t, "5511999990000", inbound.CustomerPhone)
	assert.Equal(t, "Carlos Lima", inbound.CustomerName)
	assert.Equal(t, gateway.TypeText, inbound.Type)
	assert.Equal(t, "bom dia", inbound.Content)
	assert.Nil(t, inbound.Media)
}

func TestEvolutionNormalize_MediaCarriesEncryptedRef(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		wantType gateway.Type
	}{
		{"audio", `"audioMessage": {"url": "https://mmg.whatsapp.net/a.enc", "mimetype": "audio/ogg"}`, gateway.TypeAudio},
		{"image", `"imageMessage": {"url": "https://mmg.whatsapp.net/i.enc", "caption": "olha isso"}`, gateway.TypeImage},
		{"video", `"videoMessage": {"url": "https://mmg.whatsapp.net/v.enc"}`, gateway.TypeVideo},
		{"document", `"documentMessage": {"url": "https://mmg.whatsapp.net/d.enc", "mimetype": "application/pdf", "fileName": "nota.pdf"}`, gateway.TypeFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := []byte(`{
				"event": "messages.upsert",
				"instance": "suporte",
				"data": {
					"instanceId": "inst-ev-01",
					"key": {"id": "3EB0B", "remoteJid": "5511999990000@s.whatsapp.net"},
					"message": {` + tt.fragment + `}
				}
			}`)

			inbound, err := gateway.NewEvolutionNormalizer().Normalize(body)
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, inbound.Type)
			require.NotNil(t, inbound.Media)
			require.NotNil(t, inbound.Media.Encrypted)
			assert.Equal(t, "suporte", inbound.Media.Encrypted.InstanceName)
			assert.Equal(t, "3EB0B", inbound.Media.Encrypted.MessageID)
			assert.Equal(t, "5511999990000@s.whatsapp.net", inbound.Media.Encrypted.RemoteChatID)
		})
	}
}

func TestEvolutionNormalize_InlineBase64(t *testing.T) {
	body := []byte(`{
		"event": "messages.upsert",
		"instance": "suporte",
		"data": {
			"instanceId": "inst-ev-01",
			"key": {"id": "3EB0C", "remoteJid": "5511999990000@s.whatsapp.net"},
			"message": {
				"imageMessage": {"url": "https://mmg.whatsapp.net/i.enc", "mimetype": "image/jpeg"},
				"base64": "aW1hZ2UtYnl0ZXM="
			}
		}
	}`)

	inbound, err := gateway.NewEvolutionNormalizer().Normalize(body)
	require.NoError(t, err)
	require.NotNil(t, inbound.Media)
	assert.Equal(t, "aW1hZ2UtYnl0ZXM=", inbound.Media.InlineBase64)
}

func TestEvolutionNormalize_IgnoredEvents(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"connection update", `{"event": "connection.update", "instance": "suporte", "data": {}}`},
		{"missing data", `{"event": "messages.upsert", "instance": "suporte"}`},
		{"missing message", `{"event": "messages.upsert", "instance": "suporte", "data": {"instanceId": "x", "key": {"remoteJid": "j"}}}`},
		{"own echo", `{"event": "messages.upsert", "instance": "suporte", "data": {"instanceId": "x", "key": {"remoteJid": "j", "fromMe": true}, "message": {"conversation": "eco"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gateway.NewEvolutionNormalizer().Normalize([]byte(tt.body))
			assert.ErrorIs(t, err, apperrors.ErrIgnoredEvent)
		})
	}
}

func TestEvolutionNormalize_Errors(t *testing.T) {
	t.Run("missing instanceId", func(t *testing.T) {
		body := []byte(`{"event": "messages.upsert", "instance": "s", "data": {"key": {"remoteJid": "5511@s.whatsapp.net"}, "message": {"conversation": "oi"}}}`)
		_, err := gateway.NewEvolutionNormalizer().Normalize(body)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("missing remoteJid", func(t *testing.T) {
		body := []byte(`{"event": "messages.upsert", "instance": "s", "data": {"instanceId": "x", "message": {"conversation": "oi"}}}`)
		_, err := gateway.NewEvolutionNormalizer().Normalize(body)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("unsupported kind", func(t *testing.T) {
		body := []byte(`{"event": "messages.upsert", "instance": "s", "data": {"instanceId": "x", "key": {"remoteJid": "j"}, "message": {"stickerMessage": {}}}}`)
		_, err := gateway.NewEvolutionNormalizer().Normalize(body)
		assert.ErrorIs(t, err, apperrors.ErrUnsupportedMessageType)
	})
}
