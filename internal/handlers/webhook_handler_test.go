package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/contabhub/onety-sub018/internal/errors"
	"github.com/contabhub/onety-sub018/internal/gateway"
	"github.com/contabhub/onety-sub018/internal/handlers"
	"github.com/contabhub/onety-sub018/internal/models"
	"github.com/contabhub/onety-sub018/internal/services"
	"github.com/contabhub/onety-sub018/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProcessor struct {
	result  *services.IngestResult
	err     error
	inbound *gateway.InboundMessage
}

func (p *stubProcessor) ProcessInbound(ctx context.Context, inbound *gateway.InboundMessage) (*services.IngestResult, error) {
	p.inbound = inbound
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func newTestRouter(processor *stubProcessor) *gin.Engine {
	gin.SetMode(gin.TestMode)

	registry := gateway.NewRegistry()
	registry.Register(gateway.NewZAPINormalizer())
	registry.Register(gateway.NewEvolutionNormalizer())

	handler := handlers.NewWebhookHandler(registry, processor, logger.NewNop())

	engine := gin.New()
	api := engine.Group("/api/v1")
	handler.RegisterRoutes(api)
	return engine
}

func postJSON(t *testing.T, engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestReceiveTextMessage(t *testing.T) {
	conversationID := uuid.New()
	messageID := uuid.New()
	processor := &stubProcessor{result: &services.IngestResult{
		ConversationID: conversationID,
		MessageID:      messageID,
		MessageType:    models.TypeText,
		Content:        "olá",
	}}
	engine := newTestRouter(processor)

	body := `{"instanceId":"inst-1","messageId":"m1","phone":"5511999990000","senderName":"Maria","text":{"message":"olá"}}`
	w := postJSON(t, engine, "/api/v1/webhook/zapi", body)

	assert.Equal(t, http.StatusOK, w.Code)

	var ack struct {
		Success        bool      `json:"success"`
		ConversationID uuid.UUID `json:"conversationId"`
		MessageID      uuid.UUID `json:"messageId"`
		MessageType    string    `json:"messageType"`
		Content        string    `json:"content"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.True(t, ack.Success)
	assert.Equal(t, conversationID, ack.ConversationID)
	assert.Equal(t, messageID, ack.MessageID)
	assert.Equal(t, "text", ack.MessageType)
	assert.Equal(t, "olá", ack.Content)

	require.NotNil(t, processor.inbound)
	assert.Equal(t, "inst-1", processor.inbound.InstanceRef)
	assert.Equal(t, gateway.TypeText, processor.inbound.Type)
}

func TestReceiveUnknownGateway(t *testing.T) {
	engine := newTestRouter(&stubProcessor{})

	w := postJSON(t, engine, "/api/v1/webhook/telegram", `{}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReceiveInvalidPayload(t *testing.T) {
	engine := newTestRouter(&stubProcessor{})

	// Missing phone.
	w := postJSON(t, engine, "/api/v1/webhook/zapi", `{"instanceId":"inst-1","text":{"message":"olá"}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReceiveUnsupportedMessageType(t *testing.T) {
	engine := newTestRouter(&stubProcessor{})

	// No recognizable message kind.
	w := postJSON(t, engine, "/api/v1/webhook/zapi", `{"instanceId":"inst-1","phone":"5511999990000"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReceiveIgnoredEvent(t *testing.T) {
	processor := &stubProcessor{}
	engine := newTestRouter(processor)

	// Evolution status event, not a message upsert.
	w := postJSON(t, engine, "/api/v1/webhook/evolution", `{"event":"connection.update","instance":"suporte","data":{}}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var ack struct {
		Ignored bool `json:"ignored"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.True(t, ack.Ignored)
	assert.Nil(t, processor.inbound)
}

func TestReceiveUnknownInstance(t *testing.T) {
	processor := &stubProcessor{err: apperrors.New(apperrors.ErrNotFound, "unknown instance: inst-x")}
	engine := newTestRouter(processor)

	body := `{"instanceId":"inst-x","phone":"5511999990000","text":{"message":"olá"}}`
	w := postJSON(t, engine, "/api/v1/webhook/zapi", body)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReceiveInternalFailure(t *testing.T) {
	processor := &stubProcessor{err: errors.New("connection reset")}
	engine := newTestRouter(processor)

	body := `{"instanceId":"inst-1","phone":"5511999990000","text":{"message":"olá"}}`
	w := postJSON(t, engine, "/api/v1/webhook/zapi", body)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReceiveOversizedBody(t *testing.T) {
	processor := &stubProcessor{}
	engine := newTestRouter(processor)

	body := `{"instanceId":"inst-1","padding":"` + strings.Repeat("a", 33<<20) + `"}`
	w := postJSON(t, engine, "/api/v1/webhook/zapi", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Nil(t, processor.inbound)
}
