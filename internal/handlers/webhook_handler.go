package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/contabhub/onety-sub018/internal/dto"
	apperrors "github.com/contabhub/onety-sub018/internal/errors"
	"github.com/contabhub/onety-sub018/internal/gateway"
	"github.com/contabhub/onety-sub018/internal/middleware"
	"github.com/contabhub/onety-sub018/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ===========================================================================
// Webhook Handler
// Inbound entry point for gateway push notifications. One route per
// registered gateway; the normalizer decides whether the payload is a
// customer message, an ignorable event or garbage.
// ===========================================================================

// maxInboundBodyBytes caps a webhook payload. Gateways can inline media as
// base64, so the cap is generous; anything larger is rejected before it is
// buffered.
const maxInboundBodyBytes = 32 << 20

// InboundProcessor is the slice of the ingest service the handler needs.
type InboundProcessor interface {
	ProcessInbound(ctx context.Context, inbound *gateway.InboundMessage) (*services.IngestResult, error)
}

// WebhookHandler receives gateway webhooks.
type WebhookHandler struct {
	registry *gateway.Registry
	ingest   InboundProcessor
	logger   *zap.Logger
}

// NewWebhookHandler creates a new handler.
func NewWebhookHandler(registry *gateway.Registry, ingest InboundProcessor, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{registry: registry, ingest: ingest, logger: logger}
}

// Receive handles POST /webhook/:gateway.
func (h *WebhookHandler) Receive(c *gin.Context) {
	requestID := middleware.GetRequestID(c)
	ctx := c.Request.Context()

	gatewayName := c.Param("gateway")
	normalizer, err := h.registry.Get(gatewayName)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.Error("NOT_FOUND", "unknown gateway: "+gatewayName))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxInboundBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, dto.Error("PAYLOAD_TOO_LARGE", "request body exceeds limit"))
			return
		}
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", "unreadable request body"))
		return
	}

	inbound, err := normalizer.Normalize(body)
	if err != nil {
		h.respondNormalizeError(c, requestID, gatewayName, err)
		return
	}

	result, err := h.ingest.ProcessInbound(ctx, inbound)
	if err != nil {
		h.logger.Error("inbound processing failed",
			zap.String("request_id", requestID),
			zap.String("gateway", gatewayName),
			zap.String("instance_ref", inbound.InstanceRef),
			zap.Error(err),
		)
		c.JSON(apperrors.StatusCode(err), dto.Error(apperrors.ErrorCode(err), err.Error()))
		return
	}

	h.logger.Info("inbound message ingested",
		zap.String("request_id", requestID),
		zap.String("gateway", gatewayName),
		zap.String("conversation_id", result.ConversationID.String()),
		zap.String("message_id", result.MessageID.String()),
		zap.String("type", string(result.MessageType)),
	)

	c.JSON(http.StatusOK, dto.InboundAck{
		Success:        true,
		ConversationID: result.ConversationID,
		MessageID:      result.MessageID,
		MessageType:    string(result.MessageType),
		Content:        result.Content,
	})
}

// respondNormalizeError maps normalizer outcomes to HTTP. Deliberately
// ignored events (non-message event types, echoes of our own sends) get a
// 200 so the gateway never retries them.
func (h *WebhookHandler) respondNormalizeError(c *gin.Context, requestID, gatewayName string, err error) {
	if apperrors.Is(err, apperrors.ErrIgnoredEvent) {
		c.JSON(http.StatusOK, dto.IgnoredAck{Ignored: true})
		return
	}

	h.logger.Warn("inbound payload rejected",
		zap.String("request_id", requestID),
		zap.String("gateway", gatewayName),
		zap.Error(err),
	)
	c.JSON(apperrors.StatusCode(err), dto.Error(apperrors.ErrorCode(err), err.Error()))
}

// RegisterRoutes registers handler routes.
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	webhook := rg.Group("/webhook")
	{
		webhook.POST("/:gateway", h.Receive)
	}
}
