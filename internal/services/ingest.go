package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/contabhub/onety-sub018/internal/errors"
	"github.com/contabhub/onety-sub018/internal/events"
	"github.com/contabhub/onety-sub018/internal/gateway"
	"github.com/contabhub/onety-sub018/internal/media"
	"github.com/contabhub/onety-sub018/internal/models"
	"github.com/contabhub/onety-sub018/internal/realtime"
	"github.com/contabhub/onety-sub018/internal/repositories"
	"github.com/contabhub/onety-sub018/internal/webhooks"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================================================================
// Ingest Service
// The main inbound flow: resolve instance -> resolve media -> route to
// conversation -> persist message -> build event -> fan out -> notify.
// Everything after persistence is secondary: failures there are logged
// and never fail the request.
// ===========================================================================

// IngestResult is what the HTTP boundary acknowledges with.
type IngestResult struct {
	// ConversationID conversation the message landed in.
	ConversationID uuid.UUID

	// ConversationCreated a new conversation was opened for this message.
	ConversationCreated bool

	// MessageID persisted message ID.
	MessageID uuid.UUID

	// MessageType canonical message type.
	MessageType models.MessageType

	// Content persisted textual content (caption for media).
	Content string

	// MediaURL resolved media location, when any.
	MediaURL string
}

// IngestService processes normalized inbound messages end to end.
type IngestService struct {
	instances     repositories.InstanceRepository
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	router        *ConversationRouter
	chain         *media.Chain
	builder       *events.Builder
	fanout        *webhooks.Fanout
	publisher     realtime.Publisher
	logger        *zap.Logger
}

// NewIngestService creates a new IngestService.
func NewIngestService(
	instances repositories.InstanceRepository,
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	router *ConversationRouter,
	chain *media.Chain,
	builder *events.Builder,
	fanout *webhooks.Fanout,
	publisher realtime.Publisher,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		instances:     instances,
		conversations: conversations,
		messages:      messages,
		router:        router,
		chain:         chain,
		builder:       builder,
		fanout:        fanout,
		publisher:     publisher,
		logger:        logger,
	}
}

// ProcessInbound handles one normalized inbound message. The primary steps
// (instance lookup, routing, message persistence) fail the call; the
// secondary steps (event build, fan-out, realtime notification) are caught
// and logged here.
func (s *IngestService) ProcessInbound(ctx context.Context, inbound *gateway.InboundMessage) (*IngestResult, error) {
	instance, err := s.instances.FindByExternalID(ctx, inbound.InstanceRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "unknown instance: "+inbound.InstanceRef)
		}
		return nil, fmt.Errorf("find instance: %w", err)
	}

	// Media resolution absorbs its own failures; worst case the raw
	// gateway URL (or nothing) comes back and the message still lands.
	var mediaURL string
	if inbound.Media != nil {
		mediaURL = s.chain.Resolve(ctx, inbound.Media)
	}

	conv, created, err := s.router.Route(ctx, instance, inbound)
	if err != nil {
		return nil, fmt.Errorf("route conversation: %w", err)
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderType:     models.SenderCustomer,
		Type:           models.MessageType(inbound.Type),
		Content:        inbound.Content,
	}
	if mediaURL != "" {
		msg.MediaURL = &mediaURL
	}
	if inbound.GatewayMessageID != "" {
		gatewayID := inbound.GatewayMessageID
		msg.GatewayMessageID = &gatewayID
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.updatePreview(ctx, conv, msg)
	s.notify(ctx, conv, msg, created)

	return &IngestResult{
		ConversationID:      conv.ID,
		ConversationCreated: created,
		MessageID:           msg.ID,
		MessageType:         msg.Type,
		Content:             msg.Content,
		MediaURL:            mediaURL,
	}, nil
}

// updatePreview refreshes the conversation's last-message snapshot.
// Best-effort: the message is already persisted.
func (s *IngestService) updatePreview(ctx context.Context, conv *models.Conversation, msg *models.Message) {
	at := msg.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	conv.UpdateLastMessage(previewText(msg), at)
	if err := s.conversations.Update(ctx, conv); err != nil {
		s.logger.Warn("conversation preview update failed",
			zap.String("conversation_id", conv.ID.String()),
			zap.Error(err),
		)
	}
}

// notify runs the secondary pipeline: event snapshot, webhook fan-out and
// the realtime signal. Each failure is logged and swallowed. Both fan-out
// and realtime are addressed by company, so an unresolved company skips
// them entirely.
func (s *IngestService) notify(ctx context.Context, conv *models.Conversation, msg *models.Message, created bool) {
	event := s.builder.MessageReceived(ctx, conv, msg)

	if event.Content.CompanyID == nil {
		s.logger.Warn("fan-out and realtime skipped, company unresolved",
			zap.String("message_id", msg.ID.String()),
		)
		return
	}
	companyID := *event.Content.CompanyID

	if _, err := s.fanout.Enqueue(ctx, companyID, events.EventMessageReceived, event); err != nil {
		s.logger.Error("webhook fan-out failed",
			zap.String("message_id", msg.ID.String()),
			zap.String("company_id", companyID.String()),
			zap.Error(err),
		)
	}

	if err := s.publisher.NotifyNewMessage(companyID, &realtime.MessageEvent{
		MessageID:      msg.ID,
		ConversationID: conv.ID,
		SenderType:     string(msg.SenderType),
		MessageType:    string(msg.Type),
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
		CustomerName:   conv.CustomerName,
		CustomerPhone:  conv.CustomerPhone,
	}); err != nil {
		s.logger.Warn("new message notification failed",
			zap.String("message_id", msg.ID.String()),
			zap.Error(err),
		)
	}

	if !created {
		if err := s.publisher.NotifyConversationUpdated(companyID, &realtime.ConversationEvent{
			ConversationID: conv.ID,
			InstanceID:     conv.InstanceID,
			Status:         string(conv.Status),
			CustomerName:   conv.CustomerName,
			CustomerPhone:  conv.CustomerPhone,
		}); err != nil {
			s.logger.Warn("conversation update notification failed", zap.Error(err))
		}
	}
}

// previewText picks what the conversation list shows for the message.
func previewText(msg *models.Message) string {
	if msg.Content != "" {
		return msg.Content
	}
	switch msg.Type {
	case models.TypeAudio:
		return "[áudio]"
	case models.TypeImage:
		return "[imagem]"
	case models.TypeVideo:
		return "[vídeo]"
	case models.TypeFile:
		return "[arquivo]"
	default:
		return "[mensagem]"
	}
}
