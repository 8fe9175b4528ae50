package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/contabhub/onety-sub018/internal/gateway"
	"github.com/contabhub/onety-sub018/internal/models"
	"github.com/contabhub/onety-sub018/internal/phone"
	"github.com/contabhub/onety-sub018/internal/realtime"
	"github.com/contabhub/onety-sub018/internal/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================================================================
// Conversation Router
// Decides which conversation an inbound message lands in. An ongoing
// (non-closed) conversation anywhere in the company wins regardless of
// which instance received the message; a first contact opens a new
// conversation on the company's default instance when one exists,
// otherwise on the arriving instance.
// ===========================================================================

// ConversationRouter routes inbound messages to conversations.
type ConversationRouter struct {
	conversations repositories.ConversationRepository
	instances     repositories.InstanceRepository
	resolver      *ContactResolver
	publisher     realtime.Publisher
	logger        *zap.Logger
}

// NewConversationRouter creates a new ConversationRouter.
func NewConversationRouter(
	conversations repositories.ConversationRepository,
	instances repositories.InstanceRepository,
	resolver *ContactResolver,
	publisher realtime.Publisher,
	logger *zap.Logger,
) *ConversationRouter {
	return &ConversationRouter{
		conversations: conversations,
		instances:     instances,
		resolver:      resolver,
		publisher:     publisher,
		logger:        logger,
	}
}

// Route returns the conversation the message belongs to, creating one when
// no open conversation exists. Returns whether a conversation was created.
func (r *ConversationRouter) Route(ctx context.Context, instance *models.Instance, inbound *gateway.InboundMessage) (*models.Conversation, bool, error) {
	canonical := phone.Canonical(inbound.CustomerPhone)

	conv, err := r.conversations.FindOpenByPhone(ctx, instance.CompanyID, canonical)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find open conversation: %w", err)
	}

	target := r.firstContactInstance(ctx, instance)

	conv = &models.Conversation{
		InstanceID:    target.ID,
		CustomerName:  inbound.CustomerName,
		CustomerPhone: canonical,
		Status:        models.StatusOpen,
	}

	// Contact linkage is best-effort; a resolver failure never blocks the
	// conversation.
	if contact, _, err := r.resolver.Resolve(ctx, instance.CompanyID, canonical, inbound.CustomerName); err != nil {
		r.logger.Warn("contact resolution failed, conversation unlinked",
			zap.String("phone", canonical),
			zap.Error(err),
		)
	} else {
		contactID := contact.ID
		conv.ContactID = &contactID
	}

	if err := r.conversations.Create(ctx, conv); err != nil {
		return nil, false, fmt.Errorf("create conversation: %w", err)
	}

	r.logger.Info("conversation created",
		zap.String("conversation_id", conv.ID.String()),
		zap.String("instance_id", target.ID.String()),
		zap.String("phone", canonical),
	)

	if err := r.publisher.NotifyNewConversation(instance.CompanyID, &realtime.ConversationEvent{
		ConversationID: conv.ID,
		InstanceID:     target.ID,
		Status:         string(conv.Status),
		CustomerName:   conv.CustomerName,
		CustomerPhone:  conv.CustomerPhone,
	}); err != nil {
		r.logger.Warn("new conversation notification failed", zap.Error(err))
	}

	return conv, true, nil
}

// firstContactInstance picks where a brand-new conversation starts: the
// company's default instance when configured, otherwise the instance the
// message arrived on.
func (r *ConversationRouter) firstContactInstance(ctx context.Context, arriving *models.Instance) *models.Instance {
	def, err := r.instances.FindDefaultByCompany(ctx, arriving.CompanyID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("default instance lookup failed, using arriving instance",
				zap.String("company_id", arriving.CompanyID.String()),
				zap.Error(err),
			)
		}
		return arriving
	}
	return def
}
