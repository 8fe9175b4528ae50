package events

import (
	"context"
	"strings"
	"time"

	"github.com/contabhub/onety-sub018/internal/models"
	"github.com/contabhub/onety-sub018/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ===========================================================================
// Event Payload Builder
// Builds the immutable MESSAGE_RECEIVED snapshot delivered to webhook
// subscribers. Construction never fails: every enrichment lookup that
// errors degrades to a null field so the event still goes out.
// ===========================================================================

const (
	// EventMessageReceived inbound customer message recorded.
	EventMessageReceived = "MESSAGE_RECEIVED"

	// DirectionInbound customer-to-company traffic.
	DirectionInbound = "INBOUND"

	// timeZone is the civil time zone of every rendered timestamp.
	timeZone = "America/Sao_Paulo"

	// timeLayout renders with an explicit UTC offset so consumers need
	// no zone table of their own.
	timeLayout = "2006-01-02T15:04:05-07:00"
)

// MessageReceivedEvent is the full wire snapshot.
type MessageReceivedEvent struct {
	EventType string          `json:"eventType"`
	Date      string          `json:"date"`
	Content   MessageReceived `json:"content"`
}

// MessageReceived is the event body.
type MessageReceived struct {
	MessageID      uuid.UUID       `json:"messageId"`
	CompanyID      *uuid.UUID      `json:"companyId"`
	ConversationID uuid.UUID       `json:"conversationId"`
	Type           string          `json:"type"`
	Direction      string          `json:"direction"`
	Text           *string         `json:"text"`
	Media          *MediaContent   `json:"media"`
	From           PartyRef        `json:"from"`
	To             *InstanceRef    `json:"to"`
	Company        *CompanyRef     `json:"company"`
	Contact        *ContactRef     `json:"contact"`
	Timestamps     EventTimestamps `json:"timestamps"`
}

// MediaContent carries the resolved media location.
type MediaContent struct {
	URL string `json:"url"`
}

// PartyRef identifies the sending customer.
type PartyRef struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

// InstanceRef identifies the receiving instance.
type InstanceRef struct {
	InstanceID   uuid.UUID `json:"instanceId"`
	InstanceName string    `json:"instanceName"`
}

// CompanyRef identifies the owning company.
type CompanyRef struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

// ContactRef identifies the resolved contact.
type ContactRef struct {
	ID     uuid.UUID `json:"id"`
	Labels []string  `json:"labels"`
}

// EventTimestamps groups the rendered message timestamps.
type EventTimestamps struct {
	CreatedAt string `json:"createdAt"`
}

// Builder assembles MESSAGE_RECEIVED events.
type Builder struct {
	instances repositories.InstanceRepository
	companies repositories.CompanyRepository
	contacts  repositories.ContactRepository
	logger    *zap.Logger
	loc       *time.Location
}

// NewBuilder creates an event payload builder.
func NewBuilder(
	instances repositories.InstanceRepository,
	companies repositories.CompanyRepository,
	contacts repositories.ContactRepository,
	logger *zap.Logger,
) *Builder {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		// The zone ships with the tzdata the binary runs on; if it is
		// missing, rendering in UTC beats refusing to start.
		logger.Warn("time zone unavailable, falling back to UTC",
			zap.String("zone", timeZone),
			zap.Error(err),
		)
		loc = time.UTC
	}
	return &Builder{
		instances: instances,
		companies: companies,
		contacts:  contacts,
		logger:    logger,
		loc:       loc,
	}
}

// MessageReceived builds the event snapshot for a persisted inbound
// message. Enrichment lookups that fail leave their field null.
func (b *Builder) MessageReceived(ctx context.Context, conv *models.Conversation, msg *models.Message) *MessageReceivedEvent {
	event := &MessageReceivedEvent{
		EventType: EventMessageReceived,
		Date:      b.render(time.Now()),
		Content: MessageReceived{
			MessageID:      msg.ID,
			ConversationID: conv.ID,
			Type:           strings.ToUpper(string(msg.Type)),
			Direction:      DirectionInbound,
			From: PartyRef{
				Number: conv.CustomerPhone,
				Name:   conv.CustomerName,
			},
			Timestamps: EventTimestamps{
				CreatedAt: b.render(msg.CreatedAt),
			},
		},
	}

	if msg.IsMedia() {
		if msg.MediaURL != nil {
			event.Content.Media = &MediaContent{URL: *msg.MediaURL}
		}
	} else {
		text := msg.Content
		event.Content.Text = &text
	}

	instance, err := b.instances.FindByID(ctx, conv.InstanceID)
	if err != nil {
		b.logger.Warn("event enrichment: instance lookup failed",
			zap.String("instance_id", conv.InstanceID.String()),
			zap.Error(err),
		)
		return event
	}

	event.Content.To = &InstanceRef{
		InstanceID:   instance.ID,
		InstanceName: instance.Name,
	}
	companyID := instance.CompanyID
	event.Content.CompanyID = &companyID

	if company, err := b.companies.FindByID(ctx, companyID); err != nil {
		b.logger.Warn("event enrichment: company lookup failed",
			zap.String("company_id", companyID.String()),
			zap.Error(err),
		)
	} else {
		event.Content.Company = &CompanyRef{
			ID:     company.ID,
			Status: string(company.Status),
		}
	}

	event.Content.Contact = b.resolveContact(ctx, conv, companyID)

	return event
}

// resolveContact prefers the conversation's linked contact and falls back
// to a phone lookup when linkage is missing.
func (b *Builder) resolveContact(ctx context.Context, conv *models.Conversation, companyID uuid.UUID) *ContactRef {
	var contact *models.Contact
	var err error

	if conv.ContactID != nil {
		contact, err = b.contacts.FindByID(ctx, *conv.ContactID)
	} else {
		contact, err = b.contacts.FindByPhone(ctx, companyID, conv.CustomerPhone)
	}
	if err != nil {
		b.logger.Debug("event enrichment: contact not resolved",
			zap.String("phone", conv.CustomerPhone),
			zap.Error(err),
		)
		return nil
	}

	labels := []string(contact.Labels)
	if labels == nil {
		labels = []string{}
	}
	return &ContactRef{ID: contact.ID, Labels: labels}
}

// render formats a timestamp in the pipeline's civil zone with offset.
func (b *Builder) render(t time.Time) string {
	return t.In(b.loc).Format(timeLayout)
}
