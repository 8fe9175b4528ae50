package repositories

import (
	"context"

	"github.com/contabhub/onety-sub018/internal/models"

	"github.com/google/uuid"
)

// ===========================================================================
// Company Repository Interface
// ===========================================================================

// CompanyRepository is the data access contract for companies.
type CompanyRepository interface {
	// FindByID looks a company up by primary key.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error)

	// Create inserts a new company.
	Create(ctx context.Context, company *models.Company) error
}

// ===========================================================================
// Instance Repository Interface
// ===========================================================================

// InstanceRepository is the data access contract for gateway instances.
type InstanceRepository interface {
	// FindByID looks an instance up by primary key.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Instance, error)

	// FindByExternalID looks an instance up by the gateway-side identifier.
	FindByExternalID(ctx context.Context, externalID string) (*models.Instance, error)

	// FindDefaultByCompany returns the company's default instance, if any.
	FindDefaultByCompany(ctx context.Context, companyID uuid.UUID) (*models.Instance, error)

	// Create inserts a new instance.
	Create(ctx context.Context, instance *models.Instance) error
}

// ===========================================================================
// Contact Repository Interface
// ===========================================================================

// ContactRepository is the data access contract for contacts.
type ContactRepository interface {
	// FindByID looks a contact up by primary key.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)

	// FindByPhone looks a contact up by canonical phone within a company.
	FindByPhone(ctx context.Context, companyID uuid.UUID, phone string) (*models.Contact, error)

	// Create inserts a new contact.
	Create(ctx context.Context, contact *models.Contact) error

	// Update persists changes to a contact.
	Update(ctx context.Context, contact *models.Contact) error
}

// ===========================================================================
// Conversation Repository Interface
// ===========================================================================

// ConversationRepository is the data access contract for conversations.
type ConversationRepository interface {
	// FindByID looks a conversation up by primary key.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)

	// FindOpenByPhone returns the most recently active non-closed
	// conversation for a customer phone anywhere in the company,
	// regardless of which instance it lives on.
	FindOpenByPhone(ctx context.Context, companyID uuid.UUID, phone string) (*models.Conversation, error)

	// Create inserts a new conversation.
	Create(ctx context.Context, conv *models.Conversation) error

	// Update persists changes to a conversation.
	Update(ctx context.Context, conv *models.Conversation) error
}

// ===========================================================================
// Message Repository Interface
// ===========================================================================

// MessageRepository is the data access contract for messages.
type MessageRepository interface {
	// Create inserts a new message.
	Create(ctx context.Context, msg *models.Message) error
}

// ===========================================================================
// Webhook Subscription Repository Interface
// ===========================================================================

// WebhookSubscriptionRepository is the data access contract for subscriptions.
type WebhookSubscriptionRepository interface {
	// FindActiveByCompanyAndEvent returns the company's active
	// subscriptions whose event filter matches the event type.
	FindActiveByCompanyAndEvent(ctx context.Context, companyID uuid.UUID, eventType string) ([]models.WebhookSubscription, error)

	// Create inserts a new subscription.
	Create(ctx context.Context, sub *models.WebhookSubscription) error
}

// ===========================================================================
// Webhook Delivery Repository Interface
// ===========================================================================

// WebhookDeliveryRepository is the data access contract for delivery rows.
type WebhookDeliveryRepository interface {
	// CreateBatch inserts all rows inside a single transaction. Either
	// every delivery is recorded or none is.
	CreateBatch(ctx context.Context, deliveries []models.WebhookDelivery) error
}
