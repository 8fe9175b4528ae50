package repositories

import (
	"context"

	"github.com/contabhub/onety-sub018/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Webhook Subscription Repository GORM Implementation
// ===========================================================================

// webhookSubscriptionRepo implements WebhookSubscriptionRepository with GORM.
type webhookSubscriptionRepo struct {
	db *gorm.DB
}

// NewWebhookSubscriptionRepository creates a new WebhookSubscriptionRepository instance.
func NewWebhookSubscriptionRepository(db *gorm.DB) WebhookSubscriptionRepository {
	return &webhookSubscriptionRepo{db: db}
}

// FindActiveByCompanyAndEvent returns the company's active subscriptions
// whose event filter matches the event type. Event filters live in a JSONB
// column, so the type match happens in Go after the company/status cut.
func (r *webhookSubscriptionRepo) FindActiveByCompanyAndEvent(ctx context.Context, companyID uuid.UUID, eventType string) ([]models.WebhookSubscription, error) {
	var subs []models.WebhookSubscription
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, models.SubscriptionActive).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}

	matched := make([]models.WebhookSubscription, 0, len(subs))
	for _, sub := range subs {
		if sub.Events.Contains(eventType) {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

// Create inserts a new subscription.
func (r *webhookSubscriptionRepo) Create(ctx context.Context, sub *models.WebhookSubscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// ===========================================================================
// Webhook Delivery Repository GORM Implementation
// ===========================================================================

// webhookDeliveryRepo implements WebhookDeliveryRepository with GORM.
type webhookDeliveryRepo struct {
	db *gorm.DB
}

// NewWebhookDeliveryRepository creates a new WebhookDeliveryRepository instance.
func NewWebhookDeliveryRepository(db *gorm.DB) WebhookDeliveryRepository {
	return &webhookDeliveryRepo{db: db}
}

// CreateBatch inserts all rows inside a single transaction so the fan-out
// is all-or-nothing per inbound event.
func (r *webhookDeliveryRepo) CreateBatch(ctx context.Context, deliveries []models.WebhookDelivery) error {
	if len(deliveries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&deliveries).Error
	})
}
