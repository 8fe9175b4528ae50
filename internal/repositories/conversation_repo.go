package repositories

import (
	"context"

	"github.com/contabhub/onety-sub018/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Conversation Repository GORM Implementation
// ===========================================================================

// conversationRepo implements ConversationRepository with GORM.
type conversationRepo struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository instance.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepo{db: db}
}

// FindByID looks a conversation up by primary key.
func (r *conversationRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindOpenByPhone returns the most recently active non-closed conversation
// for the phone across every instance of the company. The join keeps the
// lookup company-wide so an ongoing thread is resumed even when the customer
// writes to a different number this time.
func (r *conversationRepo) FindOpenByPhone(ctx context.Context, companyID uuid.UUID, phone string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN instances ON instances.id = conversations.instance_id").
		Where("instances.company_id = ?", companyID).
		Where("conversations.customer_phone = ?", phone).
		Where("conversations.status <> ?", models.StatusClosed).
		Order("conversations.updated_at DESC").
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// Create inserts a new conversation.
func (r *conversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

// Update persists changes to a conversation.
func (r *conversationRepo) Update(ctx context.Context, conv *models.Conversation) error {
	return r.db.WithContext(ctx).Save(conv).Error
}
