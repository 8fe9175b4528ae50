package repositories

import (
	"context"

	"github.com/contabhub/onety-sub018/internal/models"

	"gorm.io/gorm"
)

// ===========================================================================
// Message Repository GORM Implementation
// ===========================================================================

// messageRepo implements MessageRepository with GORM.
type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository instance.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

// Create inserts a new message.
func (r *messageRepo) Create(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}
