package services_test

import (
	"context"
	"sync"

	"github.com/contabhub/onety-sub018/internal/models"
	"github.com/contabhub/onety-sub018/internal/realtime"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes shared by the service tests.

type memInstanceRepo struct {
	byID       map[uuid.UUID]*models.Instance
	byExternal map[string]*models.Instance
	defaults   map[uuid.UUID]*models.Instance
}

func newMemInstanceRepo() *memInstanceRepo {
	return &memInstanceRepo{
		byID:       map[uuid.UUID]*models.Instance{},
		byExternal: map[string]*models.Instance{},
		defaults:   map[uuid.UUID]*models.Instance{},
	}
}

func (r *memInstanceRepo) add(inst *models.Instance) {
	r.byID[inst.ID] = inst
	r.byExternal[inst.ExternalID] = inst
	if inst.IsDefault {
		r.defaults[inst.CompanyID] = inst
	}
}

func (r *memInstanceRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Instance, error) {
	if inst, ok := r.byID[id]; ok {
		return inst, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memInstanceRepo) FindByExternalID(ctx context.Context, externalID string) (*models.Instance, error) {
	if inst, ok := r.byExternal[externalID]; ok {
		return inst, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memInstanceRepo) FindDefaultByCompany(ctx context.Context, companyID uuid.UUID) (*models.Instance, error) {
	if inst, ok := r.defaults[companyID]; ok {
		return inst, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memInstanceRepo) Create(ctx context.Context, instance *models.Instance) error {
	instance.ID = uuid.New()
	r.add(instance)
	return nil
}

type memCompanyRepo struct {
	byID map[uuid.UUID]*models.Company
}

func newMemCompanyRepo() *memCompanyRepo {
	return &memCompanyRepo{byID: map[uuid.UUID]*models.Company{}}
}

func (r *memCompanyRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	if c, ok := r.byID[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCompanyRepo) Create(ctx context.Context, company *models.Company) error {
	company.ID = uuid.New()
	r.byID[company.ID] = company
	return nil
}

type memContactRepo struct {
	contacts  []*models.Contact
	createErr error
	findErr   error
}

func (r *memContactRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	for _, c := range r.contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memContactRepo) FindByPhone(ctx context.Context, companyID uuid.UUID, phone string) (*models.Contact, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, c := range r.contacts {
		if c.CompanyID == companyID && c.Phone == phone {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memContactRepo) Create(ctx context.Context, contact *models.Contact) error {
	if r.createErr != nil {
		return r.createErr
	}
	contact.ID = uuid.New()
	r.contacts = append(r.contacts, contact)
	return nil
}

func (r *memContactRepo) Update(ctx context.Context, contact *models.Contact) error { return nil }

type memConversationRepo struct {
	conversations []*models.Conversation
	instances     *memInstanceRepo
	updates       int
	createErr     error
}

func (r *memConversationRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	for _, c := range r.conversations {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memConversationRepo) FindOpenByPhone(ctx context.Context, companyID uuid.UUID, phone string) (*models.Conversation, error) {
	var best *models.Conversation
	for _, c := range r.conversations {
		if c.CustomerPhone != phone || c.Status == models.StatusClosed {
			continue
		}
		inst, ok := r.instances.byID[c.InstanceID]
		if !ok || inst.CompanyID != companyID {
			continue
		}
		if best == nil || c.UpdatedAt.After(best.UpdatedAt) {
			best = c
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (r *memConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	if r.createErr != nil {
		return r.createErr
	}
	conv.ID = uuid.New()
	r.conversations = append(r.conversations, conv)
	return nil
}

func (r *memConversationRepo) Update(ctx context.Context, conv *models.Conversation) error {
	r.updates++
	return nil
}

type memMessageRepo struct {
	messages  []*models.Message
	createErr error
}

func (r *memMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	if r.createErr != nil {
		return r.createErr
	}
	msg.ID = uuid.New()
	r.messages = append(r.messages, msg)
	return nil
}

type memSubscriptionRepo struct {
	subs []models.WebhookSubscription
}

func (r *memSubscriptionRepo) FindActiveByCompanyAndEvent(ctx context.Context, companyID uuid.UUID, eventType string) ([]models.WebhookSubscription, error) {
	matched := make([]models.WebhookSubscription, 0, len(r.subs))
	for _, sub := range r.subs {
		if sub.CompanyID == companyID && sub.IsActive() && sub.Events.Contains(eventType) {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

func (r *memSubscriptionRepo) Create(ctx context.Context, sub *models.WebhookSubscription) error {
	return nil
}

type memDeliveryRepo struct {
	mu      sync.Mutex
	batches [][]models.WebhookDelivery
}

func (r *memDeliveryRepo) CreateBatch(ctx context.Context, deliveries []models.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, deliveries)
	return nil
}

// recordingPublisher captures realtime notifications.
type recordingPublisher struct {
	mu               sync.Mutex
	newConversations []*realtime.ConversationEvent
	newMessages      []*realtime.MessageEvent
	updates          []*realtime.ConversationEvent
}

func (p *recordingPublisher) NotifyNewConversation(companyID uuid.UUID, event *realtime.ConversationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.newConversations = append(p.newConversations, event)
	return nil
}

func (p *recordingPublisher) NotifyNewMessage(companyID uuid.UUID, event *realtime.MessageEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.newMessages = append(p.newMessages, event)
	return nil
}

func (p *recordingPublisher) NotifyConversationUpdated(companyID uuid.UUID, event *realtime.ConversationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, event)
	return nil
}
