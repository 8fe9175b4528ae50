package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/contabhub/onety-sub018/internal/models"
	"github.com/contabhub/onety-sub018/internal/phone"
	"github.com/contabhub/onety-sub018/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================================================================
// Contact Resolver
// Find-or-create of the customer identity behind an inbound message,
// keyed by canonical phone within the company.
// ===========================================================================

// ContactResolver resolves inbound phone numbers to contacts.
type ContactResolver struct {
	contacts repositories.ContactRepository
	logger   *zap.Logger
}

// NewContactResolver creates a new ContactResolver.
func NewContactResolver(contacts repositories.ContactRepository, logger *zap.Logger) *ContactResolver {
	return &ContactResolver{contacts: contacts, logger: logger}
}

// Resolve finds the contact for the phone within the company, creating it
// when absent. The rawPhone is canonicalized before lookup so every gateway
// spelling of the same number maps to one contact. Returns whether the
// contact was created.
//
// Query-then-create: two concurrent first messages from the same number can
// race into duplicate contacts. Accepted; the read path always picks one
// deterministically.
func (r *ContactResolver) Resolve(ctx context.Context, companyID uuid.UUID, rawPhone, name string) (*models.Contact, bool, error) {
	canonical := phone.Canonical(rawPhone)
	if canonical == "" {
		return nil, false, fmt.Errorf("empty phone after canonicalization: %q", rawPhone)
	}

	contact, err := r.contacts.FindByPhone(ctx, companyID, canonical)
	if err == nil {
		return contact, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find contact by phone: %w", err)
	}

	contact = &models.Contact{
		CompanyID: companyID,
		Name:      contactName(name, canonical),
		Phone:     canonical,
		Labels:    models.ContactLabels{},
	}
	if err := r.contacts.Create(ctx, contact); err != nil {
		return nil, false, fmt.Errorf("create contact: %w", err)
	}

	r.logger.Info("contact created",
		zap.String("contact_id", contact.ID.String()),
		zap.String("company_id", companyID.String()),
		zap.String("phone", canonical),
	)
	return contact, true, nil
}

// contactName prefers the gateway-provided display name and falls back to
// a phone-based placeholder.
func contactName(name, canonicalPhone string) string {
	if name != "" {
		return name
	}
	return "Contato " + canonicalPhone
}
