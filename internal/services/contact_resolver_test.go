package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/contabhub/onety-sub018/internal/models"
	"github.com/contabhub/onety-sub018/internal/services"
	"github.com/contabhub/onety-sub018/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactResolverReusesExisting(t *testing.T) {
	companyID := uuid.New()
	existing := &models.Contact{CompanyID: companyID, Name: "Maria", Phone: "5511999990000"}
	existing.ID = uuid.New()

	repo := &memContactRepo{contacts: []*models.Contact{existing}}
	resolver := services.NewContactResolver(repo, logger.NewNop())

	contact, created, err := resolver.Resolve(context.Background(), companyID, "+55 (11) 99999-0000", "Maria")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, contact.ID)
	assert.Len(t, repo.contacts, 1)
}

func TestContactResolverCreatesWhenAbsent(t *testing.T) {
	companyID := uuid.New()
	repo := &memContactRepo{}
	resolver := services.NewContactResolver(repo, logger.NewNop())

	contact, created, err := resolver.Resolve(context.Background(), companyID, "11999990000", "Maria")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "5511999990000", contact.Phone)
	assert.Equal(t, "Maria", contact.Name)
	assert.Equal(t, companyID, contact.CompanyID)
}

func TestContactResolverPlaceholderName(t *testing.T) {
	resolver := services.NewContactResolver(&memContactRepo{}, logger.NewNop())

	contact, _, err := resolver.Resolve(context.Background(), uuid.New(), "5511999990000", "")

	require.NoError(t, err)
	assert.Equal(t, "Contato 5511999990000", contact.Name)
}

func TestContactResolverEmptyPhone(t *testing.T) {
	resolver := services.NewContactResolver(&memContactRepo{}, logger.NewNop())

	_, _, err := resolver.Resolve(context.Background(), uuid.New(), "  ", "Maria")

	assert.Error(t, err)
}

func TestContactResolverPropagatesRepositoryErrors(t *testing.T) {
	repo := &memContactRepo{findErr: errors.New("connection refused")}
	resolver := services.NewContactResolver(repo, logger.NewNop())

	_, _, err := resolver.Resolve(context.Background(), uuid.New(), "5511999990000", "Maria")

	assert.Error(t, err)
}
