package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsconnecto/vsconnecto-api/internal/models"
	"github.com/vsconnecto/vsconnecto-api/internal/services"
	apperrors "github.com/vsconnecto/vsconnecto-api/pkg/errors"
)

func TestProviderService_Search(t *testing.T) {
	providers := new(MockProviderCache)
	service := services.NewProviderService(providers)

	providers.On("IsReady").Return(true)
	providers.On("Search", models.ProviderSearchFilter{Category: "Plumbing", City: "Pune"}).Return([]*models.User{
		{
			ID:       "p-1",
			FullName: "Ravi Kumar",
			Role:     models.RoleProvider,
			City:     "Pune",
			Phone:    "9876543210",
			Services: []string{"Plumbing"},
			Rating:   4.5,
		},
	}, nil).Once()

	results, err := service.Search(context.Background(), models.ProviderSearchFilter{Category: "  Plumbing ", City: "Pune "})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "p-1", results[0].ID)
	assert.Equal(t, "Ravi Kumar", results[0].FullName)

	providers.AssertExpectations(t)
}

func TestProviderService_Search_NotReady(t *testing.T) {
	providers := new(MockProviderCache)
	service := services.NewProviderService(providers)

	providers.On("IsReady").Return(false)

	_, err := service.Search(context.Background(), models.ProviderSearchFilter{})
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	providers.AssertNotCalled(t, "Search")
}
