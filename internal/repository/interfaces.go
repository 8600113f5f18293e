package repository

import (
	"context"

	"github.com/vsconnecto/vsconnecto-api/internal/models"
)

// UserRepositoryInterface defines user profile data access
type UserRepositoryInterface interface {
	// GetByID fetches a single user
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdateProfile applies a partial profile update and returns the stored row
	UpdateProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.User, error)

	// ListActiveProviders fetches every searchable provider
	ListActiveProviders(ctx context.Context) ([]*models.User, error)

	// Ping checks connectivity
	Ping(ctx context.Context) error
}

var _ UserRepositoryInterface = (*UserRepository)(nil)
