package services

import (
	"context"
	"io"

	"github.com/vsconnecto/vsconnecto-api/internal/models"
	"github.com/vsconnecto/vsconnecto-api/internal/wizard"
	"github.com/vsconnecto/vsconnecto-api/pkg/storage"
)

// ProfileStore reads and writes a user's profile on behalf of that user.
// Implemented locally by ProfileService and remotely by profileclient.Client.
type ProfileStore interface {
	GetProfile(ctx context.Context, session *models.UserSession) (*models.User, error)
	UpdateProfile(ctx context.Context, session *models.UserSession, req *models.UpdateProfileRequest) (*models.User, error)
}

// ProviderCacheUpdater refreshes one user's entry in the provider search cache
type ProviderCacheUpdater interface {
	UpdateSingle(ctx context.Context, id string) error
}

// ProviderSearcher serves provider search from a snapshot
type ProviderSearcher interface {
	Search(filter models.ProviderSearchFilter) ([]*models.User, error)
	IsReady() bool
}

// DocumentStorage stores uploaded provider documents
type DocumentStorage interface {
	UploadDocument(ctx context.Context, userID string, kind storage.DocumentKind, body io.Reader, size int64, contentType string) (string, error)
}

// ProfileServiceInterface defines the interface for profile service operations
type ProfileServiceInterface interface {
	ProfileStore
}

// WizardServiceInterface defines the interface for profile wizard operations
type WizardServiceInterface interface {
	Start(ctx context.Context, session *models.UserSession, edit bool) (wizard.Snapshot, error)
	State(session *models.UserSession) (wizard.Snapshot, error)
	Submit(ctx context.Context, session *models.UserSession, step wizard.Step, data []byte) (wizard.Snapshot, error)
	Back(session *models.UserSession) (wizard.Snapshot, error)
	Cancel(session *models.UserSession)
	UploadDocument(ctx context.Context, session *models.UserSession, req *models.UploadDocumentRequest) (string, error)
}

// ProviderServiceInterface defines the interface for provider search
type ProviderServiceInterface interface {
	Search(ctx context.Context, filter models.ProviderSearchFilter) ([]models.ProviderSummary, error)
}

var (
	_ ProfileServiceInterface  = (*ProfileService)(nil)
	_ WizardServiceInterface   = (*WizardService)(nil)
	_ ProviderServiceInterface = (*ProviderService)(nil)
)
