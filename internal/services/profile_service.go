package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/vsconnecto/vsconnecto-api/internal/models"
	"github.com/vsconnecto/vsconnecto-api/internal/repository"
	apperrors "github.com/vsconnecto/vsconnecto-api/pkg/errors"
	"github.com/vsconnecto/vsconnecto-api/pkg/logger"
	"github.com/vsconnecto/vsconnecto-api/pkg/metrics"
)

// ProfileService reads and writes profiles in the local database
type ProfileService struct {
	userRepo  repository.UserRepositoryInterface
	providers ProviderCacheUpdater
}

// NewProfileService creates a profile service. providers may be nil.
func NewProfileService(userRepo repository.UserRepositoryInterface, providers ProviderCacheUpdater) *ProfileService {
	return &ProfileService{
		userRepo:  userRepo,
		providers: providers,
	}
}

// GetProfile returns the caller's profile
func (s *ProfileService) GetProfile(ctx context.Context, session *models.UserSession) (*models.User, error) {
	if session == nil || session.UserID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	return s.userRepo.GetByID(ctx, session.UserID)
}

// UpdateProfile applies a partial update to the caller's profile. Fields that belong to the
// other role are dropped so a user never carries both variants.
func (s *ProfileService) UpdateProfile(ctx context.Context, session *models.UserSession, req *models.UpdateProfileRequest) (*models.User, error) {
	if session == nil || session.UserID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	clean := sanitizeUpdate(session.Role, req)

	user, err := s.userRepo.UpdateProfile(ctx, session.UserID, clean)
	if err != nil {
		metrics.ProfileUpdates.WithLabelValues("error").Inc()
		logger.LogError(ctx, err, "Failed to update profile", zap.String("user_id", session.UserID))
		return nil, err
	}
	metrics.ProfileUpdates.WithLabelValues("success").Inc()

	logger.Info("Profile updated",
		zap.String("user_id", session.UserID),
		zap.String("role", string(session.Role)),
		zap.Bool("profile_completed", user.ProfileCompleted))

	if s.providers != nil && user.Role == models.RoleProvider {
		if err := s.providers.UpdateSingle(ctx, user.ID); err != nil {
			// search catches up on the next scheduled refresh
			logger.Warn("Failed to refresh provider cache entry",
				zap.String("user_id", user.ID),
				zap.Error(err))
		}
	}

	return user, nil
}

func sanitizeUpdate(role models.Role, req *models.UpdateProfileRequest) *models.UpdateProfileRequest {
	clean := *req
	clean.Availability = dropBlank(req.Availability)
	clean.Services = dropBlank(req.Services)
	clean.Skills = dropBlank(req.Skills)

	if role == models.RoleProvider {
		clean.Preferences = nil
		clean.Address = nil
		clean.Landmark = nil
		clean.Pincode = nil
	} else {
		clean.ProviderType = nil
		clean.Services = nil
		clean.Skills = nil
		clean.Experience = nil
		clean.HourlyRate = nil
		clean.Availability = nil
		clean.Documents = nil
	}
	return &clean
}

// dropBlank keeps nil as nil so the column is left untouched
func dropBlank(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, strings.TrimSpace(item))
		}
	}
	return out
}
