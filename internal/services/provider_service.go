package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/vsconnecto/vsconnecto-api/internal/models"
	apperrors "github.com/vsconnecto/vsconnecto-api/pkg/errors"
	"github.com/vsconnecto/vsconnecto-api/pkg/logger"
	"github.com/vsconnecto/vsconnecto-api/pkg/metrics"
)

// ProviderService serves provider search from the provider cache
type ProviderService struct {
	providers ProviderSearcher
}

// NewProviderService creates a provider search service
func NewProviderService(providers ProviderSearcher) *ProviderService {
	return &ProviderService{providers: providers}
}

// Search returns the public view of the providers matching filter
func (s *ProviderService) Search(ctx context.Context, filter models.ProviderSearchFilter) ([]models.ProviderSummary, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.City = strings.TrimSpace(filter.City)
	filter.Search = strings.TrimSpace(filter.Search)

	if !s.providers.IsReady() {
		metrics.ProviderSearches.WithLabelValues("unavailable").Inc()
		return nil, apperrors.InternalError("provider search is warming up")
	}

	users, err := s.providers.Search(filter)
	if err != nil {
		metrics.ProviderSearches.WithLabelValues("error").Inc()
		logger.LogError(ctx, err, "Provider search failed")
		return nil, err
	}

	summaries := make([]models.ProviderSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, models.NewProviderSummary(u))
	}

	metrics.ProviderSearches.WithLabelValues("success").Inc()
	logger.Debug("Provider search served",
		zap.String("category", filter.Category),
		zap.String("city", filter.City),
		zap.Int("count", len(summaries)))

	return summaries, nil
}
