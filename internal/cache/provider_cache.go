package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/vsconnecto/vsconnecto-api/internal/models"
	"github.com/vsconnecto/vsconnecto-api/pkg/logger"
	"github.com/vsconnecto/vsconnecto-api/pkg/metrics"
)

// ProviderDataSource loads searchable providers from the user store
type ProviderDataSource interface {
	ListActiveProviders(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

const (
	providerKeyPrefix = "provider:id:"
	allProvidersKey   = "provider:all"
	cacheCheckPeriod  = 10 * time.Second
	maxRetries        = 3
	initialRetryWait  = 2 * time.Second

	// SearchLimit caps the number of providers returned by a search
	SearchLimit = 50
)

// ProviderCache keeps completed, active providers in memory for search.
// Each provider is stored under its own key; the id list carries the TTL.
type ProviderCache struct {
	cache       *gocache.Cache
	dataSource  ProviderDataSource
	mu          sync.RWMutex
	refreshing  bool
	ready       bool
	ttl         time.Duration
	lastRefresh time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewProviderCache creates an empty cache. Call Initialize before serving searches.
func NewProviderCache(dataSource ProviderDataSource, ttlSeconds int) *ProviderCache {
	return &ProviderCache{
		cache:      gocache.New(gocache.NoExpiration, cacheCheckPeriod),
		dataSource: dataSource,
		ttl:        time.Duration(ttlSeconds) * time.Second,
		stop:       make(chan struct{}),
	}
}

// Initialize performs the first load synchronously and starts the refresh loop
func (pc *ProviderCache) Initialize() error {
	logger.Info("Initializing provider cache...")
	startTime := time.Now()

	if err := pc.refreshWithRetry(); err != nil {
		logger.Error("Failed to initialize provider cache", zap.Error(err))
		return err
	}

	pc.mu.Lock()
	pc.ready = true
	pc.lastRefresh = time.Now()
	pc.mu.Unlock()

	logger.Info("Provider cache initialized successfully",
		zap.Duration("duration", time.Since(startTime)))

	go pc.schedulePeriodicRefresh()

	return nil
}

// Stop ends the background refresh loop
func (pc *ProviderCache) Stop() {
	pc.stopOnce.Do(func() { close(pc.stop) })
}

// IsReady returns true once the first load succeeded
func (pc *ProviderCache) IsReady() bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.ready
}

// LastRefresh returns when the cache was last fully reloaded
func (pc *ProviderCache) LastRefresh() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.lastRefresh
}

// All returns every cached provider. It never hits the data source.
func (pc *ProviderCache) All() ([]*models.User, error) {
	if !pc.IsReady() {
		return nil, fmt.Errorf("cache not initialized")
	}

	idsData, found := pc.cache.Get(allProvidersKey)
	if !found {
		metrics.CacheMisses.WithLabelValues("provider_all").Inc()
		logger.Warn("Provider list not in cache (expired), returning empty")
		return []*models.User{}, nil
	}

	ids, ok := idsData.([]string)
	if !ok {
		logger.Error("Invalid cache data type for provider list")
		return []*models.User{}, nil
	}
	metrics.CacheHits.WithLabelValues("provider_all").Inc()

	providers := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		data, found := pc.cache.Get(providerKeyPrefix + id)
		if !found {
			continue
		}
		if u, ok := data.(*models.User); ok {
			providers = append(providers, u)
		}
	}
	return providers, nil
}

// Search filters cached providers and orders them by rating, then completed jobs
func (pc *ProviderCache) Search(filter models.ProviderSearchFilter) ([]*models.User, error) {
	providers, err := pc.All()
	if err != nil {
		return nil, err
	}

	matches := make([]*models.User, 0, len(providers))
	for _, p := range providers {
		if matchesFilter(p, filter) {
			matches = append(matches, p)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Rating != matches[j].Rating {
			return matches[i].Rating > matches[j].Rating
		}
		return matches[i].CompletedJobs > matches[j].CompletedJobs
	})

	if len(matches) > SearchLimit {
		matches = matches[:SearchLimit]
	}
	return matches, nil
}

func matchesFilter(p *models.User, f models.ProviderSearchFilter) bool {
	if f.Category != "" && !containsFold(p.Services, f.Category) {
		return false
	}
	if f.City != "" && !strings.Contains(strings.ToLower(p.City), strings.ToLower(f.City)) {
		return false
	}
	if f.MinRating > 0 && p.Rating < f.MinRating {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystack := []string{p.FullName, p.Bio, p.City, p.Area}
		haystack = append(haystack, p.Skills...)
		haystack = append(haystack, p.Services...)
		found := false
		for _, h := range haystack {
			if strings.Contains(strings.ToLower(h), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsFold(items []string, target string) bool {
	for _, item := range items {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}

// UpdateSingle reloads one user. Users that are no longer searchable are removed.
// Called after a profile update so search does not wait for the next refresh.
func (pc *ProviderCache) UpdateSingle(ctx context.Context, id string) error {
	if !pc.IsReady() {
		return fmt.Errorf("cache not initialized")
	}

	user, err := pc.dataSource.GetByID(ctx, id)
	if err != nil {
		logger.Error("Failed to fetch provider from data source",
			zap.String("user_id", id),
			zap.Error(err))
		return err
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	if !searchable(user) {
		pc.removeLocked(id)
		return nil
	}

	pc.cache.Set(providerKeyPrefix+id, user, gocache.NoExpiration)
	pc.ensureInListLocked(id)

	logger.Debug("Provider cache entry updated", zap.String("user_id", id))
	return nil
}

func searchable(u *models.User) bool {
	return u != nil && u.Role == models.RoleProvider && u.IsActive && u.ProfileCompleted
}

func (pc *ProviderCache) removeLocked(id string) {
	pc.cache.Delete(providerKeyPrefix + id)

	idsData, found := pc.cache.Get(allProvidersKey)
	if !found {
		return
	}
	ids, ok := idsData.([]string)
	if !ok {
		return
	}
	kept := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	pc.cache.Set(allProvidersKey, kept, pc.ttl)
	metrics.CacheSize.WithLabelValues("providers").Set(float64(len(kept)))
}

// ensureInListLocked must be called with pc.mu held
func (pc *ProviderCache) ensureInListLocked(id string) {
	idsData, found := pc.cache.Get(allProvidersKey)
	if !found {
		return
	}
	ids, ok := idsData.([]string)
	if !ok {
		return
	}
	for _, existing := range ids {
		if existing == id {
			return
		}
	}
	ids = append(ids[:len(ids):len(ids)], id)
	pc.cache.Set(allProvidersKey, ids, pc.ttl)
	metrics.CacheSize.WithLabelValues("providers").Set(float64(len(ids)))
}

func (pc *ProviderCache) schedulePeriodicRefresh() {
	ticker := time.NewTicker(pc.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-pc.stop:
			return
		case <-ticker.C:
			if err := pc.refreshInBackground(); err != nil {
				logger.Error("Scheduled provider cache refresh failed", zap.Error(err))
			}
		}
	}
}

func (pc *ProviderCache) refreshInBackground() error {
	pc.mu.Lock()
	if pc.refreshing {
		pc.mu.Unlock()
		logger.Debug("Provider refresh already in progress, skipping")
		return nil
	}
	pc.refreshing = true
	pc.mu.Unlock()

	defer func() {
		pc.mu.Lock()
		pc.refreshing = false
		pc.mu.Unlock()
	}()

	providers, err := pc.dataSource.ListActiveProviders(context.Background())
	if err != nil {
		return err
	}
	pc.populate(providers)

	pc.mu.Lock()
	pc.lastRefresh = time.Now()
	pc.mu.Unlock()
	return nil
}

func (pc *ProviderCache) refreshWithRetry() error {
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			//nolint:gosec // G115: attempt is bounded by maxRetries
			wait := initialRetryWait * time.Duration(1<<uint(attempt-1))
			logger.Info("Retrying provider cache refresh",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait_time", wait))
			time.Sleep(wait)
		}

		providers, fetchErr := pc.dataSource.ListActiveProviders(context.Background())
		if fetchErr != nil {
			err = fetchErr
			logger.Error("Provider cache refresh attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}

		pc.populate(providers)
		return nil
	}

	return fmt.Errorf("failed to refresh provider cache after %d attempts: %w", maxRetries, err)
}

func (pc *ProviderCache) populate(providers []*models.User) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	ids := make([]string, 0, len(providers))
	for _, p := range providers {
		if !searchable(p) {
			continue
		}
		pc.cache.Set(providerKeyPrefix+p.ID, p, gocache.NoExpiration)
		ids = append(ids, p.ID)
	}
	pc.cache.Set(allProvidersKey, ids, pc.ttl)

	metrics.CacheSize.WithLabelValues("providers").Set(float64(len(ids)))
	logger.Info("Provider cache populated", zap.Int("count", len(ids)))
}
