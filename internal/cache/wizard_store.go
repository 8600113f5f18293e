package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/vsconnecto/vsconnecto-api/internal/wizard"
	"github.com/vsconnecto/vsconnecto-api/pkg/metrics"
)

const wizardKeyPrefix = "wizard:"

// WizardStore holds one in-progress wizard per user. Entries expire after ttl of inactivity.
type WizardStore struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewWizardStore creates a store whose sessions expire after ttl without a Get or Put
func NewWizardStore(ttl time.Duration) *WizardStore {
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	return &WizardStore{
		cache: gocache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Get returns the user's wizard and extends its lifetime
func (s *WizardStore) Get(userID string) (*wizard.Controller, bool) {
	data, found := s.cache.Get(wizardKeyPrefix + userID)
	if !found {
		metrics.CacheMisses.WithLabelValues("wizard_session").Inc()
		return nil, false
	}
	ctrl, ok := data.(*wizard.Controller)
	if !ok {
		s.cache.Delete(wizardKeyPrefix + userID)
		return nil, false
	}
	metrics.CacheHits.WithLabelValues("wizard_session").Inc()
	s.cache.Set(wizardKeyPrefix+userID, ctrl, s.ttl)
	return ctrl, true
}

// Put stores ctrl as the user's wizard, replacing any previous one
func (s *WizardStore) Put(userID string, ctrl *wizard.Controller) {
	s.cache.Set(wizardKeyPrefix+userID, ctrl, s.ttl)
	metrics.CacheSize.WithLabelValues("wizard_sessions").Set(float64(s.cache.ItemCount()))
}

// Delete discards the user's wizard
func (s *WizardStore) Delete(userID string) {
	s.cache.Delete(wizardKeyPrefix + userID)
	metrics.CacheSize.WithLabelValues("wizard_sessions").Set(float64(s.cache.ItemCount()))
}

// Count returns the number of live sessions, including expired ones not yet swept
func (s *WizardStore) Count() int {
	return s.cache.ItemCount()
}
