package cache_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vsconnecto/vsconnecto-api/internal/cache"
	"github.com/vsconnecto/vsconnecto-api/internal/models"
	"github.com/vsconnecto/vsconnecto-api/internal/wizard"
)

type mockDataSource struct {
	mock.Mock
}

func (m *mockDataSource) ListActiveProviders(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockDataSource) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func provider(id, name, city string, rating float64, jobs int, services ...string) *models.User {
	return &models.User{
		ID:               id,
		FullName:         name,
		Role:             models.RoleProvider,
		City:             city,
		Services:         services,
		Rating:           rating,
		CompletedJobs:    jobs,
		IsActive:         true,
		ProfileCompleted: true,
	}
}

func newReadyCache(t *testing.T, providers []*models.User) (*cache.ProviderCache, *mockDataSource) {
	t.Helper()
	ds := new(mockDataSource)
	ds.On("ListActiveProviders", mock.Anything).Return(providers, nil).Once()

	pc := cache.NewProviderCache(ds, 3600)
	require.NoError(t, pc.Initialize())
	t.Cleanup(pc.Stop)
	return pc, ds
}

func TestProviderCache_NotReady(t *testing.T) {
	pc := cache.NewProviderCache(new(mockDataSource), 60)

	assert.False(t, pc.IsReady())
	_, err := pc.Search(models.ProviderSearchFilter{})
	assert.Error(t, err)
}

func TestProviderCache_SearchFiltersAndSorts(t *testing.T) {
	inactive := provider("4", "Gone", "Mumbai", 5, 100, "Plumbing")
	inactive.IsActive = false
	incomplete := provider("5", "Half", "Mumbai", 5, 100, "Plumbing")
	incomplete.ProfileCompleted = false

	pc, ds := newReadyCache(t, []*models.User{
		provider("1", "Asha", "Mumbai", 4.5, 10, "Plumbing", "Carpentry"),
		provider("2", "Ravi", "Navi Mumbai", 4.5, 30, "plumbing"),
		provider("3", "Meena", "Pune", 4.9, 5, "Painting"),
		inactive,
		incomplete,
	})
	ds.AssertExpectations(t)

	all, err := pc.Search(models.ProviderSearchFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	byCategory, err := pc.Search(models.ProviderSearchFilter{Category: "PLUMBING"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	byCity, err := pc.Search(models.ProviderSearchFilter{City: "mumbai"})
	require.NoError(t, err)
	assert.Len(t, byCity, 2)

	bySearch, err := pc.Search(models.ProviderSearchFilter{Search: "carp"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "1", bySearch[0].ID)

	byRating, err := pc.Search(models.ProviderSearchFilter{MinRating: 4.6})
	require.NoError(t, err)
	require.Len(t, byRating, 1)
	assert.Equal(t, "3", byRating[0].ID)
}

func TestProviderCache_SearchLimit(t *testing.T) {
	providers := make([]*models.User, 0, cache.SearchLimit+10)
	for i := 0; i < cache.SearchLimit+10; i++ {
		providers = append(providers, provider(fmt.Sprint(i), "P", "Delhi", 4, i, "Cleaning"))
	}
	pc, _ := newReadyCache(t, providers)

	result, err := pc.Search(models.ProviderSearchFilter{})
	require.NoError(t, err)
	assert.Len(t, result, cache.SearchLimit)
}

func TestProviderCache_UpdateSingle(t *testing.T) {
	pc, ds := newReadyCache(t, []*models.User{provider("1", "Asha", "Mumbai", 4, 1, "Plumbing")})
	ctx := context.Background()

	ds.On("GetByID", ctx, "2").Return(provider("2", "New", "Mumbai", 3, 0, "Painting"), nil).Once()
	require.NoError(t, pc.UpdateSingle(ctx, "2"))
	all, err := pc.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	deactivated := provider("1", "Asha", "Mumbai", 4, 1, "Plumbing")
	deactivated.IsActive = false
	ds.On("GetByID", ctx, "1").Return(deactivated, nil).Once()
	require.NoError(t, pc.UpdateSingle(ctx, "1"))
	all, err = pc.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "2", all[0].ID)

	ds.On("GetByID", ctx, "9").Return(nil, errors.New("db down")).Once()
	assert.Error(t, pc.UpdateSingle(ctx, "9"))

	ds.AssertExpectations(t)
}

func TestWizardStore(t *testing.T) {
	store := cache.NewWizardStore(time.Minute)

	_, ok := store.Get("u-1")
	assert.False(t, ok)

	ctrl := wizard.Initialize(models.RoleClient, nil)
	store.Put("u-1", ctrl)

	got, ok := store.Get("u-1")
	require.True(t, ok)
	assert.Same(t, ctrl, got)
	assert.Equal(t, 1, store.Count())

	store.Delete("u-1")
	_, ok = store.Get("u-1")
	assert.False(t, ok)
}

func TestWizardStore_Expires(t *testing.T) {
	store := cache.NewWizardStore(50 * time.Millisecond)
	store.Put("u-1", wizard.Initialize(models.RoleProvider, nil))

	time.Sleep(80 * time.Millisecond)
	_, ok := store.Get("u-1")
	assert.False(t, ok)
}
