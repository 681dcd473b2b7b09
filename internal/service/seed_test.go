package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/internal/seed"
	apperrors "github.com/Akshaybondre123/First-Startup/pkg/errors"
)

func TestSeed_InsertsFixturesIntoEmptyStore(t *testing.T) {
	repo := new(mockRestaurantRepository)
	events := new(mockPublisher)
	cache := newMemCache()
	svc := NewSeedService(repo, seed.Fixtures, Effects{Events: events, Cache: cache}, newTestLogger())
	ctx := context.Background()

	repo.On("Count", ctx).Return(0, nil)
	repo.On("CreateMany", ctx, mock.MatchedBy(func(rs []*domain.Restaurant) bool {
		return len(rs) == 4
	})).Return(nil)
	events.On("RestaurantCreated", ctx, mock.AnythingOfType("*domain.Restaurant")).Return(nil)

	res, err := svc.Seed(ctx)

	require.NoError(t, err)
	assert.True(t, res.Seeded)
	assert.Equal(t, "Seeded 4 restaurants", res.Message)
	require.Len(t, res.Restaurants, 4)
	slugs := map[string]bool{}
	for _, r := range res.Restaurants {
		assert.NotEmpty(t, r.ID)
		assert.True(t, r.Verified)
		assert.False(t, r.CreatedAt.IsZero())
		assert.InDelta(t, r.Rating*float64(r.ReviewCount), r.RatingSum, 0.5)
		slugs[r.Slug] = true
	}
	assert.True(t, slugs["the-nagpur-kitchen"])
	assert.True(t, slugs["love-and-latte"])
	assert.GreaterOrEqual(t, cache.invalidated, 1)
	events.AssertNumberOfCalls(t, "RestaurantCreated", 4)
}

func TestSeed_RefusesWhenRestaurantsExist(t *testing.T) {
	repo := new(mockRestaurantRepository)
	svc := NewSeedService(repo, seed.Fixtures, Effects{}, newTestLogger())
	ctx := context.Background()

	repo.On("Count", ctx).Return(3, nil)

	res, err := svc.Seed(ctx)

	require.NoError(t, err)
	assert.False(t, res.Seeded)
	assert.Equal(t, "Restaurants already exist. Delete them first to reseed.", res.Message)
	repo.AssertNotCalled(t, "CreateMany", mock.Anything, mock.Anything)
}

func TestSeed_ConcurrentSeedLosesRace(t *testing.T) {
	repo := new(mockRestaurantRepository)
	svc := NewSeedService(repo, seed.Fixtures, Effects{}, newTestLogger())
	ctx := context.Background()

	repo.On("Count", ctx).Return(0, nil)
	repo.On("CreateMany", ctx, mock.Anything).
		Return(apperrors.AlreadyExists("Restaurant", "slug", "the-nagpur-kitchen"))

	res, err := svc.Seed(ctx)

	require.NoError(t, err)
	assert.False(t, res.Seeded)
	assert.Equal(t, SeedRefusedMessage, res.Message)
}

func TestSeed_FixtureError(t *testing.T) {
	repo := new(mockRestaurantRepository)
	broken := func() ([]domain.Restaurant, error) { return nil, errors.New("bad schema") }
	svc := NewSeedService(repo, broken, Effects{}, newTestLogger())
	ctx := context.Background()

	repo.On("Count", ctx).Return(0, nil)

	_, err := svc.Seed(ctx)

	assert.ErrorContains(t, err, "bad schema")
}

func TestReindex_BulkLoadsCatalogue(t *testing.T) {
	repo := new(mockRestaurantRepository)
	eng := new(mockSearchEngine)
	svc := NewReindexService(repo, eng, newTestLogger())
	ctx := context.Background()

	all := nagpurRestaurants()
	repo.On("ListAll", ctx).Return(all, nil)
	eng.On("BulkIndex", ctx, all).Return(nil)

	n, err := svc.Reindex(ctx)

	require.NoError(t, err)
	assert.Equal(t, 4, n)
	eng.AssertExpectations(t)
}

func TestReindex_WithoutEngine(t *testing.T) {
	repo := new(mockRestaurantRepository)
	svc := NewReindexService(repo, nil, newTestLogger())

	_, err := svc.Reindex(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	repo.AssertNotCalled(t, "ListAll", mock.Anything)
}
