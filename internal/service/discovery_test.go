package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/pkg/validator"
)

func nagpurRestaurants() []domain.Restaurant {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Restaurant{
		{ID: "kitchen", Name: "The Nagpur Kitchen", Rating: 4.8, Verified: true,
			Location: domain.NewPoint(21.1458, 79.0882), CreatedAt: base},
		{ID: "latte", Name: "Love & Latte", Rating: 4.6, Verified: true,
			Location: domain.NewPoint(21.1370, 79.0650), CreatedAt: base.Add(time.Hour)},
		{ID: "sky", Name: "Sky High Lounge", Rating: 4.5, Verified: false,
			Location: domain.NewPoint(21.1620, 79.0860), CreatedAt: base.Add(2 * time.Hour)},
		{ID: "saoji", Name: "Saoji Delight", Rating: 4.9, Verified: false,
			Location: domain.NewPoint(21.1200, 79.0500), CreatedAt: base.Add(3 * time.Hour)},
	}
}

func ids(rs []domain.Restaurant) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestRank_WithoutLocationOrdersByRatingThenVerified(t *testing.T) {
	rs := nagpurRestaurants()
	rs = append(rs, domain.Restaurant{ID: "tie", Rating: 4.8, Verified: false})
	q := domain.NewDiscoveryQuery()

	Rank(rs, &q)

	assert.Equal(t, []string{"saoji", "kitchen", "tie", "latte", "sky"}, ids(rs))
	for _, r := range rs {
		assert.Nil(t, r.Distance)
	}
}

func TestRank_WithLocationPutsVerifiedFirstThenNearest(t *testing.T) {
	rs := nagpurRestaurants()
	q := domain.NewDiscoveryQuery()
	q.Lat, q.Lng = ptr(21.1458), ptr(79.0882)

	Rank(rs, &q)

	assert.Equal(t, []string{"kitchen", "latte", "sky", "saoji"}, ids(rs))
	require.NotNil(t, rs[0].Distance)
	assert.Equal(t, 0.0, *rs[0].Distance)
	assert.Equal(t, 2.6, *rs[1].Distance)
	assert.Equal(t, 1.8, *rs[2].Distance)
	assert.Equal(t, 4.9, *rs[3].Distance)
}

func TestRank_EqualKeysKeepBackendOrder(t *testing.T) {
	rs := []domain.Restaurant{
		{ID: "a", Rating: 4.0},
		{ID: "b", Rating: 4.0},
		{ID: "c", Rating: 4.0},
	}
	q := domain.NewDiscoveryQuery()

	Rank(rs, &q)

	assert.Equal(t, []string{"a", "b", "c"}, ids(rs))
}

func TestDiscover_RanksAndCountsQuery(t *testing.T) {
	backend := new(mockSearchEngine)
	metrics := NewMetrics(prometheus.NewRegistry())
	svc := NewDiscoveryService(backend, "memory", nil, metrics, newTestLogger())
	ctx := context.Background()

	q := domain.NewDiscoveryQuery()
	q.Lat, q.Lng = ptr(21.1458), ptr(79.0882)
	backend.On("Discover", ctx, mock.AnythingOfType("*domain.DiscoveryQuery")).Return(nagpurRestaurants(), nil)

	rs, err := svc.Discover(ctx, q)

	require.NoError(t, err)
	assert.Equal(t, "kitchen", rs[0].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.discoveryQueries.WithLabelValues("memory", "true")))
}

func TestDiscover_InvalidQuery(t *testing.T) {
	backend := new(mockSearchEngine)
	svc := NewDiscoveryService(backend, "postgres", nil, nil, newTestLogger())

	q := domain.NewDiscoveryQuery()
	q.Lat = ptr(95.0)
	_, err := svc.Discover(context.Background(), q)

	var ve *validator.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields(), "lat")
	backend.AssertNotCalled(t, "Discover", mock.Anything, mock.Anything)
}

func TestDiscover_BackendError(t *testing.T) {
	backend := new(mockSearchEngine)
	svc := NewDiscoveryService(backend, "postgres", nil, nil, newTestLogger())
	ctx := context.Background()

	backend.On("Discover", ctx, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := svc.Discover(ctx, domain.NewDiscoveryQuery())

	assert.ErrorContains(t, err, "connection refused")
}

func TestDiscover_CachesUntilInvalidated(t *testing.T) {
	backend := new(mockSearchEngine)
	cache := newMemCache()
	svc := NewDiscoveryService(backend, "postgres", cache, nil, newTestLogger())
	ctx := context.Background()

	backend.On("Discover", ctx, mock.Anything).Return(nagpurRestaurants(), nil)

	q := domain.NewDiscoveryQuery()
	q.Tags = []string{"Budget", "Pure Veg"}
	first, err := svc.Discover(ctx, q)
	require.NoError(t, err)

	// Same query with tags in another order shares the entry.
	q.Tags = []string{"Pure Veg", "Budget"}
	second, err := svc.Discover(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(second))
	backend.AssertNumberOfCalls(t, "Discover", 1)

	cache.Invalidate(ctx)
	_, err = svc.Discover(ctx, q)
	require.NoError(t, err)
	backend.AssertNumberOfCalls(t, "Discover", 2)
}

func TestDiscoveryCacheKey(t *testing.T) {
	base := domain.NewDiscoveryQuery()
	base.Search = "Saoji"

	lower := base
	lower.Search = "saoji"
	assert.Equal(t, discoveryCacheKey(&base), discoveryCacheKey(&lower))

	verified := base
	verified.Verified = true
	assert.NotEqual(t, discoveryCacheKey(&base), discoveryCacheKey(&verified))

	located := base
	located.Lat, located.Lng = ptr(21.1), ptr(79.0)
	assert.NotEqual(t, discoveryCacheKey(&base), discoveryCacheKey(&located))
}
