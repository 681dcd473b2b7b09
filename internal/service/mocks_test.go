package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/pkg/pagination"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock Restaurant Repository ---

type mockRestaurantRepository struct {
	mock.Mock
}

func (m *mockRestaurantRepository) Create(ctx context.Context, r *domain.Restaurant) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockRestaurantRepository) CreateMany(ctx context.Context, rs []*domain.Restaurant) error {
	args := m.Called(ctx, rs)
	return args.Error(0)
}

func (m *mockRestaurantRepository) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Restaurant), args.Error(1)
}

func (m *mockRestaurantRepository) GetBySlug(ctx context.Context, slug string) (*domain.Restaurant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Restaurant), args.Error(1)
}

func (m *mockRestaurantRepository) Discover(ctx context.Context, q *domain.DiscoveryQuery) ([]domain.Restaurant, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Restaurant), args.Error(1)
}

func (m *mockRestaurantRepository) ListAll(ctx context.Context) ([]domain.Restaurant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Restaurant), args.Error(1)
}

func (m *mockRestaurantRepository) Update(ctx context.Context, r *domain.Restaurant) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockRestaurantRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRestaurantRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) CreateWithAggregate(ctx context.Context, rv *domain.Review) (domain.Aggregate, error) {
	args := m.Called(ctx, rv)
	return args.Get(0).(domain.Aggregate), args.Error(1)
}

func (m *mockReviewRepository) ListByRestaurant(ctx context.Context, restaurantID string, p pagination.Params) ([]domain.Review, int, error) {
	args := m.Called(ctx, restaurantID, p)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

// --- Mock Event Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) RestaurantCreated(ctx context.Context, r *domain.Restaurant) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockPublisher) RestaurantUpdated(ctx context.Context, r *domain.Restaurant) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockPublisher) RestaurantDeleted(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPublisher) ReviewCreated(ctx context.Context, rv *domain.Review, agg domain.Aggregate) error {
	return m.Called(ctx, rv, agg).Error(0)
}

// --- Mock Search Engine ---

type mockSearchEngine struct {
	mock.Mock
}

func (m *mockSearchEngine) Discover(ctx context.Context, q *domain.DiscoveryQuery) ([]domain.Restaurant, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Restaurant), args.Error(1)
}

func (m *mockSearchEngine) Index(ctx context.Context, r *domain.Restaurant) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockSearchEngine) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSearchEngine) BulkIndex(ctx context.Context, rs []domain.Restaurant) error {
	return m.Called(ctx, rs).Error(0)
}

// --- In-memory cache ---

type memCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) GetJSON(_ context.Context, key string, dst any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func (c *memCache) SetJSON(_ context.Context, key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(v)
	if err == nil {
		c.entries[key] = b
	}
}

func (c *memCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.invalidated++
}

func ptr[T any](v T) *T { return &v }
