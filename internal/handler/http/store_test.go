package http

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	apperrors "github.com/Akshaybondre123/First-Startup/pkg/errors"
	"github.com/Akshaybondre123/First-Startup/pkg/pagination"
)

// fakeStore is an in-memory implementation of both repositories.
type fakeStore struct {
	mu          sync.Mutex
	restaurants map[string]domain.Restaurant
	reviews     []domain.Review
}

func newFakeStore() *fakeStore {
	return &fakeStore{restaurants: make(map[string]domain.Restaurant)}
}

func (s *fakeStore) slugTaken(slug string) bool {
	for _, r := range s.restaurants {
		if r.Slug == slug {
			return true
		}
	}
	return false
}

func (s *fakeStore) Create(_ context.Context, r *domain.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slugTaken(r.Slug) {
		return apperrors.AlreadyExists("Restaurant", "slug", r.Slug)
	}
	s.restaurants[r.ID] = *r
	return nil
}

func (s *fakeStore) CreateMany(_ context.Context, rs []*domain.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rs {
		if s.slugTaken(r.Slug) {
			return apperrors.AlreadyExists("Restaurant", "slug", r.Slug)
		}
	}
	for _, r := range rs {
		s.restaurants[r.ID] = *r
	}
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*domain.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[id]
	if !ok {
		return nil, apperrors.NotFound("Restaurant", "")
	}
	return &r, nil
}

func (s *fakeStore) GetBySlug(_ context.Context, slug string) (*domain.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.restaurants {
		if r.Slug == slug {
			return &r, nil
		}
	}
	return nil, apperrors.NotFound("Restaurant", "")
}

func (s *fakeStore) Discover(context.Context, *domain.DiscoveryQuery) ([]domain.Restaurant, error) {
	return nil, nil
}

func (s *fakeStore) ListAll(context.Context) ([]domain.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Restaurant, 0, len(s.restaurants))
	for _, r := range s.restaurants {
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeStore) Update(_ context.Context, r *domain.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.restaurants[r.ID]
	if !ok {
		return apperrors.NotFound("Restaurant", "")
	}
	next := *r
	next.Rating, next.ReviewCount, next.RatingSum = old.Rating, old.ReviewCount, old.RatingSum
	s.restaurants[r.ID] = next
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.restaurants[id]; !ok {
		return apperrors.NotFound("Restaurant", "")
	}
	delete(s.restaurants, id)
	kept := s.reviews[:0]
	for _, rv := range s.reviews {
		if rv.RestaurantID != id {
			kept = append(kept, rv)
		}
	}
	s.reviews = kept
	return nil
}

func (s *fakeStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.restaurants), nil
}

func (s *fakeStore) CreateWithAggregate(_ context.Context, rv *domain.Review) (domain.Aggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[rv.RestaurantID]
	if !ok {
		return domain.Aggregate{}, apperrors.NotFound("Restaurant", "")
	}
	s.reviews = append(s.reviews, *rv)
	r.RatingSum += float64(rv.Rating)
	r.ReviewCount++
	r.Rating = math.Round(r.RatingSum/float64(r.ReviewCount)*10) / 10
	s.restaurants[r.ID] = r
	return domain.Aggregate{RestaurantID: r.ID, Rating: r.Rating, ReviewCount: r.ReviewCount}, nil
}

func (s *fakeStore) ListByRestaurant(_ context.Context, restaurantID string, p pagination.Params) ([]domain.Review, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []domain.Review
	for _, rv := range s.reviews {
		if rv.RestaurantID == restaurantID {
			matched = append(matched, rv)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	if p.Offset >= total {
		return []domain.Review{}, total, nil
	}
	end := min(p.Offset+p.Limit, total)
	return matched[p.Offset:end], total, nil
}
