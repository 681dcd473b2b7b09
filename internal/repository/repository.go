package repository

import (
	"context"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/pkg/pagination"
)

// RestaurantRepository is the authoritative store for listings.
type RestaurantRepository interface {
	// Create inserts a new restaurant. A slug collision returns an
	// ALREADY_EXISTS error.
	Create(ctx context.Context, r *domain.Restaurant) error

	// CreateMany inserts all restaurants in a single transaction.
	CreateMany(ctx context.Context, rs []*domain.Restaurant) error

	GetByID(ctx context.Context, id string) (*domain.Restaurant, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Restaurant, error)

	// Discover returns up to domain.MaxResults restaurants matching q.
	Discover(ctx context.Context, q *domain.DiscoveryQuery) ([]domain.Restaurant, error)

	// ListAll returns every restaurant, oldest first.
	ListAll(ctx context.Context) ([]domain.Restaurant, error)

	// Update writes the listing's editable fields. Review aggregates are
	// left untouched.
	Update(ctx context.Context, r *domain.Restaurant) error

	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// ReviewRepository persists reviews.
type ReviewRepository interface {
	// CreateWithAggregate stores rv and folds its rating into the parent
	// restaurant's aggregate in one transaction. An unknown restaurant
	// returns NOT_FOUND.
	CreateWithAggregate(ctx context.Context, rv *domain.Review) (domain.Aggregate, error)

	// ListByRestaurant returns a page of reviews, newest first, with the
	// total count.
	ListByRestaurant(ctx context.Context, restaurantID string, p pagination.Params) ([]domain.Review, int, error)
}
