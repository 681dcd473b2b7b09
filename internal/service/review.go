package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/internal/repository"
	"github.com/Akshaybondre123/First-Startup/pkg/pagination"
	"github.com/Akshaybondre123/First-Startup/pkg/validator"
)

// SubmitReviewInput is the body of POST /api/reviews.
type SubmitReviewInput struct {
	RestaurantID string `json:"restaurantId" validate:"required,uuid"`
	UserName     string `json:"userName" validate:"required,max=100"`
	UserEmail    string `json:"userEmail" validate:"omitempty,email"`
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	Comment      string `json:"comment" validate:"required,max=1000"`
}

// RestaurantReader loads a single restaurant.
type RestaurantReader interface {
	GetByID(ctx context.Context, id string) (*domain.Restaurant, error)
}

// ReviewService handles review submission and listing.
type ReviewService struct {
	reviews     repository.ReviewRepository
	restaurants RestaurantReader
	effects     Effects
	metrics     *Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewReviewService creates a ReviewService. restaurants is only consulted
// to refresh the search index after a submission.
func NewReviewService(reviews repository.ReviewRepository, restaurants RestaurantReader, effects Effects, metrics *Metrics, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews:     reviews,
		restaurants: restaurants,
		effects:     effects,
		metrics:     metrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores a review and folds its rating into the restaurant's
// aggregate atomically. It returns the stored review and the restaurant's
// new aggregate.
func (s *ReviewService) Submit(ctx context.Context, in SubmitReviewInput) (*domain.Review, domain.Aggregate, error) {
	in.RestaurantID = strings.TrimSpace(in.RestaurantID)
	in.UserName = strings.TrimSpace(in.UserName)
	in.UserEmail = strings.TrimSpace(in.UserEmail)
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validator.Validate(in); err != nil {
		return nil, domain.Aggregate{}, err
	}

	rv := &domain.Review{
		ID:           uuid.NewString(),
		RestaurantID: in.RestaurantID,
		UserName:     in.UserName,
		UserEmail:    in.UserEmail,
		Rating:       in.Rating,
		Comment:      in.Comment,
		CreatedAt:    s.now(),
	}
	agg, err := s.reviews.CreateWithAggregate(ctx, rv)
	if err != nil {
		return nil, domain.Aggregate{}, fmt.Errorf("submit review: %w", err)
	}
	s.metrics.reviewSubmitted()

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", rv.ID),
		slog.String("restaurant_id", rv.RestaurantID),
		slog.Int("rating", rv.Rating),
		slog.Float64("new_rating", agg.Rating),
		slog.Int("review_count", agg.ReviewCount),
	)
	s.afterSubmit(ctx, rv, agg)
	return rv, agg, nil
}

func (s *ReviewService) afterSubmit(ctx context.Context, rv *domain.Review, agg domain.Aggregate) {
	if s.effects.Index != nil && s.restaurants != nil {
		r, err := s.restaurants.GetByID(ctx, rv.RestaurantID)
		if err == nil {
			err = s.effects.Index.Index(ctx, r)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "search index update failed",
				slog.String("restaurant_id", rv.RestaurantID),
				slog.String("error", err.Error()),
			)
		}
	}
	s.effects.invalidate(ctx)
	if s.effects.Events != nil {
		if err := s.effects.Events.ReviewCreated(ctx, rv, agg); err != nil {
			s.logger.WarnContext(ctx, "failed to publish review.created event",
				slog.String("review_id", rv.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// List returns a page of a restaurant's reviews, newest first, and the
// total number of reviews.
func (s *ReviewService) List(ctx context.Context, restaurantID string, p pagination.Params) ([]domain.Review, int, error) {
	if _, err := uuid.Parse(restaurantID); err != nil {
		return nil, 0, validator.Field("restaurantId", "must be a valid UUID")
	}
	reviews, total, err := s.reviews.ListByRestaurant(ctx, restaurantID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, total, nil
}
