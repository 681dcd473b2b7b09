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
	apperrors "github.com/Akshaybondre123/First-Startup/pkg/errors"
	"github.com/Akshaybondre123/First-Startup/pkg/pagination"
	"github.com/Akshaybondre123/First-Startup/pkg/validator"
)

func newTestReviewService(reviews *mockReviewRepository, restaurants RestaurantReader, effects Effects, metrics *Metrics) *ReviewService {
	svc := NewReviewService(reviews, restaurants, effects, metrics, newTestLogger())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func validReviewInput() SubmitReviewInput {
	return SubmitReviewInput{
		RestaurantID: testRestaurantID,
		UserName:     "Asha",
		UserEmail:    "asha@example.com",
		Rating:       5,
		Comment:      "Great coffee and quiet corners.",
	}
}

func TestSubmitReview_Success(t *testing.T) {
	reviews := new(mockReviewRepository)
	events := new(mockPublisher)
	cache := newMemCache()
	metrics := NewMetrics(prometheus.NewRegistry())
	svc := newTestReviewService(reviews, nil, Effects{Events: events, Cache: cache}, metrics)
	ctx := context.Background()

	agg := domain.Aggregate{RestaurantID: testRestaurantID, Rating: 5, ReviewCount: 1}
	reviews.On("CreateWithAggregate", ctx, mock.AnythingOfType("*domain.Review")).Return(agg, nil)
	events.On("ReviewCreated", ctx, mock.AnythingOfType("*domain.Review"), agg).Return(nil)

	rv, got, err := svc.Submit(ctx, validReviewInput())

	require.NoError(t, err)
	assert.NotEmpty(t, rv.ID)
	assert.Equal(t, testRestaurantID, rv.RestaurantID)
	assert.Equal(t, 5, rv.Rating)
	assert.Equal(t, "Asha", rv.UserName)
	assert.False(t, rv.CreatedAt.IsZero())
	assert.Equal(t, agg, got)
	assert.Equal(t, 1, cache.invalidated)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.reviewsSubmitted))

	reviews.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestSubmitReview_InvalidatesCacheAfterIndexing(t *testing.T) {
	reviews := new(mockReviewRepository)
	restaurants := new(mockRestaurantRepository)
	index := new(mockSearchEngine)
	cache := newMemCache()
	svc := newTestReviewService(reviews, restaurants, Effects{Index: index, Cache: cache}, NewMetrics(prometheus.NewRegistry()))
	ctx := context.Background()

	var atIndex int
	agg := domain.Aggregate{RestaurantID: testRestaurantID, Rating: 4.6, ReviewCount: 851}
	reviews.On("CreateWithAggregate", ctx, mock.AnythingOfType("*domain.Review")).Return(agg, nil)
	restaurants.On("GetByID", ctx, testRestaurantID).Return(existingRestaurant(), nil)
	index.On("Index", ctx, mock.AnythingOfType("*domain.Restaurant")).
		Run(func(mock.Arguments) { atIndex = cache.invalidated }).Return(nil)

	_, _, err := svc.Submit(ctx, validReviewInput())

	require.NoError(t, err)
	assert.Equal(t, 0, atIndex)
	assert.Equal(t, 1, cache.invalidated)
	index.AssertExpectations(t)
}

func TestSubmitReview_RatingOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		rating int
		msg    string
	}{
		{"zero", 0, "is required"},
		{"six", 6, "must be at most 5"},
		{"negative", -1, "must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := new(mockReviewRepository)
			svc := newTestReviewService(reviews, nil, Effects{}, nil)

			in := validReviewInput()
			in.Rating = tt.rating
			_, _, err := svc.Submit(context.Background(), in)

			var ve *validator.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.msg, ve.Fields()["rating"])
			reviews.AssertNotCalled(t, "CreateWithAggregate", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitReview_MissingFields(t *testing.T) {
	reviews := new(mockReviewRepository)
	svc := newTestReviewService(reviews, nil, Effects{}, nil)

	_, _, err := svc.Submit(context.Background(), SubmitReviewInput{
		RestaurantID: "not-a-uuid",
		UserName:     "  ",
		UserEmail:    "nope",
		Rating:       3,
	})

	var ve *validator.ValidationError
	require.ErrorAs(t, err, &ve)
	fields := ve.Fields()
	assert.Equal(t, "must be a valid UUID", fields["restaurantId"])
	assert.Equal(t, "is required", fields["userName"])
	assert.Equal(t, "must be a valid email address", fields["userEmail"])
	assert.Equal(t, "is required", fields["comment"])
}

func TestSubmitReview_CommentTooLong(t *testing.T) {
	reviews := new(mockReviewRepository)
	svc := newTestReviewService(reviews, nil, Effects{}, nil)

	in := validReviewInput()
	long := make([]byte, domain.MaxCommentLength+1)
	for i := range long {
		long[i] = 'a'
	}
	in.Comment = string(long)
	_, _, err := svc.Submit(context.Background(), in)

	var ve *validator.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be at most 1000 characters", ve.Fields()["comment"])
}

func TestSubmitReview_UnknownRestaurant(t *testing.T) {
	reviews := new(mockReviewRepository)
	cache := newMemCache()
	svc := newTestReviewService(reviews, nil, Effects{Cache: cache}, nil)
	ctx := context.Background()

	reviews.On("CreateWithAggregate", ctx, mock.AnythingOfType("*domain.Review")).
		Return(domain.Aggregate{}, apperrors.NotFound("Restaurant", ""))

	rv, _, err := svc.Submit(ctx, validReviewInput())

	assert.Nil(t, rv)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Zero(t, cache.invalidated)
}

func TestSubmitReview_ReindexesRestaurant(t *testing.T) {
	reviews := new(mockReviewRepository)
	restaurants := new(mockRestaurantRepository)
	index := new(mockSearchEngine)
	svc := newTestReviewService(reviews, restaurants, Effects{Index: index}, nil)
	ctx := context.Background()

	updated := existingRestaurant()
	updated.Rating, updated.ReviewCount = 4.6, 851
	reviews.On("CreateWithAggregate", ctx, mock.AnythingOfType("*domain.Review")).
		Return(domain.Aggregate{RestaurantID: testRestaurantID, Rating: 4.6, ReviewCount: 851}, nil)
	restaurants.On("GetByID", ctx, testRestaurantID).Return(updated, nil)
	index.On("Index", ctx, updated).Return(nil)

	_, agg, err := svc.Submit(ctx, validReviewInput())

	require.NoError(t, err)
	assert.Equal(t, 851, agg.ReviewCount)
	index.AssertExpectations(t)
}

func TestSubmitReview_EventFailureIsNotFatal(t *testing.T) {
	reviews := new(mockReviewRepository)
	events := new(mockPublisher)
	svc := newTestReviewService(reviews, nil, Effects{Events: events}, nil)
	ctx := context.Background()

	agg := domain.Aggregate{RestaurantID: testRestaurantID, Rating: 4.5, ReviewCount: 2}
	reviews.On("CreateWithAggregate", ctx, mock.AnythingOfType("*domain.Review")).Return(agg, nil)
	events.On("ReviewCreated", ctx, mock.AnythingOfType("*domain.Review"), agg).Return(errors.New("broker down"))

	rv, _, err := svc.Submit(ctx, validReviewInput())

	require.NoError(t, err)
	assert.NotNil(t, rv)
}

func TestListReviews(t *testing.T) {
	reviews := new(mockReviewRepository)
	svc := newTestReviewService(reviews, nil, Effects{}, nil)
	ctx := context.Background()
	p := pagination.Params{Page: 2, Limit: 10, Offset: 10}

	page := []domain.Review{{ID: "rv-11", RestaurantID: testRestaurantID, Rating: 4}}
	reviews.On("ListByRestaurant", ctx, testRestaurantID, p).Return(page, 11, nil)

	got, total, err := svc.List(ctx, testRestaurantID, p)

	require.NoError(t, err)
	assert.Equal(t, page, got)
	assert.Equal(t, 11, total)
}

func TestListReviews_EmptyPageIsNotNil(t *testing.T) {
	reviews := new(mockReviewRepository)
	svc := newTestReviewService(reviews, nil, Effects{}, nil)
	ctx := context.Background()
	p := pagination.DefaultParams(10)

	reviews.On("ListByRestaurant", ctx, testRestaurantID, p).Return(nil, 0, nil)

	got, total, err := svc.List(ctx, testRestaurantID, p)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, total)
}

func TestListReviews_InvalidRestaurantID(t *testing.T) {
	reviews := new(mockReviewRepository)
	svc := newTestReviewService(reviews, nil, Effects{}, nil)

	_, _, err := svc.List(context.Background(), "love-and-latte", pagination.DefaultParams(10))

	var ve *validator.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields(), "restaurantId")
}
