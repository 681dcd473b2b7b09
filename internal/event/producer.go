package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	pkgkafka "github.com/Akshaybondre123/First-Startup/pkg/kafka"
	"github.com/Akshaybondre123/First-Startup/pkg/logger"
)

// Kafka topics.
const (
	TopicRestaurantEvents = "restaurant.events"
	TopicReviewEvents     = "review.events"
)

// Event types.
const (
	RestaurantCreated = "restaurant.created"
	RestaurantUpdated = "restaurant.updated"
	RestaurantDeleted = "restaurant.deleted"
	ReviewCreated     = "review.created"
)

// AggregateRestaurant is the aggregate type of every event. Review events
// are keyed by their restaurant so they share its partition.
const AggregateRestaurant = "restaurant"

// Source identifies this service on published events.
const Source = "wampin-api"

// Topics lists every topic the indexer consumes.
func Topics() []string {
	return []string{TopicRestaurantEvents, TopicReviewEvents}
}

// RestaurantData is the payload of restaurant.created and restaurant.updated.
type RestaurantData struct {
	Restaurant domain.Restaurant `json:"restaurant"`
}

// RestaurantDeletedData is the payload of restaurant.deleted.
type RestaurantDeletedData struct {
	ID string `json:"id"`
}

// ReviewCreatedData is the payload of review.created. It carries the
// restaurant's aggregate as it stood right after the review was counted.
type ReviewCreatedData struct {
	Review      domain.Review `json:"review"`
	Rating      float64       `json:"rating"`
	ReviewCount int           `json:"reviewCount"`
}

// Producer publishes restaurant and review events.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

// NewProducer wraps publisher. Pass pkgkafka.NopPublisher{} when Kafka is
// disabled.
func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// RestaurantCreated publishes restaurant.created.
func (p *Producer) RestaurantCreated(ctx context.Context, r *domain.Restaurant) error {
	return p.publish(ctx, TopicRestaurantEvents, RestaurantCreated, r.ID, RestaurantData{Restaurant: *r})
}

// RestaurantUpdated publishes restaurant.updated.
func (p *Producer) RestaurantUpdated(ctx context.Context, r *domain.Restaurant) error {
	return p.publish(ctx, TopicRestaurantEvents, RestaurantUpdated, r.ID, RestaurantData{Restaurant: *r})
}

// RestaurantDeleted publishes restaurant.deleted.
func (p *Producer) RestaurantDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicRestaurantEvents, RestaurantDeleted, id, RestaurantDeletedData{ID: id})
}

// ReviewCreated publishes review.created.
func (p *Producer) ReviewCreated(ctx context.Context, rv *domain.Review, agg domain.Aggregate) error {
	return p.publish(ctx, TopicReviewEvents, ReviewCreated, rv.RestaurantID, ReviewCreatedData{
		Review:      *rv,
		Rating:      agg.Rating,
		ReviewCount: agg.ReviewCount,
	})
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, AggregateRestaurant, aggregateID, Source, data)
	if err != nil {
		return err
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx)).
		WithActor(logger.ActorFromContext(ctx))

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("event_type", eventType),
		slog.String("event_id", evt.ID),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
