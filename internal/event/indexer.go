package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/internal/engine"
	apperrors "github.com/Akshaybondre123/First-Startup/pkg/errors"
	pkgkafka "github.com/Akshaybondre123/First-Startup/pkg/kafka"
)

// RestaurantSource loads the current state of a restaurant.
type RestaurantSource interface {
	GetByID(ctx context.Context, id string) (*domain.Restaurant, error)
}

// CacheInvalidator drops cached discovery pages.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// Indexer keeps a search engine in step with restaurant and review events.
// It always re-reads the restaurant from the source rather than trusting the
// payload, so redelivered or reordered events converge on the stored state.
// Every successful engine change is followed by a cache invalidation.
type Indexer struct {
	engine engine.SearchEngine
	source RestaurantSource
	cache  CacheInvalidator
	logger *slog.Logger
}

// NewIndexer creates an Indexer. cache may be nil.
func NewIndexer(eng engine.SearchEngine, source RestaurantSource, cache CacheInvalidator, logger *slog.Logger) *Indexer {
	return &Indexer{engine: eng, source: source, cache: cache, logger: logger}
}

// Handle is a pkgkafka.Handler.
func (i *Indexer) Handle(ctx context.Context, evt *pkgkafka.Event) error {
	switch evt.Type {
	case RestaurantCreated, RestaurantUpdated, ReviewCreated:
		return i.reindex(ctx, evt.AggregateID)
	case RestaurantDeleted:
		if err := i.engine.Delete(ctx, evt.AggregateID); err != nil {
			return fmt.Errorf("remove restaurant %s from index: %w", evt.AggregateID, err)
		}
		i.invalidate(ctx)
		return nil
	default:
		i.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", evt.Type),
			slog.String("event_id", evt.ID),
		)
		return nil
	}
}

func (i *Indexer) reindex(ctx context.Context, id string) error {
	r, err := i.source.GetByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		// Deleted since the event was produced.
		if err := i.engine.Delete(ctx, id); err != nil {
			return fmt.Errorf("remove restaurant %s from index: %w", id, err)
		}
		i.invalidate(ctx)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load restaurant %s: %w", id, err)
	}

	if err := i.engine.Index(ctx, r); err != nil {
		return fmt.Errorf("index restaurant %s: %w", id, err)
	}
	i.invalidate(ctx)
	i.logger.DebugContext(ctx, "restaurant reindexed", slog.String("restaurant_id", id))
	return nil
}

func (i *Indexer) invalidate(ctx context.Context) {
	if i.cache != nil {
		i.cache.Invalidate(ctx)
	}
}
