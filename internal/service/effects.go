package service

import (
	"context"
	"log/slog"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
)

// EventPublisher announces committed writes. internal/event.Producer
// implements it.
type EventPublisher interface {
	RestaurantCreated(ctx context.Context, r *domain.Restaurant) error
	RestaurantUpdated(ctx context.Context, r *domain.Restaurant) error
	RestaurantDeleted(ctx context.Context, id string) error
	ReviewCreated(ctx context.Context, rv *domain.Review, agg domain.Aggregate) error
}

// SearchIndex is written synchronously when no event consumer keeps the
// search engine up to date.
type SearchIndex interface {
	Index(ctx context.Context, r *domain.Restaurant) error
	Delete(ctx context.Context, id string) error
}

// ResponseCache holds rendered read results. Implementations swallow their
// own failures.
type ResponseCache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, v any)
	Invalidate(ctx context.Context)
}

// Effects are the side effects of a committed write. Any field may be nil.
// None of them can fail the write; failures are logged.
type Effects struct {
	Events EventPublisher
	Index  SearchIndex
	Cache  ResponseCache
}

func (e Effects) restaurantSaved(ctx context.Context, logger *slog.Logger, r *domain.Restaurant, created bool) {
	if e.Index != nil {
		if err := e.Index.Index(ctx, r); err != nil {
			logger.WarnContext(ctx, "search index update failed",
				slog.String("restaurant_id", r.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	e.invalidate(ctx)
	if e.Events == nil {
		return
	}
	var err error
	if created {
		err = e.Events.RestaurantCreated(ctx, r)
	} else {
		err = e.Events.RestaurantUpdated(ctx, r)
	}
	if err != nil {
		logger.WarnContext(ctx, "failed to publish restaurant event",
			slog.String("restaurant_id", r.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (e Effects) restaurantDeleted(ctx context.Context, logger *slog.Logger, id string) {
	if e.Index != nil {
		if err := e.Index.Delete(ctx, id); err != nil {
			logger.WarnContext(ctx, "search index delete failed",
				slog.String("restaurant_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
	e.invalidate(ctx)
	if e.Events != nil {
		if err := e.Events.RestaurantDeleted(ctx, id); err != nil {
			logger.WarnContext(ctx, "failed to publish restaurant.deleted event",
				slog.String("restaurant_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
}

// invalidate drops cached pages. Call it after the index write, never before.
func (e Effects) invalidate(ctx context.Context) {
	if e.Cache != nil {
		e.Cache.Invalidate(ctx)
	}
}
