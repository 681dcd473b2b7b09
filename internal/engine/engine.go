package engine

import (
	"context"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
)

// Backend names accepted by DISCOVERY_BACKEND.
const (
	BackendPostgres      = "postgres"
	BackendElasticsearch = "elasticsearch"
	BackendMemory        = "memory"
)

// Discoverer answers discovery queries. The Postgres repository and every
// SearchEngine implement it.
type Discoverer interface {
	// Discover returns up to domain.MaxResults restaurants matching q. With
	// a location the results are nearest first; otherwise highest rated
	// first.
	Discover(ctx context.Context, q *domain.DiscoveryQuery) ([]domain.Restaurant, error)
}

// SearchEngine is a secondary discovery index kept in step with Postgres.
type SearchEngine interface {
	Discoverer

	// Index adds or replaces a restaurant document.
	Index(ctx context.Context, r *domain.Restaurant) error

	// Delete removes a restaurant document. Deleting an absent document is
	// not an error.
	Delete(ctx context.Context, id string) error

	// BulkIndex adds or replaces many documents at once.
	BulkIndex(ctx context.Context, rs []domain.Restaurant) error
}
