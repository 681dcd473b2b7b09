package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/internal/engine"
	apperrors "github.com/Akshaybondre123/First-Startup/pkg/errors"
)

// RestaurantLister reads the whole catalogue.
type RestaurantLister interface {
	ListAll(ctx context.Context) ([]domain.Restaurant, error)
}

// ReindexService copies the catalogue from Postgres into the search engine.
type ReindexService struct {
	source RestaurantLister
	engine engine.SearchEngine
	logger *slog.Logger
}

// NewReindexService creates a ReindexService. A nil engine means discovery
// runs on Postgres and there is nothing to rebuild.
func NewReindexService(source RestaurantLister, eng engine.SearchEngine, logger *slog.Logger) *ReindexService {
	return &ReindexService{source: source, engine: eng, logger: logger}
}

// Reindex bulk-loads every restaurant and returns how many were indexed.
func (s *ReindexService) Reindex(ctx context.Context) (int, error) {
	if s.engine == nil {
		return 0, apperrors.Conflict("no search engine is configured for discovery")
	}
	rs, err := s.source.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list restaurants: %w", err)
	}
	if err := s.engine.BulkIndex(ctx, rs); err != nil {
		return 0, fmt.Errorf("bulk index: %w", err)
	}
	s.logger.InfoContext(ctx, "search index rebuilt", slog.Int("count", len(rs)))
	return len(rs), nil
}
