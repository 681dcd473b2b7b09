package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/internal/repository"
	apperrors "github.com/Akshaybondre123/First-Startup/pkg/errors"
	"github.com/Akshaybondre123/First-Startup/pkg/slug"
)

// SeedRefusedMessage is returned when the catalogue is not empty.
const SeedRefusedMessage = "Restaurants already exist. Delete them first to reseed."

// SeedResult reports the outcome of a seed request.
type SeedResult struct {
	Seeded      bool
	Message     string
	Restaurants []*domain.Restaurant
}

// FixtureSource yields the restaurants to seed.
type FixtureSource func() ([]domain.Restaurant, error)

// SeedService loads the sample catalogue into an empty store.
type SeedService struct {
	repo     repository.RestaurantRepository
	fixtures FixtureSource
	effects  Effects
	logger   *slog.Logger
	now      func() time.Time
}

// NewSeedService creates a SeedService.
func NewSeedService(repo repository.RestaurantRepository, fixtures FixtureSource, effects Effects, logger *slog.Logger) *SeedService {
	return &SeedService{
		repo:     repo,
		fixtures: fixtures,
		effects:  effects,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Seed inserts the fixtures in one transaction unless any restaurant
// already exists.
func (s *SeedService) Seed(ctx context.Context) (*SeedResult, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count restaurants: %w", err)
	}
	if n > 0 {
		return &SeedResult{Message: SeedRefusedMessage}, nil
	}

	fixtures, err := s.fixtures()
	if err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}

	now := s.now()
	rs := make([]*domain.Restaurant, 0, len(fixtures))
	for i := range fixtures {
		r := fixtures[i]
		r.ID = uuid.NewString()
		r.Slug = slug.Generate(r.Name)
		if r.Slug == "" {
			r.Slug = r.ID[:8]
		}
		r.CreatedAt = now
		r.UpdatedAt = now
		r.Normalize()
		rs = append(rs, &r)
	}

	if err := s.repo.CreateMany(ctx, rs); err != nil {
		// A concurrent seed won the race.
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return &SeedResult{Message: SeedRefusedMessage}, nil
		}
		return nil, fmt.Errorf("seed restaurants: %w", err)
	}

	s.logger.InfoContext(ctx, "restaurants seeded", slog.Int("count", len(rs)))
	for _, r := range rs {
		s.effects.restaurantSaved(ctx, s.logger, r, true)
	}
	return &SeedResult{
		Seeded:      true,
		Message:     fmt.Sprintf("Seeded %d restaurants", len(rs)),
		Restaurants: rs,
	}, nil
}
