package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/internal/repository"
	apperrors "github.com/Akshaybondre123/First-Startup/pkg/errors"
	"github.com/Akshaybondre123/First-Startup/pkg/slug"
	"github.com/Akshaybondre123/First-Startup/pkg/validator"
)

// CreateRestaurantInput is the body of POST /api/restaurants.
type CreateRestaurantInput struct {
	Name           string                `json:"name" validate:"required,max=200"`
	Image          string                `json:"image" validate:"omitempty,url"`
	PriceRange     string                `json:"priceRange" validate:"omitempty,pricetier"`
	Cuisines       []string              `json:"cuisines" validate:"omitempty,dive,required,max=64"`
	Tags           []string              `json:"tags" validate:"omitempty,dive,required,max=64"`
	Features       []string              `json:"features" validate:"omitempty,dive,required,max=64"`
	Address        string                `json:"address" validate:"required,max=500"`
	Description    string                `json:"description" validate:"max=2000"`
	Latitude       *float64              `json:"latitude" validate:"required,ne=0,gte=-90,lte=90"`
	Longitude      *float64              `json:"longitude" validate:"required,ne=0,gte=-180,lte=180"`
	Phone          string                `json:"phone" validate:"max=32"`
	Email          string                `json:"email" validate:"omitempty,email"`
	Website        string                `json:"website" validate:"omitempty,url"`
	OperatingHours domain.OperatingHours `json:"operatingHours"`
}

// UpdateRestaurantInput is the body of PUT /api/restaurants/{id}. Only
// non-nil fields are applied. Review aggregates cannot be set here.
type UpdateRestaurantInput struct {
	Name           *string                `json:"name" validate:"omitempty,max=200"`
	Image          *string                `json:"image" validate:"omitempty,url"`
	PriceRange     *string                `json:"priceRange" validate:"omitempty,pricetier"`
	Cuisines       *[]string              `json:"cuisines" validate:"omitempty,dive,required,max=64"`
	Tags           *[]string              `json:"tags" validate:"omitempty,dive,required,max=64"`
	Features       *[]string              `json:"features" validate:"omitempty,dive,required,max=64"`
	Address        *string                `json:"address" validate:"omitempty,max=500"`
	Description    *string                `json:"description" validate:"omitempty,max=2000"`
	Latitude       *float64               `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64               `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Verified       *bool                  `json:"verified"`
	Phone          *string                `json:"phone" validate:"omitempty,max=32"`
	Email          *string                `json:"email" validate:"omitempty,email"`
	Website        *string                `json:"website" validate:"omitempty,url"`
	OperatingHours *domain.OperatingHours `json:"operatingHours"`
}

// validate runs the struct tags plus the checks tags cannot express on
// pointer fields: present strings must not be blank and present
// coordinates must not be zero.
func (in *UpdateRestaurantInput) validate() error {
	ve := &validator.ValidationError{}
	if err := validator.Validate(in); err != nil {
		if !errors.As(err, &ve) {
			return err
		}
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		ve.Add("name", "is required")
	}
	if in.Address != nil && strings.TrimSpace(*in.Address) == "" {
		ve.Add("address", "is required")
	}
	if in.Latitude != nil && *in.Latitude == 0 {
		ve.Add("latitude", "must not be 0")
	}
	if in.Longitude != nil && *in.Longitude == 0 {
		ve.Add("longitude", "must not be 0")
	}
	if in.OperatingHours != nil {
		checkHours(ve, *in.OperatingHours)
	}
	if !ve.Empty() {
		return ve
	}
	return nil
}

// RestaurantService manages listings.
type RestaurantService struct {
	repo    repository.RestaurantRepository
	effects Effects
	cache   ResponseCache
	logger  *slog.Logger
	now     func() time.Time
}

// NewRestaurantService creates a RestaurantService.
func NewRestaurantService(repo repository.RestaurantRepository, effects Effects, logger *slog.Logger) *RestaurantService {
	return &RestaurantService{
		repo:    repo,
		effects: effects,
		cache:   effects.Cache,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a restaurant with defaults applied. When the name's
// slug is taken the listing gets the slug suffixed with its id prefix.
func (s *RestaurantService) Create(ctx context.Context, in CreateRestaurantInput) (*domain.Restaurant, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	ve := &validator.ValidationError{}
	if err := validator.Validate(in); err != nil && !errors.As(err, &ve) {
		return nil, err
	}
	checkHours(ve, in.OperatingHours)
	if !ve.Empty() {
		return nil, ve
	}

	now := s.now()
	r := &domain.Restaurant{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Image:          in.Image,
		PriceRange:     domain.PriceTier(in.PriceRange),
		Cuisines:       in.Cuisines,
		Tags:           in.Tags,
		Features:       in.Features,
		Address:        in.Address,
		Description:    in.Description,
		Location:       domain.NewPoint(*in.Latitude, *in.Longitude),
		Phone:          in.Phone,
		Email:          in.Email,
		Website:        in.Website,
		OperatingHours: in.OperatingHours,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if r.Image == "" {
		r.Image = domain.DefaultImage
	}
	if r.PriceRange == "" {
		r.PriceRange = domain.PriceModerate
	}
	r.Normalize()

	r.Slug = slug.Generate(r.Name)
	if r.Slug == "" {
		r.Slug = r.ID[:8]
	}
	err := s.repo.Create(ctx, r)
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		r.Slug = slug.WithSuffix(r.Name, r.ID[:8])
		err = s.repo.Create(ctx, r)
	}
	if err != nil {
		return nil, fmt.Errorf("create restaurant: %w", err)
	}

	s.logger.InfoContext(ctx, "restaurant created",
		slog.String("restaurant_id", r.ID),
		slog.String("slug", r.Slug),
	)
	s.effects.restaurantSaved(ctx, s.logger, r, true)
	return r, nil
}

// Get returns a restaurant by UUID or slug.
func (s *RestaurantService) Get(ctx context.Context, idOrSlug string) (*domain.Restaurant, error) {
	key := "restaurant:" + idOrSlug
	if s.cache != nil {
		var cached domain.Restaurant
		if s.cache.GetJSON(ctx, key, &cached) {
			return &cached, nil
		}
	}

	r, err := s.resolve(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetJSON(ctx, key, r)
	}
	return r, nil
}

// Update applies the non-nil fields of in.
func (s *RestaurantService) Update(ctx context.Context, idOrSlug string, in UpdateRestaurantInput) (*domain.Restaurant, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	r, err := s.resolve(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	applyUpdate(r, &in)
	r.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update restaurant: %w", err)
	}

	s.logger.InfoContext(ctx, "restaurant updated", slog.String("restaurant_id", r.ID))
	s.effects.restaurantSaved(ctx, s.logger, r, false)
	return r, nil
}

// Delete removes a restaurant and, through the foreign key, its reviews.
func (s *RestaurantService) Delete(ctx context.Context, idOrSlug string) error {
	id := idOrSlug
	if _, err := uuid.Parse(idOrSlug); err != nil {
		r, err := s.repo.GetBySlug(ctx, idOrSlug)
		if err != nil {
			return err
		}
		id = r.ID
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete restaurant: %w", err)
	}

	s.logger.InfoContext(ctx, "restaurant deleted", slog.String("restaurant_id", id))
	s.effects.restaurantDeleted(ctx, s.logger, id)
	return nil
}

func checkHours(ve *validator.ValidationError, hours domain.OperatingHours) {
	for day := range hours {
		if !slices.Contains(domain.Weekdays, day) {
			ve.Add("operatingHours", "keys must be weekdays in lowercase")
			return
		}
	}
}

func (s *RestaurantService) resolve(ctx context.Context, idOrSlug string) (*domain.Restaurant, error) {
	if _, err := uuid.Parse(idOrSlug); err == nil {
		return s.repo.GetByID(ctx, idOrSlug)
	}
	return s.repo.GetBySlug(ctx, idOrSlug)
}

func applyUpdate(r *domain.Restaurant, in *UpdateRestaurantInput) {
	if in.Name != nil {
		r.Name = strings.TrimSpace(*in.Name)
	}
	if in.Image != nil {
		r.Image = *in.Image
		if r.Image == "" {
			r.Image = domain.DefaultImage
		}
	}
	if in.PriceRange != nil && *in.PriceRange != "" {
		r.PriceRange = domain.PriceTier(*in.PriceRange)
	}
	if in.Cuisines != nil {
		r.Cuisines = *in.Cuisines
	}
	if in.Tags != nil {
		r.Tags = *in.Tags
	}
	if in.Features != nil {
		r.Features = *in.Features
	}
	if in.Address != nil {
		r.Address = strings.TrimSpace(*in.Address)
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.Latitude != nil || in.Longitude != nil {
		lat, lng := r.Location.Lat(), r.Location.Lng()
		if in.Latitude != nil {
			lat = *in.Latitude
		}
		if in.Longitude != nil {
			lng = *in.Longitude
		}
		r.Location = domain.NewPoint(lat, lng)
	}
	if in.Verified != nil {
		r.Verified = *in.Verified
	}
	if in.Phone != nil {
		r.Phone = *in.Phone
	}
	if in.Email != nil {
		r.Email = *in.Email
	}
	if in.Website != nil {
		r.Website = *in.Website
	}
	if in.OperatingHours != nil {
		r.OperatingHours = *in.OperatingHours
	}
	r.Normalize()
}
