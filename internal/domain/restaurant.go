package domain

import (
	"time"

	"github.com/Akshaybondre123/First-Startup/pkg/validator"
	playground "github.com/go-playground/validator/v10"
)

// DefaultImage is used for listings registered without a photo.
const DefaultImage = "https://images.unsplash.com/photo-1517248135467-4c7edcad34c4?q=80&w=1000&auto=format&fit=crop"

// MaxResults caps a single discovery page.
const MaxResults = 100

// PriceTier is the rupee-symbol price band shown on a listing.
type PriceTier string

// Price tiers, cheapest first.
const (
	PriceBudget   PriceTier = "₹"
	PriceModerate PriceTier = "₹₹"
	PricePremium  PriceTier = "₹₹₹"
	PriceLuxury   PriceTier = "₹₹₹₹"
)

// PriceTiers returns every tier in ascending order.
func PriceTiers() []PriceTier {
	return []PriceTier{PriceBudget, PriceModerate, PricePremium, PriceLuxury}
}

// Valid reports whether p is one of the four known tiers.
func (p PriceTier) Valid() bool {
	switch p {
	case PriceBudget, PriceModerate, PricePremium, PriceLuxury:
		return true
	}
	return false
}

// Level maps a tier to 1..4. Unknown labels rank as the most expensive.
func (p PriceTier) Level() int {
	switch p {
	case PriceBudget:
		return 1
	case PriceModerate:
		return 2
	case PricePremium:
		return 3
	default:
		return 4
	}
}

func init() {
	validator.RegisterValidation("pricetier", func(fl playground.FieldLevel) bool {
		return PriceTier(fl.Field().String()).Valid()
	})
}

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewPoint builds a GeoPoint from latitude and longitude.
func NewPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// Lat returns the latitude.
func (g GeoPoint) Lat() float64 { return g.Coordinates[1] }

// Lng returns the longitude.
func (g GeoPoint) Lng() float64 { return g.Coordinates[0] }

// DayHours is one weekday's opening window, e.g. {"open":"11:00","close":"23:00"}.
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// OperatingHours is keyed by lowercase weekday name.
type OperatingHours map[string]DayHours

// Weekdays lists the keys accepted in OperatingHours.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Restaurant is a discoverable listing.
type Restaurant struct {
	ID             string         `json:"id"`
	Slug           string         `json:"slug"`
	Name           string         `json:"name"`
	Image          string         `json:"image"`
	Rating         float64        `json:"rating"`
	ReviewCount    int            `json:"reviewCount"`
	RatingSum      float64        `json:"-"`
	PriceRange     PriceTier      `json:"priceRange"`
	Cuisines       []string       `json:"cuisines"`
	Tags           []string       `json:"tags"`
	Address        string         `json:"address"`
	Description    string         `json:"description"`
	Location       GeoPoint       `json:"location"`
	Features       []string       `json:"features"`
	Verified       bool           `json:"verified"`
	Phone          string         `json:"phone,omitempty"`
	Email          string         `json:"email,omitempty"`
	Website        string         `json:"website,omitempty"`
	OperatingHours OperatingHours `json:"operatingHours,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`

	// Distance in km from the query point. Only set on discovery results
	// that were filtered by location.
	Distance *float64 `json:"distance,omitempty"`
}

// HasTag reports whether the restaurant carries tag (exact match).
func (r *Restaurant) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether at least one of tags is on the restaurant.
func (r *Restaurant) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if r.HasTag(t) {
			return true
		}
	}
	return false
}

// Normalize fills empty slices so they serialize as [] rather than null.
func (r *Restaurant) Normalize() {
	if r.Cuisines == nil {
		r.Cuisines = []string{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.Features == nil {
		r.Features = []string{}
	}
	if r.Location.Type == "" {
		r.Location.Type = "Point"
	}
}

// Aggregate is a restaurant's review summary after an update.
type Aggregate struct {
	RestaurantID string  `json:"restaurantId"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"reviewCount"`
}
