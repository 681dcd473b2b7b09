package client

import (
	"slices"
	"sort"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
)

// SortKey selects the secondary ordering applied by Refine.
type SortKey string

const (
	SortRating   SortKey = "rating"
	SortDistance SortKey = "distance"
	SortPrice    SortKey = "price"
	SortNewest   SortKey = "newest"
)

// missingDistanceKm ranks restaurants without a distance after every real one.
const missingDistanceKm = 999

// Refinement is the browse-side filter state layered over a discovery
// result. The zero value keeps everything and sorts by rating.
type Refinement struct {
	// PriceTiers keeps only these tiers. Empty means all.
	PriceTiers []domain.PriceTier
	// MinRating keeps restaurants rated at least this.
	MinRating float64
	// MaxDistanceKm drops restaurants farther than this. Zero means no limit.
	// Restaurants without a distance are always kept.
	MaxDistanceKm float64
	SortBy        SortKey
}

// Refine filters and sorts a copy of rs. The sort is stable, so restaurants
// with equal keys keep the server's order.
func Refine(rs []domain.Restaurant, f Refinement) []domain.Restaurant {
	out := make([]domain.Restaurant, 0, len(rs))
	for _, r := range rs {
		if len(f.PriceTiers) > 0 && !slices.Contains(f.PriceTiers, r.PriceRange) {
			continue
		}
		if r.Rating < f.MinRating {
			continue
		}
		if f.MaxDistanceKm > 0 && r.Distance != nil && *r.Distance > f.MaxDistanceKm {
			continue
		}
		out = append(out, r)
	}

	switch f.SortBy {
	case SortDistance:
		sort.SliceStable(out, func(i, j int) bool {
			return distanceOrMissing(&out[i]) < distanceOrMissing(&out[j])
		})
	case SortPrice:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].PriceRange.Level() < out[j].PriceRange.Level()
		})
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	}
	return out
}

func distanceOrMissing(r *domain.Restaurant) float64 {
	if r.Distance == nil {
		return missingDistanceKm
	}
	return *r.Distance
}

// PriceTiersUpTo returns the tiers selected by the price slider at
// position n: the n cheapest tiers. Zero or less selects none, which
// Refine treats as all.
func PriceTiersUpTo(n int) []domain.PriceTier {
	tiers := domain.PriceTiers()
	if n <= 0 {
		return nil
	}
	return tiers[:min(n, len(tiers))]
}

var (
	ratingSteps   = []float64{0, 3.0, 3.5, 4.0, 4.5}
	distanceSteps = []float64{0, 2, 5, 10, 20}
)

// RatingStep returns the minimum rating for rating slider position n
// (0 = any, 1..4 = 3.0, 3.5, 4.0, 4.5).
func RatingStep(n int) float64 {
	return ratingSteps[max(0, min(n, len(ratingSteps)-1))]
}

// DistanceStep returns the distance cap in km for distance slider position
// n (0 = any, 1..4 = 2, 5, 10, 20).
func DistanceStep(n int) float64 {
	return distanceSteps[max(0, min(n, len(distanceSteps)-1))]
}
