package client

import (
	"sort"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
)

// CollectionSize caps every collection.
const CollectionSize = 6

// Collection is a curated slice of a result set shown on the home page.
type Collection struct {
	ID          string
	Title       string
	Description string
	pick        func([]domain.Restaurant) []domain.Restaurant
}

// Apply returns the collection's members from rs, at most CollectionSize.
// rs is not modified.
func (c Collection) Apply(rs []domain.Restaurant) []domain.Restaurant {
	out := c.pick(rs)
	if len(out) > CollectionSize {
		out = out[:CollectionSize]
	}
	return out
}

func popularity(r *domain.Restaurant) float64 {
	return float64(r.ReviewCount) * r.Rating
}

func keep(rs []domain.Restaurant, pred func(*domain.Restaurant) bool) []domain.Restaurant {
	out := []domain.Restaurant{}
	for i := range rs {
		if pred(&rs[i]) {
			out = append(out, rs[i])
		}
	}
	return out
}

func byPopularity(rs []domain.Restaurant) []domain.Restaurant {
	sort.SliceStable(rs, func(i, j int) bool { return popularity(&rs[i]) > popularity(&rs[j]) })
	return rs
}

func byRating(rs []domain.Restaurant) []domain.Restaurant {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Rating > rs[j].Rating })
	return rs
}

// Collections returns the home page collections in display order.
func Collections() []Collection {
	return []Collection{
		{
			ID:          "trending",
			Title:       "Trending Now",
			Description: "Most popular places this week",
			pick: func(rs []domain.Restaurant) []domain.Restaurant {
				return byPopularity(keep(rs, func(r *domain.Restaurant) bool { return r.ReviewCount > 10 }))
			},
		},
		{
			ID:          "top-rated",
			Title:       "Top Rated",
			Description: "Highest rated restaurants",
			pick: func(rs []domain.Restaurant) []domain.Restaurant {
				return byRating(keep(rs, func(r *domain.Restaurant) bool {
					return r.Rating >= 4.0 && r.ReviewCount >= 5
				}))
			},
		},
		{
			ID:          "budget",
			Title:       "Budget-Friendly",
			Description: "Great food at affordable prices",
			pick: func(rs []domain.Restaurant) []domain.Restaurant {
				return byPopularity(keep(rs, func(r *domain.Restaurant) bool {
					return r.PriceRange == domain.PriceBudget || r.PriceRange == domain.PriceModerate
				}))
			},
		},
		{
			ID:          "nearby",
			Title:       "Near You",
			Description: "Closest restaurants to your location",
			pick: func(rs []domain.Restaurant) []domain.Restaurant {
				near := keep(rs, func(r *domain.Restaurant) bool { return r.Distance != nil })
				sort.SliceStable(near, func(i, j int) bool { return *near[i].Distance < *near[j].Distance })
				return near
			},
		},
		{
			ID:          "quick",
			Title:       "Quick Service",
			Description: "Fast and efficient dining",
			pick: func(rs []domain.Restaurant) []domain.Restaurant {
				return keep(rs, func(r *domain.Restaurant) bool {
					return r.HasAnyTag([]string{"Student Friendly", "Budget"})
				})
			},
		},
		{
			ID:          "romantic",
			Title:       "Romantic Spots",
			Description: "Perfect for date nights",
			pick: func(rs []domain.Restaurant) []domain.Restaurant {
				return byRating(keep(rs, func(r *domain.Restaurant) bool {
					return r.HasAnyTag([]string{"Couple Friendly", "Private Dining"})
				}))
			},
		},
	}
}

// CollectionByID looks up a collection.
func CollectionByID(id string) (Collection, bool) {
	for _, c := range Collections() {
		if c.ID == id {
			return c, true
		}
	}
	return Collection{}, false
}
