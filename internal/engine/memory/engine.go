package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/internal/geo"
)

// Engine is an in-memory SearchEngine. It scans every document per query and
// is meant for development and tests.
type Engine struct {
	mu          sync.RWMutex
	restaurants map[string]domain.Restaurant
}

// New creates an empty in-memory engine.
func New() *Engine {
	return &Engine{restaurants: make(map[string]domain.Restaurant)}
}

// Index adds or replaces a restaurant.
func (e *Engine) Index(_ context.Context, r *domain.Restaurant) error {
	doc := *r
	doc.Distance = nil

	e.mu.Lock()
	defer e.mu.Unlock()
	e.restaurants[doc.ID] = doc
	return nil
}

// Delete removes a restaurant by ID.
func (e *Engine) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.restaurants, id)
	return nil
}

// BulkIndex adds or replaces every restaurant in rs.
func (e *Engine) BulkIndex(_ context.Context, rs []domain.Restaurant) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range rs {
		doc := rs[i]
		doc.Distance = nil
		e.restaurants[doc.ID] = doc
	}
	return nil
}

// Len returns the number of indexed restaurants.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.restaurants)
}

type hit struct {
	r    domain.Restaurant
	dist float64
}

// Discover filters and orders the indexed restaurants.
func (e *Engine) Discover(_ context.Context, q *domain.DiscoveryQuery) ([]domain.Restaurant, error) {
	search := strings.ToLower(q.Search)
	located := q.HasLocation()
	radiusKm := q.MaxDistanceMeters / 1000

	e.mu.RLock()
	hits := make([]hit, 0, len(e.restaurants))
	for _, r := range e.restaurants {
		if len(q.Tags) > 0 && !r.HasAnyTag(q.Tags) {
			continue
		}
		if q.Verified && !r.Verified {
			continue
		}
		if search != "" && !matchesText(&r, search) {
			continue
		}
		h := hit{r: r}
		if located {
			h.dist = geo.DistanceRaw(*q.Lat, *q.Lng, r.Location.Lat(), r.Location.Lng())
			if h.dist > radiusKm {
				continue
			}
		}
		hits = append(hits, h)
	}
	e.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if located {
			if a.dist != b.dist {
				return a.dist < b.dist
			}
		} else {
			if a.r.Rating != b.r.Rating {
				return a.r.Rating > b.r.Rating
			}
			if a.r.Verified != b.r.Verified {
				return a.r.Verified
			}
		}
		if !a.r.CreatedAt.Equal(b.r.CreatedAt) {
			return a.r.CreatedAt.Before(b.r.CreatedAt)
		}
		return a.r.ID < b.r.ID
	})

	if len(hits) > domain.MaxResults {
		hits = hits[:domain.MaxResults]
	}
	out := make([]domain.Restaurant, len(hits))
	for i := range hits {
		out[i] = hits[i].r
	}
	return out, nil
}

func matchesText(r *domain.Restaurant, needle string) bool {
	if containsFold(r.Name, needle) || containsFold(r.Address, needle) || containsFold(r.Description, needle) {
		return true
	}
	for _, c := range r.Cuisines {
		if containsFold(c, needle) {
			return true
		}
	}
	for _, t := range r.Tags {
		if containsFold(t, needle) {
			return true
		}
	}
	return false
}

// containsFold reports whether lowerNeedle occurs in s, ignoring case.
func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
