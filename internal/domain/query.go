package domain

import (
	"math"

	"github.com/Akshaybondre123/First-Startup/pkg/validator"
)

// DefaultMaxDistanceMeters is the discovery radius when none is given.
const DefaultMaxDistanceMeters = 10000

// DiscoveryQuery is the parsed form of GET /api/restaurants.
type DiscoveryQuery struct {
	Lat               *float64
	Lng               *float64
	Tags              []string
	Verified          bool
	Search            string
	MaxDistanceMeters float64
}

// NewDiscoveryQuery returns a query with defaults applied.
func NewDiscoveryQuery() DiscoveryQuery {
	return DiscoveryQuery{MaxDistanceMeters: DefaultMaxDistanceMeters}
}

// HasLocation reports whether the query is anchored to a point. Both
// coordinates must be present and non-zero; (0, 0) means "no location".
func (q *DiscoveryQuery) HasLocation() bool {
	return q.Lat != nil && q.Lng != nil && *q.Lat != 0 && *q.Lng != 0
}

// Validate checks ranges. It returns a *validator.ValidationError listing
// every offending parameter.
func (q *DiscoveryQuery) Validate() error {
	ve := &validator.ValidationError{}
	switch {
	case q.Lat == nil:
	case !finite(*q.Lat):
		ve.Add("lat", "must be a number")
	case *q.Lat < -90 || *q.Lat > 90:
		ve.Add("lat", "must be between -90 and 90")
	}
	switch {
	case q.Lng == nil:
	case !finite(*q.Lng):
		ve.Add("lng", "must be a number")
	case *q.Lng < -180 || *q.Lng > 180:
		ve.Add("lng", "must be between -180 and 180")
	}
	switch {
	case !finite(q.MaxDistanceMeters):
		ve.Add("maxDistance", "must be a number")
	case q.MaxDistanceMeters <= 0:
		ve.Add("maxDistance", "must be greater than 0")
	}
	if !ve.Empty() {
		return ve
	}
	return nil
}

// finite rejects NaN and the infinities, which slip past range comparisons.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
