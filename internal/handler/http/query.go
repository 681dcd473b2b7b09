package http

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/pkg/validator"
)

// parseDiscoveryQuery reads the discovery filters from the query string.
// Parameters that are present but malformed are rejected rather than
// silently treated as absent. Range checks are left to
// domain.DiscoveryQuery.Validate.
func parseDiscoveryQuery(values url.Values) (domain.DiscoveryQuery, error) {
	q := domain.NewDiscoveryQuery()
	ve := &validator.ValidationError{}

	parseFloat := func(name string) *float64 {
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			ve.Add(name, "must be a number")
			return nil
		}
		return &v
	}

	q.Lat = parseFloat("lat")
	q.Lng = parseFloat("lng")
	if d := parseFloat("maxDistance"); d != nil {
		q.MaxDistanceMeters = *d
	}

	if raw := strings.TrimSpace(values.Get("verified")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			ve.Add("verified", "must be true or false")
		} else {
			q.Verified = v
		}
	}

	if raw := values.Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				q.Tags = append(q.Tags, tag)
			}
		}
	}

	q.Search = strings.TrimSpace(values.Get("search"))

	if !ve.Empty() {
		return q, ve
	}
	return q, q.Validate()
}
