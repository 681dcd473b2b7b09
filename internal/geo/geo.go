// Package geo provides great-circle distance on a spherical Earth.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

const kmPerDegreeLat = math.Pi * EarthRadiusKm / 180

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// DistanceRaw returns the Haversine distance in km between two points.
func DistanceRaw(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	a := sinLat*sinLat + math.Cos(radians(lat1))*math.Cos(radians(lat2))*sinLng*sinLng
	// Rounding can push a a hair above 1 for antipodal points.
	a = math.Min(1, a)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Distance returns the Haversine distance in km rounded to one decimal.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	return Round1(DistanceRaw(lat1, lng1, lat2, lng2))
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Box is a lat/lng rectangle.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Contains reports whether the point lies inside the box, edges included.
func (b Box) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// BoundingBox returns a rectangle that encloses every point within meters of
// (lat, lng). It over-covers the circle and is meant as an index prefilter;
// callers still apply the exact distance. Near the poles the longitude span
// widens to the full range.
func BoundingBox(lat, lng, meters float64) Box {
	km := meters / 1000
	dLat := km / kmPerDegreeLat

	b := Box{
		MinLat: math.Max(-90, lat-dLat),
		MaxLat: math.Min(90, lat+dLat),
		MinLng: -180,
		MaxLng: 180,
	}

	cosLat := math.Cos(radians(lat))
	if cosLat < 1e-9 {
		return b
	}
	dLng := km / (kmPerDegreeLat * cosLat)
	if dLng >= 180 {
		return b
	}
	b.MinLng = math.Max(-180, lng-dLng)
	b.MaxLng = math.Min(180, lng+dLng)
	return b
}
