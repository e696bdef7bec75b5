// Package geo implements the coarse spatial pre-filter used for volunteer
// matching: an axis-aligned latitude/longitude bounding box approximating a
// radius around a point.
//
// The conversion is planar: one degree of latitude is treated as 110.574 km
// everywhere, and one degree of longitude as 111.320 km scaled by cos(lat) to
// correct for meridian convergence. For neighborhood-scale radii (a few tens
// of kilometers) the resulting box is a strict superset of the true geodesic
// disc, which is what the two-phase nearby query needs. The approximation
// degrades near the poles and across the antimeridian; NeighborNet
// deployments do not operate there.
package geo

import "math"

// Degrees-per-kilometer constants for the planar approximation.
const (
	kmPerDegreeLat = 110.574
	kmPerDegreeLng = 111.320
)

// BoundingBox is an axis-aligned lat/lng rectangle.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// NewBoundingBox returns the box of side 2*radiusKm centered on (lat, lng).
// radiusKm must be positive; a non-positive radius degenerates to a box
// containing only the center point.
func NewBoundingBox(lat, lng, radiusKm float64) BoundingBox {
	if radiusKm < 0 {
		radiusKm = 0
	}
	dLat := radiusKm / kmPerDegreeLat
	dLng := radiusKm / (kmPerDegreeLng * math.Cos(lat*math.Pi/180))
	return BoundingBox{
		MinLat: lat - dLat,
		MaxLat: lat + dLat,
		MinLng: lng - dLng,
		MaxLng: lng + dLng,
	}
}

// Contains reports whether (lat, lng) lies inside the box, bounds inclusive.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lng >= b.MinLng && lng <= b.MaxLng
}

// ContainsLng reports whether lng lies inside the box's longitude range.
// The nearby query resolves the latitude range in SQL and uses this for the
// second, in-memory phase of the filter.
func (b BoundingBox) ContainsLng(lng float64) bool {
	return lng >= b.MinLng && lng <= b.MaxLng
}

// ValidCoordinates reports whether (lat, lng) is a plausible WGS84 pair.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
