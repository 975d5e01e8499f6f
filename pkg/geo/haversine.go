package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return geo.DistanceHaversine(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}

// degToMeters converts degree-scaled equirectangular distances to meters.
const degToMeters = math.Pi / 180 * orb.EarthRadius

// DegreesFor returns the latitude and longitude spans, in degrees, that cover
// meters around lat. Used to size spatial index search windows.
func DegreesFor(meters, lat float64) (dLat, dLon float64) {
	dLat = meters / degToMeters
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 1e-6 {
		return dLat, 180
	}
	return dLat, dLat / cosLat
}

// PointToSegmentDist computes the perpendicular distance from point P to segment AB,
// and returns the projection ratio along AB (clamped to [0,1]).
// dist is in meters, ratio is in [0.0, 1.0].
func PointToSegmentDist(pLat, pLon, aLat, aLon, bLat, bLon float64) (dist float64, ratio float64) {
	// Equirectangular projection, good enough for snap distances.
	cosLat := math.Cos((aLat + bLat) / 2 * math.Pi / 180)

	ax, ay := aLon*cosLat, aLat
	bx, by := bLon*cosLat, bLat
	px, py := pLon*cosLat, pLat

	// Compare in original coordinates; the projection can make identical
	// points differ by ~1e-15.
	if aLat == bLat && aLon == bLon {
		return math.Hypot(px-ax, py-ay) * degToMeters, 0
	}

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy

	var t float64
	if lenSq > 0 {
		t = ((px-ax)*dx + (py-ay)*dy) / lenSq
		t = min(max(t, 0), 1)
	}

	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy)) * degToMeters, t
}
