package geo

import (
	"math"
	"sort"
)

// MinBoundaryPoints is the smallest point count that forms a polygon.
const MinBoundaryPoints = 3

// Centroid returns the arithmetic mean of the points coordinates.
// It returns the zero LatLng for an empty slice.
func Centroid(points []LatLng) LatLng {
	if len(points) == 0 {
		return LatLng{}
	}

	var c LatLng
	for _, p := range points {
		c.Lat += p.Lat
		c.Lng += p.Lng
	}

	n := float64(len(points))
	c.Lat /= n
	c.Lng /= n

	return c
}

// centroidAngle is the bearing-like angle of p around c.
// Arguments are (dLng, dLat) rather than (dy, dx), stored boundaries depend on it.
func centroidAngle(p, c LatLng) float64 {
	return math.Atan2(p.Lng-c.Lng, p.Lat-c.Lat)
}

// SortClockwise orders points by ascending angle around their centroid and
// returns them as a polygon boundary. The input slice is not modified.
//
// Fewer than MinBoundaryPoints points form no polygon and (nil, false) is
// returned. Points with equal angles keep their input order.
//
// The ordering only yields a simple polygon for point sets that are
// star-shaped around their centroid, deep concavities can still cross.
func SortClockwise(points []LatLng) (Boundary, bool) {
	if len(points) < MinBoundaryPoints {
		return nil, false
	}

	c := Centroid(points)

	type keyed struct {
		p     LatLng
		angle float64
	}

	items := make([]keyed, len(points))
	for i, p := range points {
		items[i] = keyed{p: p, angle: centroidAngle(p, c)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].angle < items[j].angle
	})

	out := make(Boundary, len(items))
	for i, it := range items {
		out[i] = it.p
	}

	return out, true
}
