package geo

import "github.com/paulmach/orb"

// Point converts the coordinate to an orb point, which is ordered [lng, lat].
func (p LatLng) Point() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// FromPoint converts an orb point back to a coordinate.
func FromPoint(p orb.Point) LatLng {
	return LatLng{Lat: p.Lat(), Lng: p.Lon()}
}

// Ring returns the boundary as a closed GeoJSON ring,
// the first vertex is repeated at the end.
func (b Boundary) Ring() orb.Ring {
	if len(b) == 0 {
		return nil
	}

	ring := make(orb.Ring, 0, len(b)+1)
	for _, p := range b {
		ring = append(ring, p.Point())
	}

	return append(ring, b[0].Point())
}

// MultiPoint returns the points as an orb multipoint.
func MultiPoint(points []LatLng) orb.MultiPoint {
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = p.Point()
	}

	return mp
}

// BoundOf returns the bounding box of the points.
// It reports false for an empty slice.
func BoundOf(points []LatLng) (Bound, bool) {
	if len(points) == 0 {
		return Bound{}, false
	}

	b := MultiPoint(points).Bound()

	return Bound{
		South: b.Min.Lat(),
		West:  b.Min.Lon(),
		North: b.Max.Lat(),
		East:  b.Max.Lon(),
	}, true
}
