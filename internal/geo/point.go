// Package geo handles geographic points, polygon ordering and spherical area.
package geo

import "fmt"

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Valid reports whether the coordinate lies within the WGS84 degree ranges.
// Out of range points are still accepted everywhere, the result of sorting or
// area calculation on them is simply undefined.
func (p LatLng) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func (p LatLng) String() string {
	return fmt.Sprintf("(%g, %g)", p.Lat, p.Lng)
}

// Boundary is the ordered vertex sequence of a polygon.
// A materialized boundary always has at least 3 vertices.
type Boundary []LatLng

// Clone returns a copy of the boundary, nil stays nil.
func (b Boundary) Clone() Boundary {
	if b == nil {
		return nil
	}

	out := make(Boundary, len(b))
	copy(out, b)
	return out
}

// Bound is a latitude/longitude bounding box.
type Bound struct {
	South float64 `json:"south" yaml:"south"`
	West  float64 `json:"west" yaml:"west"`
	North float64 `json:"north" yaml:"north"`
	East  float64 `json:"east" yaml:"east"`
}

// Center returns the middle of the box.
func (b Bound) Center() LatLng {
	return LatLng{
		Lat: (b.South + b.North) / 2,
		Lng: (b.West + b.East) / 2,
	}
}
