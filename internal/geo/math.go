package geo

import "math"

// EarthRadius is the mean Earth radius in meters used for spherical area.
const EarthRadius = 6371008.8

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// polarTanLat maps a latitude to tan of half its colatitude,
// the form consumed by polarTriangleArea.
func polarTanLat(latDeg float64) float64 {
	return math.Tan((math.Pi/2 - toRadians(latDeg)) / 2)
}

// polarTriangleArea returns the signed area on the unit sphere of the triangle
// formed by the north pole and two points given as (tan of half colatitude, lng).
func polarTriangleArea(tan1, lng1, tan2, lng2 float64) float64 {
	deltaLng := lng1 - lng2
	t := tan1 * tan2
	return 2 * math.Atan2(t*math.Sin(deltaLng), 1+t*math.Cos(deltaLng))
}

// signedArea sums the polar triangles along the closed path, the closing
// edge from the last vertex back to the first is implied.
func signedArea(path []LatLng, radius float64) float64 {
	size := len(path)
	if size < MinBoundaryPoints {
		return 0
	}

	prev := path[size-1]
	prevTan := polarTanLat(prev.Lat)
	prevLng := toRadians(prev.Lng)

	var total float64
	for _, p := range path {
		tan := polarTanLat(p.Lat)
		lng := toRadians(p.Lng)
		total += polarTriangleArea(tan, lng, prevTan, prevLng)
		prevTan, prevLng = tan, lng
	}

	return total * radius * radius
}
