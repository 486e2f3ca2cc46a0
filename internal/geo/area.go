package geo

import (
	"math"
	"math/big"
	"strconv"
)

const (
	squareMetersPerKm = 1_000_000.0

	unitSquareMeters = "sq m"
	unitSquareKm     = "sq km"
)

// AreaResult is the computed surface area of a boundary.
type AreaResult struct {
	SquareMeters float64 `json:"square_meters"`
}

// SquareKilometers returns the area converted to km².
func (a AreaResult) SquareKilometers() float64 {
	return a.SquareMeters / squareMetersPerKm
}

// Text renders the area with FormatArea.
func (a AreaResult) Text() string {
	return FormatArea(a.SquareMeters)
}

// Area computes the surface enclosed by the boundary on a sphere of the given
// radius, edges being great-circle arcs. A radius <= 0 means EarthRadius.
// The result is never negative, winding direction does not matter.
func Area(b Boundary, radius float64) AreaResult {
	if radius <= 0 {
		radius = EarthRadius
	}

	return AreaResult{SquareMeters: math.Abs(signedArea(b, radius))}
}

// FormatArea renders square meters for display: below 1 km² as
// "Area: 123.45 sq m", otherwise as "Area: 1.23 sq km".
func FormatArea(squareMeters float64) string {
	km := squareMeters / squareMetersPerKm
	if km < 1 {
		return "Area: " + toFixed2(squareMeters) + " " + unitSquareMeters
	}

	return "Area: " + toFixed2(km) + " " + unitSquareKm
}

// toFixed2 formats v with exactly two decimals, rounding half away from zero
// on the exact binary value. strconv rounds ties to even, which would print
// 0.125 as "0.12" where a browser prints "0.13".
func toFixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}

	r := new(big.Rat).SetFloat64(math.Abs(v))
	r.Mul(r, big.NewRat(100, 1))

	q, rem := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	if rem.Lsh(rem, 1).Cmp(r.Denom()) >= 0 {
		q.Add(q, big.NewInt(1))
	}

	digits := q.String()
	for len(digits) < 3 {
		digits = "0" + digits
	}

	s := digits[:len(digits)-2] + "." + digits[len(digits)-2:]
	if v < 0 {
		s = "-" + s
	}

	return s
}
