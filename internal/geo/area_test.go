package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArea(t *testing.T) {
	octant := 4 * math.Pi * EarthRadius * EarthRadius / 8

	tests := []struct {
		name     string
		boundary Boundary
		radius   float64
		want     float64
		delta    float64
	}{
		{
			name:     "octant triangle",
			boundary: Boundary{{0, 0}, {0, 90}, {90, 0}},
			want:     octant,
			delta:    octant * 1e-9,
		},
		{
			name:     "octant triangle reversed winding",
			boundary: Boundary{{90, 0}, {0, 90}, {0, 0}},
			want:     octant,
			delta:    octant * 1e-9,
		},
		{
			name:     "one degree square on the equator",
			boundary: Boundary{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
			want:     12364031909.4655,
			delta:    1,
		},
		{
			name:     "small square",
			boundary: Boundary{{0, 0}, {0.001, 0}, {0.001, 0.001}, {0, 0.001}},
			want:     12364.3459,
			delta:    1e-3,
		},
		{
			name:     "zero radius falls back to earth",
			boundary: Boundary{{0, 0}, {0, 90}, {90, 0}},
			radius:   0,
			want:     octant,
			delta:    octant * 1e-9,
		},
		{
			name:     "unit sphere",
			boundary: Boundary{{0, 0}, {0, 90}, {90, 0}},
			radius:   1,
			want:     math.Pi / 2,
			delta:    1e-12,
		},
		{
			name:     "degenerate colinear",
			boundary: Boundary{{0, 0}, {0, 1}, {0, 2}},
			want:     0,
			delta:    1,
		},
		{
			name:     "too short",
			boundary: Boundary{{0, 0}, {0, 1}},
			want:     0,
			delta:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Area(tt.boundary, tt.radius)
			assert.InDelta(t, tt.want, got.SquareMeters, tt.delta)
			assert.GreaterOrEqual(t, got.SquareMeters, 0.0)
		})
	}
}

func TestArea_NonNegativeForSortedBoundaries(t *testing.T) {
	sets := [][]LatLng{
		{{-34.39, 150.64}, {-34.40, 150.70}, {-34.45, 150.66}},
		{{51.5, -0.12}, {51.51, -0.1}, {51.49, -0.09}, {51.48, -0.13}},
		{{10, 170}, {12, 175}, {8, 178}},
	}

	for _, set := range sets {
		b, ok := SortClockwise(set)
		if assert.True(t, ok) {
			assert.Greater(t, Area(b, 0).SquareMeters, 0.0)
		}
	}
}

func TestAreaResult_SquareKilometers(t *testing.T) {
	assert.InDelta(t, 2.5, AreaResult{SquareMeters: 2_500_000}.SquareKilometers(), 1e-12)
}

func TestFormatArea(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "Area: 0.00 sq m"},
		{12364.345867841113, "Area: 12364.35 sq m"},
		{999999.99, "Area: 999999.99 sq m"},
		{999999.999, "Area: 1000000.00 sq m"},
		{1_000_000, "Area: 1.00 sq km"},
		{1_004_999, "Area: 1.00 sq km"},
		{1_006_000, "Area: 1.01 sq km"},
		{1_005_000, "Area: 1.00 sq km"},
		{12364031909.465502, "Area: 12364.03 sq km"},
		{0.125, "Area: 0.13 sq m"},
		{1.005, "Area: 1.00 sq m"},
		{2.675, "Area: 2.67 sq m"},
		{0.5, "Area: 0.50 sq m"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatArea(tt.in))
		})
	}
}

func TestToFixed2(t *testing.T) {
	assert.Equal(t, "0.00", toFixed2(0))
	assert.Equal(t, "0.01", toFixed2(0.005))
	assert.Equal(t, "-1.50", toFixed2(-1.5))
	assert.Equal(t, "123456789.10", toFixed2(123456789.1))
	assert.Equal(t, "NaN", toFixed2(math.NaN()))
}
