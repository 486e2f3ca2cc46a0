// Package document encodes and decodes the saved marker and polygon state.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/woozymasta/geoarea/internal/geo"
	"github.com/woozymasta/geoarea/internal/scene"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyState is returned when exporting a scene without markers or polygon.
	ErrEmptyState = errors.New("no data to export")
	// ErrMalformedDocument is returned when an imported document violates the schema.
	ErrMalformedDocument = errors.New("malformed document")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Pointer fields are dereferenced before the check runs.
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

// Point is a document coordinate. Fields are pointers so a missing
// coordinate is told apart from zero.
type Point struct {
	Lat *float64 `json:"lat" yaml:"lat" validate:"required,finite"`
	Lng *float64 `json:"lng" yaml:"lng" validate:"required,finite"`
}

// Document is the persisted state: raw markers and the polygon path.
// Both keys are required, the polygon holds 0 or at least 3 entries.
type Document struct {
	Markers []*Point `json:"markers" yaml:"markers" validate:"required,dive,required"`
	Polygon []*Point `json:"polygon" yaml:"polygon" validate:"required,dive,required"`
}

// NewPoint builds a document point from a coordinate.
func NewPoint(p geo.LatLng) *Point {
	lat, lng := p.Lat, p.Lng
	return &Point{Lat: &lat, Lng: &lng}
}

// LatLng converts a validated point to a coordinate.
func (p *Point) LatLng() geo.LatLng {
	return geo.LatLng{Lat: *p.Lat, Lng: *p.Lng}
}

// FromScene captures the scene markers and boundary.
func FromScene(s *scene.Scene) (*Document, error) {
	points := s.Points()
	boundary := s.Boundary()
	if len(points) == 0 || boundary == nil {
		return nil, ErrEmptyState
	}

	doc := &Document{
		Markers: make([]*Point, len(points)),
		Polygon: make([]*Point, len(boundary)),
	}
	for i, p := range points {
		doc.Markers[i] = NewPoint(p)
	}
	for i, p := range boundary {
		doc.Polygon[i] = NewPoint(p)
	}

	return doc, nil
}

// MarkerPoints returns the marker coordinates.
func (d *Document) MarkerPoints() []geo.LatLng {
	return toLatLng(d.Markers)
}

// Boundary returns the polygon coordinates in stored order.
func (d *Document) Boundary() geo.Boundary {
	return geo.Boundary(toLatLng(d.Polygon))
}

// Validate checks the schema of a decoded document.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return nil
}

// Export encodes the scene as a JSON document.
func Export(s *scene.Scene) ([]byte, error) {
	doc, err := FromScene(s)
	if err != nil {
		return nil, err
	}

	return json.Marshal(doc)
}

// Decode parses and validates a JSON document.
func Decode(data []byte) (*Document, error) {
	var doc Document

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", ErrMalformedDocument)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Load decodes data and restores it into s. On error s is left untouched.
func Load(s *scene.Scene, data []byte) error {
	doc, err := Decode(data)
	if err != nil {
		return err
	}

	Apply(s, doc)
	return nil
}

// Apply restores a decoded document into s. The polygon is trusted as stored
// and not re-sorted.
func Apply(s *scene.Scene, doc *Document) {
	s.Restore(doc.MarkerPoints(), doc.Boundary())
}

// Import builds a new scene from a JSON document.
func Import(data []byte, opts ...scene.Option) (*scene.Scene, error) {
	s := scene.New(opts...)
	if err := Load(s, data); err != nil {
		return nil, err
	}
	return s, nil
}

func toLatLng(points []*Point) []geo.LatLng {
	out := make([]geo.LatLng, len(points))
	for i, p := range points {
		out[i] = p.LatLng()
	}
	return out
}
