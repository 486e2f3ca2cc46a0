package document

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/woozymasta/geoarea/internal/geo"
	"github.com/woozymasta/geoarea/internal/scene"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for unknown formats and for decoding GeoJSON.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Format is a document serialization.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatGeoJSON Format = "geojson"
)

// ParseFormat resolves a format name, an empty name means JSON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "geojson":
		return FormatGeoJSON, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".geojson":
		return FormatGeoJSON
	}

	return FormatJSON
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatGeoJSON:
		return "application/geo+json"
	}

	return "application/json"
}

// Extension returns the file extension of the format, with the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ExportAs encodes the scene in the given format.
func ExportAs(s *scene.Scene, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return Export(s)

	case FormatYAML:
		doc, err := FromScene(s)
		if err != nil {
			return nil, err
		}
		return yaml.Marshal(doc)

	case FormatGeoJSON:
		doc, err := FromScene(s)
		if err != nil {
			return nil, err
		}
		area, _ := s.Area()
		return FeatureCollection(doc, area).MarshalJSON()
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// DecodeAs parses and validates a document in the given format.
// GeoJSON is export only.
func DecodeAs(data []byte, f Format) (*Document, error) {
	switch f {
	case FormatJSON:
		return Decode(data)

	case FormatYAML:
		var doc Document
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		if err := doc.Validate(); err != nil {
			return nil, err
		}
		return &doc, nil
	}

	return nil, fmt.Errorf("%w: cannot import %q", ErrUnsupportedFormat, f)
}

// LoadAs decodes data in the given format and restores it into s.
// On error s is left untouched.
func LoadAs(s *scene.Scene, data []byte, f Format) error {
	doc, err := DecodeAs(data, f)
	if err != nil {
		return err
	}

	Apply(s, doc)
	return nil
}

// FeatureCollection renders the document as GeoJSON: one point feature per
// marker and one polygon feature for the boundary.
func FeatureCollection(doc *Document, area geo.AreaResult) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i, p := range doc.MarkerPoints() {
		f := geojson.NewFeature(p.Point())
		f.Properties["kind"] = "marker"
		f.Properties["index"] = i
		fc.Append(f)
	}

	boundary := doc.Boundary()
	if len(boundary) >= geo.MinBoundaryPoints {
		f := geojson.NewFeature(orb.Polygon{boundary.Ring()})
		f.Properties["kind"] = "boundary"
		f.Properties["area_sq_m"] = area.SquareMeters
		f.Properties["label"] = area.Text()
		fc.Append(f)
	}

	return fc
}
