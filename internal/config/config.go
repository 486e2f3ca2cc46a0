// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"

	"github.com/woozymasta/geoarea/internal/geo"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults used when the configuration omits a value.
const (
	DefaultZoom          = 8
	DefaultTileURL       = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution   = "&copy; OpenStreetMap contributors"
	DefaultExportName    = "map-data"
	DefaultMaxImportSize = 1 << 20
)

// DefaultCenter is the initial map center.
var DefaultCenter = geo.LatLng{Lat: -34.397, Lng: 150.644}

// Config represents the root configuration file structure.
type Config struct {
	Map         View    `yaml:"map" json:"map"`
	Style       Style   `yaml:"style" json:"style"`
	ExportName  string  `yaml:"export_name,omitempty" json:"export_name"`
	EarthRadius float64 `yaml:"earth_radius,omitempty" json:"earth_radius" validate:"gte=0"`
	// MaxImportSize limits uploaded documents, in bytes
	MaxImportSize int64 `yaml:"max_import_size,omitempty" json:"-" validate:"gte=0"`
}

// View is the initial map viewport and base layer.
type View struct {
	Center      *geo.LatLng `yaml:"center,omitempty" json:"center"`
	TileURL     string      `yaml:"tile_url,omitempty" json:"tile_url"`
	Attribution string      `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Zoom        int         `yaml:"zoom,omitempty" json:"zoom" validate:"gte=0,lte=22"`
}

// Style is the rendering style of the boundary polygon.
type Style struct {
	StrokeOpacity *float64 `yaml:"stroke_opacity,omitempty" json:"stroke_opacity" validate:"omitempty,gte=0,lte=1"`
	FillOpacity   *float64 `yaml:"fill_opacity,omitempty" json:"fill_opacity" validate:"omitempty,gte=0,lte=1"`
	StrokeColor   string   `yaml:"stroke_color,omitempty" json:"stroke_color" validate:"omitempty,hexcolor"`
	FillColor     string   `yaml:"fill_color,omitempty" json:"fill_color" validate:"omitempty,hexcolor"`
	StrokeWeight  int      `yaml:"stroke_weight,omitempty" json:"stroke_weight" validate:"gte=0"`
}

var validate = validator.New()

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads and parses the YAML configuration file from the specified path.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Map.Center != nil && !c.Map.Center.Valid() {
		return fmt.Errorf("invalid configuration: map center %s out of range", c.Map.Center)
	}
	return nil
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Map.Center == nil {
		center := DefaultCenter
		c.Map.Center = &center
	}
	if c.Map.Zoom <= 0 {
		c.Map.Zoom = DefaultZoom
	}
	if c.Map.TileURL == "" {
		c.Map.TileURL = DefaultTileURL
	}
	if c.Map.Attribution == "" {
		c.Map.Attribution = DefaultAttribution
	}

	if c.Style.StrokeColor == "" {
		c.Style.StrokeColor = "#FF0000"
	}
	if c.Style.FillColor == "" {
		c.Style.FillColor = "#FF0000"
	}
	if c.Style.StrokeOpacity == nil {
		c.Style.StrokeOpacity = float64Ptr(0.8)
	}
	if c.Style.FillOpacity == nil {
		c.Style.FillOpacity = float64Ptr(0.35)
	}
	if c.Style.StrokeWeight <= 0 {
		c.Style.StrokeWeight = 2
	}

	if c.ExportName == "" {
		c.ExportName = DefaultExportName
	}
	if c.EarthRadius <= 0 {
		c.EarthRadius = geo.EarthRadius
	}
	if c.MaxImportSize <= 0 {
		c.MaxImportSize = DefaultMaxImportSize
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}
