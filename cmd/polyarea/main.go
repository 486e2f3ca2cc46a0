package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/woozymasta/geoarea/internal/document"
	"github.com/woozymasta/geoarea/internal/geo"
	"github.com/woozymasta/geoarea/internal/logger"
	"github.com/woozymasta/geoarea/internal/scene"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input       string        `short:"i" long:"in"        description:"Input file path or http(s) URL. Reads from stdin if empty"`
	InputFormat string        `long:"in-format"           description:"Input format, guessed from the input path when empty" choice:"json" choice:"yaml"`
	Output      string        `short:"o" long:"out"       description:"Output file path. Writes to stdout if empty"`
	Format      string        `short:"f" long:"format"    description:"Output format, guessed from the output path when empty" choice:"json" choice:"yaml" choice:"geojson"`
	Radius      float64       `short:"r" long:"radius"    description:"Sphere radius in meters" default:"6371008.8"`
	MaxSize     int64         `long:"max-size"            description:"Input size limit in bytes" default:"1048576"`
	Timeout     time.Duration `long:"timeout"             description:"Download timeout" default:"30s"`
	Resort      bool          `long:"resort"              description:"Rebuild the polygon from the markers instead of trusting the stored order"`
	Pretty      bool          `long:"pretty"              description:"Indent JSON output"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	if opts.Radius <= 0 {
		opts.Radius = geo.EarthRadius
	}

	data, err := readInput(opts)
	if err != nil {
		log.Fatal().Err(err).Str("input", opts.Input).Msg("Failed to read input")
	}

	s := scene.New(scene.WithRadius(opts.Radius), scene.WithLogger(log.Logger))
	if err := load(s, data, inputFormat(opts), opts.Resort); err != nil {
		log.Fatal().Err(err).Msg("Failed to load document")
	}

	if info := s.Info(); info != "" {
		fmt.Fprintln(os.Stderr, info)
	} else {
		log.Warn().Int("markers", s.Len()).Msg("No polygon, at least 3 markers are required")
	}

	format := outputFormat(opts)
	out, err := document.ExportAs(s, format)
	if err != nil {
		if errors.Is(err, document.ErrEmptyState) {
			log.Fatal().Msg("No data to export")
		}
		log.Fatal().Err(err).Msg("Failed to export document")
	}

	if opts.Pretty && format != document.FormatYAML {
		var buf bytes.Buffer
		if err := json.Indent(&buf, out, "", "  "); err == nil {
			out = buf.Bytes()
		}
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, out, 0644); err != nil {
			log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output file")
		}
		log.Info().
			Str("path", opts.Output).
			Str("format", string(format)).
			Int("markers", s.Len()).
			Int("polygon", len(s.Boundary())).
			Msg("Document written")
		return
	}

	fmt.Println(strings.TrimRight(string(out), "\n"))
}

func readInput(opts Options) ([]byte, error) {
	switch {
	case strings.HasPrefix(opts.Input, "http://"), strings.HasPrefix(opts.Input, "https://"):
		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		defer cancel()
		return document.Fetch(ctx, http.DefaultClient, opts.Input, opts.MaxSize)

	case opts.Input != "":
		f, err := os.Open(opts.Input)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return document.ReadAll(f, opts.MaxSize)
	}

	return document.ReadAll(os.Stdin, opts.MaxSize)
}

func inputFormat(opts Options) document.Format {
	if opts.InputFormat != "" {
		return document.Format(opts.InputFormat)
	}
	if f := document.FormatFromPath(opts.Input); f == document.FormatYAML {
		return f
	}
	return document.FormatJSON
}

func outputFormat(opts Options) document.Format {
	if opts.Format != "" {
		return document.Format(opts.Format)
	}
	return document.FormatFromPath(opts.Output)
}

// load restores a document into s. A bare list of coordinates is accepted
// too and sorted into a polygon.
func load(s *scene.Scene, data []byte, f document.Format, resort bool) error {
	err := document.LoadAs(s, data, f)
	if err == nil {
		if resort {
			s.Recompute()
		}
		return nil
	}

	points, listErr := decodePoints(data)
	if listErr != nil {
		return err
	}

	log.Debug().Int("points", len(points)).Msg("Input is a bare point list")
	s.ReplaceAll(points)
	return nil
}

func decodePoints(data []byte) ([]geo.LatLng, error) {
	var points []*document.Point

	// YAML is a superset of JSON, one decoder reads both.
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&points); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, document.ErrMalformedDocument
		}
		return nil, err
	}

	doc := document.Document{Markers: points, Polygon: []*document.Point{}}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc.MarkerPoints(), nil
}
