package main

import (
	"os"
	"path/filepath"

	"github.com/woozymasta/geoarea/assets"
	"github.com/woozymasta/geoarea/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Output string `short:"o" long:"out"   description:"Output directory" default:"dist"`
	Title  string `short:"t" long:"title" description:"Page title"       default:"Polygon area"`
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

	bundle, err := assets.Build(opts.Title)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build page")
	}

	if err := os.MkdirAll(opts.Output, 0755); err != nil {
		log.Fatal().Err(err).Str("dir", opts.Output).Msg("Failed to create output directory")
	}

	files := map[string][]byte{
		"index.html":  bundle.Index,
		"favicon.svg": bundle.Favicon,
	}
	for name, data := range files {
		path := filepath.Join(opts.Output, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to write file")
		}

		log.Info().Str("path", path).Int("bytes", len(data)).Msg("Written")
	}
}
