package main

import (
	"bytes"
	"os"

	"github.com/woozymasta/geodata/internal/geo"
	"github.com/woozymasta/geodata/internal/logger"
	"github.com/woozymasta/geodata/internal/processor"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input     string `short:"i" long:"in"     description:"Input file path (.geojson or .shp). Reads GeoJSON from stdin if empty"`
	Output    string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	CRS       string `long:"crs"              env:"TARGET_CRS" description:"Output coordinate reference system" default:"EPSG:31983"`
	Area      bool   `short:"a" long:"area"   description:"Add the area column in km²"`
	Precision int    `long:"precision"        description:"Significant digits kept for numbers when minifying (0 keeps all)"`
	Minify    bool   `short:"m" long:"minify" description:"Write compact GeoJSON"`
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

	// stdout may carry the document, keep logs on stderr
	log := opts.Logger.New(os.Stderr)

	target, err := geo.ParseCRS(opts.CRS)
	if err != nil {
		log.Fatal().Err(err).Str("crs", opts.CRS).Msg("Invalid target CRS")
	}

	var fc *geo.FeatureCollection
	if opts.Input != "" {
		fc, err = geo.ReadFile(opts.Input)
	} else {
		fc, err = geo.Decode(os.Stdin)
	}
	if err != nil {
		log.Fatal().Err(err).Str("input", opts.Input).Msg("Failed to read dataset")
	}

	proc := processor.New(processor.Options{
		Logger:    log,
		TargetCRS: target,
		Output:    geo.EncodeOptions{Indent: "  ", Minify: opts.Minify, Precision: opts.Precision},
	})

	if opts.Output != "" {
		if err := proc.ConvertFile(fc, opts.Output, opts.Area); err != nil {
			log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to convert dataset")
		}
	} else {
		var buf bytes.Buffer
		if err := proc.Convert(fc, &buf, opts.Area); err != nil {
			log.Fatal().Err(err).Msg("Failed to convert dataset")
		}
		if _, err := buf.WriteTo(os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Failed to write output")
		}
	}

	log.Info().Int("features", len(fc.Features)).Str("out", opts.Output).Msg("Conversion finished")
}
