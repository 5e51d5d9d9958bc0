package main

import (
	"os"

	"github.com/woozymasta/geodata/internal/geo"
	"github.com/woozymasta/geodata/internal/logger"
	"github.com/woozymasta/geodata/internal/processor"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Dataset1  string `short:"1" long:"dataset1"  description:"Path to the first data set to be merged (.geojson or .shp)"  required:"true"`
	Dataset2  string `short:"2" long:"dataset2"  description:"Path to the second data set to be merged (.geojson or .shp)" required:"true"`
	DestPath  string `short:"d" long:"dest-path" env:"DEST_PATH"  description:"Destination path where the merged dataset will be saved" default:"."`
	FileName  string `short:"n" long:"file-name" env:"FILE_NAME"  description:"Output file name with .geojson extension"                  default:"merged.geojson"`
	CRS       string `long:"crs"                 env:"TARGET_CRS" description:"Output coordinate reference system"                       default:"EPSG:31983"`
	Precision int    `long:"precision"           description:"Significant digits kept for numbers when minifying (0 keeps all)"`
	Minify    bool   `short:"m" long:"minify"    description:"Write compact GeoJSON"`
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

	log := opts.Logger.Setup()

	target, err := geo.ParseCRS(opts.CRS)
	if err != nil {
		log.Fatal().Err(err).Str("crs", opts.CRS).Msg("Invalid target CRS")
	}

	proc := processor.New(processor.Options{
		Logger:    log,
		TargetCRS: target,
		Output:    geo.EncodeOptions{Indent: "  ", Minify: opts.Minify, Precision: opts.Precision},
	})

	if err := proc.Merge(opts.Dataset1, opts.Dataset2, opts.DestPath, opts.FileName); err != nil {
		log.Fatal().Err(err).Msg("Failed to merge datasets")
	}

	log.Info().Msg("Merge finished successfully")
}
