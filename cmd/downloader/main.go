package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/woozymasta/geodata/internal/config"
	"github.com/woozymasta/geodata/internal/geo"
	"github.com/woozymasta/geodata/internal/logger"
	"github.com/woozymasta/geodata/internal/processor"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"    env:"CONFIG_FILE" description:"Path to configuration file with a list of datasets"`
	DataLink   string `short:"u" long:"data-link" env:"DATA_LINK"   description:"The link to the dataset"                         default:"https://raw.githubusercontent.com/tbrugz/geodata-br/master/geojson/geojs-31-mun.json"`
	DestPath   string `short:"d" long:"dest-path" env:"DEST_PATH"   description:"Destination path where the dataset will be saved" default:"../dados"`
	FileName   string `short:"n" long:"file-name" env:"FILE_NAME"   description:"Output file name with extension"                 default:"municipios-mg.geojson"`
	CRS        string `long:"crs"                 env:"TARGET_CRS"  description:"Output coordinate reference system"              default:"EPSG:31983"`
	Precision  int    `long:"precision"           description:"Significant digits kept for numbers when minifying (0 keeps all)"`
	Minify     bool   `short:"m" long:"minify"    description:"Write compact GeoJSON"`
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

	datasets := []config.Dataset{{
		Name:     opts.FileName,
		URL:      opts.DataLink,
		File:     opts.FileName,
		DestPath: opts.DestPath,
	}}
	crsName := opts.CRS
	output := geo.EncodeOptions{Indent: "  ", Minify: opts.Minify, Precision: opts.Precision}

	if opts.ConfigFile != "" {
		cfg, err := config.Load(opts.ConfigFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		if cfg.CRS != "" {
			crsName = cfg.CRS
		}
		output.Minify = cfg.MinifyOr(output.Minify)
		if cfg.Precision > 0 {
			output.Precision = cfg.Precision
		}

		datasets = cfg.Resolve(datasets[0])
	}

	target, err := geo.ParseCRS(crsName)
	if err != nil {
		log.Fatal().Err(err).Str("crs", crsName).Msg("Invalid target CRS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc := processor.New(processor.Options{
		Logger:    log,
		TargetCRS: target,
		Output:    output,
	})

	log.Info().
		Int("datasets", len(datasets)).
		Str("crs", proc.Target().String()).
		Bool("minify", output.Minify).
		Msg("Starting downloader")

	failed := 0
	for _, ds := range datasets {
		if err := proc.Fetch(ctx, ds.URL, ds.DestPath, ds.File); err != nil {
			failed++
			log.Error().Err(err).Str("dataset", ds.Name).Msg("Failed to fetch dataset")
		}
	}

	if failed > 0 {
		stop()
		log.Fatal().Int("failed", failed).Msg("Downloader finished with errors")
	}

	log.Info().Msg("Downloader finished successfully")
}
