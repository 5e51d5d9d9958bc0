// Package processor implements the dataset download and merge operations.
package processor

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"

	"github.com/woozymasta/geodata/internal/geo"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// DefaultUserAgent is sent with every download request.
const DefaultUserAgent = "geodata/1.0"

// Options configures a Processor.
type Options struct {
	// Client defaults to NewHTTPClient(Logger).
	Client *http.Client
	Logger zerolog.Logger
	// TargetCRS defaults to SIRGAS 2000 / UTM zone 23S.
	TargetCRS geo.CRS
	Output    geo.EncodeOptions
	UserAgent string
}

// Processor runs fetch and merge operations with injected dependencies.
type Processor struct {
	client    *http.Client
	log       zerolog.Logger
	target    geo.CRS
	output    geo.EncodeOptions
	userAgent string
}

// New creates a Processor, filling unset options with defaults.
func New(opts Options) *Processor {
	if opts.Client == nil {
		opts.Client = NewHTTPClient(opts.Logger)
	}
	if opts.TargetCRS == 0 {
		opts.TargetCRS = geo.SIRGAS2000UTM23S
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	return &Processor{
		client:    opts.Client,
		log:       opts.Logger,
		target:    opts.TargetCRS,
		output:    opts.Output,
		userAgent: opts.UserAgent,
	}
}

// Target returns the CRS every output is written in.
func (p *Processor) Target() geo.CRS {
	return p.target
}

// saveGeoJSON encodes the feature collection and writes it to dir/name.
// The document is encoded before the file is created so failures leave no output.
func (p *Processor) saveGeoJSON(dir, name string, fc *geo.FeatureCollection) error {
	path := filepath.Join(dir, name)

	var buf bytes.Buffer
	if err := geo.Encode(&buf, fc, p.output); err != nil {
		return eris.Wrap(err, "processor: encode output")
	}

	p.log.Info().
		Str("path", path).
		Int("features", len(fc.Features)).
		Str("crs", fc.CRS.String()).
		Msg("Saving data to output path")

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return eris.Wrapf(err, "processor: create %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "processor: create %s", path)
	}

	if _, err := buf.WriteTo(f); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "processor: write %s", path)
	}

	// We care about write errors on close
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "processor: close %s", path)
	}

	return nil
}
