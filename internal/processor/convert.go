package processor

import (
	"io"
	"path/filepath"

	"github.com/woozymasta/geodata/internal/geo"
	"github.com/woozymasta/geodata/internal/reproject"

	"github.com/rotisserie/eris"
)

// Convert reprojects a loaded dataset to the target CRS and encodes it to w,
// optionally adding the area column first.
func (p *Processor) Convert(fc *geo.FeatureCollection, w io.Writer, withArea bool) error {
	if err := p.prepare(fc, withArea); err != nil {
		return err
	}

	if err := geo.Encode(w, fc, p.output); err != nil {
		return eris.Wrap(err, "processor: encode output")
	}
	return nil
}

// ConvertFile is Convert writing to a file. Nothing is written when
// reprojection or encoding fails.
func (p *Processor) ConvertFile(fc *geo.FeatureCollection, path string, withArea bool) error {
	if err := p.prepare(fc, withArea); err != nil {
		return err
	}
	return p.saveGeoJSON(filepath.Dir(path), filepath.Base(path), fc)
}

func (p *Processor) prepare(fc *geo.FeatureCollection, withArea bool) error {
	p.log.Info().
		Int("features", len(fc.Features)).
		Str("from", fc.CRS.String()).
		Str("to", p.target.String()).
		Msg("Setting coordinates")

	if err := reproject.Collection(fc, p.target); err != nil {
		return err
	}

	if withArea {
		AddArea(fc)
	}
	return nil
}
