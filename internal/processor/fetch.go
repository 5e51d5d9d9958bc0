package processor

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/woozymasta/geodata/internal/geo"
	"github.com/woozymasta/geodata/internal/reproject"

	"github.com/rotisserie/eris"
)

// AreaColumn holds the per-feature area in km².
const AreaColumn = "area"

// Fetch downloads a GeoJSON dataset, reprojects it to the target CRS, adds
// the area of every feature and writes the result to destPath/fileName.
func (p *Processor) Fetch(ctx context.Context, url, destPath, fileName string) error {
	log := p.log.With().Str("url", url).Logger()

	log.Info().Msg("Downloading data")
	body, err := p.download(ctx, url)
	if err != nil {
		log.Error().Err(err).Msg("Invalid input URL, data not found")
		return err
	}

	log.Info().Int("bytes", len(body)).Msg("Parsing data")
	fc, err := geo.Decode(bytes.NewReader(body))
	if err != nil {
		return eris.Wrapf(err, "processor: parse data from %s", url)
	}

	log.Info().
		Int("features", len(fc.Features)).
		Str("from", fc.CRS.String()).
		Str("to", p.target.String()).
		Msg("Setting coordinates")

	if err := reproject.Collection(fc, p.target); err != nil {
		return err
	}

	if p.target.Geographic() {
		log.Warn().
			Str("crs", p.target.String()).
			Msg("Target CRS is geographic, areas are in squared degrees")
	}
	AddArea(fc)

	return p.saveGeoJSON(destPath, fileName, fc)
}

// AddArea stores the planar area of every geometry, in km², in the area column.
// Geometries must already be in a projected CRS measured in meters.
func AddArea(fc *geo.FeatureCollection) {
	for _, f := range fc.Features {
		if f.Properties == nil {
			f.Properties = make(map[string]any, 1)
		}
		f.Properties[AreaColumn] = geo.Area(f.Geometry) / geo.SquareMetersPerSquareKilometer
	}
	fc.AddColumn(AreaColumn)
}

// download returns the body of a successful GET request.
func (p *Processor) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: eris.Wrap(err, "create request")}
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DownloadError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: eris.Wrap(err, "read body")}
	}

	return body, nil
}
