package processor

import (
	"github.com/woozymasta/geodata/internal/geo"
	"github.com/woozymasta/geodata/internal/reproject"

	"github.com/rotisserie/eris"
)

// Merge reads two datasets, keeps the attribute columns they share, appends
// the rows of the second after the first, reprojects everything to the
// target CRS and writes the result to destPath/fileName.
func (p *Processor) Merge(path1, path2, destPath, fileName string) error {
	p.log.Info().Str("path", path1).Msg("Reading dataset 1")
	fc1, err := geo.ReadFile(path1)
	if err != nil {
		return eris.Wrap(err, "processor: read dataset 1")
	}

	p.log.Info().Str("path", path2).Msg("Reading dataset 2")
	fc2, err := geo.ReadFile(path2)
	if err != nil {
		return eris.Wrap(err, "processor: read dataset 2")
	}

	p.log.Info().Msg("Filtering common columns")
	common := CommonColumns(fc1.Columns, fc2.Columns)
	if len(common) == 0 {
		err := &SchemaError{Columns1: fc1.Columns, Columns2: fc2.Columns}
		p.log.Error().Err(err).Msg("Cannot merge datasets")
		return err
	}

	p.log.Debug().
		Strs("columns", common).
		Int("rows_1", len(fc1.Features)).
		Int("rows_2", len(fc2.Features)).
		Msg("Common columns found")

	merged, err := p.concat(fc1.Select(common), fc2.Select(common))
	if err != nil {
		return err
	}

	return p.saveGeoJSON(destPath, fileName, merged)
}

// concat reprojects both collections to the target CRS and appends b to a.
func (p *Processor) concat(a, b *geo.FeatureCollection) (*geo.FeatureCollection, error) {
	p.log.Info().
		Str("crs_1", a.CRS.String()).
		Str("crs_2", b.CRS.String()).
		Str("to", p.target.String()).
		Msg("Setting coordinates")

	if err := reproject.Collection(a, p.target); err != nil {
		return nil, eris.Wrap(err, "processor: reproject dataset 1")
	}
	if err := reproject.Collection(b, p.target); err != nil {
		return nil, eris.Wrap(err, "processor: reproject dataset 2")
	}

	if err := a.Append(b); err != nil {
		return nil, err
	}
	return a, nil
}

// CommonColumns returns the columns of a that are also in b, in the order of a.
func CommonColumns(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, c := range b {
		inB[c] = struct{}{}
	}

	common := make([]string, 0, len(a))
	for _, c := range a {
		if _, ok := inB[c]; ok {
			common = append(common, c)
		}
	}
	return common
}
