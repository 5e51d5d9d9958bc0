package processor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/geodata/internal/geo"

	"github.com/jonas-p/go-shp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	populationGeoJSON = `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"id":"a","pop":100},"geometry":{"type":"Point","coordinates":[-45,-20]}},
		{"type":"Feature","properties":{"id":"b","pop":200},"geometry":{"type":"Point","coordinates":[-44,-19]}}
	]}`

	// already in SIRGAS 2000 / UTM zone 23S
	areasGeoJSON = `{"type":"FeatureCollection","crs":{"type":"name","properties":{"name":"EPSG:31983"}},"features":[
		{"type":"Feature","properties":{"area":1.5,"id":"c"},"geometry":{"type":"Point","coordinates":[500000,7788518.6924]}},
		{"type":"Feature","properties":{"area":2.5,"id":"d"},"geometry":{"type":"Point","coordinates":[600000,7800000]}},
		{"type":"Feature","properties":{"area":3.5,"id":"e"},"geometry":null}
	]}`
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMerge(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path1 := writeFile(t, in, "pop.geojson", populationGeoJSON)
	path2 := writeFile(t, in, "areas.geojson", areasGeoJSON)

	p := newTestProcessor(t)
	require.NoError(t, p.Merge(path1, path2, out, "merged.geojson"))

	fc := readOutput(t, filepath.Join(out, "merged.geojson"))
	assert.Equal(t, geo.SIRGAS2000UTM23S, fc.CRS)
	assert.Equal(t, []string{"id"}, fc.Columns)
	require.Len(t, fc.Features, 5)

	ids := make([]any, 0, len(fc.Features))
	for _, f := range fc.Features {
		ids = append(ids, f.Properties["id"])
		assert.NotContains(t, f.Properties, "pop")
		assert.NotContains(t, f.Properties, "area")
	}
	assert.Equal(t, []any{"a", "b", "c", "d", "e"}, ids)

	// first dataset was reprojected from WGS 84, second was left in place
	assert.InDelta(t, 500000, fc.Features[0].Geometry.FlatCoords()[0], 1e-3)
	assert.InDelta(t, 7788518.6924, fc.Features[0].Geometry.FlatCoords()[1], 1e-3)
	assert.Equal(t, []float64{600000, 7800000}, fc.Features[3].Geometry.FlatCoords())
	assert.Nil(t, fc.Features[4].Geometry)
}

func TestMerge_NoCommonColumns(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path1 := writeFile(t, in, "a.geojson", `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"pop":1},"geometry":null}]}`)
	path2 := writeFile(t, in, "b.geojson", `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"area":1},"geometry":null}]}`)

	err := New(Options{Logger: zerolog.Nop()}).Merge(path1, path2, out, "merged.geojson")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCommonColumns))

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"pop"}, schemaErr.Columns1)
	assert.Equal(t, []string{"area"}, schemaErr.Columns2)
	assert.Contains(t, err.Error(), "common columns")
	assert.NoFileExists(t, filepath.Join(out, "merged.geojson"))
}

func TestMerge_MissingInput(t *testing.T) {
	in := t.TempDir()
	path1 := writeFile(t, in, "pop.geojson", populationGeoJSON)

	err := newTestProcessor(t).Merge(path1, filepath.Join(in, "missing.geojson"), in, "merged.geojson")
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(in, "merged.geojson"))
}

func TestMerge_Shapefile(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	shpPath := filepath.Join(in, "districts.shp")
	w, err := shp.Create(shpPath, shp.POINT)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.StringField("id", 10), shp.StringField("kind", 10)})
	n := int(w.Write(&shp.Point{X: -45, Y: 0}))
	w.WriteAttribute(n, 0, "s1")
	w.WriteAttribute(n, 1, "district")
	w.Close()

	jsonPath := writeFile(t, in, "pop.geojson", populationGeoJSON)

	require.NoError(t, newTestProcessor(t).Merge(shpPath, jsonPath, out, "merged.geojson"))

	fc := readOutput(t, filepath.Join(out, "merged.geojson"))
	assert.Equal(t, []string{"id"}, fc.Columns)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "s1", fc.Features[0].Properties["id"])
	assert.InDelta(t, 500000, fc.Features[0].Geometry.FlatCoords()[0], 1e-3)
	assert.InDelta(t, 10000000, fc.Features[0].Geometry.FlatCoords()[1], 1e-3)
}

func TestCommonColumns(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want []string
	}{
		{"order of first", []string{"name", "id", "pop"}, []string{"id", "area", "name"}, []string{"name", "id"}},
		{"disjoint", []string{"pop"}, []string{"area"}, []string{}},
		{"empty", nil, []string{"id"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommonColumns(tt.a, tt.b))
		})
	}
}
