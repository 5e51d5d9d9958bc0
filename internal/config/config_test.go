package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
crs: EPSG:31983
dest_path: ../dados
minify: true
precision: 10
datasets:
  - name: mg
    url: https://raw.githubusercontent.com/tbrugz/geodata-br/master/geojson/geojs-31-mun.json
    file: municipios-mg.geojson
  - url: https://raw.githubusercontent.com/tbrugz/geodata-br/master/geojson/geojs-35-mun.json
    file: municipios-sp.geojson
    dest_path: /tmp/sp
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "EPSG:31983", cfg.CRS)
	assert.True(t, cfg.MinifyOr(false))
	assert.Equal(t, 10, cfg.Precision)
	require.Len(t, cfg.Datasets, 2)

	assert.Equal(t, "mg", cfg.Datasets[0].Name)
	assert.Equal(t, "../dados", cfg.Dest(cfg.Datasets[0]))

	assert.Equal(t, "municipios-sp.geojson", cfg.Datasets[1].Name, "name defaults to file")
	assert.Equal(t, "/tmp/sp", cfg.Dest(cfg.Datasets[1]))
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "datasets: [",
		"bad crs":      "crs: EPSG:3857",
		"missing url":  "datasets:\n  - file: a.geojson",
		"missing file": "datasets:\n  - url: http://example.com/a.json",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	fallback := Dataset{Name: "mg", URL: "http://example.com/mg.json", File: "mg.geojson", DestPath: "../dados"}

	t.Run("file dest_path overrides flag default", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "dest_path: /srv/data\nminify: false"))
		require.NoError(t, err)

		got := cfg.Resolve(fallback)
		require.Len(t, got, 1)
		assert.Equal(t, "/srv/data", got[0].DestPath)
		assert.Equal(t, fallback.URL, got[0].URL)
		assert.False(t, cfg.MinifyOr(true), "explicit false disables minify")
	})

	t.Run("empty file keeps flags", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "crs: EPSG:31983"))
		require.NoError(t, err)

		assert.Equal(t, []Dataset{fallback}, cfg.Resolve(fallback))
		assert.True(t, cfg.MinifyOr(true))
	})

	t.Run("datasets fall back to flag dest", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "datasets:\n  - url: http://example.com/sp.json\n    file: sp.geojson"))
		require.NoError(t, err)

		got := cfg.Resolve(fallback)
		require.Len(t, got, 1)
		assert.Equal(t, "sp.geojson", got[0].Name)
		assert.Equal(t, "../dados", got[0].DestPath)
	})
}
