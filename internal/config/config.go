// Package config handles configuration loading and shared data structures.
package config

import (
	"os"

	"github.com/woozymasta/geodata/internal/geo"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	CRS       string    `yaml:"crs,omitempty"`
	DestPath  string    `yaml:"dest_path,omitempty"`
	Datasets  []Dataset `yaml:"datasets,omitempty"`
	Precision int       `yaml:"precision,omitempty"`
	Minify    *bool     `yaml:"minify,omitempty"` // nil when not set in the file
}

// Dataset is a single remote GeoJSON source to download.
type Dataset struct {
	Name     string `yaml:"name,omitempty"`
	URL      string `yaml:"url"`
	File     string `yaml:"file"`
	DestPath string `yaml:"dest_path,omitempty"` // falls back to Config.DestPath
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, eris.Wrapf(err, "config: parse %s", path)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.CRS != "" {
		if _, err := geo.ParseCRS(c.CRS); err != nil {
			return eris.Wrap(err, "config: crs")
		}
	}

	for i := range c.Datasets {
		ds := &c.Datasets[i]
		if ds.URL == "" {
			return eris.Errorf("config: dataset %d has no url", i)
		}
		if ds.File == "" {
			return eris.Errorf("config: dataset %d (%s) has no file", i, ds.URL)
		}
		if ds.Name == "" {
			ds.Name = ds.File
		}
	}

	return nil
}

// Dest returns the destination directory of a dataset.
func (c *Config) Dest(ds Dataset) string {
	if ds.DestPath != "" {
		return ds.DestPath
	}
	return c.DestPath
}

// Resolve returns the datasets to process with their destination set.
// Without datasets in the file, fallback (usually built from command line
// flags) is used, and the top-level dest_path still overrides its directory.
func (c *Config) Resolve(fallback Dataset) []Dataset {
	if len(c.Datasets) == 0 {
		if c.DestPath != "" {
			fallback.DestPath = c.DestPath
		}
		return []Dataset{fallback}
	}

	datasets := make([]Dataset, 0, len(c.Datasets))
	for _, ds := range c.Datasets {
		ds.DestPath = c.Dest(ds)
		if ds.DestPath == "" {
			ds.DestPath = fallback.DestPath
		}
		datasets = append(datasets, ds)
	}
	return datasets
}

// MinifyOr returns the minify setting of the file, or def when it is not set.
func (c *Config) MinifyOr(def bool) bool {
	if c.Minify == nil {
		return def
	}
	return *c.Minify
}
