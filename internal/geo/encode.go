package geo

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tdewolff/minify/v2"
	jsonmin "github.com/tdewolff/minify/v2/json"
)

const mediaTypeJSON = "application/json"

// Encode writes fc to w as GeoJSON using the given layout options.
// Minify takes precedence over Indent.
func Encode(w io.Writer, fc *FeatureCollection, opts EncodeOptions) error {
	data, err := Marshal(fc)
	if err != nil {
		return err
	}

	if opts.Minify {
		m := minify.New()
		m.Add(mediaTypeJSON, &jsonmin.Minifier{Precision: opts.Precision})
		if err := m.Minify(mediaTypeJSON, w, bytes.NewReader(data)); err != nil {
			return eris.Wrap(err, "geo: minify GeoJSON")
		}
		return nil
	}

	var buf bytes.Buffer
	if opts.Indent != "" {
		if err := json.Indent(&buf, data, "", opts.Indent); err != nil {
			return eris.Wrap(err, "geo: indent GeoJSON")
		}
	} else {
		buf.Write(data)
	}
	buf.WriteByte('\n')

	if _, err := buf.WriteTo(w); err != nil {
		return eris.Wrap(err, "geo: write GeoJSON")
	}
	return nil
}

// ReadFile reads a vector dataset from disk.
// Files ending in .shp are read as ESRI shapefiles, everything else as GeoJSON.
func ReadFile(path string) (*FeatureCollection, error) {
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		return ReadShapefile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open %s", path)
	}
	defer func() { _ = f.Close() }()

	fc, err := Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: parse %s", path)
	}
	return fc, nil
}
