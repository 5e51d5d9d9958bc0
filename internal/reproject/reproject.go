// Package reproject transforms geometry coordinates between reference systems.
package reproject

import (
	"math"

	"github.com/woozymasta/geodata/internal/geo"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Transformer converts coordinates from one CRS to another.
type Transformer interface {
	// Transform rewrites flat coordinates in place; only the first two
	// ordinates of every stride-sized tuple are touched.
	Transform(flat []float64, stride int) error
	// Close releases library resources held by the transformer.
	Close() error
}

// New returns a transformer from src to dst.
func New(src, dst geo.CRS) (Transformer, error) {
	if !src.Supported() {
		return nil, eris.Errorf("reproject: unsupported source CRS %s", src)
	}
	if !dst.Supported() {
		return nil, eris.Errorf("reproject: unsupported target CRS %s", dst)
	}
	if src == dst {
		return identity{}, nil
	}
	return backend(src, dst)
}

// Collection reprojects every geometry of fc to dst and tags them with it.
func Collection(fc *geo.FeatureCollection, dst geo.CRS) error {
	t, err := New(fc.CRS, dst)
	if err != nil {
		return err
	}
	defer func() { _ = t.Close() }()

	for i, f := range fc.Features {
		if err := Geometry(t, f.Geometry); err != nil {
			return eris.Wrapf(err, "reproject: feature %d", i)
		}
		geo.SetSRID(f.Geometry, int(dst))
	}
	fc.CRS = dst

	return nil
}

// Geometry applies t to all coordinates of g in place.
func Geometry(t Transformer, g geom.T) error {
	switch g := g.(type) {
	case nil:
		return nil
	case *geom.GeometryCollection:
		for _, child := range g.Geoms() {
			if err := Geometry(t, child); err != nil {
				return err
			}
		}
		return nil
	default:
		return t.Transform(g.FlatCoords(), g.Stride())
	}
}

// checkInput rejects strides without two ordinates and, for geographic
// sources, latitudes outside [-90, 90].
func checkInput(flat []float64, stride int, geographic bool) error {
	if stride < 2 {
		return eris.Errorf("reproject: invalid stride %d", stride)
	}
	if !geographic {
		return nil
	}
	for i := 1; i < len(flat); i += stride {
		if flat[i] < -90 || flat[i] > 90 {
			return eris.Errorf("reproject: latitude %g out of range", flat[i])
		}
	}
	return nil
}

func finite(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsNaN(y) && !math.IsInf(x, 0) && !math.IsInf(y, 0)
}

type identity struct{}

func (identity) Transform([]float64, int) error { return nil }

func (identity) Close() error { return nil }
