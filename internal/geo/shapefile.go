package geo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

var (
	prjAuthorityRegex = regexp.MustCompile(`AUTHORITY\[\s*"EPSG"\s*,\s*"?(\d+)"?\s*\]`)
	prjUTMRegex       = regexp.MustCompile(`(?i)UTM[_ ]Zone[_ ](\d+)([NS])`)
)

// ReadShapefile reads an ESRI shapefile with its .dbf attributes.
// The CRS is taken from the sibling .prj file, WGS84 when it is missing.
func ReadShapefile(path string) (*FeatureCollection, error) {
	crs, err := shapefileCRS(path)
	if err != nil {
		return nil, err
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))

	fc := NewFeatureCollection(crs)
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
		fc.AddColumn(names[i])
	}

	for reader.Next() {
		n, shape := reader.Shape()

		props := make(map[string]any, len(fields))
		for i, f := range fields {
			props[names[i]] = shapeAttribute(f, reader.Attribute(i))
		}

		g, err := shapeGeometry(shape)
		if err != nil {
			return nil, eris.Wrapf(err, "geo: shape %d of %s", n, path)
		}
		SetSRID(g, int(crs))

		fc.Features = append(fc.Features, &Feature{Geometry: g, Properties: props})
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "geo: read shapefile %s", path)
	}

	return fc, nil
}

// shapefileCRS resolves the CRS declared in the .prj next to path.
func shapefileCRS(path string) (CRS, error) {
	prjPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"

	data, err := os.ReadFile(prjPath)
	if os.IsNotExist(err) {
		return WGS84, nil
	}
	if err != nil {
		return 0, eris.Wrapf(err, "geo: read %s", prjPath)
	}

	return parsePrj(string(data))
}

// parsePrj extracts the EPSG code from WKT. OGC WKT carries AUTHORITY nodes,
// the outermost (last) one names the CRS itself; ESRI WKT only has names.
func parsePrj(wkt string) (CRS, error) {
	if m := prjAuthorityRegex.FindAllStringSubmatch(wkt, -1); len(m) > 0 {
		return ParseCRS(m[len(m)-1][1])
	}

	sirgas := strings.Contains(strings.ToUpper(wkt), "SIRGAS")

	if m := prjUTMRegex.FindStringSubmatch(wkt); m != nil {
		zone, _ := strconv.Atoi(m[1])
		south := strings.EqualFold(m[2], "S")
		crs := utmCRS(zone, south, sirgas)
		if !crs.Supported() {
			return 0, eris.Errorf("geo: unsupported UTM zone %d%s", zone, m[2])
		}
		return crs, nil
	}

	if strings.HasPrefix(strings.TrimSpace(strings.ToUpper(wkt)), "GEOGCS") {
		if sirgas {
			return SIRGAS2000, nil
		}
		return WGS84, nil
	}

	return 0, eris.New("geo: unrecognised projection in .prj file")
}

func utmCRS(zone int, south, sirgas bool) CRS {
	switch {
	case sirgas && south:
		return CRS(31977 + zone - 17)
	case sirgas:
		return CRS(31965 + zone - 11)
	case south:
		return CRS(32700 + zone)
	default:
		return CRS(32600 + zone)
	}
}

func shapeAttribute(f shp.Field, raw string) any {
	val := strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	if val == "" {
		return nil
	}

	switch f.Fieldtype {
	case 'N', 'F':
		if _, err := strconv.ParseFloat(val, 64); err == nil {
			return json.Number(val)
		}
	case 'L':
		switch strings.ToUpper(val) {
		case "T", "Y":
			return true
		case "F", "N":
			return false
		default:
			return nil
		}
	}

	return val
}

// shapeGeometry converts a go-shp shape into a 2D go-geom geometry, Z and M
// values are dropped. Null and empty shapes yield nil.
func shapeGeometry(shape shp.Shape) (geom.T, error) {
	switch s := shape.(type) {
	case nil, *shp.Null:
		return nil, nil
	case *shp.Point:
		return pointGeometry(s.X, s.Y), nil
	case *shp.PointZ:
		return pointGeometry(s.X, s.Y), nil
	case *shp.PointM:
		return pointGeometry(s.X, s.Y), nil
	case *shp.MultiPoint:
		return multiPointGeometry(s.Points), nil
	case *shp.MultiPointZ:
		return multiPointGeometry(s.Points), nil
	case *shp.MultiPointM:
		return multiPointGeometry(s.Points), nil
	case *shp.PolyLine:
		return lineGeometry(shapeParts(s.Parts, s.Points)), nil
	case *shp.PolyLineZ:
		return lineGeometry(shapeParts(s.Parts, s.Points)), nil
	case *shp.PolyLineM:
		return lineGeometry(shapeParts(s.Parts, s.Points)), nil
	case *shp.Polygon:
		return polygonGeometry(shapeParts(s.Parts, s.Points)), nil
	case *shp.PolygonZ:
		return polygonGeometry(shapeParts(s.Parts, s.Points)), nil
	case *shp.PolygonM:
		return polygonGeometry(shapeParts(s.Parts, s.Points)), nil
	default:
		return nil, eris.Errorf("geo: unsupported shape type %T", shape)
	}
}

func pointGeometry(x, y float64) geom.T {
	return geom.NewPointFlat(geom.XY, []float64{x, y})
}

func multiPointGeometry(points []shp.Point) geom.T {
	if len(points) == 0 {
		return nil
	}
	return geom.NewMultiPointFlat(geom.XY, pointsFlat(points))
}

func lineGeometry(parts [][]float64) geom.T {
	if len(parts) == 0 {
		return nil
	}
	mls := geom.NewMultiLineString(geom.XY)
	for _, part := range parts {
		_ = mls.Push(geom.NewLineStringFlat(geom.XY, part))
	}
	return mls
}

// polygonGeometry groups shapefile rings into polygons. Outer rings are
// clockwise and start a new polygon, counter-clockwise rings are holes of
// the preceding outer ring.
func polygonGeometry(rings [][]float64) geom.T {
	var polygons []*geom.Polygon

	for _, ring := range rings {
		if len(ring) < 8 {
			continue
		}
		lr := geom.NewLinearRingFlat(geom.XY, ring)

		if signedArea(ring) <= 0 || len(polygons) == 0 {
			p := geom.NewPolygon(geom.XY)
			if err := p.Push(lr); err != nil {
				continue
			}
			polygons = append(polygons, p)
			continue
		}

		_ = polygons[len(polygons)-1].Push(lr)
	}

	switch len(polygons) {
	case 0:
		return nil
	case 1:
		return polygons[0]
	}

	mp := geom.NewMultiPolygon(geom.XY)
	// all parts share the XY layout, Push cannot fail
	for _, p := range polygons {
		_ = mp.Push(p)
	}
	return mp
}

// shapeParts splits shapefile points into flat XY coordinate parts.
func shapeParts(parts []int32, points []shp.Point) [][]float64 {
	out := make([][]float64, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start >= end || int(end) > len(points) {
			continue
		}
		out = append(out, pointsFlat(points[start:end]))
	}
	return out
}

func pointsFlat(points []shp.Point) []float64 {
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	return flat
}

// signedArea is positive for counter-clockwise rings.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
