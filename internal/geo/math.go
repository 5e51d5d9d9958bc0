package geo

import (
	"math"

	"github.com/twpayne/go-geom"
)

// SquareMetersPerSquareKilometer converts planar areas in m² to km².
const SquareMetersPerSquareKilometer = 1e6

// Area returns the planar area of g in squared coordinate units, whatever
// the winding of its rings. Points and lines have no area.
func Area(g geom.T) float64 {
	switch g := g.(type) {
	case *geom.Polygon:
		return polygonArea(g)
	case *geom.MultiPolygon:
		var sum float64
		for i := 0; i < g.NumPolygons(); i++ {
			sum += polygonArea(g.Polygon(i))
		}
		return sum
	case *geom.GeometryCollection:
		var sum float64
		for _, child := range g.Geoms() {
			sum += Area(child)
		}
		return sum
	default:
		return 0
	}
}

// polygonArea subtracts the holes from the outer ring. go-geom areas are
// signed by winding, so every ring is taken as a magnitude.
func polygonArea(p *geom.Polygon) float64 {
	n := p.NumLinearRings()
	if n == 0 {
		return 0
	}

	area := math.Abs(p.LinearRing(0).Area())
	for i := 1; i < n; i++ {
		area -= math.Abs(p.LinearRing(i).Area())
	}
	return math.Max(area, 0)
}

// SetSRID tags g (and every member of a collection) with srid.
func SetSRID(g geom.T, srid int) {
	switch g := g.(type) {
	case *geom.Point:
		g.SetSRID(srid)
	case *geom.LineString:
		g.SetSRID(srid)
	case *geom.Polygon:
		g.SetSRID(srid)
	case *geom.MultiPoint:
		g.SetSRID(srid)
	case *geom.MultiLineString:
		g.SetSRID(srid)
	case *geom.MultiPolygon:
		g.SetSRID(srid)
	case *geom.GeometryCollection:
		g.SetSRID(srid)
		for _, child := range g.Geoms() {
			SetSRID(child, srid)
		}
	}
}
