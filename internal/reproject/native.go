package reproject

import (
	"math"

	"github.com/woozymasta/geodata/internal/geo"

	"github.com/rotisserie/eris"
)

// UTM constants.
const (
	utmScale         = 0.9996
	utmFalseEasting  = 500000.0
	utmFalseNorthing = 10000000.0
)

// native converts between geographic and UTM coordinates without external
// libraries. It backs builds without cgo, where PROJ is not available.
// WGS84 and SIRGAS 2000 are treated as the same datum.
type native struct {
	from *transverseMercator // nil when the source is geographic
	to   *transverseMercator // nil when the target is geographic
}

func newNative(src, dst geo.CRS) (Transformer, error) {
	n := &native{}
	if !src.Geographic() {
		n.from = utmFor(src)
	}
	if !dst.Geographic() {
		n.to = utmFor(dst)
	}
	return n, nil
}

func utmFor(crs geo.CRS) *transverseMercator {
	zone, south, _ := crs.UTM()
	return newTransverseMercator(zone, south, crs.Ellipsoid())
}

// Transform implements Transformer.
func (n *native) Transform(flat []float64, stride int) error {
	if err := checkInput(flat, stride, n.from == nil); err != nil {
		return err
	}

	for i := 0; i+1 < len(flat); i += stride {
		x, y := flat[i], flat[i+1]

		if n.from != nil {
			x, y = n.from.inverse(x, y)
		}
		if n.to != nil {
			x, y = n.to.forward(x, y)
		}

		if !finite(x, y) {
			return eris.Errorf("reproject: coordinate (%g, %g) cannot be transformed", flat[i], flat[i+1])
		}

		flat[i], flat[i+1] = x, y
	}

	return nil
}

// Close implements Transformer.
func (n *native) Close() error { return nil }

// transverseMercator implements the Krüger series (third order in n) of the
// ellipsoidal transverse Mercator projection.
type transverseMercator struct {
	lon0      float64 // central meridian, radians
	northing0 float64
	kA        float64 // scale factor times rectifying radius
	ecc       float64 // first eccentricity
	alpha     [3]float64
	beta      [3]float64
	delta     [3]float64
}

func newTransverseMercator(zone int, south bool, e geo.Ellipsoid) *transverseMercator {
	f := e.F()
	n := f / (2 - f)
	n2, n3 := n*n, n*n*n

	tm := &transverseMercator{
		lon0: float64(zone*6-183) * math.Pi / 180,
		kA:   utmScale * e.A / (1 + n) * (1 + n2/4 + n2*n2/64),
		ecc:  2 * math.Sqrt(n) / (1 + n),
		alpha: [3]float64{
			n/2 - 2*n2/3 + 5*n3/16,
			13*n2/48 - 3*n3/5,
			61 * n3 / 240,
		},
		beta: [3]float64{
			n/2 - 2*n2/3 + 37*n3/96,
			n2/48 + n3/15,
			17 * n3 / 480,
		},
		delta: [3]float64{
			2*n - 2*n2/3 - 2*n3,
			7*n2/3 - 8*n3/5,
			56 * n3 / 15,
		},
	}
	if south {
		tm.northing0 = utmFalseNorthing
	}

	return tm
}

// forward projects longitude/latitude degrees to easting/northing meters.
func (tm *transverseMercator) forward(lon, lat float64) (x, y float64) {
	phi := lat * math.Pi / 180
	dl := lon*math.Pi/180 - tm.lon0

	sinPhi := math.Sin(phi)
	t := math.Sinh(math.Atanh(sinPhi) - tm.ecc*math.Atanh(tm.ecc*sinPhi))

	xi := math.Atan2(t, math.Cos(dl))
	eta := math.Atanh(math.Sin(dl) / math.Sqrt(1+t*t))

	e, n := eta, xi
	for j, a := range tm.alpha {
		k := 2 * float64(j+1)
		e += a * math.Cos(k*xi) * math.Sinh(k*eta)
		n += a * math.Sin(k*xi) * math.Cosh(k*eta)
	}

	return utmFalseEasting + tm.kA*e, tm.northing0 + tm.kA*n
}

// inverse maps easting/northing meters back to longitude/latitude degrees.
func (tm *transverseMercator) inverse(x, y float64) (lon, lat float64) {
	xi := (y - tm.northing0) / tm.kA
	eta := (x - utmFalseEasting) / tm.kA

	xiP, etaP := xi, eta
	for j, b := range tm.beta {
		k := 2 * float64(j+1)
		xiP -= b * math.Sin(k*xi) * math.Cosh(k*eta)
		etaP -= b * math.Cos(k*xi) * math.Sinh(k*eta)
	}

	chi := math.Asin(math.Sin(xiP) / math.Cosh(etaP))
	phi := chi
	for j, d := range tm.delta {
		phi += d * math.Sin(2*float64(j+1)*chi)
	}
	lambda := tm.lon0 + math.Atan2(math.Sinh(etaP), math.Cos(xiP))

	return lambda * 180 / math.Pi, phi * 180 / math.Pi
}
