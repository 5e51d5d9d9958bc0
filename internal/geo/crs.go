package geo

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// CRS identifies a coordinate reference system by its EPSG code.
type CRS int

// Well known reference systems.
const (
	WGS84            CRS = 4326
	SIRGAS2000       CRS = 4674
	SIRGAS2000UTM23S CRS = 31983
)

// Ellipsoid describes a reference ellipsoid by its semi-major axis (meters)
// and inverse flattening.
type Ellipsoid struct {
	A    float64
	InvF float64
}

// Reference ellipsoids used by the supported datums.
var (
	EllipsoidWGS84 = Ellipsoid{A: 6378137, InvF: 298.257223563}
	EllipsoidGRS80 = Ellipsoid{A: 6378137, InvF: 298.257222101}
)

// F returns the flattening.
func (e Ellipsoid) F() float64 {
	return 1 / e.InvF
}

// ParseCRS parses a CRS name as found in GeoJSON "crs" members and CLI flags.
// Accepted forms: "EPSG:31983", "urn:ogc:def:crs:EPSG::31983", "CRS84",
// "urn:ogc:def:crs:OGC:1.3:CRS84" and bare codes such as "4326".
func ParseCRS(name string) (CRS, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	if s == "" {
		return 0, eris.New("geo: empty CRS name")
	}

	if strings.HasSuffix(s, "CRS84") {
		return WGS84, nil
	}

	code := s
	if strings.Contains(s, "EPSG") {
		code = s[strings.LastIndex(s, ":")+1:]
	} else if strings.Contains(s, ":") {
		return 0, eris.Errorf("geo: unsupported CRS authority in %q", name)
	}

	n, err := strconv.Atoi(code)
	if err != nil {
		return 0, eris.Wrapf(err, "geo: invalid CRS code in %q", name)
	}

	crs := CRS(n)
	if !crs.Supported() {
		return 0, eris.Errorf("geo: unsupported CRS %s", crs)
	}

	return crs, nil
}

// String returns the "EPSG:<code>" form.
func (c CRS) String() string {
	return "EPSG:" + strconv.Itoa(int(c))
}

// URN returns the OGC URN used in GeoJSON named CRS members.
func (c CRS) URN() string {
	return "urn:ogc:def:crs:EPSG::" + strconv.Itoa(int(c))
}

// Supported reports whether coordinates in c can be transformed.
func (c CRS) Supported() bool {
	if c.Geographic() {
		return true
	}
	_, _, ok := c.UTM()
	return ok
}

// Geographic reports whether c uses longitude/latitude degrees.
func (c CRS) Geographic() bool {
	return c == WGS84 || c == SIRGAS2000
}

// UTM returns the zone and hemisphere of a UTM based CRS.
func (c CRS) UTM() (zone int, south bool, ok bool) {
	switch {
	case c >= 32601 && c <= 32660:
		return int(c - 32600), false, true
	case c >= 32701 && c <= 32760:
		return int(c - 32700), true, true
	case c >= 31965 && c <= 31976:
		return int(c-31965) + 11, false, true
	case c >= 31977 && c <= 31985:
		return int(c-31977) + 17, true, true
	}
	return 0, false, false
}

// Ellipsoid returns the reference ellipsoid of the datum behind c.
func (c CRS) Ellipsoid() Ellipsoid {
	if c == SIRGAS2000 || (c >= 31965 && c <= 31985) {
		return EllipsoidGRS80
	}
	return EllipsoidWGS84
}

// Base returns the geographic CRS a projected CRS is defined on.
func (c CRS) Base() CRS {
	if c == SIRGAS2000 || (c >= 31965 && c <= 31985) {
		return SIRGAS2000
	}
	return WGS84
}
