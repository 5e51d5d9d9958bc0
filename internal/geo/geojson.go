// Package geo handles geographic feature collections, coordinate reference systems
// and their GeoJSON and shapefile encodings.
package geo

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Feature is a single geographic record: a geometry plus named attributes.
type Feature struct {
	// ID is the raw GeoJSON "id" member, kept as found in the input.
	ID         json.RawMessage
	Geometry   geom.T
	Properties map[string]any
}

// FeatureCollection is an ordered set of features sharing one CRS.
type FeatureCollection struct {
	CRS CRS
	// Columns lists attribute names in order of first appearance.
	Columns  []string
	Features []*Feature
}

// EncodeOptions controls the GeoJSON output layout.
type EncodeOptions struct {
	Indent    string
	Minify    bool
	Precision int
}

type namedCRS struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

type rawDocument struct {
	Type     string            `json:"type"`
	CRS      *namedCRS         `json:"crs"`
	Features []json.RawMessage `json:"features"`
}

type rawFeature struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// NewFeatureCollection returns an empty collection in the given CRS.
func NewFeatureCollection(crs CRS) *FeatureCollection {
	return &FeatureCollection{CRS: crs, Features: []*Feature{}}
}

// HasColumn reports whether name is one of the collection columns.
func (fc *FeatureCollection) HasColumn(name string) bool {
	for _, c := range fc.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends name to the columns unless already present.
func (fc *FeatureCollection) AddColumn(name string) {
	if !fc.HasColumn(name) {
		fc.Columns = append(fc.Columns, name)
	}
}

// Select returns a new collection restricted to the given columns.
// Geometries are shared with fc; missing values become nil.
func (fc *FeatureCollection) Select(columns []string) *FeatureCollection {
	out := &FeatureCollection{
		CRS:      fc.CRS,
		Columns:  append([]string(nil), columns...),
		Features: make([]*Feature, 0, len(fc.Features)),
	}

	for _, f := range fc.Features {
		props := make(map[string]any, len(columns))
		for _, c := range columns {
			props[c] = f.Properties[c]
		}
		out.Features = append(out.Features, &Feature{ID: f.ID, Geometry: f.Geometry, Properties: props})
	}

	return out
}

// Append adds the features of other after the features of fc.
// Both collections must be in the same CRS.
func (fc *FeatureCollection) Append(other *FeatureCollection) error {
	if other.CRS != fc.CRS {
		return eris.Errorf("geo: cannot append %s features to a %s collection", other.CRS, fc.CRS)
	}

	for _, c := range other.Columns {
		fc.AddColumn(c)
	}
	fc.Features = append(fc.Features, other.Features...)

	return nil
}

// Decode parses a GeoJSON FeatureCollection (or a single Feature).
// Documents without a "crs" member are assumed to be in WGS84.
func Decode(r io.Reader) (*FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "geo: read GeoJSON")
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "geo: decode GeoJSON document")
	}

	crs := WGS84
	if doc.CRS != nil && doc.CRS.Properties.Name != "" {
		if crs, err = ParseCRS(doc.CRS.Properties.Name); err != nil {
			return nil, err
		}
	}

	var rawFeatures []json.RawMessage
	switch doc.Type {
	case "FeatureCollection":
		rawFeatures = doc.Features
	case "Feature":
		rawFeatures = []json.RawMessage{data}
	default:
		return nil, eris.Errorf("geo: unsupported GeoJSON type %q", doc.Type)
	}

	fc := NewFeatureCollection(crs)
	for i, raw := range rawFeatures {
		f, keys, err := decodeFeature(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "geo: feature %d", i)
		}
		SetSRID(f.Geometry, int(crs))

		for _, k := range keys {
			fc.AddColumn(k)
		}
		fc.Features = append(fc.Features, f)
	}

	return fc, nil
}

func decodeFeature(data json.RawMessage) (*Feature, []string, error) {
	var raw rawFeature
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, eris.Wrap(err, "decode feature")
	}
	if raw.Type != "Feature" {
		return nil, nil, eris.Errorf("expected Feature, got %q", raw.Type)
	}

	f := &Feature{}
	if !isNull(raw.ID) {
		f.ID = raw.ID
	}

	if !isNull(raw.Geometry) {
		if err := geojson.Unmarshal(raw.Geometry, &f.Geometry); err != nil {
			return nil, nil, eris.Wrap(err, "decode geometry")
		}
	}

	keys, props, err := decodeProperties(raw.Properties)
	if err != nil {
		return nil, nil, err
	}
	f.Properties = props

	return f, keys, nil
}

// decodeProperties reads a properties object keeping the key order.
func decodeProperties(data json.RawMessage) ([]string, map[string]any, error) {
	props := make(map[string]any)
	if isNull(data) {
		return nil, props, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, eris.Wrap(err, "read properties")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, eris.Errorf("properties must be an object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, eris.Wrap(err, "read property name")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, eris.Errorf("unexpected property name %v", tok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, nil, eris.Wrapf(err, "read property %q", key)
		}

		if _, seen := props[key]; !seen {
			keys = append(keys, key)
		}
		props[key] = value
	}

	return keys, props, nil
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Marshal encodes the collection as compact GeoJSON.
// Properties are written in column order; the CRS is written as a named CRS member.
func Marshal(fc *FeatureCollection) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`{"type":"FeatureCollection"`)
	if fc.CRS != 0 {
		member := namedCRS{Type: "name"}
		member.Properties.Name = fc.CRS.URN()
		buf.WriteString(`,"crs":`)
		if err := appendJSON(&buf, member); err != nil {
			return nil, err
		}
	}

	buf.WriteString(`,"features":[`)
	for i, f := range fc.Features {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendFeature(&buf, f, fc.Columns); err != nil {
			return nil, eris.Wrapf(err, "geo: encode feature %d", i)
		}
	}
	buf.WriteString("]}")

	return buf.Bytes(), nil
}

func appendFeature(buf *bytes.Buffer, f *Feature, columns []string) error {
	buf.WriteString(`{"type":"Feature"`)
	if len(f.ID) > 0 {
		buf.WriteString(`,"id":`)
		buf.Write(f.ID)
	}

	buf.WriteString(`,"properties":{`)
	for i, c := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendJSON(buf, c); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := appendJSON(buf, f.Properties[c]); err != nil {
			return eris.Wrapf(err, "property %q", c)
		}
	}

	buf.WriteString(`},"geometry":`)
	if f.Geometry == nil {
		buf.WriteString("null")
	} else {
		data, err := geojson.Marshal(f.Geometry)
		if err != nil {
			return eris.Wrap(err, "encode geometry")
		}
		buf.Write(data)
	}
	buf.WriteByte('}')

	return nil
}

func appendJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// drop the trailing newline written by Encode
	buf.Truncate(buf.Len() - 1)
	return nil
}
