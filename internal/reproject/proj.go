//go:build cgo

package reproject

import (
	"fmt"
	"strings"

	"github.com/woozymasta/geodata/internal/geo"

	"github.com/pebbe/proj/v5"
	"github.com/rotisserie/eris"
)

// backend builds transformers for a CRS pair with the PROJ library.
var backend = newPROJ

// projTransformer runs coordinates through a PROJ pipeline.
type projTransformer struct {
	ctx        *proj.Context
	pj         *proj.PJ
	geographic bool // source in degrees
}

func newPROJ(src, dst geo.CRS) (Transformer, error) {
	ctx := proj.NewContext()
	pj, err := ctx.Create(pipeline(src, dst))
	if err != nil {
		ctx.Close()
		return nil, eris.Wrapf(err, "reproject: create PROJ pipeline %s -> %s", src, dst)
	}
	return &projTransformer{ctx: ctx, pj: pj, geographic: src.Geographic()}, nil
}

// pipeline builds a PROJ pipeline taking degrees or meters in and out.
func pipeline(src, dst geo.CRS) string {
	var b strings.Builder
	b.WriteString("+proj=pipeline")

	if src.Geographic() {
		b.WriteString(" +step +proj=unitconvert +xy_in=deg +xy_out=rad")
	} else {
		b.WriteString(" +step +inv " + utmDefinition(src))
	}

	if dst.Geographic() {
		b.WriteString(" +step +proj=unitconvert +xy_in=rad +xy_out=deg")
	} else {
		b.WriteString(" +step " + utmDefinition(dst))
	}

	return b.String()
}

func utmDefinition(crs geo.CRS) string {
	zone, south, _ := crs.UTM()
	def := fmt.Sprintf("+proj=utm +zone=%d", zone)
	if south {
		def += " +south"
	}
	if crs.Ellipsoid() == geo.EllipsoidGRS80 {
		return def + " +ellps=GRS80"
	}
	return def + " +ellps=WGS84"
}

// Transform implements Transformer.
func (p *projTransformer) Transform(flat []float64, stride int) error {
	if err := checkInput(flat, stride, p.geographic); err != nil {
		return err
	}

	count := len(flat) / stride
	if count == 0 {
		return nil
	}

	xs := make([]float64, count)
	ys := make([]float64, count)
	for i := 0; i < count; i++ {
		xs[i], ys[i] = flat[i*stride], flat[i*stride+1]
	}

	xs, ys, _, _, err := p.pj.TransSlice(proj.Fwd, xs, ys, nil, nil)
	if err != nil {
		return eris.Wrap(err, "reproject: PROJ transform")
	}

	for i := 0; i < count; i++ {
		if !finite(xs[i], ys[i]) {
			return eris.Errorf("reproject: coordinate (%g, %g) cannot be transformed", flat[i*stride], flat[i*stride+1])
		}
	}
	for i := 0; i < count; i++ {
		flat[i*stride], flat[i*stride+1] = xs[i], ys[i]
	}

	return nil
}

// Close destroys the pipeline and its context.
func (p *projTransformer) Close() error {
	p.pj.Close()
	p.ctx.Close()
	return nil
}
