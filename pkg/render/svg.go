package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/twpayne/go-geom"

	"github.com/dtnitsch/referendum-map/models"
	"github.com/dtnitsch/referendum-map/pkg/geo"
)

// SVGOptions controls the choropleth drawing.
type SVGOptions struct {
	Width  int
	Margin int
	Title  string
	// Labels draws each region's ratio at its centroid.
	Labels bool
	Low    [3]uint8
	High   [3]uint8
}

// DefaultSVGOptions returns a 800px wide blue ramp.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:  800,
		Margin: 20,
		Title:  "Choice A share of expressed ballots",
		Labels: true,
		Low:    [3]uint8{239, 243, 255},
		High:   [3]uint8{8, 48, 107},
	}
}

const legendHeight = 60

// ErrNoGeometry is returned by WriteSVG when no result carries a geometry.
var ErrNoGeometry = errors.New("nothing to draw")

// Color interpolates the ramp at ratio, clamped to [0, 1].
func (o SVGOptions) Color(ratio float64) string {
	t := math.Max(0, math.Min(1, ratio))
	var c [3]uint8
	for i := range c {
		c[i] = uint8(math.Round(float64(o.Low[i]) + t*(float64(o.High[i])-float64(o.Low[i]))))
	}
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// projection maps lon/lat onto SVG pixels, shrinking longitudes by the cosine
// of the mid latitude.
type projection struct {
	minX, maxY float64
	kx, scale  float64
	margin     float64
}

func newProjection(b *geom.Bounds, width, margin int) (projection, float64) {
	midLat := (b.Min(1) + b.Max(1)) / 2
	kx := math.Cos(midLat * math.Pi / 180)
	dx := (b.Max(0) - b.Min(0)) * kx
	dy := b.Max(1) - b.Min(1)

	inner := float64(width - 2*margin)
	scale := 1.0
	if dx > 0 {
		scale = inner / dx
	}
	p := projection{minX: b.Min(0), maxY: b.Max(1), kx: kx, scale: scale, margin: float64(margin)}
	return p, dy*scale + 2*float64(margin)
}

func (p projection) point(c geom.Coord) (float64, float64) {
	return p.margin + (c[0]-p.minX)*p.kx*p.scale, p.margin + (p.maxY-c[1])*p.scale
}

func (p projection) ring(buf *bytes.Buffer, coords []geom.Coord) {
	for i, c := range coords {
		x, y := p.point(c)
		if i == 0 {
			fmt.Fprintf(buf, "M%.2f %.2f", x, y)
		} else {
			fmt.Fprintf(buf, "L%.2f %.2f", x, y)
		}
	}
	buf.WriteString("Z")
}

func (p projection) path(g geom.T) string {
	var buf bytes.Buffer
	switch g := g.(type) {
	case *geom.Polygon:
		for i := 0; i < g.NumLinearRings(); i++ {
			p.ring(&buf, g.LinearRing(i).Coords())
		}
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			poly := g.Polygon(i)
			for j := 0; j < poly.NumLinearRings(); j++ {
				p.ring(&buf, poly.LinearRing(j).Coords())
			}
		}
	}
	return buf.String()
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// WriteSVG draws results as a choropleth with a legend. Drawing does not
// alter results.
func WriteSVG(w io.Writer, results []models.MapResult, opts SVGOptions) error {
	geoms := make([]geom.T, 0, len(results))
	for _, r := range results {
		if r.Geometry != nil {
			geoms = append(geoms, r.Geometry)
		}
	}
	if len(geoms) == 0 {
		return ErrNoGeometry
	}

	proj, mapHeight := newProjection(geo.Bounds(geoms...), opts.Width, opts.Margin)
	height := int(math.Ceil(mapHeight)) + legendHeight

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		opts.Width, height, opts.Width, height)
	fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(opts.Title))
	buf.WriteString(`  <g stroke="#ffffff" stroke-width="0.8" fill-rule="evenodd">` + "\n")
	for _, r := range results {
		if r.Geometry == nil {
			continue
		}
		fmt.Fprintf(&buf, `    <path id="region-%s" d="%s" fill="%s"><title>%s: %.2f%%</title></path>`+"\n",
			escape(r.CodeReg), proj.path(r.Geometry), opts.Color(r.Ratio), escape(r.NameReg), r.Ratio*100)
	}
	buf.WriteString("  </g>\n")

	if opts.Labels {
		buf.WriteString(`  <g font-family="sans-serif" font-size="11" text-anchor="middle" fill="#222222">` + "\n")
		for _, r := range results {
			if r.Geometry == nil {
				continue
			}
			c, err := geo.Centroid(r.Geometry)
			if err != nil {
				continue
			}
			x, y := proj.point(c)
			fmt.Fprintf(&buf, `    <text x="%.2f" y="%.2f">%.1f%%</text>`+"\n", x, y, r.Ratio*100)
		}
		buf.WriteString("  </g>\n")
	}

	writeLegend(&buf, opts, mapHeight)
	buf.WriteString("</svg>\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}
	return nil
}

func writeLegend(buf *bytes.Buffer, opts SVGOptions, top float64) {
	x := float64(opts.Margin)
	y := top + 10
	width := float64(opts.Width - 2*opts.Margin)

	buf.WriteString("  <defs><linearGradient id=\"ramp\">")
	fmt.Fprintf(buf, `<stop offset="0" stop-color="%s"/><stop offset="1" stop-color="%s"/>`,
		opts.Color(0), opts.Color(1))
	buf.WriteString("</linearGradient></defs>\n")
	fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="14" fill="url(#ramp)"/>`+"\n", x, y, width)
	buf.WriteString(`  <g font-family="sans-serif" font-size="11" fill="#222222">` + "\n")
	for _, tick := range []float64{0, 0.25, 0.5, 0.75, 1} {
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="middle">%.0f%%</text>`+"\n",
			x+tick*width, y+30, tick*100)
	}
	buf.WriteString("  </g>\n")
}
