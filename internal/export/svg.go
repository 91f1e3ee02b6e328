// Package export writes finished layouts as SVG drawings and JSON documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/forcesim/internal/graph"
)

var palette = []string{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948", "#b07aa1", "#ff9da7"}

type SVGOptions struct {
	Width, Height int
	Background    string
	EdgeColor     string
	// MinRadius is drawn for nodes without a radius.
	MinRadius float64
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:      800,
		Height:     800,
		Background: "#0a0a0a",
		EdgeColor:  "#555555",
		MinRadius:  3,
	}
}

// frame maps layout coordinates into a width x height viewport with 5%
// padding, keeping the aspect ratio.
type frame struct {
	minX, minY, scale, offX, offY float64
}

func fit(g *graph.Graph, w, h int, minRadius float64) frame {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range g.Nodes {
		if len(n.Position) < 2 {
			continue
		}
		r := math.Max(n.Radius, minRadius)
		minX, maxX = math.Min(minX, n.Position[0]-r), math.Max(maxX, n.Position[0]+r)
		minY, maxY = math.Min(minY, n.Position[1]-r), math.Max(maxY, n.Position[1]+r)
	}
	if math.IsInf(minX, 1) {
		return frame{scale: 1}
	}

	rangeX := math.Max(maxX-minX, 1)
	rangeY := math.Max(maxY-minY, 1)
	minX -= rangeX * 0.05
	minY -= rangeY * 0.05
	rangeX *= 1.1
	rangeY *= 1.1

	scale := math.Min(float64(w)/rangeX, float64(h)/rangeY)
	return frame{
		minX:  minX,
		minY:  minY,
		scale: scale,
		offX:  (float64(w) - rangeX*scale) / 2,
		offY:  (float64(h) - rangeY*scale) / 2,
	}
}

func (f frame) at(p []float64) (float64, float64) {
	return (p[0]-f.minX)*f.scale + f.offX, (p[1]-f.minY)*f.scale + f.offY
}

// LayoutToSVG draws edges as lines and nodes as circles coloured by group,
// using each node's Position. Only the first two coordinates are drawn;
// nodes with fewer are skipped.
func LayoutToSVG(g *graph.Graph, opts SVGOptions) string {
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultSVGOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	fr := fit(g, opts.Width, opts.Height, opts.MinRadius)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.Background))

	sb.WriteString(fmt.Sprintf(`<g stroke="%s" stroke-width="1" stroke-opacity="0.8">
`, opts.EdgeColor))
	for _, e := range g.Edges {
		si, ok1 := g.Index(e.Source)
		ti, ok2 := g.Index(e.Target)
		if !ok1 || !ok2 {
			continue
		}
		a, b := g.Nodes[si].Position, g.Nodes[ti].Position
		if len(a) < 2 || len(b) < 2 {
			continue
		}
		x1, y1 := fr.at(a)
		x2, y2 := fr.at(b)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x1, y1, x2, y2))
	}
	sb.WriteString("</g>\n<g stroke=\"#ffffff\" stroke-width=\"0.5\">\n")

	for _, n := range g.Nodes {
		if len(n.Position) < 2 {
			continue
		}
		cx, cy := fr.at(n.Position)
		r := math.Max(n.Radius, opts.MinRadius) * fr.scale
		fill := palette[((n.Group%len(palette))+len(palette))%len(palette)]
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"><title>%s</title></circle>
`, cx, cy, r, fill, escape(n.ID)))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}

// SeriesToSVG plots values against their index as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2
	stepX := float64(width) / float64(len(values)-1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := float64(i) * stepX
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
