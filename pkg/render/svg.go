package render

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/matzehuels/flowlens/pkg/graph"
	"github.com/matzehuels/flowlens/pkg/layout"
)

// Drawing constants in layout units.
const (
	nodeWidth  = 96.0
	nodeHeight = 32.0
	padding    = 40.0
)

const svgStyle = `
    .node rect { fill: white; stroke: #333; stroke-width: 1.5; }
    .node.try rect { fill: lightblue; }
    .node.throwing rect { stroke: red; stroke-width: 2.5; }
    .node text { font: 12px Helvetica, sans-serif; text-anchor: middle; dominant-baseline: central; }
    .edge { fill: none; stroke: #555; stroke-width: 1.2; marker-end: url(#arrow); }
    .edge.exception { stroke: red; stroke-dasharray: 6 4; marker-end: url(#arrow-red); }`

// SVGOption configures [LayoutSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	curved bool
	title  string
}

// WithCurves draws edges as quadratic curves bent by [layout.CurveControl].
// Circular layouts use it by default.
func WithCurves() SVGOption { return func(r *svgRenderer) { r.curved = true } }

// WithTitle sets the document title.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

// LayoutSVG draws l as a standalone SVG document. Node boxes are centered on
// their positions; edges run between box borders.
func LayoutSVG(l graph.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{curved: l.Algorithm == string(layout.AlgorithmCircular)}
	for _, opt := range opts {
		opt(&r)
	}

	pos := make(map[string]layout.Point, len(l.Nodes))
	for _, n := range l.Nodes {
		pos[n.ID] = layout.Point{X: n.X, Y: n.Y}
	}

	// Shift so the top-left box corner sits at (padding, padding).
	dx := padding + nodeWidth/2 - l.Origin.X
	dy := padding + nodeHeight/2 - l.Origin.Y
	width := l.Width + nodeWidth + 2*padding
	height := l.Height + nodeHeight + 2*padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(r.title))
	}
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="7" markerHeight="7" orient="auto"><path d="M0,0 L10,5 L0,10 z" fill="#555"/></marker>` + "\n")
	buf.WriteString(`    <marker id="arrow-red" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="7" markerHeight="7" orient="auto"><path d="M0,0 L10,5 L0,10 z" fill="red"/></marker>` + "\n")
	buf.WriteString("  </defs>\n")
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgStyle)

	buf.WriteString(`  <g class="edges">` + "\n")
	for _, e := range l.Edges {
		from, to := pos[e.From], pos[e.To]
		from.X, from.Y = from.X+dx, from.Y+dy
		to.X, to.Y = to.X+dx, to.Y+dy
		class := "edge"
		if e.Exception {
			class += " exception"
		}
		fmt.Fprintf(&buf, `    <path class="%s" data-from="%s" data-to="%s" d="%s"/>`+"\n",
			class, html.EscapeString(e.From), html.EscapeString(e.To), edgePath(from, to, r.curved))
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range l.Nodes {
		class := "node"
		if n.Try {
			class += " try"
		}
		if n.Throwing {
			class += " throwing"
		}
		x, y := n.X+dx, n.Y+dy
		fmt.Fprintf(&buf, `    <g class="%s" id="node-%s">`, class, html.EscapeString(n.ID))
		fmt.Fprintf(&buf, `<rect x="%.1f" y="%.1f" width="%.0f" height="%.0f" rx="4"/>`,
			x-nodeWidth/2, y-nodeHeight/2, nodeWidth, nodeHeight)
		fmt.Fprintf(&buf, `<text x="%.1f" y="%.1f">%s</text></g>`+"\n", x, y, html.EscapeString(truncate(n.Label, 14)))
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// edgePath returns path data from the border of the box at a to the border of
// the box at b. Self-loops become a small arc above the box.
func edgePath(a, b layout.Point, curved bool) string {
	if a == b {
		return fmt.Sprintf("M%.1f,%.1f C%.1f,%.1f %.1f,%.1f %.1f,%.1f",
			a.X-nodeWidth/4, a.Y-nodeHeight/2,
			a.X-nodeWidth/4, a.Y-nodeHeight*1.5,
			a.X+nodeWidth/4, a.Y-nodeHeight*1.5,
			a.X+nodeWidth/4, a.Y-nodeHeight/2)
	}
	start := clip(a, b)
	end := clip(b, a)
	if !curved {
		return fmt.Sprintf("M%.1f,%.1f L%.1f,%.1f", start.X, start.Y, end.X, end.Y)
	}
	c := layout.CurveControl(start, end)
	return fmt.Sprintf("M%.1f,%.1f Q%.1f,%.1f %.1f,%.1f", start.X, start.Y, c.X, c.Y, end.X, end.Y)
}

// clip moves from the center p toward q until it leaves p's box.
func clip(p, q layout.Point) layout.Point {
	dx, dy := q.X-p.X, q.Y-p.Y
	if dx == 0 && dy == 0 {
		return p
	}
	sx, sy := math.Inf(1), math.Inf(1)
	if dx != 0 {
		sx = (nodeWidth / 2) / math.Abs(dx)
	}
	if dy != 0 {
		sy = (nodeHeight / 2) / math.Abs(dy)
	}
	s := math.Min(math.Min(sx, sy), 1)
	return layout.Point{X: p.X + dx*s, Y: p.Y + dy*s}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
