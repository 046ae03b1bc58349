package render

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"
)

// Theme holds the SVG colors.
type Theme struct {
	Background string
	GridLine   string
	NodeFill   string
	HeaderFill string
	Selected   string
	Text       string
	Wire       string
	WireActive string
	Anchor     string
	AnchorUsed string
	Box        string
}

// DefaultTheme returns the dark editor palette.
func DefaultTheme() Theme {
	return Theme{
		Background: "#0b0e14",
		GridLine:   "#1a1f29",
		NodeFill:   "#1e2430",
		HeaderFill: "#2b3342",
		Selected:   "#ffcf33",
		Text:       "#eaeef3",
		Wire:       "#6ea8fe",
		WireActive: "#ffcf33",
		Anchor:     "#39424e",
		AnchorUsed: "#6ea8fe",
		Box:        "#9ad0ff",
	}
}

// GridSpacing is the world-space distance between grid lines.
const GridSpacing = 50.0

// WriteSVG renders the scene as a standalone SVG document sized to the
// viewport, with the viewport transform applied to a single group.
func WriteSVG(w io.Writer, s Scene) error {
	return WriteSVGTheme(w, s, DefaultTheme())
}

// WriteSVGTheme is WriteSVG with explicit colors.
func WriteSVGTheme(w io.Writer, s Scene, t Theme) error {
	sw := &svgWriter{w: w}
	sw.scene(s, t)
	return sw.err
}

type svgWriter struct {
	w   io.Writer
	err error
}

func (sw *svgWriter) write(s string) {
	if sw.err != nil {
		return
	}
	_, sw.err = io.WriteString(sw.w, s)
}

func (sw *svgWriter) printf(format string, args ...any) {
	sw.write(fmt.Sprintf(format, args...))
}

func (sw *svgWriter) scene(s Scene, t Theme) {
	vp := s.Viewport
	sw.printf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(vp.Width), num(vp.Height), num(vp.Width), num(vp.Height))
	sw.write("\n")
	sw.printf(`<rect width="100%%" height="100%%" fill="%s"/>`, attr(t.Background))
	sw.write("\n")
	sw.printf(`<g transform="translate(%s %s) scale(%s)">`, num(vp.OffsetX), num(vp.OffsetY), num(vp.Scale))
	sw.write("\n")

	if s.ShowGrid && vp.Scale > 0 {
		sw.grid(s, t)
	}
	if s.ShowWires {
		for _, wv := range s.Wires {
			color := t.Wire
			if wv.Highlight {
				color = t.WireActive
			}
			dash := ""
			if wv.Secondary {
				dash = ` stroke-dasharray="6 4"`
			}
			sw.printf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"%s data-id="%s"/>`,
				wv.Path, attr(color), dash, attr(wv.ID))
			sw.write("\n")
		}
	}
	for _, n := range s.Nodes {
		sw.node(n, t)
	}
	if s.Draft != nil {
		sw.printf(`<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-dasharray="4 4"/>`,
			s.Draft.Path, attr(t.WireActive))
		sw.write("\n")
	}
	if s.Box != nil {
		sw.printf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s" fill-opacity="0.1" stroke="%s"/>`,
			num(s.Box.X), num(s.Box.Y), num(s.Box.Width), num(s.Box.Height), attr(t.Box), attr(t.Box))
		sw.write("\n")
	}
	sw.write("</g>\n</svg>\n")
}

func (sw *svgWriter) grid(s Scene, t Theme) {
	vp := s.Viewport
	x0 := -vp.OffsetX / vp.Scale
	y0 := -vp.OffsetY / vp.Scale
	x1 := x0 + vp.Width/vp.Scale
	y1 := y0 + vp.Height/vp.Scale

	var b strings.Builder
	for x := snap(x0); x <= x1; x += GridSpacing {
		fmt.Fprintf(&b, "M %s %s V %s ", num(x), num(y0), num(y1))
	}
	for y := snap(y0); y <= y1; y += GridSpacing {
		fmt.Fprintf(&b, "M %s %s H %s ", num(x0), num(y), num(x1))
	}
	sw.printf(`<path class="grid" d="%s" stroke="%s" stroke-width="1"/>`, strings.TrimSpace(b.String()), attr(t.GridLine))
	sw.write("\n")
}

func (sw *svgWriter) node(n NodeView, t Theme) {
	stroke := "none"
	if n.Selected {
		stroke = t.Selected
	}
	sw.printf(`<g class="node %s" data-id="%s">`, attr(n.Kind), attr(n.ID))
	sw.printf(`<rect x="%s" y="%s" width="%s" height="%s" rx="6" fill="%s" stroke="%s" stroke-width="2"/>`,
		num(n.Rect.X), num(n.Rect.Y), num(n.Rect.Width), num(n.Rect.Height), attr(t.NodeFill), attr(stroke))
	sw.printf(`<rect x="%s" y="%s" width="%s" height="%s" rx="6" fill="%s"/>`,
		num(n.Rect.X), num(n.Rect.Y), num(n.Rect.Width), num(n.Header), attr(t.HeaderFill))

	title := n.Title
	if n.Value != nil {
		title = fmt.Sprintf("%s: %g", n.Title, *n.Value)
	}
	sw.printf(`<text x="%s" y="%s" fill="%s" font-family="sans-serif" font-size="13" dominant-baseline="middle">%s</text>`,
		num(n.Rect.X+10), num(n.Rect.Y+n.Header/2), attr(t.Text), html.EscapeString(title))

	for _, a := range n.Inputs {
		sw.anchor(a, t)
	}
	for _, a := range n.Outputs {
		sw.anchor(a, t)
	}
	sw.write("</g>\n")
}

func (sw *svgWriter) anchor(a AnchorView, t Theme) {
	fill := t.Anchor
	if a.Connected {
		fill = t.AnchorUsed
	}
	sw.printf(`<rect x="%s" y="%s" width="%s" height="%s" rx="3" fill="%s"><title>%s</title></rect>`,
		num(a.Rect.X), num(a.Rect.Y), num(a.Rect.Width), num(a.Rect.Height), attr(fill),
		html.EscapeString(a.Name+" ("+a.TypeName+")"))
}

func snap(v float64) float64 {
	return math.Floor(v/GridSpacing) * GridSpacing
}

func attr(s string) string {
	return html.EscapeString(s)
}

func num(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
