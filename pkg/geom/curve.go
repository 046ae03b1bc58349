package geom

import (
	"fmt"
	"math"
)

// WireTension is the fraction of the horizontal span used to offset the
// control points of a wire curve.
const WireTension = 0.6

// Curve is a cubic Bezier segment.
type Curve struct {
	Start Point `json:"start"`
	C1    Point `json:"c1"`
	C2    Point `json:"c2"`
	End   Point `json:"end"`
}

// WireCurve returns the curve drawn between an output anchor at start and an
// input anchor at end. The curve always leaves start to the right and enters
// end from the left, whatever the relative placement of the two points.
func WireCurve(start, end Point) Curve {
	dx := math.Abs(end.X-start.X) * WireTension
	return Curve{
		Start: start,
		C1:    Point{X: start.X + dx, Y: start.Y},
		C2:    Point{X: end.X - dx, Y: end.Y},
		End:   end,
	}
}

// Point evaluates the curve at t in [0,1].
func (c Curve) Point(t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	d := 3 * u * t * t
	e := t * t * t
	return Point{
		X: a*c.Start.X + b*c.C1.X + d*c.C2.X + e*c.End.X,
		Y: a*c.Start.Y + b*c.C1.Y + d*c.C2.Y + e*c.End.Y,
	}
}

// Path renders the curve as an SVG path "d" attribute.
func (c Curve) Path() string {
	return fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
		num(c.Start.X), num(c.Start.Y),
		num(c.C1.X), num(c.C1.Y),
		num(c.C2.X), num(c.C2.Y),
		num(c.End.X), num(c.End.Y))
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
