package viewport

import "github.com/recera/nodegraph/pkg/geom"

// Pan is the drag-to-pan gesture. While active, every Move translates the
// viewport by the screen-space delta since the previous point.
type Pan struct {
	vp     *Viewport
	active bool
	moved  bool
	last   geom.Point
}

// NewPan binds a pan gesture to vp.
func NewPan(vp *Viewport) *Pan {
	return &Pan{vp: vp}
}

// Begin starts panning from screen point p.
func (p *Pan) Begin(at geom.Point) {
	p.active = true
	p.moved = false
	p.last = at
}

// Move pans by the delta from the last point. It reports whether the
// gesture is active.
func (p *Pan) Move(at geom.Point) bool {
	if !p.active {
		return false
	}
	d := at.Sub(p.last)
	p.last = at
	if d.X != 0 || d.Y != 0 {
		p.moved = true
	}
	p.vp.PanBy(d.X, d.Y)
	return true
}

// Rebase moves the reference point without panning. Two-finger gestures use
// it when a finger lifts or lands so the centroid jump is not applied.
func (p *Pan) Rebase(at geom.Point) {
	p.last = at
}

// End stops the gesture.
func (p *Pan) End() {
	p.active = false
}

// Moved reports whether the current or last gesture translated the view.
func (p *Pan) Moved() bool {
	return p.moved
}

// Active reports whether a pan is in progress.
func (p *Pan) Active() bool {
	return p.active
}
