package interaction

import (
	"github.com/recera/nodegraph/pkg/geom"
)

// BoxSelect is the rubber-band selection gesture started on empty canvas.
type BoxSelect struct {
	deps    *Deps
	sel     *Selection
	active  bool
	start   geom.Point
	current geom.Point
}

// NewBoxSelect binds the gesture to the session collaborators.
func NewBoxSelect(deps *Deps, sel *Selection) *BoxSelect {
	return &BoxSelect{deps: deps, sel: sel}
}

// Begin starts the box at screen point p.
func (b *BoxSelect) Begin(p geom.Point) {
	b.active = true
	b.start, b.current = p, p
}

// Move extends the box to screen point p.
func (b *BoxSelect) Move(p geom.Point) {
	if b.active {
		b.current = p
	}
}

// Active reports whether a box is being drawn.
func (b *BoxSelect) Active() bool {
	return b.active
}

// Rect returns the box in screen space.
func (b *BoxSelect) Rect() (geom.Rect, bool) {
	if !b.active {
		return geom.Rect{}, false
	}
	return geom.RectFromPoints(b.start, b.current), true
}

// End finishes the gesture at p. A release within the click slop is an
// empty-canvas click; otherwise every node whose bounds overlap the box is
// selected, merged into the current selection when shift is held.
func (b *BoxSelect) End(p geom.Point, shift bool) {
	if !b.active {
		return
	}
	b.active = false
	b.current = p

	if isClick(b.start, p) {
		b.sel.ClickEmpty(shift)
		if !shift {
			b.deps.report("Selection cleared")
		}
		return
	}

	world := b.deps.Viewport.ScreenRectToWorld(geom.RectFromPoints(b.start, p))
	nodes := b.deps.Graph.NodesIn(world)
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	if shift {
		b.sel.Add(ids...)
	} else {
		b.sel.Replace(ids...)
	}
	b.deps.report(pluralize(b.sel.Len(), "node") + " selected")
}

// Cancel drops the box without touching the selection.
func (b *BoxSelect) Cancel() {
	b.active = false
}
