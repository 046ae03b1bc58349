package layout

import "github.com/recera/nodegraph/pkg/geom"

// Grid stacks unpinned bodies top to bottom, wrapping into a new column once
// a column grows past a share of the visible height. Pinned bodies stay put.
type Grid struct {
	opts   Options
	bodies []*Body
	index  map[string]int
	bounds geom.Rect
	dirty  bool
	onTick func([]Body)
}

// NewGrid creates the fallback layout.
func NewGrid(opts *Options) *Grid {
	return &Grid{
		opts:   opts.withDefaults(),
		index:  make(map[string]int),
		bounds: geom.Rect{Width: 800, Height: 600},
	}
}

// Physical is always false.
func (g *Grid) Physical() bool { return false }

// OnTick sets the tick callback.
func (g *Grid) OnTick(fn func([]Body)) { g.onTick = fn }

// Sync mirrors nodes; edges do not affect a grid.
func (g *Grid) Sync(nodes []Body, _ []Edge) {
	g.bodies = make([]*Body, len(nodes))
	g.index = make(map[string]int, len(nodes))
	for i := range nodes {
		b := nodes[i]
		g.bodies[i] = &b
		g.index[b.ID] = i
	}
	g.dirty = true
}

// Pin fixes a body.
func (g *Grid) Pin(id string, x, y float64) {
	if i, ok := g.index[id]; ok {
		g.bodies[i].FX, g.bodies[i].FY = &x, &y
	}
}

// Unpin releases a body; it is placed on the next step.
func (g *Grid) Unpin(id string) {
	if i, ok := g.index[id]; ok {
		g.bodies[i].FX, g.bodies[i].FY = nil, nil
		g.dirty = true
	}
}

// Reheat schedules a re-layout.
func (g *Grid) Reheat(float64) { g.dirty = true }

// Stop cancels a pending re-layout.
func (g *Grid) Stop() { g.dirty = false }

// SetBounds records the visible world rectangle used for wrapping.
func (g *Grid) SetBounds(r geom.Rect) {
	if r.Height > 0 {
		g.bounds = r
	}
}

// Step lays everything out once after a change.
func (g *Grid) Step() bool {
	if !g.dirty {
		return false
	}
	g.dirty = false
	g.arrange()
	if g.onTick != nil {
		g.onTick(copyBodies(g.bodies))
	}
	return true
}

// Bodies returns a snapshot of the laid out bodies.
func (g *Grid) Bodies() []Body {
	return copyBodies(g.bodies)
}

func (g *Grid) arrange() {
	x, y := g.opts.GridOriginX, g.opts.GridOriginY
	limit := g.bounds.Height * g.opts.GridWrapRatio
	for _, b := range g.bodies {
		if b.Pinned() {
			b.X, b.Y = *b.FX, *b.FY
			continue
		}
		b.X, b.Y = x, y
		y += b.Height + g.opts.GridRowGap
		if y > limit {
			y = g.opts.GridOriginY
			x += g.opts.GridColumn
		}
	}
}
