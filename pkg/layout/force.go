package layout

import (
	"math"
	"math/rand"

	"github.com/recera/nodegraph/pkg/geom"
)

// Force is an incremental force-directed simulation in the style of
// d3-force: each Step decays alpha toward its target, applies link,
// many-body, center and collision forces, then integrates velocities.
type Force struct {
	opts Options
	rng  *rand.Rand

	bodies []*Body
	index  map[string]int
	links  []link
	center geom.Point

	alpha       float64
	alphaTarget float64
	running     bool
	onTick      func([]Body)
}

type link struct {
	source, target int
	bias           float64
}

// NewForce creates a simulation at full energy.
func NewForce(opts *Options) *Force {
	o := opts.withDefaults()
	return &Force{
		opts:    o,
		rng:     rand.New(rand.NewSource(o.Seed)),
		index:   make(map[string]int),
		alpha:   1,
		running: true,
	}
}

// Physical is always true.
func (f *Force) Physical() bool { return true }

// OnTick sets the tick callback.
func (f *Force) OnTick(fn func([]Body)) { f.onTick = fn }

// Alpha returns the current energy.
func (f *Force) Alpha() float64 { return f.alpha }

// Running reports whether Step will move bodies.
func (f *Force) Running() bool { return f.running }

// Sync mirrors nodes and edges. Known bodies keep their position and
// velocity; their pinned coordinates follow the input.
func (f *Force) Sync(nodes []Body, edges []Edge) {
	prev := f.bodies
	prevIndex := f.index

	f.bodies = make([]*Body, len(nodes))
	f.index = make(map[string]int, len(nodes))
	for i := range nodes {
		b := nodes[i]
		if j, ok := prevIndex[b.ID]; ok {
			old := prev[j]
			b.X, b.Y, b.VX, b.VY = old.X, old.Y, old.VX, old.VY
		}
		f.bodies[i] = &b
		f.index[b.ID] = i
	}

	count := make([]int, len(f.bodies))
	f.links = f.links[:0]
	for _, e := range edges {
		s, ok1 := f.index[e.Source]
		t, ok2 := f.index[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		f.links = append(f.links, link{source: s, target: t})
		count[s]++
		count[t]++
	}
	for i := range f.links {
		l := &f.links[i]
		l.bias = float64(count[l.source]) / float64(count[l.source]+count[l.target])
	}
}

// Pin fixes a body.
func (f *Force) Pin(id string, x, y float64) {
	if i, ok := f.index[id]; ok {
		b := f.bodies[i]
		b.FX, b.FY = &x, &y
		b.X, b.Y = x, y
	}
}

// Unpin releases a body.
func (f *Force) Unpin(id string) {
	if i, ok := f.index[id]; ok {
		f.bodies[i].FX, f.bodies[i].FY = nil, nil
	}
}

// Reheat sets alpha and restarts the simulation.
func (f *Force) Reheat(alpha float64) {
	f.alpha = alpha
	f.running = true
}

// Stop halts the simulation.
func (f *Force) Stop() {
	f.running = false
}

// SetBounds moves the centering target to the middle of r.
func (f *Force) SetBounds(r geom.Rect) {
	f.center = r.Center()
}

// Step runs one tick. It returns false once alpha has cooled below alphaMin.
func (f *Force) Step() bool {
	if !f.running || len(f.bodies) == 0 {
		return false
	}
	f.alpha += (f.alphaTarget - f.alpha) * f.opts.AlphaDecay
	if f.alpha < f.opts.AlphaMin {
		f.running = false
		return false
	}

	f.applyLinks()
	f.applyCharge()
	f.applyCenter()
	f.applyCollide()

	decay := 1 - f.opts.VelocityDecay
	for _, b := range f.bodies {
		if b.Pinned() {
			b.X, b.Y = *b.FX, *b.FY
			b.VX, b.VY = 0, 0
			continue
		}
		b.VX *= decay
		b.VY *= decay
		b.X += b.VX
		b.Y += b.VY
	}

	if f.onTick != nil {
		f.onTick(copyBodies(f.bodies))
	}
	return true
}

// Bodies returns a snapshot of the simulated bodies.
func (f *Force) Bodies() []Body {
	return copyBodies(f.bodies)
}

func (f *Force) jiggle() float64 {
	return (f.rng.Float64() - 0.5) * 1e-6
}

func (f *Force) applyLinks() {
	for _, l := range f.links {
		s, t := f.bodies[l.source], f.bodies[l.target]
		x := t.X + t.VX - s.X - s.VX
		if x == 0 {
			x = f.jiggle()
		}
		y := t.Y + t.VY - s.Y - s.VY
		if y == 0 {
			y = f.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		d = (d - f.opts.LinkDistance) / d * f.alpha * f.opts.LinkStrength
		x, y = x*d, y*d

		t.VX -= x * l.bias
		t.VY -= y * l.bias
		s.VX += x * (1 - l.bias)
		s.VY += y * (1 - l.bias)
	}
}

func (f *Force) applyCharge() {
	maxSq := f.opts.ChargeDistanceMax * f.opts.ChargeDistanceMax
	minSq := f.opts.ChargeDistanceMin * f.opts.ChargeDistanceMin
	for i, b := range f.bodies {
		for j, o := range f.bodies {
			if i == j {
				continue
			}
			x := o.X - b.X
			y := o.Y - b.Y
			l := x*x + y*y
			if l >= maxSq {
				continue
			}
			if x == 0 {
				x = f.jiggle()
				l += x * x
			}
			if y == 0 {
				y = f.jiggle()
				l += y * y
			}
			if l < minSq {
				l = math.Sqrt(minSq * l)
			}
			w := f.opts.Charge * f.alpha / l
			b.VX += x * w
			b.VY += y * w
		}
	}
}

func (f *Force) applyCenter() {
	if f.opts.CenterStrength == 0 {
		return
	}
	var sx, sy float64
	for _, b := range f.bodies {
		sx += b.X
		sy += b.Y
	}
	n := float64(len(f.bodies))
	sx = (sx/n - f.center.X) * f.opts.CenterStrength
	sy = (sy/n - f.center.Y) * f.opts.CenterStrength
	for _, b := range f.bodies {
		b.X -= sx
		b.Y -= sy
	}
}

func (f *Force) radius(b *Body) float64 {
	return math.Max(b.Width, b.Height)*f.opts.CollideScale + f.opts.CollidePadding
}

func (f *Force) applyCollide() {
	for i, b := range f.bodies {
		ri := f.radius(b)
		ri2 := ri * ri
		xi, yi := b.X+b.VX, b.Y+b.VY
		for j := i + 1; j < len(f.bodies); j++ {
			o := f.bodies[j]
			rj := f.radius(o)
			r := ri + rj
			x := xi - o.X - o.VX
			y := yi - o.Y - o.VY
			l := x*x + y*y
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = f.jiggle()
				l += x * x
			}
			if y == 0 {
				y = f.jiggle()
				l += y * y
			}
			d := math.Sqrt(l)
			k := (r - d) / d * f.opts.CollideStrength
			x, y = x*k, y*k
			share := rj * rj / (ri2 + rj*rj)
			b.VX += x * share
			b.VY += y * share
			o.VX -= x * (1 - share)
			o.VY -= y * (1 - share)
		}
	}
}
