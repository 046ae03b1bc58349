// Package layout positions unpinned nodes. Force is a d3-style velocity
// Verlet simulation; Grid is the deterministic fallback used when no
// simulation is wanted. Both satisfy Engine so the editor can swap them.
package layout

import (
	"fmt"

	"github.com/recera/nodegraph/pkg/geom"
)

// Body is the layout engine's mirror of a node.
type Body struct {
	ID     string
	X, Y   float64
	VX, VY float64
	Width  float64
	Height float64
	// FX/FY fix the body in place when both are set.
	FX, FY *float64
}

// Pinned reports whether the body is fixed.
func (b *Body) Pinned() bool {
	return b.FX != nil && b.FY != nil
}

// Edge links two bodies by id.
type Edge struct {
	Source string
	Target string
}

// Engine is the contract shared by every layout strategy.
type Engine interface {
	// Sync replaces the mirrored node and edge set. Bodies already known
	// keep their simulated position and velocity.
	Sync(nodes []Body, edges []Edge)
	// Pin fixes a body at (x, y).
	Pin(id string, x, y float64)
	// Unpin releases a body.
	Unpin(id string)
	// Reheat restarts the layout with the given energy.
	Reheat(alpha float64)
	// SetBounds tells the engine which world rectangle is on screen.
	SetBounds(r geom.Rect)
	// Step advances one frame and reports whether anything moved.
	Step() bool
	// OnTick sets the callback run after every step that moved bodies.
	OnTick(fn func([]Body))
	// Physical reports whether bodies move on their own between events.
	Physical() bool
	// Stop halts the layout until the next Reheat.
	Stop()
}

// Engine names accepted by New.
const (
	KindForce = "force"
	KindGrid  = "grid"
)

// New builds an engine by name. An empty name selects the force engine.
func New(kind string, opts *Options) (Engine, error) {
	switch kind {
	case "", KindForce:
		return NewForce(opts), nil
	case KindGrid:
		return NewGrid(opts), nil
	}
	return nil, fmt.Errorf("unknown layout engine %q", kind)
}

func copyBodies(in []*Body) []Body {
	out := make([]Body, len(in))
	for i, b := range in {
		out[i] = *b
	}
	return out
}
