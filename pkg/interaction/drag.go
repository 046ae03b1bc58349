package interaction

import (
	"go.uber.org/zap"

	"github.com/recera/nodegraph/pkg/geom"
)

// Drag moves the selected nodes together, started from a node header.
type Drag struct {
	deps *Deps
	sel  *Selection

	active      bool
	moved       bool
	pressNode   string
	pressScreen geom.Point
	pressWorld  geom.Point
	shift       bool
	wasSelected bool
	starts      map[string]geom.Point
	pinned      map[string]bool
	order       []string
}

// NewDrag binds the gesture to the session collaborators.
func NewDrag(deps *Deps, sel *Selection) *Drag {
	return &Drag{deps: deps, sel: sel}
}

// Begin presses on nodeID's header at screen point p. An unselected node is
// added to the selection (shift) or becomes the only selected node; a
// shift-press on a selected node leaves the selection as it is so an
// existing multi-selection can be dragged.
func (d *Drag) Begin(nodeID string, p geom.Point, shift bool) {
	d.wasSelected = d.sel.Contains(nodeID)
	if !d.wasSelected {
		if shift {
			d.sel.Add(nodeID)
		} else {
			d.sel.Replace(nodeID)
		}
	}

	d.active = true
	d.moved = false
	d.pressNode = nodeID
	d.pressScreen = p
	d.pressWorld = d.deps.Viewport.ScreenToWorld(p)
	d.shift = shift
	d.starts = make(map[string]geom.Point)
	d.pinned = make(map[string]bool)
	d.order = d.order[:0]
	for _, id := range d.sel.IDs() {
		if n, ok := d.deps.Graph.Node(id); ok {
			d.starts[id] = n.Position()
			d.pinned[id] = n.Pinned()
			d.order = append(d.order, id)
		}
	}
}

// Move applies the world-space delta since the press to every dragged node.
func (d *Drag) Move(p geom.Point) {
	if !d.active {
		return
	}
	if !d.moved && isClick(d.pressScreen, p) {
		return
	}
	d.moved = true

	delta := d.deps.Viewport.ScreenToWorld(p).Sub(d.pressWorld)
	layout := d.deps.layout()
	for _, id := range d.order {
		to := d.starts[id].Add(delta)
		n, ok := d.deps.Graph.Node(id)
		if !ok {
			// removed mid-drag
			continue
		}
		if n.Pinned() {
			_ = d.deps.Graph.PinNode(id, to.X, to.Y)
		} else {
			_ = d.deps.Graph.MoveNode(id, to.X, to.Y)
		}
		if layout.Physical() {
			layout.Hold(id, to.X, to.Y)
		}
	}
}

// End releases the drag. Nodes that were not pinned by the user are handed
// back to the physics engine; without one they stay pinned where dropped.
func (d *Drag) End(shift bool) {
	if !d.active {
		return
	}
	d.active = false

	if !d.moved {
		if shift && d.wasSelected {
			d.sel.Toggle(d.pressNode)
		}
		d.reset()
		return
	}

	layout := d.deps.layout()
	for _, id := range d.order {
		n, ok := d.deps.Graph.Node(id)
		if !ok || n.PersistentPin {
			continue
		}
		if layout.Physical() {
			_ = d.deps.Graph.UnpinNode(id)
			layout.Release(id)
		} else {
			_ = d.deps.Graph.PinNode(id, n.X, n.Y)
		}
	}
	layout.DragEnded()
	d.deps.logger().Debug("drag ended", zap.Int("nodes", len(d.order)))
	d.deps.report("Moved " + pluralize(len(d.order), "node"))
	d.reset()
}

// Cancel returns the dragged nodes to where they started and restores the
// pin state each one had at the press.
func (d *Drag) Cancel() {
	if !d.active {
		return
	}
	d.active = false
	if d.moved {
		layout := d.deps.layout()
		for _, id := range d.order {
			start := d.starts[id]
			if _, ok := d.deps.Graph.Node(id); !ok {
				continue
			}
			if d.pinned[id] {
				_ = d.deps.Graph.PinNode(id, start.X, start.Y)
				continue
			}
			_ = d.deps.Graph.MoveNode(id, start.X, start.Y)
			if layout.Physical() {
				layout.Hold(id, start.X, start.Y)
				layout.Release(id)
			}
		}
	}
	d.reset()
}

// Rehold pins the dragged nodes the engine holds at their current
// positions again. The editor calls it after the engine resyncs its bodies
// while a drag is in progress.
func (d *Drag) Rehold() {
	if !d.active || !d.moved {
		return
	}
	layout := d.deps.layout()
	if !layout.Physical() {
		return
	}
	for _, id := range d.order {
		if n, ok := d.deps.Graph.Node(id); ok && !n.Pinned() {
			layout.Hold(id, n.X, n.Y)
		}
	}
}

func (d *Drag) reset() {
	d.moved = false
	d.pressNode = ""
	d.starts = nil
	d.pinned = nil
	d.order = d.order[:0]
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool {
	return d.active
}

// Raised returns the ids drawn above the rest while dragging.
func (d *Drag) Raised() []string {
	if !d.active {
		return nil
	}
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}
