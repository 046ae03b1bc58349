package interaction

import (
	"errors"

	"go.uber.org/zap"

	"github.com/recera/nodegraph/pkg/geom"
	"github.com/recera/nodegraph/pkg/graph"
)

// Wire drafts a connection from an output anchor to the pointer.
type Wire struct {
	deps *Deps

	active    bool
	srcNode   string
	srcAnchor string
	from      geom.Point
	to        geom.Point
}

// NewWire binds the gesture to the session collaborators.
func NewWire(deps *Deps) *Wire {
	return &Wire{deps: deps}
}

// Begin starts a draft from the anchor in hit. Only output anchors start a
// draft; it reports whether one was started.
func (w *Wire) Begin(hit graph.Hit, p geom.Point) bool {
	if hit.Kind != graph.HitAnchor || hit.Anchor.Direction != graph.Output {
		return false
	}
	w.active = true
	w.srcNode = hit.Node.ID
	w.srcAnchor = hit.Anchor.Address
	w.from = hit.Node.AnchorCenter(hit.Anchor)
	w.to = w.deps.Viewport.ScreenToWorld(p)
	return true
}

// Move follows the pointer.
func (w *Wire) Move(p geom.Point) {
	if !w.active {
		return
	}
	w.to = w.deps.Viewport.ScreenToWorld(p)
	// the source node may have been moved by layout since Begin
	if c, err := w.deps.Graph.AnchorCenter(w.srcNode, w.srcAnchor); err == nil {
		w.from = c
	}
}

// End finishes the draft at p. Releasing over a different input anchor
// connects the two; any other target discards the draft. The draft is gone
// afterwards either way. A nil connection with a nil error means nothing was
// attempted.
func (w *Wire) End(p geom.Point) (*graph.Connection, error) {
	if !w.active {
		return nil, nil
	}
	defer w.Cancel()

	hit := w.deps.Graph.HitTest(w.deps.Viewport.ScreenToWorld(p))
	if hit.Kind != graph.HitAnchor || hit.Anchor.Direction != graph.Input {
		return nil, nil
	}
	if hit.Node.ID == w.srcNode && hit.Anchor.Address == w.srcAnchor {
		return nil, nil
	}

	c, err := w.deps.Graph.Connect(w.srcNode, w.srcAnchor, hit.Node.ID, hit.Anchor.Address)
	if err != nil {
		level := zap.DebugLevel
		if !errors.Is(err, graph.ErrIncompatibleAnchors) {
			level = zap.WarnLevel
		}
		w.deps.logger().Check(level, "connection rejected").Write(zap.Error(err))
		w.deps.report("Cannot connect: " + err.Error())
		return nil, err
	}
	w.deps.report("Connected " + w.srcAnchor + " to " + hit.Anchor.Address)
	return c, nil
}

// Cancel drops the draft.
func (w *Wire) Cancel() {
	w.active = false
	w.srcNode, w.srcAnchor = "", ""
}

// Active reports whether a draft is in progress.
func (w *Wire) Active() bool {
	return w.active
}

// Draft returns the curve from the source anchor to the pointer.
func (w *Wire) Draft() (geom.Curve, bool) {
	if !w.active {
		return geom.Curve{}, false
	}
	return geom.WireCurve(w.from, w.to), true
}

// Source returns the node and anchor the draft starts from.
func (w *Wire) Source() (nodeID, address string) {
	return w.srcNode, w.srcAnchor
}
