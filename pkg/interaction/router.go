package interaction

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/recera/nodegraph/pkg/geom"
	"github.com/recera/nodegraph/pkg/graph"
	"github.com/recera/nodegraph/pkg/viewport"
)

// Mode is the gesture the router is currently feeding.
type Mode int

const (
	ModeIdle Mode = iota
	ModePan
	ModeBox
	ModeDrag
	ModeWire
	ModeNodeClick
)

func (m Mode) String() string {
	switch m {
	case ModePan:
		return "pan"
	case ModeBox:
		return "box"
	case ModeDrag:
		return "drag"
	case ModeWire:
		return "wire"
	case ModeNodeClick:
		return "click"
	}
	return "idle"
}

// Router dispatches pointer and wheel events to the state machines. At most
// one gesture runs at a time; presses that arrive during a gesture are
// ignored until it ends.
type Router struct {
	deps *Deps

	Selection *Selection
	Box       *BoxSelect
	Drag      *Drag
	Wire      *Wire
	Pan       *viewport.Pan

	mode      Mode
	pressPos  geom.Point
	clickNode string
	touches   map[int]geom.Point
	touchPan  bool
}

// NewRouter builds the state machines over deps.
func NewRouter(deps *Deps, sel *Selection) *Router {
	return &Router{
		deps:      deps,
		Selection: sel,
		Box:       NewBoxSelect(deps, sel),
		Drag:      NewDrag(deps, sel),
		Wire:      NewWire(deps),
		Pan:       viewport.NewPan(deps.Viewport),
		touches:   make(map[int]geom.Point),
	}
}

// Mode returns the active gesture.
func (r *Router) Mode() Mode {
	return r.mode
}

// Cursor suggests a CSS cursor for the current gesture.
func (r *Router) Cursor() string {
	switch r.mode {
	case ModePan:
		return "grabbing"
	case ModeDrag:
		return "move"
	case ModeWire, ModeBox:
		return "crosshair"
	}
	return "default"
}

// PointerDown handles a press.
func (r *Router) PointerDown(ev PointerEvent) {
	if ev.IsTouch() {
		r.touches[ev.PointerID] = ev.Pos()
		if len(r.touches) >= 2 {
			// a second finger turns whatever the first one started into a pan
			r.cancelGesture()
			r.mode = ModePan
			r.touchPan = true
			r.Pan.Begin(r.centroid())
			return
		}
		ev.Button = ButtonPrimary
	}
	if r.mode != ModeIdle {
		return
	}

	p := ev.Pos()
	r.pressPos = p

	if ev.Button == ButtonMiddle {
		r.beginPan(p)
		return
	}
	if ev.Button != ButtonPrimary {
		return
	}

	hit := r.deps.Graph.HitTest(r.deps.Viewport.ScreenToWorld(p))
	switch hit.Kind {
	case graph.HitAnchor:
		if r.Wire.Begin(hit, p) {
			r.mode = ModeWire
		}
	case graph.HitHeader:
		r.Drag.Begin(hit.Node.ID, p, ev.Shift)
		r.mode = ModeDrag
	case graph.HitBody:
		r.clickNode = hit.Node.ID
		r.mode = ModeNodeClick
	default:
		if ev.Alt || ev.Shift {
			r.beginPan(p)
			return
		}
		r.Box.Begin(p)
		r.mode = ModeBox
	}
}

func (r *Router) beginPan(p geom.Point) {
	r.Pan.Begin(p)
	r.mode = ModePan
}

func (r *Router) endPan() {
	r.Pan.End()
	if r.Pan.Moved() {
		r.deps.report("Panned")
	}
}

// PointerMove handles pointer motion.
func (r *Router) PointerMove(ev PointerEvent) {
	p := ev.Pos()
	if ev.IsTouch() {
		if _, ok := r.touches[ev.PointerID]; !ok {
			return
		}
		r.touches[ev.PointerID] = p
		if r.touchPan {
			r.Pan.Move(r.centroid())
			return
		}
	}

	switch r.mode {
	case ModePan:
		r.Pan.Move(p)
	case ModeBox:
		r.Box.Move(p)
	case ModeDrag:
		r.Drag.Move(p)
	case ModeWire:
		r.Wire.Move(p)
	}
}

// PointerUp handles a release and always leaves the router idle unless a
// multi-touch pan still has two contacts.
func (r *Router) PointerUp(ev PointerEvent) {
	p := ev.Pos()
	if ev.IsTouch() {
		delete(r.touches, ev.PointerID)
		if r.touchPan {
			if len(r.touches) < 2 {
				r.endPan()
				r.touchPan = false
				r.mode = ModeIdle
			} else {
				r.Pan.Rebase(r.centroid())
			}
			return
		}
	}

	switch r.mode {
	case ModePan:
		r.endPan()
	case ModeBox:
		r.Box.End(p, ev.Shift)
	case ModeDrag:
		r.Drag.End(ev.Shift)
	case ModeWire:
		if _, err := r.Wire.End(p); err != nil {
			r.deps.logger().Debug("wire draft discarded", zap.Error(err))
		}
	case ModeNodeClick:
		if isClick(r.pressPos, p) {
			r.Selection.Click(r.clickNode, ev.Shift)
			r.deps.report(pluralize(r.Selection.Len(), "node") + " selected")
		}
		r.clickNode = ""
	}
	r.mode = ModeIdle
}

// PointerCancel handles pointercancel and pointerleave. Drags keep the
// positions reached so far; drafts and boxes are dropped.
func (r *Router) PointerCancel(ev PointerEvent) {
	if ev.IsTouch() {
		delete(r.touches, ev.PointerID)
	}
	if r.mode == ModeDrag {
		r.Drag.End(false)
		r.mode = ModeIdle
	}
	r.cancelGesture()
}

// Wheel zooms around the pointer.
func (r *Router) Wheel(ev WheelEvent) bool {
	return r.deps.Viewport.Wheel(geom.Pt(ev.X, ev.Y), ev.DeltaY)
}

// Cancel aborts the active gesture. A drag in progress is rolled back.
func (r *Router) Cancel() {
	r.cancelGesture()
	r.touches = make(map[int]geom.Point)
}

func (r *Router) cancelGesture() {
	switch r.mode {
	case ModePan:
		r.Pan.End()
	case ModeBox:
		r.Box.Cancel()
	case ModeDrag:
		r.Drag.Cancel()
	case ModeWire:
		r.Wire.Cancel()
	}
	r.clickNode = ""
	r.touchPan = false
	r.mode = ModeIdle
}

func (r *Router) centroid() geom.Point {
	var c geom.Point
	if len(r.touches) == 0 {
		return c
	}
	for _, p := range r.touches {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(r.touches)))
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
