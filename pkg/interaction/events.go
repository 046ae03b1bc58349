// Package interaction holds the pointer-driven state machines of the editor:
// selection, box select, node drag, wire drafting, and the Router that
// dispatches raw input events to them.
package interaction

import "github.com/recera/nodegraph/pkg/geom"

// Button follows the DOM MouseEvent.button numbering.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

// Pointer types reported by the browser.
const (
	PointerMouse = "mouse"
	PointerTouch = "touch"
	PointerPen   = "pen"
)

// Modifiers are the keyboard modifier states at the time of an event.
type Modifiers struct {
	Shift bool `json:"shift,omitempty"`
	Alt   bool `json:"alt,omitempty"`
	Ctrl  bool `json:"ctrl,omitempty"`
	Meta  bool `json:"meta,omitempty"`
}

// PointerEvent is a pointer press, move, release or cancel in screen space.
type PointerEvent struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Button      Button  `json:"button"`
	PointerID   int     `json:"pointerId"`
	PointerType string  `json:"pointerType,omitempty"`
	Modifiers
}

// Pos returns the event position.
func (e PointerEvent) Pos() geom.Point {
	return geom.Pt(e.X, e.Y)
}

// IsTouch reports whether the event comes from a touch contact.
func (e PointerEvent) IsTouch() bool {
	return e.PointerType == PointerTouch
}

// WheelEvent is a wheel tick at a screen position.
type WheelEvent struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"deltaY"`
	Modifiers
}

// KeyEvent is a key press. Typing is set when focus is in a text field.
type KeyEvent struct {
	Key    string `json:"key"`
	Typing bool   `json:"typing,omitempty"`
	Modifiers
}

// ClickSlop is the distance in pixels a press may travel and still count as
// a click.
const ClickSlop = 3.0

func isClick(from, to geom.Point) bool {
	return geom.Distance(from, to) <= ClickSlop
}
