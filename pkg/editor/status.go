package editor

import (
	"fmt"
	"math"

	"github.com/recera/nodegraph/pkg/geom"
)

// Status is what the status bar shows after an operation.
type Status struct {
	Action      string     `json:"action"`
	Nodes       int        `json:"nodes"`
	Connections int        `json:"connections"`
	Zoom        float64    `json:"zoom"`
	Cursor      string     `json:"cursor"`
	Pointer     geom.Point `json:"pointer"`
	Selected    int        `json:"selected"`
	Mode        string     `json:"mode"`
}

// Counts formats the totals the way the status bar shows them.
func (st Status) Counts() string {
	return fmt.Sprintf("Nodes: %d | Connections: %d", st.Nodes, st.Connections)
}

// ZoomLabel formats the zoom as a percentage.
func (st Status) ZoomLabel() string {
	return fmt.Sprintf("%.0f%%", st.Zoom*100)
}

// Coords formats the pointer position in world units.
func (st Status) Coords() string {
	return fmt.Sprintf("X: %d, Y: %d", int(math.Round(st.Pointer.X)), int(math.Round(st.Pointer.Y)))
}

func (st Status) String() string {
	return fmt.Sprintf("%s | %s | %s", st.Action, st.Counts(), st.ZoomLabel())
}

// Status returns the status after the last operation.
func (s *Session) Status() Status {
	return s.status
}

func (s *Session) snapshot(action string) Status {
	return Status{
		Action:      action,
		Nodes:       s.graph.NodeCount(),
		Connections: s.graph.ConnectionCount(),
		Zoom:        s.viewport.State().Scale,
		Cursor:      s.router.Cursor(),
		Pointer:     s.pointer,
		Selected:    s.sel.Len(),
		Mode:        s.router.Mode().String(),
	}
}
