package graph

import (
	"github.com/recera/nodegraph/pkg/catalog"
	"github.com/recera/nodegraph/pkg/geom"
)

// Direction is the side of a node an anchor sits on.
type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
)

// Kind discriminates the node variants.
type Kind int

const (
	// Plain is a regular component node with a header and a body.
	Plain Kind = iota
	// ValueDisplay is a compact node that shows a scalar value.
	ValueDisplay
)

func (k Kind) String() string {
	switch k {
	case ValueDisplay:
		return "valueDisplay"
	default:
		return "node"
	}
}

// Anchor is a typed connection point on a node.
type Anchor struct {
	NodeID    string
	Address   string
	Name      string
	NickName  string
	TypeName  string
	Direction Direction
	Index     int

	// RelX/RelY locate the anchor box's top-left corner relative to the node.
	RelX   float64
	RelY   float64
	Width  float64
	Height float64

	connections []string
}

// Connections returns a copy of the ids of connections using this anchor.
func (a *Anchor) Connections() []string {
	out := make([]string, len(a.connections))
	copy(out, a.connections)
	return out
}

// HasConnections reports whether any connection uses this anchor.
func (a *Anchor) HasConnections() bool {
	return len(a.connections) > 0
}

// GlobalAddress returns "<nodeID>.<address>", unique across the graph.
func (a *Anchor) GlobalAddress() string {
	return a.NodeID + "." + a.Address
}

func (a *Anchor) addConnection(id string) {
	for _, c := range a.connections {
		if c == id {
			return
		}
	}
	a.connections = append(a.connections, id)
}

func (a *Anchor) removeConnection(id string) {
	kept := a.connections[:0]
	for _, c := range a.connections {
		if c != id {
			kept = append(kept, c)
		}
	}
	a.connections = kept
}

// ValueDisplayData is the payload carried by ValueDisplay nodes.
type ValueDisplayData struct {
	Value float64
}

// Node is a placed instance of a component definition.
type Node struct {
	ID  string
	Def *catalog.Definition

	X, Y float64
	// FX/FY hold a pinned position; nil lets the layout engine decide.
	FX, FY *float64
	// PersistentPin keeps the node pinned after a drag ends.
	PersistentPin bool

	Width, Height float64
	NickName      string

	Inputs  []*Anchor
	Outputs []*Anchor

	Kind    Kind
	Display *ValueDisplayData
}

// Address returns the component address the node was created from.
func (n *Node) Address() string {
	return n.Def.GlobalAddress
}

// Position returns the node's top-left corner in world space.
func (n *Node) Position() geom.Point {
	return geom.Point{X: n.X, Y: n.Y}
}

// Bounds returns the node's bounding box in world space.
func (n *Node) Bounds() geom.Rect {
	return geom.Rect{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
}

// Pinned reports whether both pinned coordinates are set.
func (n *Node) Pinned() bool {
	return n.FX != nil && n.FY != nil
}

// Pin fixes the node at (x, y).
func (n *Node) Pin(x, y float64) {
	n.FX, n.FY = &x, &y
}

// Unpin hands the node back to the layout engine.
func (n *Node) Unpin() {
	n.FX, n.FY = nil, nil
}

// Value returns the displayed value of a ValueDisplay node.
func (n *Node) Value() (float64, bool) {
	if n.Kind != ValueDisplay || n.Display == nil {
		return 0, false
	}
	return n.Display.Value, true
}

// Anchor finds an input or output anchor by definition address.
func (n *Node) Anchor(address string) (*Anchor, bool) {
	for _, a := range n.Inputs {
		if a.Address == address {
			return a, true
		}
	}
	for _, a := range n.Outputs {
		if a.Address == address {
			return a, true
		}
	}
	return nil, false
}

// Anchors returns inputs followed by outputs.
func (n *Node) Anchors() []*Anchor {
	out := make([]*Anchor, 0, len(n.Inputs)+len(n.Outputs))
	out = append(out, n.Inputs...)
	return append(out, n.Outputs...)
}

// AnchorCenter returns the world-space center of an anchor box.
func (n *Node) AnchorCenter(a *Anchor) geom.Point {
	return geom.Point{
		X: n.X + a.RelX + a.Width/2,
		Y: n.Y + a.RelY + a.Height/2,
	}
}

// Connection is a directed edge from an output anchor to an input anchor.
type Connection struct {
	ID           string
	SourceNodeID string
	SourceAnchor string
	TargetNodeID string
	TargetAnchor string
	Secondary    bool
}

// Touches reports whether either endpoint belongs to nodeID.
func (c *Connection) Touches(nodeID string) bool {
	return c.SourceNodeID == nodeID || c.TargetNodeID == nodeID
}
