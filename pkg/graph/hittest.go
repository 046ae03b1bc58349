package graph

import "github.com/recera/nodegraph/pkg/geom"

// HitKind classifies what lies under a world-space point.
type HitKind int

const (
	HitNone HitKind = iota
	HitAnchor
	HitHeader
	HitBody
)

func (k HitKind) String() string {
	switch k {
	case HitAnchor:
		return "anchor"
	case HitHeader:
		return "header"
	case HitBody:
		return "body"
	}
	return "none"
}

// Hit is the result of HitTest.
type Hit struct {
	Kind   HitKind
	Node   *Node
	Anchor *Anchor
}

// HitTest finds the topmost element at p. Later nodes are drawn above
// earlier ones, and anchors win over the node they belong to.
func (g *Graph) HitTest(p geom.Point) Hit {
	for i := len(g.nodeOrder) - 1; i >= 0; i-- {
		n := g.nodes[g.nodeOrder[i]]
		for _, a := range n.Anchors() {
			box := geom.Rect{X: n.X + a.RelX, Y: n.Y + a.RelY, Width: a.Width, Height: a.Height}
			if box.Contains(p) {
				return Hit{Kind: HitAnchor, Node: n, Anchor: a}
			}
		}
		if !n.Bounds().Contains(p) {
			continue
		}
		if n.Kind == ValueDisplay || p.Y < n.Y+g.metrics.HeaderHeight {
			return Hit{Kind: HitHeader, Node: n}
		}
		return Hit{Kind: HitBody, Node: n}
	}
	return Hit{}
}

// NodesIn returns the nodes whose bounding boxes overlap r, in insertion order.
func (g *Graph) NodesIn(r geom.Rect) []*Node {
	var out []*Node
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		if n.Bounds().Intersects(r) {
			out = append(out, n)
		}
	}
	return out
}

