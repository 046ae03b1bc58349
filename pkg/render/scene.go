// Package render turns the editor model into a flat, serializable scene and
// writes scenes as SVG. A scene holds no references back into the graph and
// can be rebuilt from the model at any time.
package render

import (
	"github.com/recera/nodegraph/pkg/geom"
	"github.com/recera/nodegraph/pkg/graph"
	"github.com/recera/nodegraph/pkg/viewport"
)

// Selected reports whether a node is selected.
type Selected interface {
	Contains(id string) bool
}

// Overlay carries transient gesture state drawn above the graph.
type Overlay struct {
	// Draft is the wire being dragged out of an output anchor.
	Draft *geom.Curve
	// Box is the selection rectangle in world space.
	Box *geom.Rect
	// Raised lists nodes drawn above the others, in order.
	Raised []string

	ShowGrid  bool
	HideWires bool
}

// AnchorView is one anchor box of a node.
type AnchorView struct {
	Address   string     `json:"address"`
	Name      string     `json:"name"`
	NickName  string     `json:"nickName"`
	TypeName  string     `json:"typeName"`
	Input     bool       `json:"input"`
	Rect      geom.Rect  `json:"rect"`
	Center    geom.Point `json:"center"`
	Connected bool       `json:"connected"`
}

// NodeView is one node as drawn.
type NodeView struct {
	ID       string       `json:"id"`
	Address  string       `json:"address"`
	Title    string       `json:"title"`
	Category string       `json:"category"`
	Kind     string       `json:"kind"`
	Rect     geom.Rect    `json:"rect"`
	Header   float64      `json:"header"`
	Value    *float64     `json:"value,omitempty"`
	Selected bool         `json:"selected"`
	Raised   bool         `json:"raised"`
	Pinned   bool         `json:"pinned"`
	Inputs   []AnchorView `json:"inputs"`
	Outputs  []AnchorView `json:"outputs"`
}

// WireView is one connection as drawn.
type WireView struct {
	ID        string     `json:"id"`
	Curve     geom.Curve `json:"curve"`
	Path      string     `json:"path"`
	Highlight bool       `json:"highlight"`
	Secondary bool       `json:"secondary"`
}

// Scene is everything needed to draw one frame.
type Scene struct {
	Viewport  viewport.State `json:"viewport"`
	Nodes     []NodeView     `json:"nodes"`
	Wires     []WireView     `json:"wires"`
	Draft     *WireView      `json:"draft,omitempty"`
	Box       *geom.Rect     `json:"box,omitempty"`
	ShowGrid  bool           `json:"showGrid"`
	ShowWires bool           `json:"showWires"`
}

// Build snapshots g as seen through vp. Nodes keep insertion order except
// raised nodes, which are moved to the end so they draw on top. sel may be
// nil.
func Build(g *graph.Graph, vp viewport.State, sel Selected, ov Overlay) Scene {
	selected := func(id string) bool {
		return sel != nil && sel.Contains(id)
	}
	raised := make(map[string]bool, len(ov.Raised))
	for _, id := range ov.Raised {
		raised[id] = true
	}

	s := Scene{
		Viewport:  vp,
		Nodes:     []NodeView{},
		Wires:     []WireView{},
		ShowGrid:  ov.ShowGrid,
		ShowWires: !ov.HideWires,
	}

	var top []NodeView
	header := g.Metrics().HeaderHeight
	for _, n := range g.Nodes() {
		v := nodeView(n, header)
		v.Selected = selected(n.ID)
		if raised[n.ID] {
			v.Raised = true
			top = append(top, v)
			continue
		}
		s.Nodes = append(s.Nodes, v)
	}
	s.Nodes = append(s.Nodes, top...)

	if !ov.HideWires {
		for _, c := range g.Connections() {
			from, to, err := g.Endpoints(c)
			if err != nil {
				continue
			}
			curve := geom.WireCurve(from, to)
			s.Wires = append(s.Wires, WireView{
				ID:        c.ID,
				Curve:     curve,
				Path:      curve.Path(),
				Highlight: selected(c.SourceNodeID) || selected(c.TargetNodeID),
				Secondary: c.Secondary,
			})
		}
	}

	if ov.Draft != nil {
		s.Draft = &WireView{Curve: *ov.Draft, Path: ov.Draft.Path()}
	}
	if ov.Box != nil {
		box := *ov.Box
		s.Box = &box
	}
	return s
}

func nodeView(n *graph.Node, header float64) NodeView {
	v := NodeView{
		ID:       n.ID,
		Address:  n.Address(),
		Title:    n.NickName,
		Category: n.Def.Category,
		Kind:     n.Kind.String(),
		Rect:     n.Bounds(),
		Header:   header,
		Pinned:   n.Pinned(),
		Inputs:   anchorViews(n, n.Inputs),
		Outputs:  anchorViews(n, n.Outputs),
	}
	if n.Kind == graph.ValueDisplay {
		// the whole body is the header
		v.Header = n.Height
	}
	if val, ok := n.Value(); ok {
		v.Value = &val
	}
	return v
}

func anchorViews(n *graph.Node, anchors []*graph.Anchor) []AnchorView {
	out := make([]AnchorView, len(anchors))
	for i, a := range anchors {
		out[i] = AnchorView{
			Address:  a.Address,
			Name:     a.Name,
			NickName: a.NickName,
			TypeName: a.TypeName,
			Input:    a.Direction == graph.Input,
			Rect: geom.Rect{
				X:      n.X + a.RelX,
				Y:      n.Y + a.RelY,
				Width:  a.Width,
				Height: a.Height,
			},
			Center:    n.AnchorCenter(a),
			Connected: a.HasConnections(),
		}
	}
	return out
}
