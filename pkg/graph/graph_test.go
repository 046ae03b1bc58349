package graph_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/nodegraph/pkg/catalog/catalogtest"
	"github.com/recera/nodegraph/pkg/geom"
	"github.com/recera/nodegraph/pkg/graph"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func newGraph(t *testing.T) *graph.Graph {
	t.Helper()
	return graph.New(catalogtest.Fixture(), graph.WithIDGenerator(sequentialIDs()))
}

func mustCreate(t *testing.T, g *graph.Graph, address string, x, y float64) *graph.Node {
	t.Helper()
	n, err := g.CreateNode(address, x, y, false)
	require.NoError(t, err)
	return n
}

func TestGraph_CreateNode(t *testing.T) {
	g := newGraph(t)

	n := mustCreate(t, g, "C0006", 10, 20)
	assert.Equal(t, "id1", n.ID)
	assert.Equal(t, graph.Plain, n.Kind)
	assert.Nil(t, n.Display)
	assert.False(t, n.Pinned())
	assert.Equal(t, "MInc", n.NickName)

	require.Len(t, n.Inputs, 2)
	require.Len(t, n.Outputs, 1)
	for i, a := range n.Inputs {
		assert.Equal(t, n.ID, a.NodeID)
		assert.Equal(t, i, a.Index)
		assert.Equal(t, graph.Input, a.Direction)
	}
	assert.Equal(t, "C0006.I02", n.Inputs[1].Address)
	assert.Equal(t, graph.Output, n.Outputs[0].Direction)

	_, err := g.CreateNode("C9999", 0, 0, false)
	assert.True(t, errors.Is(err, graph.ErrUnknownComponent))
	assert.Equal(t, 1, g.NodeCount())
}

func TestGraph_CreatePinnedAndValueDisplay(t *testing.T) {
	g := newGraph(t)

	n, err := g.CreateNode("C0010", 5, 6, true)
	require.NoError(t, err)
	assert.Equal(t, graph.ValueDisplay, n.Kind)
	v, ok := n.Value()
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)
	require.True(t, n.Pinned())
	assert.Equal(t, 5.0, *n.FX)
	assert.Equal(t, 6.0, *n.FY)
	assert.False(t, n.PersistentPin)

	assert.Equal(t, 220.0, n.Width)
	assert.Equal(t, 28.0, n.Height)
	assert.Equal(t, 8.0, n.Outputs[0].RelY)

	require.NoError(t, g.SetValue(n.ID, 3))
	v, _ = n.Value()
	assert.Equal(t, 3.0, v)

	plain := mustCreate(t, g, "C1", 0, 0)
	assert.ErrorIs(t, g.SetValue(plain.ID, 1), graph.ErrNotValueDisplay)
}

func TestMetrics_NodeSizing(t *testing.T) {
	g := newGraph(t)

	small := mustCreate(t, g, "C1", 0, 0)
	assert.Equal(t, 200.0, small.Width)
	assert.Equal(t, 100.0, small.Height)

	tall := mustCreate(t, g, "C0009", 0, 0)
	// header + 2*pad + 4 anchors + 3 gaps
	assert.Equal(t, 36.0+40+56+30, tall.Height)
	assert.Equal(t, -7.0, tall.Inputs[0].RelX)
	assert.Equal(t, 56.0, tall.Inputs[0].RelY)
	assert.Equal(t, 80.0, tall.Inputs[1].RelY)

	assert.Equal(t, 193.0, small.Outputs[0].RelX)
}

func TestGraph_ConnectScenario(t *testing.T) {
	g := newGraph(t)
	c1 := mustCreate(t, g, "C1", 0, 0)
	c2 := mustCreate(t, g, "C2", 300, 0)

	conn, err := g.Connect(c1.ID, "O1", c2.ID, "I1")
	require.NoError(t, err)

	out, _ := c1.Anchor("O1")
	in, _ := c2.Anchor("I1")
	assert.Equal(t, []string{conn.ID}, out.Connections())
	assert.Equal(t, []string{conn.ID}, in.Connections())

	_, err = g.Connect(c1.ID, "O1", c2.ID, "I1")
	assert.ErrorIs(t, err, graph.ErrIncompatibleAnchors)
	assert.Equal(t, []string{conn.ID}, in.Connections(), "prior connection unaffected")
	assert.Equal(t, 1, g.ConnectionCount())
}

func TestGraph_ConnectErrors(t *testing.T) {
	g := newGraph(t)
	c1 := mustCreate(t, g, "C1", 0, 0)
	c2 := mustCreate(t, g, "C2", 300, 0)

	_, err := g.Connect("nope", "O1", c2.ID, "I1")
	assert.ErrorIs(t, err, graph.ErrUnknownNode)

	_, err = g.Connect(c1.ID, "O9", c2.ID, "I1")
	assert.ErrorIs(t, err, graph.ErrUnknownAnchor)

	// input to output is the wrong direction
	_, err = g.Connect(c2.ID, "I1", c1.ID, "O1")
	assert.ErrorIs(t, err, graph.ErrIncompatibleAnchors)

	// output to output
	_, err = g.Connect(c1.ID, "O1", c2.ID, "O1")
	assert.ErrorIs(t, err, graph.ErrIncompatibleAnchors)

	assert.Zero(t, g.ConnectionCount())
}

func TestGraph_TypeCompatibility(t *testing.T) {
	tests := []struct {
		name      string
		src, out  string
		dst, in   string
		wantError bool
	}{
		{"equal types", "C1", "O1", "C2", "I1", false},
		{"wildcard target", "C1", "O1", "C0009", "C0009.I01", false},
		{"wildcard source", "C0011", "C0011.O01", "C0009", "C0009.I03", false},
		{"wildcard both", "C0011", "C0011.O01", "C0007", "C0007.I01", false},
		{"distinct types", "C0008", "C0008.O01", "C0009", "C0009.I04", true},
		{"number into mesh", "C1", "O1", "C0006", "C0006.I01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraph(t)
			src := mustCreate(t, g, tt.src, 0, 0)
			dst := mustCreate(t, g, tt.dst, 300, 0)

			assert.Equal(t, tt.wantError, g.CanConnect(src.ID, tt.out, dst.ID, tt.in) != nil)
			_, err := g.Connect(src.ID, tt.out, dst.ID, tt.in)
			if tt.wantError {
				assert.ErrorIs(t, err, graph.ErrIncompatibleAnchors)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGraph_OutputFansOut(t *testing.T) {
	g := newGraph(t)
	src := mustCreate(t, g, "C1", 0, 0)
	a := mustCreate(t, g, "C2", 300, 0)
	b := mustCreate(t, g, "C2", 300, 200)

	_, err := g.Connect(src.ID, "O1", a.ID, "I1")
	require.NoError(t, err)
	_, err = g.Connect(src.ID, "O1", b.ID, "I1")
	require.NoError(t, err)

	out, _ := src.Anchor("O1")
	assert.Len(t, out.Connections(), 2)
}

func TestGraph_RemoveNodeCascades(t *testing.T) {
	g := newGraph(t)
	src := mustCreate(t, g, "C1", 0, 0)
	mid := mustCreate(t, g, "C2", 300, 0)
	dst := mustCreate(t, g, "C2", 600, 0)

	_, err := g.Connect(src.ID, "O1", mid.ID, "I1")
	require.NoError(t, err)
	_, err = g.Connect(mid.ID, "O1", dst.ID, "I1")
	require.NoError(t, err)

	var changes []graph.ChangeKind
	g.Subscribe(func(c graph.Change) { changes = append(changes, c.Kind) })

	g.RemoveNode(mid.ID)

	assert.Equal(t, 2, g.NodeCount())
	assert.Zero(t, g.ConnectionCount())
	out, _ := src.Anchor("O1")
	in, _ := dst.Anchor("I1")
	assert.Empty(t, out.Connections())
	assert.Empty(t, in.Connections())
	assert.Equal(t, []graph.ChangeKind{
		graph.ConnectionRemoved, graph.ConnectionRemoved, graph.NodeRemoved,
	}, changes)

	// unknown ids are ignored
	g.RemoveNode(mid.ID)
	g.RemoveConnection("missing")
	assert.Len(t, changes, 3)
}

func TestGraph_Clear(t *testing.T) {
	g := newGraph(t)
	a := mustCreate(t, g, "C1", 0, 0)
	b := mustCreate(t, g, "C2", 0, 0)
	_, err := g.Connect(a.ID, "O1", b.ID, "I1")
	require.NoError(t, err)

	g.Clear()
	assert.Zero(t, g.NodeCount())
	assert.Zero(t, g.ConnectionCount())
	assert.Empty(t, g.Nodes())
}

func TestGraph_PinAndNickName(t *testing.T) {
	g := newGraph(t)
	n := mustCreate(t, g, "C2", 0, 0)

	require.NoError(t, g.PinNode(n.ID, 40, 50))
	assert.True(t, n.Pinned())
	assert.Equal(t, geom.Pt(40, 50), n.Position())

	require.NoError(t, g.UnpinNode(n.ID))
	assert.False(t, n.Pinned())

	require.NoError(t, g.SetPersistentPin(n.ID, true))
	assert.True(t, n.PersistentPin)
	assert.True(t, n.Pinned())
	require.NoError(t, g.SetPersistentPin(n.ID, false))
	assert.False(t, n.Pinned())

	require.NoError(t, g.SetNickName(n.ID, "flip"))
	assert.Equal(t, "flip", n.NickName)
	require.NoError(t, g.SetNickName(n.ID, ""))
	assert.Equal(t, "Neg", n.NickName)

	assert.ErrorIs(t, g.MoveNode("missing", 0, 0), graph.ErrUnknownNode)
}

func TestGraph_AnchorCenter(t *testing.T) {
	g := newGraph(t)
	n := mustCreate(t, g, "C1", 100, 100)

	p, err := g.AnchorCenter(n.ID, "O1")
	require.NoError(t, err)
	assert.Equal(t, geom.Pt(300, 163), p)

	_, err = g.AnchorCenter(n.ID, "X")
	assert.ErrorIs(t, err, graph.ErrUnknownAnchor)
}

func TestGraph_HitTest(t *testing.T) {
	g := newGraph(t)
	under := mustCreate(t, g, "C1", 0, 0)
	display := mustCreate(t, g, "C0010", 500, 0)

	hit := g.HitTest(geom.Pt(200, 60))
	assert.Equal(t, graph.HitAnchor, hit.Kind)
	assert.Equal(t, "O1", hit.Anchor.Address)

	hit = g.HitTest(geom.Pt(10, 10))
	assert.Equal(t, graph.HitHeader, hit.Kind)
	assert.Equal(t, under.ID, hit.Node.ID)

	assert.Equal(t, graph.HitBody, g.HitTest(geom.Pt(10, 80)).Kind)
	assert.Equal(t, graph.HitNone, g.HitTest(geom.Pt(300, 300)).Kind)

	hit = g.HitTest(geom.Pt(600, 20))
	assert.Equal(t, graph.HitHeader, hit.Kind)
	assert.Equal(t, display.ID, hit.Node.ID)

	// a later node covering an earlier one wins
	over := mustCreate(t, g, "C2", 50, 50)
	hit = g.HitTest(geom.Pt(100, 90))
	assert.Equal(t, over.ID, hit.Node.ID)
}

func TestGraph_NodesIn(t *testing.T) {
	g := newGraph(t)
	a := mustCreate(t, g, "C1", 0, 0)
	mustCreate(t, g, "C1", 500, 0)

	got := g.NodesIn(geom.Rect{X: 150, Y: 50, Width: 100, Height: 100})
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	// touching the right edge only is not an overlap
	assert.Empty(t, g.NodesIn(geom.Rect{X: 200, Y: 0, Width: 50, Height: 50}))
}
