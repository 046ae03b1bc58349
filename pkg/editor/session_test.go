package editor_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/nodegraph/pkg/catalog/catalogtest"
	"github.com/recera/nodegraph/pkg/editor"
	"github.com/recera/nodegraph/pkg/geom"
	"github.com/recera/nodegraph/pkg/graph"
	"github.com/recera/nodegraph/pkg/interaction"
	"github.com/recera/nodegraph/pkg/layout"
	"github.com/recera/nodegraph/pkg/recipe"
)

func newSession(t *testing.T, kind string, opts ...editor.Option) *editor.Session {
	t.Helper()
	n := 0
	opts = append([]editor.Option{
		editor.WithLayout(kind),
		editor.WithGraphOptions(graph.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("n%d", n)
		})),
	}, opts...)
	s := editor.New(catalogtest.Fixture(), opts...)
	t.Cleanup(s.Close)
	return s
}

// gridPair creates a C1 and a C2 and lets the grid place them at (50,50)
// and (50,250).
func gridPair(t *testing.T, s *editor.Session) (*graph.Node, *graph.Node) {
	t.Helper()
	a, err := s.CreateNode("C1", 0, 0)
	require.NoError(t, err)
	b, err := s.CreateNode("C2", 0, 0)
	require.NoError(t, err)
	require.True(t, s.Tick())
	require.Equal(t, geom.Pt(50, 50), a.Position())
	require.Equal(t, geom.Pt(50, 250), b.Position())
	return a, b
}

func at(x, y float64) interaction.PointerEvent {
	return interaction.PointerEvent{X: x, Y: y}
}

func TestSession_GridLayoutAndStatus(t *testing.T) {
	var seen []editor.Status
	s := newSession(t, layout.KindGrid, editor.WithStatusHandler(func(st editor.Status) {
		seen = append(seen, st)
	}))
	assert.False(t, s.Engine().Physical())
	assert.Equal(t, "Initialized.", s.Status().Action)

	a, b := gridPair(t, s)
	assert.False(t, s.Tick(), "grid settles after one pass")

	_, err := s.Connect(a.ID, "O1", b.ID, "I1")
	require.NoError(t, err)

	st := s.Status()
	assert.Equal(t, "Connected O1 to I1", st.Action)
	assert.Equal(t, 2, st.Nodes)
	assert.Equal(t, 1, st.Connections)
	assert.Equal(t, "Nodes: 2 | Connections: 1", st.Counts())
	assert.Equal(t, "100%", st.ZoomLabel())
	require.Len(t, seen, 3)
	assert.Equal(t, "Added: Const", seen[0].Action)

	_, err = s.CreateNode("C9999", 0, 0)
	assert.True(t, errors.Is(err, graph.ErrUnknownComponent))
	assert.Equal(t, "Error: No component for C9999", s.Status().Action)
}

func TestSession_UnknownLayoutFallsBackToGrid(t *testing.T) {
	s := newSession(t, "spring")
	assert.False(t, s.Engine().Physical())
}

func TestSession_WireByPointer(t *testing.T) {
	s := newSession(t, layout.KindGrid)
	a, b := gridPair(t, s)

	// output anchor of a is centered at (250,113), input of b at (50,313)
	s.PointerDown(at(250, 113))
	s.PointerMove(at(150, 200))
	scene := s.Scene()
	require.NotNil(t, scene.Draft)
	assert.Equal(t, geom.Pt(250, 113), scene.Draft.Curve.Start)

	st := s.PointerUp(at(50, 313))
	assert.Equal(t, "Connected O1 to I1", st.Action)
	assert.Equal(t, 1, st.Connections)
	assert.Nil(t, s.Scene().Draft)
	assert.Len(t, b.Inputs[0].Connections(), 1)
	assert.Len(t, a.Outputs[0].Connections(), 1)
}

func TestSession_GridDragPinsAtDrop(t *testing.T) {
	s := newSession(t, layout.KindGrid)
	a, _ := gridPair(t, s)

	s.PointerDown(at(60, 60))
	s.PointerMove(at(110, 60))
	st := s.PointerMove(at(160, 60))
	assert.Equal(t, "drag", st.Mode)
	assert.Equal(t, "move", st.Cursor)

	nodes := s.Scene().Nodes
	assert.Equal(t, a.ID, nodes[len(nodes)-1].ID, "dragged nodes draw on top")

	st = s.PointerUp(at(160, 60))
	assert.Equal(t, "Moved 1 node", st.Action)
	assert.True(t, a.Pinned())

	s.Tick()
	assert.Equal(t, geom.Pt(150, 50), a.Position(), "the grid keeps dropped nodes where they are")

	s.ResetLayout()
	assert.False(t, a.Pinned())
	s.Tick()
	assert.Equal(t, geom.Pt(50, 50), a.Position())
	assert.Equal(t, "Layout reset", s.Status().Action)
}

func TestSession_EscapeCancelsDrag(t *testing.T) {
	s := newSession(t, layout.KindGrid)
	a, _ := gridPair(t, s)

	s.PointerDown(at(60, 60))
	s.PointerMove(at(160, 60))
	require.Equal(t, geom.Pt(150, 50), a.Position())

	assert.True(t, s.KeyDown(interaction.KeyEvent{Key: "Escape"}))
	assert.Equal(t, geom.Pt(50, 50), a.Position())
	assert.Equal(t, "Cancelled", s.Status().Action)
	assert.Equal(t, "idle", s.Status().Mode)

	// a second escape clears the selection left by the press
	require.Equal(t, 1, s.Selection().Len())
	assert.True(t, s.KeyDown(interaction.KeyEvent{Key: "Escape"}))
	assert.Zero(t, s.Selection().Len())
	assert.False(t, s.KeyDown(interaction.KeyEvent{Key: "Escape"}))
}

func TestSession_DeleteKeys(t *testing.T) {
	s := newSession(t, layout.KindGrid)
	a, b := gridPair(t, s)
	_, err := s.Connect(a.ID, "O1", b.ID, "I1")
	require.NoError(t, err)

	assert.True(t, s.KeyDown(interaction.KeyEvent{Key: "a", Modifiers: interaction.Modifiers{Ctrl: true}}))
	assert.Equal(t, 2, s.Selection().Len())

	assert.False(t, s.KeyDown(interaction.KeyEvent{Key: "Delete", Typing: true}))
	assert.Equal(t, 2, s.Graph().NodeCount())

	var published [][]string
	unsub := s.Selection().Subscribe(func(ids []string) { published = append(published, ids) })
	defer unsub()

	assert.True(t, s.KeyDown(interaction.KeyEvent{Key: "Backspace"}))
	require.Len(t, published, 1, "one selection update per delete")
	assert.Empty(t, published[0])
	assert.Zero(t, s.Graph().NodeCount())
	assert.Zero(t, s.Graph().ConnectionCount())
	assert.Zero(t, s.Selection().Len())
	assert.Equal(t, "Deleted 2 nodes", s.Status().Action)

	assert.False(t, s.KeyDown(interaction.KeyEvent{Key: "Delete"}), "nothing left to delete")
}

func TestSession_RemoveNodeDropsSelection(t *testing.T) {
	s := newSession(t, layout.KindGrid)
	a, b := gridPair(t, s)
	s.SelectAll()

	s.RemoveNode(a.ID)
	assert.Equal(t, []string{b.ID}, s.Selection().IDs())
	assert.Equal(t, "Removed: Const", s.Status().Action)

	s.Clear()
	assert.Zero(t, s.Selection().Len())
	assert.Equal(t, 0, s.Status().Nodes)
}

func TestSession_Recipes(t *testing.T) {
	s := newSession(t, layout.KindGrid)
	doc := `{
	  "nodes_to_create": [
	    {"id_in_recipe": "a", "type_address": "C1", "x": 500, "y": 40},
	    {"id_in_recipe": "b", "type_address": "C2"},
	    {"id_in_recipe": "z", "type_address": "C9999"}
	  ],
	  "connections": [
	    {"from_node_id": "a", "from_anchor_address": "O1", "to_node_id": "b", "to_anchor_address": "I1"}
	  ]
	}`

	res, err := s.LoadRecipe(doc, true)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Nodes)
	assert.Equal(t, "Recipe implemented: 2 nodes, 1 connection (1 warning)", s.Status().Action)

	s.Tick()
	a, _ := s.Graph().Node(res.IDs["a"])
	b, _ := s.Graph().Node(res.IDs["b"])
	assert.Equal(t, geom.Pt(500, 40), a.Position(), "positioned recipe nodes stay pinned")
	assert.Equal(t, geom.Pt(50, 50), b.Position())

	data, err := s.SaveRecipe()
	require.NoError(t, err)
	assert.Equal(t, "Graph saved", s.Status().Action)
	assert.Contains(t, string(data), `"type_address": "C2"`)

	_, err = s.LoadRecipe("{not json", true)
	assert.True(t, errors.Is(err, recipe.ErrMalformedRecipe))
	assert.True(t, strings.HasPrefix(s.Status().Action, "Error"))
	assert.Equal(t, 2, s.Graph().NodeCount())
}

func TestSession_TogglesAndView(t *testing.T) {
	s := newSession(t, layout.KindGrid)
	a, _ := gridPair(t, s)

	assert.True(t, s.Scene().ShowGrid)
	assert.False(t, s.ToggleGrid())
	assert.False(t, s.Scene().ShowGrid)
	assert.Equal(t, "Grid hidden", s.Status().Action)

	assert.False(t, s.ToggleWires())
	assert.False(t, s.Scene().ShowWires)
	assert.True(t, s.ToggleWires())

	on, err := s.TogglePin(a.ID)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, a.PersistentPin)
	assert.Equal(t, "Pinned Const", s.Status().Action)

	on, err = s.TogglePin(a.ID)
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, a.Pinned())

	_, err = s.TogglePin("missing")
	assert.True(t, errors.Is(err, graph.ErrUnknownNode))

	s.ZoomIn()
	assert.InDelta(t, 1.2, s.Status().Zoom, 1e-9)
	s.ZoomReset()
	assert.Equal(t, 1.0, s.Status().Zoom)

	assert.True(t, s.Wheel(interaction.WheelEvent{X: 400, Y: 300, DeltaY: -1}))
	assert.Equal(t, "Zoom 110%", s.Status().Action)
	assert.False(t, s.Wheel(interaction.WheelEvent{X: 400, Y: 300}))

	s.PointerDown(interaction.PointerEvent{X: 700, Y: 500, Button: interaction.ButtonMiddle})
	s.PointerMove(interaction.PointerEvent{X: 720, Y: 500})
	assert.Equal(t, "Zoom 110%", s.Status().Action, "reported on release")
	s.PointerUp(interaction.PointerEvent{X: 720, Y: 500, Button: interaction.ButtonMiddle})
	assert.Equal(t, "Panned", s.Status().Action)

	s.FitGraph(0)
	st := s.Viewport().State()
	assert.Equal(t, "Fit graph", s.Status().Action)
	// nodes span 200x300 world units inside an 800x600 view with 40px padding
	assert.InDelta(t, 520.0/300.0, st.Scale, 1e-9)

	require.NoError(t, s.SetNickName(a.ID, "Seed"))
	assert.Equal(t, "Seed", s.Scene().Nodes[0].Title)
	assert.Error(t, s.SetValue(a.ID, 1))
}

func TestSession_PointerCoords(t *testing.T) {
	s := newSession(t, layout.KindGrid)
	s.Resize(1000, 500)
	st := s.PointerMove(at(12.4, 30.6))
	assert.Equal(t, "X: 12, Y: 31", st.Coords())
	assert.Equal(t, 1000.0, s.Viewport().State().Width)
}

func TestSession_ForceLayout(t *testing.T) {
	s := newSession(t, layout.KindForce)
	require.True(t, s.Engine().Physical())

	a, err := s.CreateNode("C1", 0, 0)
	require.NoError(t, err)
	b, err := s.CreateNode("C2", 10, 0)
	require.NoError(t, err)
	_, err = s.Connect(a.ID, "O1", b.ID, "I1")
	require.NoError(t, err)
	require.NoError(t, s.Graph().PinNode(a.ID, 0, 0))

	for i := 0; i < 20; i++ {
		s.Tick()
	}
	assert.Equal(t, geom.Pt(0, 0), a.Position(), "pinned nodes do not move")
	assert.NotEqual(t, geom.Pt(10, 0), b.Position())

	// a physical drag holds b, then hands it back
	start := b.Position()
	s.PointerDown(at(start.X+10, start.Y+10))
	s.PointerMove(at(start.X+110, start.Y+10))
	assert.InDelta(t, start.X+100, b.X, 1e-9)
	s.Tick()
	assert.InDelta(t, start.X+100, b.X, 1e-9, "held while dragging")
	s.PointerUp(at(start.X+110, start.Y+10))
	assert.False(t, b.Pinned())
}

func TestSession_ForceEscapeRestoresRecipePin(t *testing.T) {
	s := newSession(t, layout.KindForce)
	_, err := s.LoadRecipe(`{"nodes_to_create":[{"id":"a","type_address":"C1","x":100,"y":100}],"connections":[]}`, true)
	require.NoError(t, err)
	a := s.Graph().Nodes()[0]
	require.True(t, a.Pinned())

	s.PointerDown(at(110, 110))
	s.PointerMove(at(210, 210))
	require.Equal(t, geom.Pt(200, 200), a.Position())
	assert.True(t, s.KeyDown(interaction.KeyEvent{Key: "Escape"}))

	for i := 0; i < 50; i++ {
		s.Tick()
	}
	assert.True(t, a.Pinned())
	assert.Equal(t, geom.Pt(100, 100), a.Position())
}

func TestSession_ForceDragSurvivesStructuralChange(t *testing.T) {
	s := newSession(t, layout.KindForce)
	a, err := s.CreateNode("C1", 0, 0)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		s.Tick()
	}

	start := a.Position()
	s.PointerDown(at(start.X+10, start.Y+10))
	s.PointerMove(at(start.X+110, start.Y+110))
	held := a.Position()
	require.InDelta(t, start.X+100, held.X, 1e-9)

	_, err = s.CreateNode("C2", held.X+400, held.Y)
	require.NoError(t, err)
	for i := 0; i < 30; i++ {
		s.Tick()
	}
	assert.InDelta(t, held.X, a.X, 1e-9, "the pointer is still down")
	assert.InDelta(t, held.Y, a.Y, 1e-9)

	s.PointerUp(at(start.X+110, start.Y+110))
	assert.False(t, a.Pinned())
}
