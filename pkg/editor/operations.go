package editor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/recera/nodegraph/pkg/graph"
	"github.com/recera/nodegraph/pkg/recipe"
)

// CreateNode places a component at world position (x, y). The layout
// engine is free to move it.
func (s *Session) CreateNode(address string, x, y float64) (*graph.Node, error) {
	n, err := s.graph.CreateNode(address, x, y, false)
	if err != nil {
		s.log.Warn("cannot create node", zap.String("address", address), zap.Error(err))
		s.commit("Error: No component for " + address)
		return nil, err
	}
	s.commit("Added: " + n.NickName)
	return n, nil
}

// Connect links an output anchor to an input anchor.
func (s *Session) Connect(srcNode, srcAnchor, dstNode, dstAnchor string) (*graph.Connection, error) {
	c, err := s.graph.Connect(srcNode, srcAnchor, dstNode, dstAnchor)
	if err != nil {
		s.commit("Cannot connect: " + err.Error())
		return nil, err
	}
	s.commit("Connected " + srcAnchor + " to " + dstAnchor)
	return c, nil
}

// RemoveNode deletes a node and its connections.
func (s *Session) RemoveNode(id string) {
	n, ok := s.graph.Node(id)
	if !ok {
		return
	}
	name := n.NickName
	s.graph.RemoveNode(id)
	s.commit("Removed: " + name)
}

// RemoveConnection deletes one connection.
func (s *Session) RemoveConnection(id string) {
	if _, ok := s.graph.Connection(id); !ok {
		return
	}
	s.graph.RemoveConnection(id)
	s.commit("Connection removed")
}

// DeleteSelected removes every selected node.
func (s *Session) DeleteSelected() int {
	ids := s.sel.IDs()
	if len(ids) == 0 {
		return 0
	}
	s.scope.RunBatch(func() {
		s.router.Cancel()
		for _, id := range ids {
			s.graph.RemoveNode(id)
		}
		s.sel.Clear()
	})
	s.commit(fmt.Sprintf("Deleted %s", plural(len(ids), "node")))
	return len(ids)
}

// SelectAll selects every node.
func (s *Session) SelectAll() {
	nodes := s.graph.Nodes()
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	s.sel.SelectAll(ids)
	s.commit(plural(len(ids), "node") + " selected")
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	s.sel.Clear()
	s.commit("Selection cleared")
}

// Clear removes every node and connection.
func (s *Session) Clear() {
	s.scope.RunBatch(s.graph.Clear)
	s.commit("Graph cleared")
}

// LoadRecipe builds the recipe into the graph, optionally clearing it
// first. A malformed recipe leaves the graph untouched and returns an error
// wrapping recipe.ErrMalformedRecipe or recipe.ErrEmptyRecipe.
func (s *Session) LoadRecipe(text string, clearFirst bool) (*recipe.Result, error) {
	var (
		res *recipe.Result
		err error
	)
	s.scope.RunBatch(func() {
		res, err = recipe.Decode([]byte(text), s.graph,
			recipe.WithClearFirst(clearFirst),
			recipe.WithLogger(s.log))
	})
	if err != nil {
		s.log.Warn("recipe rejected", zap.Error(err))
		s.commit("Error: invalid JSON recipe")
		return nil, err
	}
	action := fmt.Sprintf("Recipe implemented: %s, %s",
		plural(res.Nodes, "node"), plural(res.Connections, "connection"))
	if len(res.Warnings) > 0 {
		action += fmt.Sprintf(" (%s)", plural(len(res.Warnings), "warning"))
	}
	s.commit(action)
	return res, nil
}

// SaveRecipe encodes the graph.
func (s *Session) SaveRecipe() ([]byte, error) {
	data, err := recipe.Encode(s.graph)
	if err != nil {
		return nil, err
	}
	s.commit("Graph saved")
	return data, nil
}

// ResetLayout unpins every node, user pins included, and restarts the
// layout at full energy.
func (s *Session) ResetLayout() {
	for _, n := range s.graph.Nodes() {
		if n.PersistentPin {
			_ = s.graph.SetPersistentPin(n.ID, false)
			continue
		}
		if n.Pinned() {
			_ = s.graph.UnpinNode(n.ID)
		}
	}
	s.flush()
	s.engine.Reheat(ReheatReset)
	s.commit("Layout reset")
}

// Resize records the view size in pixels and recenters the layout.
func (s *Session) Resize(width, height float64) {
	s.viewport.Resize(width, height)
	s.engine.Reheat(ReheatResize)
	s.commit("")
}

// ZoomIn zooms in around the center of the view.
func (s *Session) ZoomIn() {
	s.viewport.ZoomIn()
	s.commit("Zoom in")
}

// ZoomOut zooms out around the center of the view.
func (s *Session) ZoomOut() {
	s.viewport.ZoomOut()
	s.commit("Zoom out")
}

// ZoomReset restores the identity view.
func (s *Session) ZoomReset() {
	s.viewport.ZoomReset()
	s.commit("Zoom reset")
}

// FitGraph scales and centers the view on every node. padding is in screen
// pixels; zero means DefaultFitPadding.
func (s *Session) FitGraph(padding float64) {
	nodes := s.graph.Nodes()
	if len(nodes) == 0 {
		return
	}
	if padding <= 0 {
		padding = DefaultFitPadding
	}
	r := nodes[0].Bounds()
	for _, n := range nodes[1:] {
		r = r.Union(n.Bounds())
	}
	s.viewport.FitTo(r, padding)
	s.commit("Fit graph")
}

// FocusNode centers the view on a node.
func (s *Session) FocusNode(id string) error {
	n, ok := s.graph.Node(id)
	if !ok {
		return fmt.Errorf("%w: %s", graph.ErrUnknownNode, id)
	}
	s.viewport.FocusOn(n.Bounds().Center(), 0)
	s.commit("Focused " + n.NickName)
	return nil
}

// SetNickName renames a node; an empty name restores the default.
func (s *Session) SetNickName(id, name string) error {
	if err := s.graph.SetNickName(id, name); err != nil {
		return err
	}
	n, _ := s.graph.Node(id)
	s.commit("Renamed to " + n.NickName)
	return nil
}

// SetValue sets the value shown by a value display node.
func (s *Session) SetValue(id string, v float64) error {
	if err := s.graph.SetValue(id, v); err != nil {
		return err
	}
	s.commit(fmt.Sprintf("Value set to %g", v))
	return nil
}

// TogglePin flips a node's user pin and reports the new state.
func (s *Session) TogglePin(id string) (bool, error) {
	n, ok := s.graph.Node(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", graph.ErrUnknownNode, id)
	}
	on := !n.PersistentPin
	if err := s.graph.SetPersistentPin(id, on); err != nil {
		return false, err
	}
	if on {
		s.commit("Pinned " + n.NickName)
	} else {
		s.engine.Reheat(ReheatDragEnd)
		s.commit("Unpinned " + n.NickName)
	}
	return on, nil
}

// ToggleGrid shows or hides the background grid.
func (s *Session) ToggleGrid() bool {
	s.showGrid = !s.showGrid
	s.commit(toggled("Grid", s.showGrid))
	return s.showGrid
}

// ToggleWires shows or hides connection wires.
func (s *Session) ToggleWires() bool {
	s.hideWires = !s.hideWires
	s.commit(toggled("Wires", !s.hideWires))
	return !s.hideWires
}

// GridVisible reports whether the background grid is drawn.
func (s *Session) GridVisible() bool { return s.showGrid }

// WiresVisible reports whether wires are drawn.
func (s *Session) WiresVisible() bool { return !s.hideWires }

func toggled(what string, on bool) string {
	if on {
		return what + " shown"
	}
	return what + " hidden"
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// CreateNodeAtCenter places a component in the middle of the view.
func (s *Session) CreateNodeAtCenter(address string) (*graph.Node, error) {
	c := s.viewport.VisualCenterWorld()
	return s.CreateNode(address, c.X, c.Y)
}
