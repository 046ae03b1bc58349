// Package graph is the authoritative in-memory model of an editor session:
// nodes placed from catalog definitions, their typed anchors, and the
// connections between them.
//
// A Graph is not safe for concurrent use. The editor drives it from a single
// scheduler loop.
package graph

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/recera/nodegraph/pkg/catalog"
	"github.com/recera/nodegraph/pkg/geom"
)

// ChangeKind identifies what a Change notification describes.
type ChangeKind int

const (
	NodeAdded ChangeKind = iota
	NodeRemoved
	NodeMoved
	NodeUpdated
	ConnectionAdded
	ConnectionRemoved
	Cleared
)

func (k ChangeKind) String() string {
	switch k {
	case NodeAdded:
		return "node added"
	case NodeRemoved:
		return "node removed"
	case NodeMoved:
		return "node moved"
	case NodeUpdated:
		return "node updated"
	case ConnectionAdded:
		return "connection added"
	case ConnectionRemoved:
		return "connection removed"
	case Cleared:
		return "cleared"
	}
	return "unknown"
}

// Structural reports whether the change alters the node/edge set.
func (k ChangeKind) Structural() bool {
	switch k {
	case NodeAdded, NodeRemoved, ConnectionAdded, ConnectionRemoved, Cleared:
		return true
	}
	return false
}

// Change describes one mutation.
type Change struct {
	Kind         ChangeKind
	NodeID       string
	ConnectionID string
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.log = logger.Named("graph")
		}
	}
}

// WithIDGenerator replaces geom.NewID for node and connection ids.
func WithIDGenerator(gen func() string) Option {
	return func(g *Graph) {
		if gen != nil {
			g.newID = gen
		}
	}
}

// WithMetrics overrides the node geometry.
func WithMetrics(m Metrics) Option {
	return func(g *Graph) {
		g.metrics = m.WithDefaults()
	}
}

// Graph holds the active nodes and connections.
type Graph struct {
	catalog *catalog.Catalog
	metrics Metrics
	log     *zap.Logger
	newID   func() string

	nodes     map[string]*Node
	nodeOrder []string
	conns     map[string]*Connection
	connOrder []string

	subscribers map[int]func(Change)
	nextSubID   int
}

// New creates an empty graph backed by cat.
func New(cat *catalog.Catalog, opts ...Option) *Graph {
	g := &Graph{
		catalog:     cat,
		metrics:     DefaultMetrics(),
		log:         zap.NewNop(),
		newID:       geom.NewID,
		nodes:       make(map[string]*Node),
		conns:       make(map[string]*Connection),
		subscribers: make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Catalog returns the catalog nodes are created from.
func (g *Graph) Catalog() *catalog.Catalog {
	return g.catalog
}

// Metrics returns the geometry used to size nodes.
func (g *Graph) Metrics() Metrics {
	return g.metrics
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (g *Graph) Subscribe(fn func(Change)) func() {
	id := g.nextSubID
	g.nextSubID++
	g.subscribers[id] = fn
	return func() { delete(g.subscribers, id) }
}

func (g *Graph) notify(c Change) {
	for i := 0; i < g.nextSubID; i++ {
		if fn, ok := g.subscribers[i]; ok {
			fn(c)
		}
	}
}

// CreateNode places an instance of the component at address.
func (g *Graph) CreateNode(address string, x, y float64, pinned bool) (*Node, error) {
	def, ok := g.catalog.Lookup(address)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, address)
	}

	n := &Node{
		ID:       g.newID(),
		Def:      def,
		X:        x,
		Y:        y,
		NickName: def.NickName,
		Kind:     Plain,
	}
	if def.IsValueDisplay() {
		n.Kind = ValueDisplay
		n.Display = &ValueDisplayData{Value: def.Default()}
	}
	if pinned {
		n.Pin(x, y)
	}
	n.Inputs = buildAnchors(n.ID, def.Inputs, Input)
	n.Outputs = buildAnchors(n.ID, def.Outputs, Output)
	g.metrics.layout(n)

	g.nodes[n.ID] = n
	g.nodeOrder = append(g.nodeOrder, n.ID)
	g.log.Debug("node created", zap.String("id", n.ID), zap.String("address", address))
	g.notify(Change{Kind: NodeAdded, NodeID: n.ID})
	return n, nil
}

func buildAnchors(nodeID string, defs []catalog.AnchorDef, dir Direction) []*Anchor {
	anchors := make([]*Anchor, len(defs))
	for i, d := range defs {
		anchors[i] = &Anchor{
			NodeID:    nodeID,
			Address:   d.Address,
			Name:      d.Name,
			NickName:  d.NickName,
			TypeName:  d.TypeName,
			Direction: dir,
			Index:     i,
		}
	}
	return anchors
}

// RemoveNode deletes the node and every connection touching it.
// Removing an unknown id is a no-op.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for _, cid := range g.ConnectionsOf(id) {
		g.RemoveConnection(cid)
	}
	delete(g.nodes, id)
	g.nodeOrder = removeID(g.nodeOrder, id)
	g.log.Debug("node removed", zap.String("id", id))
	g.notify(Change{Kind: NodeRemoved, NodeID: id})
}

// Connect links an output anchor to an input anchor.
func (g *Graph) Connect(srcNode, srcAnchor, dstNode, dstAnchor string) (*Connection, error) {
	src, err := g.anchor(srcNode, srcAnchor)
	if err != nil {
		return nil, err
	}
	dst, err := g.anchor(dstNode, dstAnchor)
	if err != nil {
		return nil, err
	}
	if err := compatible(src, dst); err != nil {
		return nil, err
	}

	c := &Connection{
		ID:           g.newID(),
		SourceNodeID: srcNode,
		SourceAnchor: srcAnchor,
		TargetNodeID: dstNode,
		TargetAnchor: dstAnchor,
	}
	src.addConnection(c.ID)
	dst.addConnection(c.ID)
	g.conns[c.ID] = c
	g.connOrder = append(g.connOrder, c.ID)
	g.log.Debug("connection created",
		zap.String("id", c.ID),
		zap.String("from", src.GlobalAddress()),
		zap.String("to", dst.GlobalAddress()))
	g.notify(Change{Kind: ConnectionAdded, ConnectionID: c.ID})
	return c, nil
}

// CanConnect reports whether Connect would succeed, without mutating anything.
func (g *Graph) CanConnect(srcNode, srcAnchor, dstNode, dstAnchor string) error {
	src, err := g.anchor(srcNode, srcAnchor)
	if err != nil {
		return err
	}
	dst, err := g.anchor(dstNode, dstAnchor)
	if err != nil {
		return err
	}
	return compatible(src, dst)
}

func compatible(src, dst *Anchor) error {
	if src.Direction != Output || dst.Direction != Input {
		return fmt.Errorf("%w: %s anchor cannot feed %s anchor",
			ErrIncompatibleAnchors, src.Direction, dst.Direction)
	}
	if dst.HasConnections() {
		return fmt.Errorf("%w: input %s is already connected",
			ErrIncompatibleAnchors, dst.GlobalAddress())
	}
	if src.TypeName == catalog.WildcardType || dst.TypeName == catalog.WildcardType {
		return nil
	}
	if src.TypeName != dst.TypeName {
		return fmt.Errorf("%w: type %q does not match %q",
			ErrIncompatibleAnchors, src.TypeName, dst.TypeName)
	}
	return nil
}

func (g *Graph) anchor(nodeID, address string) (*Anchor, error) {
	n, ok := g.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}
	a, ok := n.Anchor(address)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownAnchor, nodeID, address)
	}
	return a, nil
}

// RemoveConnection detaches and deletes a connection. Unknown ids are ignored.
func (g *Graph) RemoveConnection(id string) {
	c, ok := g.conns[id]
	if !ok {
		return
	}
	if a, err := g.anchor(c.SourceNodeID, c.SourceAnchor); err == nil {
		a.removeConnection(id)
	}
	if a, err := g.anchor(c.TargetNodeID, c.TargetAnchor); err == nil {
		a.removeConnection(id)
	}
	delete(g.conns, id)
	g.connOrder = removeID(g.connOrder, id)
	g.notify(Change{Kind: ConnectionRemoved, ConnectionID: id})
}

// Clear wipes every node and connection.
func (g *Graph) Clear() {
	g.nodes = make(map[string]*Node)
	g.nodeOrder = nil
	g.conns = make(map[string]*Connection)
	g.connOrder = nil
	g.notify(Change{Kind: Cleared})
}

// MoveNode sets the node's position. Pinned coordinates are left alone.
func (g *Graph) MoveNode(id string, x, y float64) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	n.X, n.Y = x, y
	g.notify(Change{Kind: NodeMoved, NodeID: id})
	return nil
}

// PinNode moves the node to (x, y) and fixes it there.
func (g *Graph) PinNode(id string, x, y float64) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	n.X, n.Y = x, y
	n.Pin(x, y)
	g.notify(Change{Kind: NodeMoved, NodeID: id})
	return nil
}

// UnpinNode releases the node's fixed position.
func (g *Graph) UnpinNode(id string) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	n.Unpin()
	g.notify(Change{Kind: NodeUpdated, NodeID: id})
	return nil
}

// SetPersistentPin marks the node as pinned by the user. Turning it on pins
// the node where it is; turning it off unpins it.
func (g *Graph) SetPersistentPin(id string, on bool) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	n.PersistentPin = on
	if on {
		n.Pin(n.X, n.Y)
	} else {
		n.Unpin()
	}
	g.notify(Change{Kind: NodeUpdated, NodeID: id})
	return nil
}

// SetNickName overrides the node's display nickname. An empty name restores
// the definition's nickname.
func (g *Graph) SetNickName(id, name string) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if name == "" {
		name = n.Def.NickName
	}
	n.NickName = name
	g.notify(Change{Kind: NodeUpdated, NodeID: id})
	return nil
}

// SetValue updates the scalar shown by a ValueDisplay node.
func (g *Graph) SetValue(id string, v float64) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if n.Kind != ValueDisplay {
		return fmt.Errorf("%w: %s", ErrNotValueDisplay, id)
	}
	n.Display.Value = v
	g.notify(Change{Kind: NodeUpdated, NodeID: id})
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Connection returns the connection with the given id.
func (g *Graph) Connection(id string) (*Connection, bool) {
	c, ok := g.conns[id]
	return c, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		out[i] = g.nodes[id]
	}
	return out
}

// Connections returns all connections in insertion order.
func (g *Graph) Connections() []*Connection {
	out := make([]*Connection, len(g.connOrder))
	for i, id := range g.connOrder {
		out[i] = g.conns[id]
	}
	return out
}

// ConnectionsOf returns a snapshot of the ids of connections touching nodeID.
func (g *Graph) ConnectionsOf(nodeID string) []string {
	var ids []string
	for _, id := range g.connOrder {
		if g.conns[id].Touches(nodeID) {
			ids = append(ids, id)
		}
	}
	return ids
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// ConnectionCount returns the number of connections.
func (g *Graph) ConnectionCount() int { return len(g.conns) }

// AnchorCenter returns the world-space center of an anchor.
func (g *Graph) AnchorCenter(nodeID, address string) (geom.Point, error) {
	n, ok := g.nodes[nodeID]
	if !ok {
		return geom.Point{}, fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}
	a, ok := n.Anchor(address)
	if !ok {
		return geom.Point{}, fmt.Errorf("%w: %s.%s", ErrUnknownAnchor, nodeID, address)
	}
	return n.AnchorCenter(a), nil
}

// Endpoints returns the world-space centers of a connection's anchors.
func (g *Graph) Endpoints(c *Connection) (from, to geom.Point, err error) {
	if from, err = g.AnchorCenter(c.SourceNodeID, c.SourceAnchor); err != nil {
		return
	}
	to, err = g.AnchorCenter(c.TargetNodeID, c.TargetAnchor)
	return
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
