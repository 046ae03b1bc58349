// Package editor ties the graph model, viewport, selection, gesture state
// machines and layout engine of one editing session together.
//
// A Session is not safe for concurrent use. Every call is expected to come
// from a single goroutine, usually a scheduler.Loop.
package editor

import (
	"go.uber.org/zap"

	"github.com/recera/nodegraph/pkg/catalog"
	"github.com/recera/nodegraph/pkg/geom"
	"github.com/recera/nodegraph/pkg/graph"
	"github.com/recera/nodegraph/pkg/interaction"
	"github.com/recera/nodegraph/pkg/layout"
	"github.com/recera/nodegraph/pkg/reactive"
	"github.com/recera/nodegraph/pkg/render"
	"github.com/recera/nodegraph/pkg/viewport"
)

// Reheat energies.
const (
	ReheatStructural = 0.5
	ReheatResize     = 0.3
	ReheatDragEnd    = 0.3
	ReheatReset      = 1.0
)

// DefaultFitPadding is the screen padding used by FitGraph.
const DefaultFitPadding = 40.0

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithLayout selects the layout engine by name (layout.KindForce or
// layout.KindGrid). Unknown names fall back to the grid.
func WithLayout(kind string) Option {
	return func(s *Session) { s.layoutKind = kind }
}

// WithLayoutOptions tunes the layout engine.
func WithLayoutOptions(o *layout.Options) Option {
	return func(s *Session) { s.layoutOpts = o }
}

// WithViewport sets zoom limits and the initial view size.
func WithViewport(o *viewport.Options) Option {
	return func(s *Session) { s.viewportOpts = o }
}

// WithGraphOptions forwards options to graph.New.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(s *Session) { s.graphOpts = append(s.graphOpts, opts...) }
}

// WithStatusHandler registers a callback run after every operation.
func WithStatusHandler(fn func(Status)) Option {
	return func(s *Session) { s.onStatus = fn }
}

// Session is one editor: a graph plus everything needed to edit it.
type Session struct {
	log *zap.Logger

	layoutKind   string
	layoutOpts   *layout.Options
	viewportOpts *viewport.Options
	graphOpts    []graph.Option
	onStatus     func(Status)

	scope    *reactive.Scope
	graph    *graph.Graph
	viewport *viewport.Viewport
	sel      *interaction.Selection
	router   *interaction.Router
	engine   layout.Engine

	showGrid  bool
	hideWires bool

	// applying is set while layout positions are copied into the graph.
	applying bool
	// resync is set when the node or edge set changed since the last Sync.
	resync   bool
	reported string
	pointer  geom.Point
	status   Status
	unsubs   []func()
}

// New creates an empty session over cat.
func New(cat *catalog.Catalog, opts ...Option) *Session {
	s := &Session{
		log:        zap.NewNop(),
		layoutKind: layout.KindForce,
		showGrid:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("editor")

	s.scope = reactive.NewScope()
	s.graph = graph.New(cat, append([]graph.Option{graph.WithLogger(s.log)}, s.graphOpts...)...)
	s.viewport = viewport.New(s.viewportOpts, s.scope)
	s.sel = interaction.NewSelection(s.scope)

	engine, err := layout.New(s.layoutKind, s.layoutOpts)
	if err != nil {
		s.log.Warn("falling back to grid layout", zap.Error(err))
		engine = layout.NewGrid(s.layoutOpts)
	}
	s.engine = engine
	s.engine.OnTick(s.applyBodies)
	s.engine.SetBounds(s.viewport.VisibleWorld())

	s.router = interaction.NewRouter(&interaction.Deps{
		Graph:    s.graph,
		Viewport: s.viewport,
		Layout:   layoutAdapter{s},
		Logger:   s.log,
		Report:   func(action string) { s.reported = action },
	}, s.sel)

	s.unsubs = append(s.unsubs,
		s.graph.Subscribe(s.onGraphChange),
		s.viewport.Subscribe(func(viewport.State) {
			s.engine.SetBounds(s.viewport.VisibleWorld())
		}),
	)
	s.status = s.snapshot("Initialized.")
	return s
}

// Close stops the layout and drops subscriptions.
func (s *Session) Close() {
	s.engine.Stop()
	for _, fn := range s.unsubs {
		fn()
	}
	s.unsubs = nil
}

// Graph returns the session's graph.
func (s *Session) Graph() *graph.Graph { return s.graph }

// Viewport returns the session's viewport.
func (s *Session) Viewport() *viewport.Viewport { return s.viewport }

// Selection returns the session's selection.
func (s *Session) Selection() *interaction.Selection { return s.sel }

// Router returns the gesture router.
func (s *Session) Router() *interaction.Router { return s.router }

// Engine returns the active layout engine.
func (s *Session) Engine() layout.Engine { return s.engine }

func (s *Session) onGraphChange(c graph.Change) {
	if s.applying {
		return
	}
	switch c.Kind {
	case graph.NodeRemoved:
		s.sel.Remove(c.NodeID)
		s.resync = true
	case graph.Cleared:
		s.router.Cancel()
		s.sel.Clear()
		s.resync = true
	case graph.NodeMoved, graph.NodeUpdated:
		n, ok := s.graph.Node(c.NodeID)
		if !ok {
			return
		}
		if n.Pinned() {
			s.engine.Pin(n.ID, *n.FX, *n.FY)
		} else if c.Kind == graph.NodeUpdated {
			s.engine.Unpin(n.ID)
		}
	default:
		if c.Kind.Structural() {
			s.resync = true
		}
	}
}

// flush feeds pending structural changes to the layout engine.
func (s *Session) flush() {
	if !s.resync {
		return
	}
	s.resync = false

	nodes := s.graph.Nodes()
	bodies := make([]layout.Body, len(nodes))
	for i, n := range nodes {
		bodies[i] = layout.Body{
			ID:     n.ID,
			X:      n.X,
			Y:      n.Y,
			Width:  n.Width,
			Height: n.Height,
			FX:     n.FX,
			FY:     n.FY,
		}
	}
	conns := s.graph.Connections()
	edges := make([]layout.Edge, len(conns))
	for i, c := range conns {
		edges[i] = layout.Edge{Source: c.SourceNodeID, Target: c.TargetNodeID}
	}
	s.engine.Sync(bodies, edges)
	s.router.Drag.Rehold()
	s.engine.Reheat(ReheatStructural)
	s.log.Debug("layout synced", zap.Int("nodes", len(bodies)), zap.Int("edges", len(edges)))
}

// applyBodies copies simulated positions into unpinned nodes.
func (s *Session) applyBodies(bodies []layout.Body) {
	s.applying = true
	defer func() { s.applying = false }()
	for _, b := range bodies {
		n, ok := s.graph.Node(b.ID)
		if !ok || n.Pinned() {
			continue
		}
		_ = s.graph.MoveNode(b.ID, b.X, b.Y)
	}
}

// commit runs the re-layout pass and publishes the status.
func (s *Session) commit(action string) Status {
	s.flush()
	if action == "" {
		action = s.reported
	}
	s.reported = ""
	if action == "" {
		action = s.status.Action
	}
	s.status = s.snapshot(action)
	if s.onStatus != nil {
		s.onStatus(s.status)
	}
	return s.status
}

// Tick advances the layout by one frame and reports whether any node moved.
func (s *Session) Tick() bool {
	s.flush()
	return s.engine.Step()
}

// Scene rebuilds the presentation snapshot.
func (s *Session) Scene() render.Scene {
	ov := render.Overlay{
		Raised:    s.router.Drag.Raised(),
		ShowGrid:  s.showGrid,
		HideWires: s.hideWires,
	}
	if c, ok := s.router.Wire.Draft(); ok {
		ov.Draft = &c
	}
	if r, ok := s.router.Box.Rect(); ok {
		world := s.viewport.ScreenRectToWorld(r)
		ov.Box = &world
	}
	return render.Build(s.graph, s.viewport.State(), s.sel, ov)
}

// layoutAdapter exposes the engine to the drag machine.
type layoutAdapter struct{ s *Session }

func (a layoutAdapter) Physical() bool { return a.s.engine.Physical() }

func (a layoutAdapter) Hold(id string, x, y float64) {
	a.s.engine.Pin(id, x, y)
}

func (a layoutAdapter) Release(id string) {
	a.s.engine.Unpin(id)
}

func (a layoutAdapter) DragEnded() {
	a.s.engine.Reheat(ReheatDragEnd)
}
