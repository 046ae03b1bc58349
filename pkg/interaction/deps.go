package interaction

import (
	"go.uber.org/zap"

	"github.com/recera/nodegraph/pkg/graph"
	"github.com/recera/nodegraph/pkg/viewport"
)

// Layout is the slice of the layout engine the drag machine talks to.
type Layout interface {
	// Physical reports whether a simulation is moving nodes.
	Physical() bool
	// Hold pins a node at (x, y) for the duration of a drag.
	Hold(id string, x, y float64)
	// Release hands a node back to the engine.
	Release(id string)
	// DragEnded is called once when a drag that moved nodes finishes.
	DragEnded()
}

// Deps are the collaborators shared by the state machines of one session.
type Deps struct {
	Graph    *graph.Graph
	Viewport *viewport.Viewport
	Layout   Layout
	Logger   *zap.Logger

	// Report receives a short description of every completed action.
	Report func(action string)
}

func (d *Deps) report(action string) {
	if d.Report != nil && action != "" {
		d.Report(action)
	}
}

func (d *Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// staticLayout is used when no engine is wired: nodes stay where dropped.
type staticLayout struct{}

func (staticLayout) Physical() bool { return false }

func (staticLayout) Hold(string, float64, float64) {}

func (staticLayout) Release(string) {}

func (staticLayout) DragEnded() {}

func (d *Deps) layout() Layout {
	if d.Layout == nil {
		return staticLayout{}
	}
	return d.Layout
}
