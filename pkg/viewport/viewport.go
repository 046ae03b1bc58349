// Package viewport maps between screen pixels and world coordinates and
// implements pan and zoom.
package viewport

import (
	"math"

	"github.com/recera/nodegraph/pkg/geom"
	"github.com/recera/nodegraph/pkg/reactive"
)

// State is the viewport transform plus the pixel size of the view.
type State struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Scale   float64 `json:"scale"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// ScreenToWorld converts a screen point to world space.
func (s State) ScreenToWorld(p geom.Point) geom.Point {
	return geom.Point{X: (p.X - s.OffsetX) / s.Scale, Y: (p.Y - s.OffsetY) / s.Scale}
}

// WorldToScreen converts a world point to screen space.
func (s State) WorldToScreen(p geom.Point) geom.Point {
	return geom.Point{X: p.X*s.Scale + s.OffsetX, Y: p.Y*s.Scale + s.OffsetY}
}

// Options configures zoom limits and steps.
type Options struct {
	MinScale   float64 // default 0.1
	MaxScale   float64 // default 5.0
	WheelStep  float64 // default 0.1, scale changes by 1±step per wheel event
	ZoomFactor float64 // default 1.2, used by ZoomIn/ZoomOut

	Width  float64 // default 800
	Height float64 // default 600
}

func (o *Options) withDefaults() Options {
	d := Options{
		MinScale:   0.1,
		MaxScale:   5.0,
		WheelStep:  0.1,
		ZoomFactor: 1.2,
		Width:      800,
		Height:     600,
	}
	if o == nil {
		return d
	}
	if o.MinScale > 0 {
		d.MinScale = o.MinScale
	}
	if o.MaxScale > 0 {
		d.MaxScale = o.MaxScale
	}
	if o.WheelStep > 0 && o.WheelStep < 1 {
		d.WheelStep = o.WheelStep
	}
	if o.ZoomFactor > 1 {
		d.ZoomFactor = o.ZoomFactor
	}
	if o.Width > 0 {
		d.Width = o.Width
	}
	if o.Height > 0 {
		d.Height = o.Height
	}
	return d
}

// Viewport owns the transform state. Every change is published through the
// underlying reactive cell.
type Viewport struct {
	opts  Options
	state *reactive.State[State]
}

// New creates a viewport at scale 1 with no offset.
func New(opts *Options, scope *reactive.Scope) *Viewport {
	o := opts.withDefaults()
	return &Viewport{
		opts:  o,
		state: reactive.NewState(State{Scale: 1, Width: o.Width, Height: o.Height}, scope),
	}
}

// State returns the current transform.
func (v *Viewport) State() State {
	return v.state.Get()
}

// Subscribe calls fn after every change.
func (v *Viewport) Subscribe(fn func(State)) func() {
	return v.state.Subscribe(fn)
}

// Limits returns the scale bounds.
func (v *Viewport) Limits() (min, max float64) {
	return v.opts.MinScale, v.opts.MaxScale
}

// ScreenToWorld converts a screen point to world space.
func (v *Viewport) ScreenToWorld(p geom.Point) geom.Point {
	return v.State().ScreenToWorld(p)
}

// WorldToScreen converts a world point to screen space.
func (v *Viewport) WorldToScreen(p geom.Point) geom.Point {
	return v.State().WorldToScreen(p)
}

// ScreenRectToWorld converts a screen rectangle to world space.
func (v *Viewport) ScreenRectToWorld(r geom.Rect) geom.Rect {
	s := v.State()
	min := s.ScreenToWorld(geom.Pt(r.X, r.Y))
	max := s.ScreenToWorld(geom.Pt(r.Right(), r.Bottom()))
	return geom.RectFromPoints(min, max)
}

// PanBy translates the offset by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	v.state.Update(func(s State) State {
		s.OffsetX += dx
		s.OffsetY += dy
		return s
	})
}

// ZoomAt multiplies the scale by factor, clamped to the limits, keeping the
// world point under screen point p fixed.
func (v *Viewport) ZoomAt(p geom.Point, factor float64) {
	v.state.Update(func(s State) State {
		world := s.ScreenToWorld(p)
		s.Scale = geom.Clamp(s.Scale*factor, v.opts.MinScale, v.opts.MaxScale)
		s.OffsetX = p.X - world.X*s.Scale
		s.OffsetY = p.Y - world.Y*s.Scale
		return s
	})
}

// Wheel applies one wheel event at screen point p. Negative deltaY zooms in.
// It reports whether the event was used.
func (v *Viewport) Wheel(p geom.Point, deltaY float64) bool {
	if deltaY == 0 || math.IsNaN(deltaY) {
		return false
	}
	factor := 1 + v.opts.WheelStep
	if deltaY > 0 {
		factor = 1 - v.opts.WheelStep
	}
	v.ZoomAt(p, factor)
	return true
}

// ZoomIn zooms in around the visual center.
func (v *Viewport) ZoomIn() {
	v.ZoomAt(v.visualCenter(), v.opts.ZoomFactor)
}

// ZoomOut zooms out around the visual center.
func (v *Viewport) ZoomOut() {
	v.ZoomAt(v.visualCenter(), 1/v.opts.ZoomFactor)
}

// ZoomReset restores scale 1 and zero offset.
func (v *Viewport) ZoomReset() {
	v.state.Update(func(s State) State {
		s.Scale, s.OffsetX, s.OffsetY = 1, 0, 0
		return s
	})
}

// Resize records the pixel size of the view.
func (v *Viewport) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	v.state.Update(func(s State) State {
		s.Width, s.Height = width, height
		return s
	})
}

func (v *Viewport) visualCenter() geom.Point {
	s := v.State()
	return geom.Pt(s.Width/2, s.Height/2)
}

// VisibleWorld returns the world rectangle currently on screen.
func (v *Viewport) VisibleWorld() geom.Rect {
	s := v.State()
	return geom.RectFromPoints(
		s.ScreenToWorld(geom.Pt(0, 0)),
		s.ScreenToWorld(geom.Pt(s.Width, s.Height)),
	)
}

// VisualCenterWorld returns the world point at the center of the view.
func (v *Viewport) VisualCenterWorld() geom.Point {
	return v.ScreenToWorld(v.visualCenter())
}

// FitTo scales and centers the view so r fits inside it with padding pixels
// on every side. Empty rectangles only recenter.
func (v *Viewport) FitTo(r geom.Rect, padding float64) {
	v.state.Update(func(s State) State {
		scale := s.Scale
		if r.Width > 0 && r.Height > 0 {
			sx := (s.Width - 2*padding) / r.Width
			sy := (s.Height - 2*padding) / r.Height
			scale = math.Min(sx, sy)
			if scale <= 0 {
				scale = 1
			}
		}
		s.Scale = geom.Clamp(scale, v.opts.MinScale, v.opts.MaxScale)
		c := r.Center()
		s.OffsetX = s.Width/2 - c.X*s.Scale
		s.OffsetY = s.Height/2 - c.Y*s.Scale
		return s
	})
}

// FocusOn centers the view on a world point. A zero scale keeps the current one.
func (v *Viewport) FocusOn(p geom.Point, scale float64) {
	v.state.Update(func(s State) State {
		if scale > 0 {
			s.Scale = geom.Clamp(scale, v.opts.MinScale, v.opts.MaxScale)
		}
		s.OffsetX = s.Width/2 - p.X*s.Scale
		s.OffsetY = s.Height/2 - p.Y*s.Scale
		return s
	})
}
