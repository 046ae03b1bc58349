package editor

import (
	"fmt"
	"strings"

	"github.com/recera/nodegraph/pkg/interaction"
)

// PointerDown forwards a press to the gesture router.
func (s *Session) PointerDown(ev interaction.PointerEvent) Status {
	s.track(ev)
	s.router.PointerDown(ev)
	return s.commit("")
}

// PointerMove forwards pointer motion.
func (s *Session) PointerMove(ev interaction.PointerEvent) Status {
	s.track(ev)
	s.router.PointerMove(ev)
	return s.commit("")
}

// PointerUp forwards a release.
func (s *Session) PointerUp(ev interaction.PointerEvent) Status {
	s.track(ev)
	s.router.PointerUp(ev)
	return s.commit("")
}

// PointerCancel forwards a cancelled or lost pointer.
func (s *Session) PointerCancel(ev interaction.PointerEvent) Status {
	s.router.PointerCancel(ev)
	return s.commit("")
}

// Wheel zooms around the pointer and reports whether the event was used.
func (s *Session) Wheel(ev interaction.WheelEvent) bool {
	if !s.router.Wheel(ev) {
		return false
	}
	s.commit(fmt.Sprintf("Zoom %.0f%%", s.viewport.State().Scale*100))
	return true
}

// KeyDown handles editor shortcuts and reports whether the key was used.
// Shortcuts are ignored while the user is typing in a text field.
func (s *Session) KeyDown(ev interaction.KeyEvent) bool {
	if ev.Typing {
		return false
	}
	switch key := ev.Key; {
	case key == "Delete" || key == "Backspace":
		return s.DeleteSelected() > 0
	case key == "Escape":
		if s.router.Mode() == interaction.ModeIdle && s.sel.Len() == 0 {
			return false
		}
		if s.router.Mode() != interaction.ModeIdle {
			s.router.Cancel()
			s.commit("Cancelled")
			return true
		}
		s.ClearSelection()
		return true
	case (ev.Ctrl || ev.Meta) && strings.EqualFold(key, "a"):
		s.SelectAll()
		return true
	case key == "+" || key == "=":
		s.ZoomIn()
		return true
	case key == "-":
		s.ZoomOut()
		return true
	case key == "0":
		s.ZoomReset()
		return true
	case key == "f":
		s.FitGraph(0)
		return true
	}
	return false
}

func (s *Session) track(ev interaction.PointerEvent) {
	s.pointer = s.viewport.ScreenToWorld(ev.Pos())
}
