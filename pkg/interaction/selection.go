package interaction

import (
	"slices"

	"github.com/recera/nodegraph/pkg/reactive"
)

// Selection is the ordered set of selected node ids. Every change is
// published to subscribers, which the editor uses to re-highlight wires.
type Selection struct {
	ids *reactive.State[[]string]
}

// NewSelection creates an empty selection.
func NewSelection(scope *reactive.Scope) *Selection {
	return &Selection{ids: reactive.NewState[[]string](nil, scope)}
}

// Subscribe calls fn with the new ids after every change.
func (s *Selection) Subscribe(fn func([]string)) func() {
	return s.ids.Subscribe(fn)
}

// IDs returns a copy of the selected ids in selection order.
func (s *Selection) IDs() []string {
	return slices.Clone(s.ids.Get())
}

// Len returns the number of selected nodes.
func (s *Selection) Len() int {
	return len(s.ids.Get())
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	return slices.Contains(s.ids.Get(), id)
}

func (s *Selection) set(ids []string) {
	if slices.Equal(ids, s.ids.Get()) {
		return
	}
	s.ids.Set(ids)
}

// Replace selects exactly ids.
func (s *Selection) Replace(ids ...string) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	s.set(out)
}

// Add appends ids that are not yet selected.
func (s *Selection) Add(ids ...string) {
	out := s.IDs()
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	s.set(out)
}

// Remove drops ids from the selection.
func (s *Selection) Remove(ids ...string) {
	out := slices.DeleteFunc(s.IDs(), func(id string) bool {
		return slices.Contains(ids, id)
	})
	s.set(out)
}

// Toggle flips the membership of id.
func (s *Selection) Toggle(id string) {
	if s.Contains(id) {
		s.Remove(id)
		return
	}
	s.Add(id)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.set(nil)
}

// SelectAll selects ids in the given order.
func (s *Selection) SelectAll(ids []string) {
	s.Replace(ids...)
}

// Click applies the node click rule: shift toggles membership, a plain click
// on an unselected node selects only it, and a plain click on a selected
// node leaves the selection alone.
func (s *Selection) Click(id string, shift bool) {
	switch {
	case shift:
		s.Toggle(id)
	case !s.Contains(id):
		s.Replace(id)
	}
}

// ClickEmpty applies the empty-canvas click rule.
func (s *Selection) ClickEmpty(shift bool) {
	if !shift {
		s.Clear()
	}
}
