// Package tui is the terminal recipe inspector behind `nodegraph inspect`.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/nodegraph/pkg/graph"
)

// Pane is one of the inspector's lists.
type Pane int

const (
	PaneNodes Pane = iota
	PaneConnections
	PaneWarnings
	paneCount
)

func (p Pane) String() string {
	switch p {
	case PaneConnections:
		return "Connections"
	case PaneWarnings:
		return "Warnings"
	}
	return "Nodes"
}

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Tab    key.Binding
	Filter key.Binding
	Back   key.Binding
	Enter  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next list"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear filter"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply filter"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// Model is the inspector state.
type Model struct {
	width  int
	height int

	title    string
	graph    *graph.Graph
	warnings []string

	// filtered views of the graph
	nodes []*graph.Node
	conns []*graph.Connection

	pane    Pane
	cursors [paneCount]int

	filter    textinput.Model
	filtering bool

	showHelp bool
	quitting bool
}

// NewModel creates an inspector over g. warnings are shown in their own
// list, usually the ones produced while decoding the recipe.
func NewModel(title string, g *graph.Graph, warnings []string) Model {
	fi := textinput.New()
	fi.Placeholder = "address, name or id"
	fi.Prompt = "/ "
	fi.CharLimit = 64
	fi.Width = 30

	m := Model{
		title:    title,
		graph:    g,
		warnings: warnings,
		filter:   fi,
	}
	m.applyFilter()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}

		switch {
		case key.Matches(msg, DefaultKeyMap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, DefaultKeyMap.Help):
			m.showHelp = !m.showHelp
		case key.Matches(msg, DefaultKeyMap.Tab):
			m.pane = (m.pane + 1) % paneCount
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursors[m.pane] > 0 {
				m.cursors[m.pane]--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursors[m.pane] < m.paneLen(m.pane)-1 {
				m.cursors[m.pane]++
			}
		case key.Matches(msg, DefaultKeyMap.Filter):
			m.filtering = true
			return m, m.filter.Focus()
		case key.Matches(msg, DefaultKeyMap.Back):
			m.filter.SetValue("")
			m.applyFilter()
		}
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Enter):
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Back):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// applyFilter rebuilds the node and connection lists from the filter text.
// A connection is kept when either endpoint is kept.
func (m *Model) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.nodes = nil
	kept := make(map[string]bool)
	for _, n := range m.graph.Nodes() {
		if q == "" || matches(n, q) {
			m.nodes = append(m.nodes, n)
			kept[n.ID] = true
		}
	}
	m.conns = nil
	for _, c := range m.graph.Connections() {
		if kept[c.SourceNodeID] || kept[c.TargetNodeID] {
			m.conns = append(m.conns, c)
		}
	}
	for p := PaneNodes; p < paneCount; p++ {
		if n := m.paneLen(p); m.cursors[p] >= n {
			m.cursors[p] = max(n-1, 0)
		}
	}
}

func matches(n *graph.Node, q string) bool {
	for _, s := range []string{n.ID, n.NickName, n.Address(), n.Def.Name} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

func (m Model) paneLen(p Pane) int {
	switch p {
	case PaneConnections:
		return len(m.conns)
	case PaneWarnings:
		return len(m.warnings)
	}
	return len(m.nodes)
}

// Selected returns the node under the cursor in the node list.
func (m Model) Selected() (*graph.Node, bool) {
	i := m.cursors[PaneNodes]
	if i >= len(m.nodes) {
		return nil, false
	}
	return m.nodes[i], true
}

// Pane returns the focused list.
func (m Model) Pane() Pane {
	return m.pane
}

// Run starts the inspector on the terminal.
func Run(title string, g *graph.Graph, warnings []string) error {
	_, err := tea.NewProgram(NewModel(title, g, warnings), tea.WithAltScreen()).Run()
	return err
}
