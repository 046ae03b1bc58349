package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/nodegraph/pkg/graph"
)

var (
	primaryColor = lipgloss.Color("#3b82f6")
	warningColor = lipgloss.Color("#f59e0b")
	mutedColor   = lipgloss.Color("#94a3b8")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	tabStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
)

// View renders the inspector.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Nodes: %d | Connections: %d",
		m.graph.NodeCount(), m.graph.ConnectionCount())))
	b.WriteString("\n\n")

	tabs := make([]string, 0, paneCount)
	for p := PaneNodes; p < paneCount; p++ {
		label := fmt.Sprintf("%s (%d)", p, m.paneLen(p))
		if p == m.pane {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	list := m.renderList()
	if m.pane == PaneNodes {
		if n, ok := m.Selected(); ok {
			list = lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", boxStyle.Render(renderNode(n)))
		}
	}
	b.WriteString(list)
	b.WriteString("\n\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderList() string {
	var lines []string
	switch m.pane {
	case PaneNodes:
		for _, n := range m.nodes {
			lines = append(lines, fmt.Sprintf("%-10s %-12s %s", n.ID, n.NickName, n.Address()))
		}
	case PaneConnections:
		for _, c := range m.conns {
			lines = append(lines, m.describeConnection(c))
		}
	case PaneWarnings:
		for _, w := range m.warnings {
			lines = append(lines, warningStyle.Render(w))
		}
	}
	if len(lines) == 0 {
		return mutedStyle.Render("(empty)")
	}

	cursor := m.cursors[m.pane]
	for i, line := range lines {
		if i == cursor {
			lines[i] = selectedStyle.Render("> " + line)
		} else {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) describeConnection(c *graph.Connection) string {
	name := func(id string) string {
		if n, ok := m.graph.Node(id); ok {
			return n.NickName
		}
		return id
	}
	return fmt.Sprintf("%s.%s -> %s.%s",
		name(c.SourceNodeID), c.SourceAnchor, name(c.TargetNodeID), c.TargetAnchor)
}

func renderNode(n *graph.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", selectedStyle.Render(n.NickName))
	fmt.Fprintf(&b, "id:       %s\n", n.ID)
	fmt.Fprintf(&b, "address:  %s\n", n.Address())
	fmt.Fprintf(&b, "category: %s / %s\n", n.Def.Category, n.Def.SubCategory)
	fmt.Fprintf(&b, "position: %.0f, %.0f", n.X, n.Y)
	if n.Pinned() {
		b.WriteString(" (pinned)")
	}
	if v, ok := n.Value(); ok {
		fmt.Fprintf(&b, "\nvalue:    %g", v)
	}
	for _, a := range n.Inputs {
		fmt.Fprintf(&b, "\n  in  %s: %s", a.NickName, a.TypeName)
	}
	for _, a := range n.Outputs {
		fmt.Fprintf(&b, "\n  out %s: %s", a.NickName, a.TypeName)
	}
	return b.String()
}

func (m Model) renderHelp() string {
	km := DefaultKeyMap
	bindings := []struct{ keys, desc string }{
		{km.Up.Help().Key, km.Up.Help().Desc},
		{km.Down.Help().Key, km.Down.Help().Desc},
		{km.Tab.Help().Key, km.Tab.Help().Desc},
		{km.Filter.Help().Key, km.Filter.Help().Desc},
		{km.Quit.Help().Key, km.Quit.Help().Desc},
	}
	if m.showHelp {
		bindings = append(bindings,
			struct{ keys, desc string }{km.Back.Help().Key, km.Back.Help().Desc},
			struct{ keys, desc string }{km.Enter.Help().Key, km.Enter.Help().Desc},
			struct{ keys, desc string }{km.Help.Help().Key, "hide help"},
		)
	}
	parts := make([]string, len(bindings))
	for i, kb := range bindings {
		parts[i] = kb.keys + " " + kb.desc
	}
	return mutedStyle.Render(strings.Join(parts, " • "))
}
