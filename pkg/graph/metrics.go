package graph

import "math"

// Metrics are the geometric constants used to size nodes and place anchors.
type Metrics struct {
	NodeWidth     float64 `json:"nodeWidth" yaml:"nodeWidth"`
	NodeMinHeight float64 `json:"nodeMinHeight" yaml:"nodeMinHeight"`
	HeaderHeight  float64 `json:"headerHeight" yaml:"headerHeight"`
	AnchorSize    float64 `json:"anchorSize" yaml:"anchorSize"`
	AnchorGap     float64 `json:"anchorGap" yaml:"anchorGap"`
	EdgePadding   float64 `json:"edgePadding" yaml:"edgePadding"`

	DisplayWidth      float64 `json:"displayWidth" yaml:"displayWidth"`
	DisplayHeight     float64 `json:"displayHeight" yaml:"displayHeight"`
	DisplayAnchorSize float64 `json:"displayAnchorSize" yaml:"displayAnchorSize"`
}

// DefaultMetrics returns the stock node geometry.
func DefaultMetrics() Metrics {
	return Metrics{
		NodeWidth:         200,
		NodeMinHeight:     100,
		HeaderHeight:      36,
		AnchorSize:        14,
		AnchorGap:         10,
		EdgePadding:       20,
		DisplayWidth:      220,
		DisplayHeight:     28,
		DisplayAnchorSize: 12,
	}
}

// WithDefaults fills zero fields from DefaultMetrics.
func (m Metrics) WithDefaults() Metrics {
	d := DefaultMetrics()
	if m.NodeWidth == 0 {
		m.NodeWidth = d.NodeWidth
	}
	if m.NodeMinHeight == 0 {
		m.NodeMinHeight = d.NodeMinHeight
	}
	if m.HeaderHeight == 0 {
		m.HeaderHeight = d.HeaderHeight
	}
	if m.AnchorSize == 0 {
		m.AnchorSize = d.AnchorSize
	}
	if m.AnchorGap == 0 {
		m.AnchorGap = d.AnchorGap
	}
	if m.EdgePadding == 0 {
		m.EdgePadding = d.EdgePadding
	}
	if m.DisplayWidth == 0 {
		m.DisplayWidth = d.DisplayWidth
	}
	if m.DisplayHeight == 0 {
		m.DisplayHeight = d.DisplayHeight
	}
	if m.DisplayAnchorSize == 0 {
		m.DisplayAnchorSize = d.DisplayAnchorSize
	}
	return m
}

// layout sizes n and positions its anchors.
func (m Metrics) layout(n *Node) {
	if n.Kind == ValueDisplay {
		m.layoutDisplay(n)
		return
	}

	n.Width = m.NodeWidth
	rows := float64(max(len(n.Inputs), len(n.Outputs)))
	anchorsHeight := 2 * m.EdgePadding
	if rows > 0 {
		anchorsHeight += rows*m.AnchorSize + (rows-1)*m.AnchorGap
	}
	body := math.Max(math.Max(m.NodeMinHeight-m.HeaderHeight, anchorsHeight), 30)
	n.Height = m.HeaderHeight + body

	place := func(anchors []*Anchor, relX float64) {
		for i, a := range anchors {
			a.Width, a.Height = m.AnchorSize, m.AnchorSize
			a.RelX = relX
			a.RelY = m.HeaderHeight + m.EdgePadding + float64(i)*(m.AnchorSize+m.AnchorGap)
		}
	}
	place(n.Inputs, -m.AnchorSize/2)
	place(n.Outputs, n.Width-m.AnchorSize/2)
}

func (m Metrics) layoutDisplay(n *Node) {
	n.Width, n.Height = m.DisplayWidth, m.DisplayHeight
	s := m.DisplayAnchorSize
	place := func(anchors []*Anchor, relX float64) {
		for _, a := range anchors {
			a.Width, a.Height = s, s
			a.RelX = relX
			a.RelY = (n.Height - s) / 2
		}
	}
	place(n.Inputs, -s/2)
	place(n.Outputs, n.Width-s/2)
}
