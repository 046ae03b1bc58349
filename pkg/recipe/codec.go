package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/recera/nodegraph/pkg/graph"
)

// DefaultPosition is used for entries without x or y.
const DefaultPosition = 100.0

// WarningKind classifies a skipped entry.
type WarningKind string

const (
	KindMissingArray        WarningKind = "missing_array"
	KindMalformedEntry      WarningKind = "malformed_entry"
	KindUnknownComponent    WarningKind = "unknown_component"
	KindMissingMapping      WarningKind = "missing_mapping"
	KindIncompatibleAnchors WarningKind = "incompatible_anchors"
	KindDuplicateID         WarningKind = "duplicate_id"
)

// Warning is a non-fatal problem found while decoding.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return string(w.Kind) + ": " + w.Message
}

func warnf(kind WarningKind, format string, args ...any) Warning {
	return Warning{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Source is what Encode reads from.
type Source interface {
	Nodes() []*graph.Node
	Connections() []*graph.Connection
}

// Builder is what Decode writes to. *graph.Graph satisfies it.
type Builder interface {
	Clear()
	CreateNode(address string, x, y float64, pinned bool) (*graph.Node, error)
	Connect(srcNode, srcAnchor, dstNode, dstAnchor string) (*graph.Connection, error)
	SetNickName(id, name string) error
	SetValue(id string, v float64) error
}

// Result summarizes a decode.
type Result struct {
	// IDs maps recipe ids to the node ids created for them.
	IDs         map[ID]string `json:"ids"`
	Nodes       int           `json:"nodes"`
	Connections int           `json:"connections"`
	Warnings    []Warning     `json:"warnings,omitempty"`
}

// Option configures Decode.
type Option func(*decodeOptions)

type decodeOptions struct {
	clearFirst bool
	logger     *zap.Logger
}

// WithClearFirst wipes the builder before any node is created.
func WithClearFirst(clear bool) Option {
	return func(o *decodeOptions) { o.clearFirst = clear }
}

// WithLogger logs each warning as it is produced.
func WithLogger(logger *zap.Logger) Option {
	return func(o *decodeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Decode parses data and builds its nodes and connections into b. The
// document is parsed completely before b is touched, so a malformed recipe
// leaves b unchanged.
func Decode(data []byte, b Builder, opts ...Option) (*Result, error) {
	o := decodeOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.Named("recipe")

	r, warnings, err := Parse(data)
	if err != nil {
		return nil, err
	}

	res := &Result{IDs: make(map[ID]string, len(r.Nodes)), Warnings: warnings}
	warn := func(w Warning) {
		res.Warnings = append(res.Warnings, w)
	}

	if o.clearFirst {
		b.Clear()
	}

	for _, e := range r.Nodes {
		x, y := DefaultPosition, DefaultPosition
		if e.X != nil {
			x = *e.X
		}
		if e.Y != nil {
			y = *e.Y
		}
		n, err := b.CreateNode(e.TypeAddress, x, y, e.X != nil && e.Y != nil)
		if err != nil {
			kind := KindMalformedEntry
			if errors.Is(err, graph.ErrUnknownComponent) {
				kind = KindUnknownComponent
			}
			warn(warnf(kind, "component type %s for recipe id %s not found, skipping", e.TypeAddress, e.ID))
			continue
		}
		res.Nodes++

		if e.NickNameOverride != "" {
			_ = b.SetNickName(n.ID, e.NickNameOverride)
		}
		if e.Value != nil {
			if err := b.SetValue(n.ID, *e.Value); err != nil {
				warn(warnf(KindMalformedEntry, "recipe id %s: value ignored: %v", e.ID, err))
			}
		}
		if e.ID == "" {
			continue
		}
		if _, dup := res.IDs[e.ID]; dup {
			warn(warnf(KindDuplicateID, "recipe id %s used more than once, connections use the last node", e.ID))
		}
		res.IDs[e.ID] = n.ID
	}

	for _, e := range r.Connections {
		src, ok1 := res.IDs[e.FromNode]
		dst, ok2 := res.IDs[e.ToNode]
		if !ok1 || !ok2 {
			warn(warnf(KindMissingMapping, "could not map recipe node ids for connection %s -> %s, skipping", e.FromNode, e.ToNode))
			continue
		}
		if _, err := b.Connect(src, e.FromAnchor, dst, e.ToAnchor); err != nil {
			warn(warnf(KindIncompatibleAnchors, "connection %s.%s -> %s.%s skipped: %v",
				e.FromNode, e.FromAnchor, e.ToNode, e.ToAnchor, err))
			continue
		}
		res.Connections++
	}

	for _, w := range res.Warnings {
		log.Warn("recipe entry skipped", zap.String("kind", string(w.Kind)), zap.String("detail", w.Message))
	}
	log.Debug("recipe implemented", zap.Int("nodes", res.Nodes), zap.Int("connections", res.Connections))
	return res, nil
}

// Build converts the source graph into a Recipe. Recipe ids are assigned
// sequentially (node0, node1, ...) in node order and are only meaningful
// within the returned document.
func Build(src Source) *Recipe {
	r := &Recipe{
		Nodes:       []NodeEntry{},
		Connections: []ConnectionEntry{},
	}
	ids := make(map[string]ID)
	for i, n := range src.Nodes() {
		id := ID(fmt.Sprintf("node%d", i))
		ids[n.ID] = id

		x, y := math.Round(n.X), math.Round(n.Y)
		e := NodeEntry{ID: id, TypeAddress: n.Address(), X: &x, Y: &y}
		if n.NickName != n.Def.NickName {
			e.NickNameOverride = n.NickName
		}
		if v, ok := n.Value(); ok && v != n.Def.Default() {
			e.Value = &v
		}
		r.Nodes = append(r.Nodes, e)
	}
	for _, c := range src.Connections() {
		from, ok1 := ids[c.SourceNodeID]
		to, ok2 := ids[c.TargetNodeID]
		if !ok1 || !ok2 {
			continue
		}
		r.Connections = append(r.Connections, ConnectionEntry{
			FromNode:   from,
			FromAnchor: c.SourceAnchor,
			ToNode:     to,
			ToAnchor:   c.TargetAnchor,
		})
	}
	return r
}

// Encode renders the source graph as an indented recipe document.
func Encode(src Source) ([]byte, error) {
	data, err := json.MarshalIndent(Build(src), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode recipe: %w", err)
	}
	return data, nil
}
