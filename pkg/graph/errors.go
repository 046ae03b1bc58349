package graph

import "errors"

var (
	// ErrUnknownComponent is returned when a component address is not in the catalog.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrUnknownNode is returned when a node id is not in the graph.
	ErrUnknownNode = errors.New("unknown node")
	// ErrUnknownAnchor is returned when a node has no anchor with the given address.
	ErrUnknownAnchor = errors.New("unknown anchor")
	// ErrIncompatibleAnchors is returned when two anchors may not be connected.
	ErrIncompatibleAnchors = errors.New("incompatible anchors")
	// ErrNotValueDisplay is returned when setting a value on a plain node.
	ErrNotValueDisplay = errors.New("node is not a value display")
)
