// Package recipe converts graphs to and from the JSON recipe document:
//
//	{"nodes_to_create": [...], "connections": [...]}
//
// Decoding is best-effort. Only a document that is not valid JSON (or not a
// JSON object) fails; bad entries are skipped and reported as warnings.
package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrMalformedRecipe is returned when the document is not a JSON object.
	ErrMalformedRecipe = errors.New("invalid JSON recipe syntax")
	// ErrEmptyRecipe is returned for blank input.
	ErrEmptyRecipe = errors.New("recipe is empty")
)

// Schema describes the expected document. It is attached to malformed
// recipe errors so users can see what was expected.
const Schema = `{
  "nodes_to_create": [ { "id_in_recipe": "uniqueId", "type_address": "C_ADDR", "x": X, "y": Y, "nickNameOverride": "OptionalName", "value": OptionalValue }, ... ],
  "connections": [ { "from_node_id": "uniqueId", "from_anchor_address": "C_ADDR.Oxx", "to_node_id": "anotherId", "to_anchor_address": "C_ADDR.Iyy" }, ... ]
}`

var validate = validator.New()

// Recipe is the decoded document.
type Recipe struct {
	Nodes       []NodeEntry       `json:"nodes_to_create"`
	Connections []ConnectionEntry `json:"connections"`
}

// ID is a recipe-local node id. Recipes in the wild use both strings and
// numbers, so either is accepted.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("recipe id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// NodeEntry is one element of nodes_to_create.
type NodeEntry struct {
	ID               ID       `json:"id_in_recipe"`
	TypeAddress      string   `json:"type_address" validate:"required"`
	X                *float64 `json:"x,omitempty"`
	Y                *float64 `json:"y,omitempty"`
	NickNameOverride string   `json:"nickNameOverride,omitempty"`
	Value            *float64 `json:"value,omitempty"`
}

// UnmarshalJSON also accepts "id" as an alias of "id_in_recipe".
func (e *NodeEntry) UnmarshalJSON(data []byte) error {
	type plain NodeEntry
	var aux struct {
		plain
		Alias ID `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = NodeEntry(aux.plain)
	if e.ID == "" {
		e.ID = aux.Alias
	}
	return nil
}

// ConnectionEntry is one element of connections.
type ConnectionEntry struct {
	FromNode   ID     `json:"from_node_id" validate:"required"`
	FromAnchor string `json:"from_anchor_address" validate:"required"`
	ToNode     ID     `json:"to_node_id" validate:"required"`
	ToAnchor   string `json:"to_anchor_address" validate:"required"`
}

// Parse decodes data without touching any graph. Structural problems inside
// the arrays are returned as warnings; the error is non-nil only for empty
// or malformed documents.
func Parse(data []byte) (*Recipe, []Warning, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, ErrEmptyRecipe
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, nil, fmt.Errorf("%w: %v\n\nExpected format:\n%s", ErrMalformedRecipe, err, Schema)
	}
	if top == nil {
		return nil, nil, fmt.Errorf("%w: document is null\n\nExpected format:\n%s", ErrMalformedRecipe, Schema)
	}

	r := &Recipe{}
	var warnings []Warning

	for i, raw := range elements(top, "nodes_to_create", &warnings) {
		var e NodeEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			warnings = append(warnings, warnf(KindMalformedEntry, "node entry %d: %v", i, err))
			continue
		}
		if err := validate.Struct(&e); err != nil {
			warnings = append(warnings, warnf(KindMalformedEntry, "node entry %d (%s): missing type_address", i, e.ID))
			continue
		}
		r.Nodes = append(r.Nodes, e)
	}

	for i, raw := range elements(top, "connections", &warnings) {
		var e ConnectionEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			warnings = append(warnings, warnf(KindMalformedEntry, "connection entry %d: %v", i, err))
			continue
		}
		if err := validate.Struct(&e); err != nil {
			warnings = append(warnings, warnf(KindMalformedEntry, "connection entry %d: %v", i, err))
			continue
		}
		r.Connections = append(r.Connections, e)
	}

	return r, warnings, nil
}

// elements returns the array stored under key, warning when it is missing
// or not an array.
func elements(top map[string]json.RawMessage, key string, warnings *[]Warning) []json.RawMessage {
	raw, ok := top[key]
	if !ok {
		*warnings = append(*warnings, warnf(KindMissingArray, "recipe does not contain %q", key))
		return nil
	}
	var items []json.RawMessage
	// null decodes to a nil slice, [] to an empty one
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		*warnings = append(*warnings, warnf(KindMissingArray, "recipe %q is not an array", key))
		return nil
	}
	return items
}

// Marshal renders r as indented JSON.
func (r *Recipe) Marshal() ([]byte, error) {
	out := *r
	if out.Nodes == nil {
		out.Nodes = []NodeEntry{}
	}
	if out.Connections == nil {
		out.Connections = []ConnectionEntry{}
	}
	return json.MarshalIndent(out, "", "  ")
}

// Format parses data and re-renders it in canonical form, dropping entries
// that could not be parsed.
func Format(data []byte) ([]byte, []Warning, error) {
	r, warnings, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	out, err := r.Marshal()
	return out, warnings, err
}
