// Package catalog loads component definitions and indexes them by global
// address and by category. A Catalog is read-only once built.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// WildcardType is the anchor type-name compatible with every other type.
const WildcardType = "Generic Data"

// UITypeValueDisplay marks definitions rendered as value-display nodes.
const UITypeValueDisplay = "valueDisplay"

var validate = validator.New()

// AnchorDef declares one input or output of a component.
type AnchorDef struct {
	Address  string `json:"address" validate:"required"`
	Name     string `json:"name"`
	NickName string `json:"nickName"`
	TypeName string `json:"typeName"`
}

// Definition is an immutable component definition.
type Definition struct {
	GlobalAddress string      `json:"global_address" validate:"required"`
	Name          string      `json:"name"`
	NickName      string      `json:"nickName"`
	Description   string      `json:"description"`
	LibraryName   string      `json:"libraryName"`
	Category      string      `json:"category"`
	SubCategory   string      `json:"subCategory"`
	UIType        string      `json:"uiType,omitempty"`
	DefaultValue  *float64    `json:"defaultValue,omitempty"`
	Inputs        []AnchorDef `json:"inputs"`
	Outputs       []AnchorDef `json:"outputs"`
}

// IsValueDisplay reports whether the definition describes a value-display node.
func (d *Definition) IsValueDisplay() bool {
	return d.UIType == UITypeValueDisplay
}

// Default returns the definition's default display value, or 0.
func (d *Definition) Default() float64 {
	if d.DefaultValue == nil {
		return 0
	}
	return *d.DefaultValue
}

// Catalog is the registry of component definitions.
type Catalog struct {
	byAddress  map[string]*Definition
	order      []string
	categories map[string]map[string][]*Definition
}

// Option configures loading.
type Option func(*loadOptions)

type loadOptions struct {
	logger *zap.Logger
}

// WithLogger routes load warnings to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *loadOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New builds a catalog from already-decoded definitions. Definitions that fail
// validation (most importantly a missing global_address) are skipped with a
// warning; an anchor without an address is dropped from its definition. A later definition with the same address replaces the earlier one.
func New(defs []Definition, opts ...Option) *Catalog {
	o := loadOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.Named("catalog")

	c := &Catalog{
		byAddress:  make(map[string]*Definition, len(defs)),
		categories: make(map[string]map[string][]*Definition),
	}
	for i := range defs {
		def := defs[i]
		if err := validate.Struct(&def); err != nil {
			log.Warn("skipping invalid component definition",
				zap.Int("index", i), zap.String("name", def.Name), zap.Error(err))
			continue
		}
		def.Inputs = validAnchors(log, def.GlobalAddress, "input", def.Inputs)
		def.Outputs = validAnchors(log, def.GlobalAddress, "output", def.Outputs)
		if _, exists := c.byAddress[def.GlobalAddress]; !exists {
			c.order = append(c.order, def.GlobalAddress)
		}
		c.byAddress[def.GlobalAddress] = &def
	}
	for _, addr := range c.order {
		def := c.byAddress[addr]
		if def.Category == "" || def.SubCategory == "" {
			continue
		}
		sub, ok := c.categories[def.Category]
		if !ok {
			sub = make(map[string][]*Definition)
			c.categories[def.Category] = sub
		}
		sub[def.SubCategory] = append(sub[def.SubCategory], def)
	}
	log.Debug("component catalog built", zap.Int("components", len(c.byAddress)))
	return c
}

func validAnchors(log *zap.Logger, owner, kind string, anchors []AnchorDef) []AnchorDef {
	out := make([]AnchorDef, 0, len(anchors))
	for i, a := range anchors {
		if err := validate.Struct(&a); err != nil {
			log.Warn("skipping invalid anchor",
				zap.String("component", owner), zap.String("kind", kind),
				zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, a)
	}
	return out
}

// Parse decodes a JSON array of definitions.
func Parse(data []byte, opts ...Option) (*Catalog, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("component data is not a valid array: %w", err)
	}
	o := loadOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	defs := make([]Definition, 0, len(raw))
	for i, entry := range raw {
		var def Definition
		if err := json.Unmarshal(entry, &def); err != nil {
			o.logger.Named("catalog").Warn("skipping malformed component definition",
				zap.Int("index", i), zap.Error(err))
			continue
		}
		defs = append(defs, def)
	}
	return New(defs, opts...), nil
}

// Load reads a catalog from r.
func Load(r io.Reader, opts ...Option) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read component data: %w", err)
	}
	return Parse(data, opts...)
}

// LoadFile reads a catalog from a JSON file on disk.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open component data %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, opts...)
}

// Lookup returns the definition registered under address.
func (c *Catalog) Lookup(address string) (*Definition, bool) {
	if c == nil {
		return nil, false
	}
	def, ok := c.byAddress[address]
	return def, ok
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byAddress)
}

// All returns every definition in load order.
func (c *Catalog) All() []*Definition {
	if c == nil {
		return nil
	}
	out := make([]*Definition, 0, len(c.order))
	for _, addr := range c.order {
		out = append(out, c.byAddress[addr])
	}
	return out
}

// Categories returns the sorted category names.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.categories))
	for name := range c.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SubCategories returns the sorted subcategory names of category.
func (c *Catalog) SubCategories(category string) []string {
	if c == nil {
		return nil
	}
	sub := c.categories[category]
	names := make([]string, 0, len(sub))
	for name := range sub {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InCategory returns the definitions filed under category/subCategory.
func (c *Catalog) InCategory(category, subCategory string) []*Definition {
	if c == nil {
		return nil
	}
	defs := c.categories[category][subCategory]
	out := make([]*Definition, len(defs))
	copy(out, defs)
	return out
}

// Tree is the browsable category -> subcategory -> addresses index.
type Tree map[string]map[string][]string

// Tree returns the category index keyed by address.
func (c *Catalog) Tree() Tree {
	t := make(Tree)
	if c == nil {
		return t
	}
	for cat, subs := range c.categories {
		t[cat] = make(map[string][]string, len(subs))
		for sub, defs := range subs {
			addrs := make([]string, len(defs))
			for i, d := range defs {
				addrs[i] = d.GlobalAddress
			}
			t[cat][sub] = addrs
		}
	}
	return t
}
