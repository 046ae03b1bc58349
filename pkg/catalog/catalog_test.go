package catalog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/recera/nodegraph/pkg/catalog"
	"github.com/recera/nodegraph/pkg/catalog/catalogtest"
)

func TestParse_IndexesByAddressAndCategory(t *testing.T) {
	c := catalogtest.Fixture()

	require.Equal(t, 8, c.Len())

	def, ok := c.Lookup("C0006")
	require.True(t, ok)
	assert.Equal(t, "Mesh Increment", def.Name)
	assert.Len(t, def.Inputs, 2)
	assert.Len(t, def.Outputs, 1)

	_, ok = c.Lookup("C9999")
	assert.False(t, ok)

	assert.Equal(t, []string{"Display", "Math", "Mesh", "Params"}, c.Categories())
	assert.Equal(t, []string{"Operators", "Sources"}, c.SubCategories("Math"))

	previews := c.InCategory("Display", "Preview")
	require.Len(t, previews, 2)
	assert.Equal(t, "C0007", previews[0].GlobalAddress)
	assert.Equal(t, "C0009", previews[1].GlobalAddress)

	tree := c.Tree()
	assert.Equal(t, []string{"C0010"}, tree["Params"]["Input"])
}

func TestParse_SkipsDefinitionsWithoutAddress(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	data := `[
		{"name": "orphan"},
		{"global_address": "A1", "name": "kept"},
		42
	]`

	c, err := catalog.Parse([]byte(data), catalog.WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())
	_, ok := c.Lookup("A1")
	assert.True(t, ok)
	assert.Equal(t, 2, logs.Len(), "one warning per skipped definition")
}

func TestParse_DropsAnchorsWithoutAddress(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	data := `[
		{"global_address": "A2", "inputs": [{"name": "no address"}, {"address": "I1"}],
		 "outputs": [{"address": "O1"}, {"typeName": "Number"}]}
	]`

	c, err := catalog.Parse([]byte(data), catalog.WithLogger(zap.New(core)))
	require.NoError(t, err)

	def, ok := c.Lookup("A2")
	require.True(t, ok, "the definition survives a bad anchor")
	require.Len(t, def.Inputs, 1)
	assert.Equal(t, "I1", def.Inputs[0].Address)
	require.Len(t, def.Outputs, 1)
	assert.Equal(t, "O1", def.Outputs[0].Address)
	assert.Equal(t, 2, logs.FilterMessage("skipping invalid anchor").Len())
}

func TestParse_RejectsNonArray(t *testing.T) {
	_, err := catalog.Parse([]byte(`{"global_address": "A1"}`))
	assert.Error(t, err)

	_, err = catalog.Load(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestDefinition_ValueDisplay(t *testing.T) {
	c := catalogtest.Fixture()

	slider, ok := c.Lookup("C0010")
	require.True(t, ok)
	assert.True(t, slider.IsValueDisplay())
	assert.Equal(t, 0.5, slider.Default())

	plain, _ := c.Lookup("C1")
	assert.False(t, plain.IsValueDisplay())
	assert.Equal(t, 0.0, plain.Default())
}

func TestNilCatalog(t *testing.T) {
	var c *catalog.Catalog
	_, ok := c.Lookup("C1")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
	assert.Empty(t, c.All())
}
