// Package catalogtest provides a small component catalog for tests.
package catalogtest

import (
	"github.com/recera/nodegraph/pkg/catalog"
)

// FixtureJSON is the component data behind Fixture.
const FixtureJSON = `[
  {
    "global_address": "C1",
    "name": "Constant",
    "nickName": "Const",
    "category": "Math",
    "subCategory": "Sources",
    "outputs": [{"address": "O1", "name": "Value", "nickName": "V", "typeName": "Number"}]
  },
  {
    "global_address": "C2",
    "name": "Negate",
    "nickName": "Neg",
    "category": "Math",
    "subCategory": "Operators",
    "inputs": [{"address": "I1", "name": "Input", "nickName": "I", "typeName": "Number"}],
    "outputs": [{"address": "O1", "name": "Result", "nickName": "R", "typeName": "Number"}]
  },
  {
    "global_address": "C0006",
    "name": "Mesh Increment",
    "nickName": "MInc",
    "description": "Increments mesh resolution.",
    "libraryName": "Mesh",
    "category": "Mesh",
    "subCategory": "Util",
    "inputs": [
      {"address": "C0006.I01", "name": "Mesh", "nickName": "M", "typeName": "Mesh"},
      {"address": "C0006.I02", "name": "Steps", "nickName": "S", "typeName": "Number"}
    ],
    "outputs": [{"address": "C0006.O01", "name": "Mesh", "nickName": "M", "typeName": "Mesh"}]
  },
  {
    "global_address": "C0007",
    "name": "Styles",
    "nickName": "Sty",
    "category": "Display",
    "subCategory": "Preview",
    "inputs": [{"address": "C0007.I01", "name": "Geometry", "nickName": "G", "typeName": "Generic Data"}]
  },
  {
    "global_address": "C0008",
    "name": "Text",
    "nickName": "Txt",
    "category": "Params",
    "subCategory": "Primitive",
    "outputs": [{"address": "C0008.O01", "name": "Text", "nickName": "T", "typeName": "Text"}]
  },
  {
    "global_address": "C0009",
    "name": "Custom Preview",
    "nickName": "CPrev",
    "category": "Display",
    "subCategory": "Preview",
    "inputs": [
      {"address": "C0009.I01", "name": "Geometry", "nickName": "G", "typeName": "Generic Data"},
      {"address": "C0009.I02", "name": "Material", "nickName": "M", "typeName": "Material"},
      {"address": "C0009.I03", "name": "Label", "nickName": "L", "typeName": "Text"},
      {"address": "C0009.I04", "name": "Mesh", "nickName": "M", "typeName": "Mesh"}
    ]
  },
  {
    "global_address": "C0010",
    "name": "Number Slider",
    "nickName": "Slider",
    "category": "Params",
    "subCategory": "Input",
    "uiType": "valueDisplay",
    "defaultValue": 0.5,
    "outputs": [{"address": "C0010.O01", "name": "Number", "nickName": "N", "typeName": "Number"}]
  },
  {
    "global_address": "C0011",
    "name": "Generic Source",
    "nickName": "Gen",
    "category": "Params",
    "subCategory": "Primitive",
    "outputs": [{"address": "C0011.O01", "name": "Data", "nickName": "D", "typeName": "Generic Data"}]
  }
]`

// Fixture parses FixtureJSON. It panics on error since the data is static.
func Fixture() *catalog.Catalog {
	c, err := catalog.Parse([]byte(FixtureJSON))
	if err != nil {
		panic(err)
	}
	return c
}
