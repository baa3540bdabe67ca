package addressing

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/openmachinelabs/productivity/internal/types"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		category types.Category
		address  int
		want     int
	}{
		{types.CategoryDiscreteOutput, 1, 1},
		{types.CategoryDiscreteInput, 1, 100001},
		{types.CategoryInput, 7, 300007},
		{types.CategoryHolding, 125, 400125},
	}
	for _, tc := range cases {
		got, err := Resolve(tc.category, tc.address)
		assert.NilError(t, err)
		assert.Equal(t, got, tc.want)
	}

	_, err := Resolve(types.Category("bogus"), 1)
	var cfgErr *types.ConfigError
	assert.Assert(t, errors.As(err, &cfgErr))
}

func TestKindOf(t *testing.T) {
	cases := map[string]types.ValueKind{
		"AIF32": types.KindFloat32,
		"F32":   types.KindFloat32,
		"S16":   types.KindInt16,
		"S32":   types.KindInt32,
		"AOS32": types.KindInt32,
		"C":     types.KindBool,
		"MST":   types.KindBool,
		"SSTR":  types.KindString,
		"SWRW":  types.KindInt16,
	}
	for code, want := range cases {
		got, err := KindOf(code)
		assert.NilError(t, err)
		assert.Equal(t, got, want)
	}

	_, err := KindOf("U512")
	var cfgErr *types.ConfigError
	assert.Assert(t, errors.As(err, &cfgErr))
}

func TestWidthOf(t *testing.T) {
	assert.Equal(t, WidthOf(types.KindInt16), 1)
	assert.Equal(t, WidthOf(types.KindBool), 1)
	assert.Equal(t, WidthOf(types.KindString), 1)
	assert.Equal(t, WidthOf(types.KindInt32), 2)
	assert.Equal(t, WidthOf(types.KindFloat32), 2)
}

func TestCategoryOf(t *testing.T) {
	cases := []struct {
		address int
		want    types.Category
	}{
		{1, types.CategoryDiscreteOutput},
		{99999, types.CategoryDiscreteOutput},
		{100001, types.CategoryDiscreteInput},
		{300001, types.CategoryInput},
		{400001, types.CategoryHolding},
		{402500, types.CategoryHolding},
	}
	for _, tc := range cases {
		got, err := CategoryOf(tc.address)
		assert.NilError(t, err)
		assert.Equal(t, got, tc.want)
	}

	_, err := CategoryOf(0)
	var cfgErr *types.ConfigError
	assert.Assert(t, errors.As(err, &cfgErr))
}

func TestWireAddress(t *testing.T) {
	tag := types.Tag{Category: types.CategoryHolding, Address: 400001}
	wire, err := WireAddress(tag)
	assert.NilError(t, err)
	assert.Equal(t, wire, uint16(0))

	tag = types.Tag{Category: types.CategoryDiscreteInput, Address: 100008}
	wire, err = WireAddress(tag)
	assert.NilError(t, err)
	assert.Equal(t, wire, uint16(7))
}
