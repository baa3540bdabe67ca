package addressing

import (
	"github.com/openmachinelabs/productivity/internal/types"
)

// Base offsets of the five-digit addressing convention. A tag's absolute
// address is the category base plus its 1-based in-category address.
var categoryStart = map[types.Category]int{
	types.CategoryDiscreteOutput: 0,
	types.CategoryDiscreteInput:  100000,
	types.CategoryInput:          300000,
	types.CategoryHolding:        400000,
}

// Productivity type codes and the value kind they decode to.
var dataTypes = map[string]types.ValueKind{
	"AIF32": types.KindFloat32, // analog input float
	"F32":   types.KindFloat32,
	"AIS32": types.KindInt32, // analog input signed
	"AOS32": types.KindInt32, // analog output signed
	"S16":   types.KindInt16,
	"S32":   types.KindInt32,
	"C":     types.KindBool,
	"DI":    types.KindBool,
	"DO":    types.KindBool,
	"SBR":   types.KindBool, // system boolean read-only
	"SBRW":  types.KindBool,
	"MST":   types.KindBool, // module status bit
	"STR":   types.KindString,
	"SSTR":  types.KindString,
	"SWR":   types.KindInt16, // system word read-only
	"SWRW":  types.KindInt16,
}

// BaseOffset returns the absolute address base of a category.
func BaseOffset(c types.Category) (int, bool) {
	base, ok := categoryStart[c]
	return base, ok
}

// Resolve maps a category and a 1-based in-category address to its absolute
// five-digit style address.
func Resolve(c types.Category, address int) (int, error) {
	base, ok := categoryStart[c]
	if !ok {
		return 0, types.NewConfigError("resolve", "unknown register category %q", c)
	}
	return base + address, nil
}

// KindOf maps a Productivity type code to its value kind.
func KindOf(typeCode string) (types.ValueKind, error) {
	kind, ok := dataTypes[typeCode]
	if !ok {
		return "", types.NewConfigError("kind_of", "unknown data type code %q", typeCode)
	}
	return kind, nil
}

// WidthOf returns how many 16-bit registers one value of the kind occupies.
func WidthOf(kind types.ValueKind) int {
	switch kind {
	case types.KindInt32, types.KindFloat32:
		return 2
	default:
		return 1
	}
}

// CategoryOf derives the category from an absolute tag address.
func CategoryOf(address int) (types.Category, error) {
	switch {
	case address > 400000:
		return types.CategoryHolding, nil
	case address > 300000:
		return types.CategoryInput, nil
	case address > 100000:
		return types.CategoryDiscreteInput, nil
	case address > 0:
		return types.CategoryDiscreteOutput, nil
	}
	return "", types.NewConfigError("category_of", "address %d outside any category range", address)
}

// WireAddress converts a tag's absolute address to the 0-based address used
// in Modbus requests.
func WireAddress(t types.Tag) (uint16, error) {
	base, ok := categoryStart[t.Category]
	if !ok {
		return 0, types.NewConfigError("wire_address", "unknown register category %q", t.Category)
	}
	return uint16(t.Address - base - 1), nil
}
