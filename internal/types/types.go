package types

// Category is one of the four PLC data areas addressable over Modbus.
type Category string

const (
	CategoryDiscreteOutput Category = "discrete_output"
	CategoryDiscreteInput  Category = "discrete_input"
	CategoryInput          Category = "input"
	CategoryHolding        Category = "holding"
)

// ValueKind is the application-level type a tag's registers decode to.
type ValueKind string

const (
	KindBool    ValueKind = "bool"
	KindInt16   ValueKind = "int16"
	KindInt32   ValueKind = "int32"
	KindFloat32 ValueKind = "float32"
	KindString  ValueKind = "string"
)

// Tag is one named data point from the PLC's tag database. Address is the
// absolute five-digit style address, 1-based within its category and
// including the category base offset (e.g. 400001 for the first holding
// register). Tags are immutable once loaded.
type Tag struct {
	Name     string
	Category Category
	Address  int
	TypeCode string
	Kind     ValueKind
	Width    int // register words occupied by one value
}
