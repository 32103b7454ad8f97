package raido

// Styling the importing application assumes when a field does not specify
// its own.
const (
	defaultFieldFont = "Liberation Sans"
	defaultFieldSize = 20
)

// Field describes one column of a Model. Field order within a model is
// significant and fixed at construction; ordinals are assigned by position
// when the model is serialized, not stored here.
type Field struct {
	Name   string
	Font   string // defaults to "Liberation Sans"
	Size   int    // defaults to 20
	RTL    bool
	Sticky bool
}

// NewField returns a field with default styling.
func NewField(name string) Field {
	return Field{Name: name}
}
