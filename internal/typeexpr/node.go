// Package typeexpr turns the free-text type expressions found in the REST
// documentation tables ("List  of Integer", "< Foo > array", "enum (A, B)")
// into a small structured type model.
package typeexpr

// Node is a parsed type expression. The set of implementations is closed.
type Node interface {
	node()
}

// Kind identifies a primitive type.
type Kind int

const (
	Int32 Kind = iota
	Int64
	Boolean
	String
	Object
	Float
)

func (k Kind) String() string {
	switch k {
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case Boolean:
		return "Boolean"
	case String:
		return "String"
	case Object:
		return "Object"
	case Float:
		return "Float"
	default:
		return "Unknown"
	}
}

// Primitive is one of the scalar kinds, or a free-form object.
type Primitive struct {
	Kind Kind
}

func (Primitive) node() {}

// StringEnum keeps values in source order; duplicates are allowed.
type StringEnum struct {
	Values []string
}

func (StringEnum) node() {}

// ByteString marks a base64-encoded string.
type ByteString struct{}

func (ByteString) node() {}

// Array is a list of Items, or a set when Unique is true.
type Array struct {
	Items  Node
	Unique bool
}

func (Array) node() {}

// Map is an open-ended key to any mapping.
type Map struct{}

func (Map) node() {}

// Reference names a schema defined elsewhere in the document.
type Reference struct {
	Name string
}

func (Reference) node() {}
