package typeexpr

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// SchemaPrefix is where named schemas live in the assembled document.
const SchemaPrefix = "#/components/schemas/"

// SchemaRef converts n into a kin-openapi schema reference. References stay
// unresolved; everything else becomes an inline schema.
func SchemaRef(n Node) *openapi3.SchemaRef {
	if r, ok := n.(Reference); ok {
		return openapi3.NewSchemaRef(SchemaPrefix+r.Name, nil)
	}
	return openapi3.NewSchemaRef("", Schema(n))
}

// BinarySchemaRef is SchemaRef except that byte strings are rendered as raw
// binary, which is what an application/octet-stream body carries.
func BinarySchemaRef(n Node) *openapi3.SchemaRef {
	if _, ok := n.(ByteString); ok {
		return openapi3.NewSchemaRef("", openapi3.NewStringSchema().WithFormat("binary"))
	}
	return SchemaRef(n)
}

// Schema returns the inline schema for n. A Reference yields an empty schema;
// use SchemaRef when n may be one.
func Schema(n Node) *openapi3.Schema {
	switch v := n.(type) {
	case Primitive:
		return primitiveSchema(v.Kind)
	case StringEnum:
		values := make([]interface{}, 0, len(v.Values))
		for _, s := range v.Values {
			values = append(values, s)
		}
		return openapi3.NewStringSchema().WithEnum(values...)
	case ByteString:
		return openapi3.NewBytesSchema()
	case Array:
		s := openapi3.NewArraySchema()
		s.Items = SchemaRef(v.Items)
		s.UniqueItems = v.Unique
		return s
	case Map:
		allowed := true
		s := openapi3.NewObjectSchema()
		s.AdditionalProperties = openapi3.AdditionalProperties{Has: &allowed}
		return s
	case Reference, nil:
		return openapi3.NewSchema()
	default:
		panic(fmt.Sprintf("typeexpr: unexpected node %T", n))
	}
}

func primitiveSchema(k Kind) *openapi3.Schema {
	switch k {
	case Int32:
		return openapi3.NewInt32Schema()
	case Int64:
		return openapi3.NewInt64Schema()
	case Boolean:
		return openapi3.NewBoolSchema()
	case String:
		return openapi3.NewStringSchema()
	case Float:
		return &openapi3.Schema{Type: openapi3.TypeNumber, Format: "float"}
	default:
		return openapi3.NewObjectSchema()
	}
}
