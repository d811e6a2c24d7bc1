package typeexpr

import "strings"

const (
	listPrefix     = "List  of "
	setPrefix      = "Set  of "
	anglePrefix    = "< "
	arraySuffix    = " > array"
	csvArraySuffix = " > array(csv)"
	enumPrefix     = "enum ("
	enumSeparator  = ", "
	byteArray      = "< string(byte) > array"
)

// literals are the exact-match aliases, legacy and versioned spellings alike.
var literals = map[string]Node{
	"Integer":        Primitive{Kind: Int32},
	"integer(int32)": Primitive{Kind: Int32},
	"Long":           Primitive{Kind: Int64},
	"integer(int64)": Primitive{Kind: Int64},
	"Boolean":        Primitive{Kind: Boolean},
	"boolean":        Primitive{Kind: Boolean},
	"Object":         Primitive{Kind: Object},
	"[Object]":       Primitive{Kind: Object},
	"string":         Primitive{Kind: String},
	"String":         Primitive{Kind: String},
	"Float":          Primitive{Kind: Float},
	"number(float)":  Primitive{Kind: Float},
	"Stream":         Array{Items: Map{}},
	"InputStream":    Array{Items: Map{}},
	"List":           Array{Items: Primitive{Kind: Object}},
}

// ParseItem resolves expr against the known structural patterns. The second
// result is false when nothing matches, in which case expr should be treated
// as the name of a schema defined elsewhere.
//
// Patterns are tried in a fixed order because several of them share
// prefixes: a bracket wrapper may itself wrap an enum or an array.
// Leading and trailing whitespace of expr is ignored.
func ParseItem(expr string) (Node, bool) {
	expr = strings.TrimSpace(expr)
	for _, try := range []func(string) (Node, bool){
		wrapper,
		enum,
		byteString,
		list,
		set,
		angleArray,
		mapping,
		literal,
	} {
		if n, ok := try(expr); ok {
			return n, true
		}
	}
	return nil, false
}

// ParseReferenceOrItem is ParseItem with unrecognized input mapped to a
// Reference carrying the trimmed expression.
func ParseReferenceOrItem(expr string) Node {
	if n, ok := ParseItem(expr); ok {
		return n
	}
	return Reference{Name: strings.TrimSpace(expr)}
}

func wrapper(expr string) (Node, bool) {
	if len(expr) < 2 || !strings.HasPrefix(expr, "[") || !strings.HasSuffix(expr, "]") {
		return nil, false
	}
	return ParseItem(expr[1 : len(expr)-1])
}

func enum(expr string) (Node, bool) {
	if !strings.HasPrefix(expr, enumPrefix) || !strings.HasSuffix(expr, ")") || len(expr) < len(enumPrefix)+1 {
		return nil, false
	}
	inner := expr[len(enumPrefix) : len(expr)-1]
	if inner == "" {
		return StringEnum{Values: []string{}}, true
	}
	return StringEnum{Values: strings.Split(inner, enumSeparator)}, true
}

// byteString handles a documentation quirk: an "array of byte strings" is
// really a single base64 string.
func byteString(expr string) (Node, bool) {
	if expr == byteArray {
		return ByteString{}, true
	}
	return nil, false
}

func list(expr string) (Node, bool) {
	if inner, ok := strings.CutPrefix(expr, listPrefix); ok {
		return Array{Items: ParseReferenceOrItem(inner)}, true
	}
	return nil, false
}

func set(expr string) (Node, bool) {
	if inner, ok := strings.CutPrefix(expr, setPrefix); ok {
		return Array{Items: ParseReferenceOrItem(inner), Unique: true}, true
	}
	return nil, false
}

// angleArray covers "< X > array" and "< X > array(csv)". The csv transport
// encoding is not part of the type model.
func angleArray(expr string) (Node, bool) {
	inner, ok := strings.CutPrefix(expr, anglePrefix)
	if !ok {
		return nil, false
	}
	if item, ok := strings.CutSuffix(inner, arraySuffix); ok {
		return Array{Items: ParseReferenceOrItem(item)}, true
	}
	if item, ok := strings.CutSuffix(inner, csvArraySuffix); ok {
		return Array{Items: ParseReferenceOrItem(item)}, true
	}
	return nil, false
}

func mapping(expr string) (Node, bool) {
	if expr == "Map" || strings.HasPrefix(expr, "Map  of") || strings.HasPrefix(expr, "Map[") {
		return Map{}, true
	}
	return nil, false
}

func literal(expr string) (Node, bool) {
	n, ok := literals[expr]
	return n, ok
}
