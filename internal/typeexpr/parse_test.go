package typeexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItem(t *testing.T) {
	t.Parallel()

	cases := []struct {
		expr string
		want Node
	}{
		{"Integer", Primitive{Kind: Int32}},
		{"integer(int32)", Primitive{Kind: Int32}},
		{"Long", Primitive{Kind: Int64}},
		{"integer(int64)", Primitive{Kind: Int64}},
		{"Boolean", Primitive{Kind: Boolean}},
		{"boolean", Primitive{Kind: Boolean}},
		{"Object", Primitive{Kind: Object}},
		{"[Object]", Primitive{Kind: Object}},
		{"String", Primitive{Kind: String}},
		{"string", Primitive{Kind: String}},
		{"Float", Primitive{Kind: Float}},
		{"Stream", Array{Items: Map{}}},
		{"InputStream", Array{Items: Map{}}},
		{"List", Array{Items: Primitive{Kind: Object}}},
		{"List  of Integer", Array{Items: Primitive{Kind: Int32}}},
		{"Set  of String", Array{Items: Primitive{Kind: String}, Unique: true}},
		{"List  of Set  of Long", Array{Items: Array{Items: Primitive{Kind: Int64}, Unique: true}}},
		{"< Foo > array", Array{Items: Reference{Name: "Foo"}}},
		{"< Foo > array(csv)", Array{Items: Reference{Name: "Foo"}}},
		{"< string > array", Array{Items: Primitive{Kind: String}}},
		{"< string(byte) > array", ByteString{}},
		{"enum (A, B, C)", StringEnum{Values: []string{"A", "B", "C"}}},
		{"enum (A, A)", StringEnum{Values: []string{"A", "A"}}},
		{"enum (ONE,TWO)", StringEnum{Values: []string{"ONE,TWO"}}},
		{"[enum (x, y)]", StringEnum{Values: []string{"x", "y"}}},
		{"Map", Map{}},
		{"Map  of [Object]", Map{}},
		{"Map[<<>>]", Map{}},
		{"Map[string,List]", Map{}},
		{"  Integer  ", Primitive{Kind: Int32}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.expr, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseItem(tc.expr)
			require.True(t, ok, "expected %q to parse", tc.expr)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseItem_Unrecognized(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{"gibberish", "", "UserRepresentation", "integer", "List of Integer", "Mapping", "[]"} {
		_, ok := ParseItem(expr)
		assert.False(t, ok, "expected %q not to parse", expr)
	}
}

func TestParseItem_WrapperIsIdentity(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{"Integer", "Long", "Object", "List  of String", "enum (A, B)"} {
		plain, ok := ParseItem(expr)
		require.True(t, ok)
		wrapped, ok := ParseItem("[" + expr + "]")
		require.True(t, ok)
		assert.Equal(t, plain, wrapped, expr)
	}
}

func TestParseItem_ByteArrayIsNotAnArray(t *testing.T) {
	t.Parallel()

	got, ok := ParseItem("< string(byte) > array")
	require.True(t, ok)
	assert.Equal(t, ByteString{}, got)
	assert.NotEqual(t, Array{Items: ByteString{}}, got)
}

func TestParseReferenceOrItem(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Reference{Name: "RealmRepresentation"}, ParseReferenceOrItem(" RealmRepresentation "))
	assert.Equal(t, Primitive{Kind: Int64}, ParseReferenceOrItem("Long"))
	assert.Equal(t, Array{Items: Reference{Name: "GroupRepresentation"}}, ParseReferenceOrItem("List  of GroupRepresentation"))
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Int64", Int64.String())
	assert.Equal(t, "Unknown", Kind(42).String())
}
