package route

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/kc2openapi/internal/typeexpr"
)

// Parameter locations as they appear in the "Type" column.
const (
	LocationPath  = "Path"
	LocationQuery = "Query"
	LocationBody  = "Body"
)

// ParameterRow is one row of an operation's parameters table.
type ParameterRow struct {
	Location    string
	Name        string
	Required    bool
	Description string // empty when the cell is empty or absent
	RawSchema   string
}

// In reports whether the row is declared at location, ignoring case.
func (r ParameterRow) In(location string) bool {
	return strings.EqualFold(strings.TrimSpace(r.Location), location)
}

// Resolve returns the path parameters of vp in placeholder order.
//
// When "{id}" repeats, documented "id" rows are dropped and one required
// string parameter per occurrence (id1, id2, ...) is added instead.
// Placeholders without a documented row get a required string parameter.
// A row that names no placeholder is an *UnmatchedPathParameterError.
func Resolve(vp VerbPath, rows []ParameterRow) (openapi3.Parameters, error) {
	if vp.Unrepresentable() {
		return nil, ErrUnrepresentable
	}

	repeats := vp.RepeatingIDs()
	var params []ParameterRow
	for _, row := range rows {
		if !row.In(LocationPath) {
			continue
		}
		if repeats > 0 && row.Name == "id" {
			continue
		}
		params = append(params, row)
	}
	for i := 1; i <= repeats; i++ {
		params = append(params, ParameterRow{
			Location: LocationPath,
			Name:     fmt.Sprintf("id%d", i),
			Required: true,
		})
	}

	names := vp.Placeholders()
	placed := 0
	for _, name := range names {
		if indexOf(params[:placed], 0, name) >= 0 {
			// repeated placeholder, already bound
			continue
		}
		if j := indexOf(params, placed, name); j >= 0 {
			params[placed], params[j] = params[j], params[placed]
		} else {
			params = append(params, ParameterRow{})
			copy(params[placed+1:], params[placed:])
			params[placed] = ParameterRow{Location: LocationPath, Name: name, Required: true}
		}
		placed++
	}

	for _, row := range params[placed:] {
		if !contains(names, row.Name) {
			return nil, &UnmatchedPathParameterError{Verb: vp.Verb, Path: vp.RawPath, Name: row.Name}
		}
	}

	out := make(openapi3.Parameters, 0, placed)
	for _, row := range params[:placed] {
		p := openapi3.NewPathParameter(row.Name)
		p.Schema = rowSchema(row)
		p.Description = strings.TrimSpace(row.Description)
		out = append(out, &openapi3.ParameterRef{Value: p})
	}
	return out, nil
}

// QueryParameters returns the query rows as parameters, in row order.
func QueryParameters(rows []ParameterRow) openapi3.Parameters {
	var out openapi3.Parameters
	for _, row := range rows {
		if !row.In(LocationQuery) {
			continue
		}
		p := openapi3.NewQueryParameter(row.Name)
		p.Required = row.Required
		p.Schema = rowSchema(row)
		p.Description = strings.TrimSpace(row.Description)
		out = append(out, &openapi3.ParameterRef{Value: p})
	}
	return out
}

// BodyRow returns the first row describing the request body.
func BodyRow(rows []ParameterRow) (ParameterRow, bool) {
	for _, row := range rows {
		if row.In(LocationBody) {
			return row, true
		}
	}
	return ParameterRow{}, false
}

func rowSchema(row ParameterRow) *openapi3.SchemaRef {
	if strings.TrimSpace(row.RawSchema) == "" {
		return openapi3.NewSchemaRef("", openapi3.NewStringSchema())
	}
	return typeexpr.SchemaRef(typeexpr.ParseReferenceOrItem(row.RawSchema))
}

func indexOf(rows []ParameterRow, from int, name string) int {
	for i := from; i < len(rows); i++ {
		if rows[i].Name == name {
			return i
		}
	}
	return -1
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
