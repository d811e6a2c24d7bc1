package spec

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/kc2openapi/internal/typeexpr"
)

// ParseSchemas turns every model section into an object schema keyed by the
// section title. Property types go through the type expression parser.
func ParseSchemas(doc *goquery.Document) (openapi3.Schemas, error) {
	var sections *goquery.Selection
	for _, sel := range schemaSectionSelectors {
		if sections = doc.Find(sel); sections.Length() > 0 {
			break
		}
	}

	schemas := make(openapi3.Schemas, sections.Length())
	for i := 0; i < sections.Length(); i++ {
		section := sections.Eq(i)
		name, err := extractString(section, tagTitleSelector)
		if err != nil {
			return nil, err
		}
		schema, err := parseSchema(name, section)
		if err != nil {
			return nil, err
		}
		schemas[name] = openapi3.NewSchemaRef("", schema)
	}
	return schemas, nil
}

func parseSchema(name string, section *goquery.Selection) (*openapi3.Schema, error) {
	schema := openapi3.NewObjectSchema()
	if schema.Properties == nil {
		schema.Properties = make(openapi3.Schemas)
	}
	rows := section.Find(schemaRowSelector)
	for i := 0; i < rows.Length(); i++ {
		row := rows.Eq(i)
		prop := row.Find(propertyNameSelector).First()
		if prop.Length() == 0 {
			return nil, &SpecError{
				Code:     ExtractionError,
				Message:  fmt.Sprintf("schema %s: row %d has no property name", name, i+1),
				Location: name,
			}
		}
		propName := strings.TrimSpace(prop.Text())
		raw := cellText(row.Find(propertyTypeSelector).First())
		schema.Properties[propName] = typeexpr.SchemaRef(typeexpr.ParseReferenceOrItem(raw))

		if flags := strings.Fields(cellText(row.Find("td").First())); len(flags) > 1 && containsFold(flags[1:], "required") {
			schema.Required = append(schema.Required, propName)
		}
	}
	return schema, nil
}

func containsFold(list []string, want string) bool {
	for _, s := range list {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}
