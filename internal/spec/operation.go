package spec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/kc2openapi/internal/route"
	"github.com/mark3labs/kc2openapi/internal/typeexpr"
)

const (
	defaultResponseCode = "2XX"
	defaultDescription  = "success"
	defaultMediaType    = "application/json"
	octetStream         = "application/octet-stream"
	// noSchema is how the documentation spells an empty body.
	noSchema = "<<>>"
)

// verbPath reads "VERB /path" from the section's <pre>, falling back to its
// heading.
func verbPath(section *goquery.Selection) (route.VerbPath, error) {
	text := section.Find(prePathSelector).First()
	if text.Length() == 0 {
		text = section.Find(summarySelector).First()
	}
	if text.Length() == 0 {
		return route.VerbPath{}, &SpecError{Code: ExtractionError, Message: "could not find element by " + prePathSelector + " or " + summarySelector}
	}
	return route.ParseVerbPath(text.Text())
}

// parameterRows converts the parameters table. The Name cell may carry a
// "required" marker after the name.
func parameterRows(s Section) ([]route.ParameterRow, error) {
	var out []route.ParameterRow
	for i, row := range ParseTableRows(s.Node, parametersSelector) {
		fields := strings.Fields(row["Name"])
		if len(fields) == 0 {
			return nil, &SpecError{
				Code:     ExtractionError,
				Message:  fmt.Sprintf("%s: parameter row %d has no name", s.VerbPath, i+1),
				Location: s.VerbPath.String(),
			}
		}
		required := containsFold(fields[1:], "required")
		if v, err := strconv.ParseBool(strings.TrimSpace(row["Required"])); err == nil {
			required = required || v
		}
		out = append(out, route.ParameterRow{
			Location:    row["Type"],
			Name:        fields[0],
			Required:    required,
			Description: row["Description"],
			RawSchema:   row["Schema"],
		})
	}
	return out, nil
}

// parseOperation builds everything but the identifier, tags and path
// parameters.
func parseOperation(s Section, rows []route.ParameterRow) *openapi3.Operation {
	op := openapi3.NewOperation()
	if summary := s.Node.Find(summarySelector).First(); summary.Length() > 0 {
		op.Summary = strings.TrimSpace(summary.Text())
	}
	op.Parameters = route.QueryParameters(rows)
	if body, ok := route.BodyRow(rows); ok {
		op.RequestBody = &openapi3.RequestBodyRef{Value: requestBody(s, body)}
	}
	op.Responses = responses(s)
	return op
}

func requestBody(s Section, row route.ParameterRow) *openapi3.RequestBody {
	rb := openapi3.NewRequestBody().
		WithDescription(strings.TrimSpace(row.Description)).
		WithRequired(row.Required)
	mime := firstText(s.Node, consumesSelector)
	if mime == "" {
		mime = defaultMediaType
	}
	media := openapi3.NewMediaType()
	if raw := strings.TrimSpace(row.RawSchema); raw != "" && raw != noSchema {
		media.Schema = schemaFor(mime, raw)
	}
	return rb.WithContent(openapi3.Content{mime: media})
}

func responses(s Section) openapi3.Responses {
	mime := firstText(s.Node, producesSelector)
	if mime == "" {
		mime = firstText(s.Node, contentSelector)
	}

	out := make(openapi3.Responses)
	s.Node.Find(responsesSelector).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		code := cellText(cells.Eq(0))
		if code == "" {
			code = defaultResponseCode
		}
		description := cellText(cells.Eq(1))
		if description == "" {
			description = defaultDescription
		}
		resp := openapi3.NewResponse().WithDescription(description)
		if raw := cellText(cells.Eq(2)); mime != "" && raw != "" && raw != noSchema {
			resp.Content = openapi3.Content{mime: &openapi3.MediaType{Schema: schemaFor(mime, raw)}}
		}
		out[code] = &openapi3.ResponseRef{Value: resp}
	})
	if len(out) == 0 {
		out[defaultResponseCode] = &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(defaultDescription)}
	}
	return out
}

func schemaFor(mime, raw string) *openapi3.SchemaRef {
	node := typeexpr.ParseReferenceOrItem(raw)
	if mime == octetStream {
		return typeexpr.BinarySchemaRef(node)
	}
	return typeexpr.SchemaRef(node)
}

func firstText(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}
