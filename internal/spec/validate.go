package spec

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"
)

// Validate resolves the document's internal references and runs the
// kin-openapi validator over it. References to schemas the page never
// documents are tolerated; any other problem is a ValidationError.
func Validate(ctx context.Context, doc *openapi3.T, log zerolog.Logger) error {
	if doc == nil {
		return errors.New("nil document")
	}
	loader := openapi3.NewLoader()
	if err := loader.ResolveRefsIn(doc, nil); err != nil {
		log.Warn().Err(err).Msg("could not resolve every schema reference")
	}
	err := doc.Validate(ctx)
	if err == nil || canProceedDespiteValidation(err) {
		return nil
	}
	var location string
	if doc.Info != nil {
		location = doc.Info.Title
	}
	return &SpecError{Code: ValidationError, Message: err.Error(), Location: location, JSONPointer: extractJSONPointer(err), Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	var me openapi3.MultiError
	if errors.As(err, &me) && len(me) > 0 {
		return extractJSONPointer(me[0])
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}

// canProceedDespiteValidation reports whether err only complains about
// unresolved references.
func canProceedDespiteValidation(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref") || strings.Contains(s, "found unresolved ref")
}
