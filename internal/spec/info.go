package spec

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/getkin/kin-openapi/openapi3"
)

// ParseInfo extracts the document title, overview paragraph and version.
func ParseInfo(doc *goquery.Document) (*openapi3.Info, error) {
	title, err := extractString(doc.Selection, titleSelector)
	if err != nil {
		return nil, err
	}
	description, err := extractString(doc.Selection, descriptionSelector)
	if err != nil {
		return nil, err
	}
	version, err := extractString(doc.Selection, versionSelector)
	if err != nil {
		return nil, err
	}
	return &openapi3.Info{
		Title:       title,
		Description: description,
		Version:     strings.TrimSpace(strings.ReplaceAll(version, "Version: ", "")),
	}, nil
}

func extractString(s *goquery.Selection, selector string) (string, error) {
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return "", &SpecError{Code: ExtractionError, Message: fmt.Sprintf("could not find element by %s", selector)}
	}
	return strings.TrimSpace(found.Text()), nil
}
