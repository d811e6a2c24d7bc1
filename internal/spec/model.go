package spec

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/mark3labs/kc2openapi/internal/route"
)

// Selectors locating the parts of an asciidoctor-rendered Admin REST API page.
const (
	titleSelector       = "h1"
	descriptionSelector = "#_overview + .sectionbody > .paragraph"
	versionSelector     = "#_version_information + .paragraph"

	tagSectionSelector  = "#_paths + .sectionbody > .sect2"
	tagTitleSelector    = "h3"
	pathSectionSelector = ".sect3"
	summarySelector     = "h4:first-child"
	prePathSelector     = "pre"

	parametersSelector = "h5[id^=_parameters] + table"
	responsesSelector  = "h5[id^=_responses] + table > tbody > tr"
	producesSelector   = "h5[id^=_produces] + div code"
	contentSelector    = "h5[id^=_content_type] + div code"
	consumesSelector   = "h5[id^=_consumes] + div code"

	propertyNameSelector = "td:first-child strong"
	propertyTypeSelector = "td:first-child + td"
	schemaRowSelector    = "table > tbody > tr"
)

// schemaSectionSelectors are tried in order; older pages call the models
// section "Definitions".
var schemaSectionSelectors = []string{
	"#models + .sectionbody > .sect2",
	"#_definitions + .sectionbody > .sect2",
}

// Section is one documented operation: a ".sect3" under a tag section.
type Section struct {
	Tag      string
	VerbPath route.VerbPath
	Node     *goquery.Selection
}
