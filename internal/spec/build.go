// Package spec loads Admin REST API documentation pages and assembles them
// into OpenAPI 3 documents.
package spec

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/kc2openapi/internal/route"
	"github.com/rs/zerolog"
)

// OpenAPIVersion is the version written to every assembled document.
const OpenAPIVersion = "3.0.3"

// BuildOption configures how the document is assembled.
type BuildOption func(*buildConfig)

type buildConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[string]struct{}
	pathRes     []*regexp.Regexp
	err         error
	log         zerolog.Logger
}

// WithIncludeTags keeps only operations documented under one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
	return func(c *buildConfig) { c.includeTags = addSet(c.includeTags, tags, strings.TrimSpace) }
}

// WithExcludeTags removes operations documented under any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
	return func(c *buildConfig) { c.excludeTags = addSet(c.excludeTags, tags, strings.TrimSpace) }
}

// WithMethods keeps only operations using one of the given verbs.
func WithMethods(methods []string) BuildOption {
	return func(c *buildConfig) {
		c.methods = addSet(c.methods, methods, func(s string) string {
			return strings.ToUpper(strings.TrimSpace(s))
		})
	}
}

// WithPathPatterns keeps only operations whose canonical path matches at
// least one of the regular expressions. An invalid pattern fails Build.
func WithPathPatterns(patterns []string) BuildOption {
	return func(c *buildConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				if c.err == nil {
					c.err = &SpecError{Code: InputError, Message: fmt.Sprintf("invalid path pattern %q", p), Cause: err}
				}
				continue
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// WithLogger sets the logger used to report skipped and duplicate sections.
func WithLogger(log zerolog.Logger) BuildOption {
	return func(c *buildConfig) { c.log = log }
}

func addSet(set map[string]struct{}, values []string, norm func(string) string) map[string]struct{} {
	for _, v := range values {
		v = norm(v)
		if v == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(values))
		}
		set[v] = struct{}{}
	}
	return set
}

// Build assembles an OpenAPI document from a parsed documentation page.
//
// Tag sections are visited in document order and the operations of each tag
// in reverse, so when a verb and path is documented twice the later section
// wins. Operation identifiers are assigned only after every kept operation
// has been counted.
func Build(ctx context.Context, doc *goquery.Document, opts ...BuildOption) (*openapi3.T, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}
	cfg := &buildConfig{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}

	info, err := ParseInfo(doc)
	if err != nil {
		return nil, err
	}
	schemas, err := ParseSchemas(doc)
	if err != nil {
		return nil, err
	}

	out := &openapi3.T{
		OpenAPI:    OpenAPIVersion,
		Info:       info,
		Components: &openapi3.Components{Schemas: schemas},
		Paths:      openapi3.Paths{},
	}

	sections, tags, err := collectSections(doc, cfg)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		out.Tags = append(out.Tags, &openapi3.Tag{Name: tag})
	}

	ops := make([]route.VerbPath, 0, len(sections))
	for _, s := range sections {
		ops = append(ops, s.VerbPath)
	}
	census, err := route.BuildCensus(ops)
	if err != nil {
		return nil, err
	}

	for _, s := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := addOperation(out, census, s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// collectSections returns the kept operation sections in visiting order and
// every tag title in document order.
func collectSections(doc *goquery.Document, cfg *buildConfig) ([]Section, []string, error) {
	var (
		sections []Section
		tags     []string
		seen     = map[string]string{}
	)
	tagNodes := doc.Find(tagSectionSelector)
	for i := 0; i < tagNodes.Length(); i++ {
		tagNode := tagNodes.Eq(i)
		tag, err := extractString(tagNode, tagTitleSelector)
		if err != nil {
			return nil, nil, err
		}
		tags = append(tags, tag)

		ops := tagNode.Find(pathSectionSelector)
		for j := ops.Length() - 1; j >= 0; j-- {
			node := ops.Eq(j)
			vp, err := verbPath(node)
			if err != nil {
				return nil, nil, &SpecError{Code: ExtractionError, Message: "section under " + tag, Location: tag, Cause: err}
			}
			if vp.Unrepresentable() {
				cfg.log.Debug().Str("operation", vp.String()).Msg("skipping unrepresentable path")
				continue
			}
			if err := route.CheckVerb(vp.Verb); err != nil {
				return nil, nil, &SpecError{Code: ExtractionError, Message: err.Error(), Location: vp.String(), Cause: err}
			}
			if !cfg.allow(tag, vp) {
				continue
			}
			key := vp.Verb + " " + vp.CanonicalPath()
			if first, dup := seen[key]; dup {
				cfg.log.Warn().Str("operation", vp.String()).Str("tag", tag).Str("kept", first).Msg("ignoring duplicate operation")
				continue
			}
			seen[key] = tag
			sections = append(sections, Section{Tag: tag, VerbPath: vp, Node: node})
		}
	}
	return sections, tags, nil
}

func (c *buildConfig) allow(tag string, vp route.VerbPath) bool {
	if !c.allowTag(tag) {
		return false
	}
	if len(c.methods) > 0 {
		if _, ok := c.methods[vp.Verb]; !ok {
			return false
		}
	}
	if len(c.pathRes) > 0 {
		path := vp.CanonicalPath()
		for _, re := range c.pathRes {
			if re.MatchString(path) {
				return true
			}
		}
		return false
	}
	return true
}

// allowTag applies the include and exclude tag sets to the tag an operation
// is documented under.
func (c *buildConfig) allowTag(tag string) bool {
	if len(c.includeTags) > 0 {
		if _, ok := c.includeTags[tag]; !ok {
			return false
		}
	}
	_, blocked := c.excludeTags[tag]
	return !blocked
}

func addOperation(out *openapi3.T, census *route.Census, s Section) error {
	rows, err := parameterRows(s)
	if err != nil {
		return err
	}
	wrap := func(err error) error {
		return &SpecError{Code: ExtractionError, Message: err.Error(), Location: s.VerbPath.String(), Cause: err}
	}

	path := s.VerbPath.CanonicalPath()
	item := out.Paths[path]
	if item == nil {
		params, err := route.Resolve(s.VerbPath, rows)
		if err != nil {
			return wrap(err)
		}
		item = &openapi3.PathItem{Parameters: params}
		out.Paths[path] = item
	} else if _, err := route.Resolve(s.VerbPath, rows); err != nil {
		// Path parameters of the first section win, but every section must
		// still document only placeholders it has.
		return wrap(err)
	}

	id, err := census.AssignID(s.VerbPath)
	if err != nil {
		return wrap(err)
	}
	op := parseOperation(s, rows)
	op.OperationID = id
	op.Tags = []string{s.Tag}
	item.SetOperation(s.VerbPath.Verb, op)
	return nil
}
