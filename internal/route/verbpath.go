// Package route binds documented path templates to OpenAPI path parameters
// and derives stable operation identifiers from verb and path.
package route

import (
	"fmt"
	"strings"
)

// AnyPath is the documentation's catch-all entry. It has no fixed parameter
// set and cannot be expressed as an OpenAPI path.
const AnyPath = "/{any}"

const idPlaceholder = "{id}"

// VerbPath is an upper-case HTTP method and a raw path template.
type VerbPath struct {
	Verb    string
	RawPath string
}

// ParseVerbPath splits header text such as "GET /{realm}/users" into its
// verb and path.
func ParseVerbPath(s string) (VerbPath, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return VerbPath{}, &MalformedVerbPathError{Text: s}
	}
	return VerbPath{Verb: fields[0], RawPath: fields[1]}, nil
}

func (vp VerbPath) String() string { return vp.Verb + " " + vp.RawPath }

// Unrepresentable reports whether the path must be skipped entirely.
func (vp VerbPath) Unrepresentable() bool { return vp.RawPath == AnyPath }

// RepeatingIDs returns how many times "{id}" occurs in the path when it occurs
// more than once, and zero otherwise.
func (vp VerbPath) RepeatingIDs() int {
	if c := strings.Count(vp.RawPath, idPlaceholder); c > 1 {
		return c
	}
	return 0
}

// CanonicalPath renames repeated "{id}" placeholders to "{id1}", "{id2}", ...
// from left to right. Paths without repeats are returned unchanged.
func (vp VerbPath) CanonicalPath() string {
	if vp.RepeatingIDs() == 0 {
		return vp.RawPath
	}
	sections := strings.Split(vp.RawPath, idPlaceholder)
	var b strings.Builder
	b.WriteString(sections[0])
	for i, section := range sections[1:] {
		fmt.Fprintf(&b, "{id%d}", i+1)
		b.WriteString(section)
	}
	return b.String()
}

// Placeholders returns the placeholder names of the canonical path in order.
func (vp VerbPath) Placeholders() []string {
	return placeholders(vp.CanonicalPath())
}

func placeholders(path string) []string {
	var names []string
	for {
		start := strings.IndexByte(path, '{')
		if start < 0 {
			return names
		}
		end := strings.IndexByte(path[start:], '}')
		if end < 0 {
			return names
		}
		names = append(names, path[start+1:start+end])
		path = path[start+end+1:]
	}
}
