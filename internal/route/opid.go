package route

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var supportedVerbs = map[string]struct{}{
	"DELETE":  {},
	"GET":     {},
	"PATCH":   {},
	"POST":    {},
	"PUT":     {},
	"OPTIONS": {},
}

// CheckVerb returns an *UnsupportedVerbError unless verb is one of DELETE,
// GET, PATCH, POST, PUT or OPTIONS.
func CheckVerb(verb string) error {
	if _, ok := supportedVerbs[verb]; !ok {
		return &UnsupportedVerbError{Verb: verb}
	}
	return nil
}

// Candidates returns the camelCase identifiers vp could be known by, least
// qualified first. The i-th candidate joins the last i literal segments of the
// canonical path; the final candidate joins all of them and appends every
// placeholder as "By<Name>".
//
// A segment directly followed by a placeholder names a collection and loses
// one trailing "s" ("clients/{id}" reads as "client").
func Candidates(vp VerbPath) ([]string, error) {
	if err := CheckVerb(vp.Verb); err != nil {
		return nil, err
	}
	verb := strings.ToLower(vp.Verb)

	segments := strings.Split(strings.Trim(vp.CanonicalPath(), "/"), "/")
	var words, params []string
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if isPlaceholder(seg) {
			params = append(params, seg[1:len(seg)-1])
			continue
		}
		if i+1 < len(segments) && isPlaceholder(segments[i+1]) {
			seg = strings.TrimSuffix(seg, "s")
		}
		words = append(words, seg)
	}

	out := make([]string, 0, len(words)+1)
	for n := 1; n <= len(words); n++ {
		out = append(out, camelCase(verb, words[len(words)-n:]))
	}
	fallback := camelCase(verb, words)
	for _, p := range params {
		fallback += "By" + pascalCase(p)
	}
	if len(out) == 0 || out[len(out)-1] != fallback {
		out = append(out, fallback)
	}
	return out, nil
}

// Census counts, for every candidate identifier, how many operations could
// produce it. It must cover every operation before any identifier is assigned.
type Census struct {
	counts  map[string]int
	covered map[string]struct{}
}

// BuildCensus runs the first pass over all operations.
func BuildCensus(ops []VerbPath) (*Census, error) {
	c := &Census{
		counts:  make(map[string]int),
		covered: make(map[string]struct{}, len(ops)),
	}
	for _, op := range ops {
		candidates, err := Candidates(op)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{}, len(candidates))
		for _, id := range candidates {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			c.counts[id]++
		}
		c.covered[opKey(op)] = struct{}{}
	}
	return c, nil
}

// Count returns how many operations could produce candidate.
func (c *Census) Count(candidate string) int { return c.counts[candidate] }

// AssignID picks the first candidate of vp that no other operation could
// produce, or the fully qualified fallback when every candidate collides.
func (c *Census) AssignID(vp VerbPath) (string, error) {
	candidates, err := Candidates(vp)
	if err != nil {
		return "", err
	}
	if _, ok := c.covered[opKey(vp)]; !ok {
		return "", ErrNotCensused
	}
	for _, id := range candidates {
		if c.counts[id] < 2 {
			return id, nil
		}
	}
	return candidates[len(candidates)-1], nil
}

// AssignIDs runs both passes and returns the identifiers in input order.
func AssignIDs(ops []VerbPath) ([]string, error) {
	census, err := BuildCensus(ops)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(ops))
	for _, op := range ops {
		id, err := census.AssignID(op)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func opKey(vp VerbPath) string { return vp.Verb + " " + vp.CanonicalPath() }

func isPlaceholder(seg string) bool {
	return len(seg) >= 2 && seg[0] == '{' && seg[len(seg)-1] == '}'
}

func camelCase(verb string, words []string) string {
	var b strings.Builder
	b.WriteString(verb)
	for _, w := range words {
		b.WriteString(pascalCase(w))
	}
	return b.String()
}

// pascalCase capitalizes every alphanumeric run of s and drops the
// separators; the rest of each run keeps its case ("testLDAPConnection"
// stays recognizable as "TestLDAPConnection").
func pascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(p[size:])
	}
	return b.String()
}
