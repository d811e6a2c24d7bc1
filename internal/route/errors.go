package route

import (
	"errors"
	"fmt"
)

// ErrUnrepresentable is returned for the catch-all path. It is a skip
// condition, not a failure.
var ErrUnrepresentable = errors.New("route: unrepresentable path")

// ErrNotCensused is returned when an identifier is requested for an
// operation that the census was not built over.
var ErrNotCensused = errors.New("route: operation not covered by census")

// UnsupportedVerbError reports an HTTP method outside the supported set.
type UnsupportedVerbError struct {
	Verb string
}

func (e *UnsupportedVerbError) Error() string {
	return fmt.Sprintf("route: unsupported HTTP verb %q", e.Verb)
}

// UnmatchedPathParameterError reports a documented path parameter that does
// not correspond to any placeholder of the path.
type UnmatchedPathParameterError struct {
	Verb string
	Path string
	Name string
}

func (e *UnmatchedPathParameterError) Error() string {
	return fmt.Sprintf("route: %s %s: path parameter %q matches no placeholder", e.Verb, e.Path, e.Name)
}

// MalformedVerbPathError reports header text that is not "VERB /path".
type MalformedVerbPathError struct {
	Text string
}

func (e *MalformedVerbPathError) Error() string {
	return fmt.Sprintf("route: expected \"VERB /path\", got %q", e.Text)
}
