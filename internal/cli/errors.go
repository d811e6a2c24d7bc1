package cli

import "errors"

// ErrUsage matches every error caused by how the command was invoked.
var ErrUsage = errors.New("cli usage error")

// Exit codes returned by ExitCode.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

type usageError struct {
	msg   string
	cause error
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

func (e usageError) Unwrap() error { return e.cause }

// runError is a conversion failure with a display message that keeps the
// underlying typed error reachable through errors.As.
type runError struct {
	msg   string
	cause error
}

func (e runError) Error() string { return e.msg }
func (e runError) Unwrap() error { return e.cause }

// ExitCode maps an Execute error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		return ExitUsage
	default:
		return ExitFailure
	}
}
