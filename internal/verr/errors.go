// Package verr classifies the errors that cross a command boundary in
// versio: a fixed set of kinds (spec.md §7), each mapped to an exit code,
// wrapping an underlying cause the way the standard library's error chains
// do rather than through a dedicated errors package.
package verr

import (
	"errors"
	"fmt"
)

// Kind is one of the fixed error kinds a versio command can fail with.
type Kind int

const (
	// Internal marks a bug or an unexpected invariant violation.
	Internal Kind = iota
	// ConfigInvalid marks a malformed or self-contradictory .versio.yaml.
	ConfigInvalid
	// FileNotFound marks a project location file missing on disk.
	FileNotFound
	// PathNotResolved marks a picker path that didn't resolve in its file.
	PathNotResolved
	// NotAScalar marks a picker path that resolved to a non-scalar node.
	NotAScalar
	// NotAVersion marks a scanned value that fails the SemVer regex.
	NotAVersion
	// VcsUnavailable marks a required VCS level that could not be reached.
	VcsUnavailable
	// VcsStateDirty marks a mutating command attempted against a dirty tree.
	VcsStateDirty
	// VcsConflict marks a non-fast-forward push/pull.
	VcsConflict
	// PrApiFailure marks an auth or network failure from the PR hosting API.
	PrApiFailure
	// TemplateError marks a changelog template parse/render failure.
	TemplateError
	// FailSizeMatched marks a commit that matched a `sizes.fail` pattern.
	FailSizeMatched
)

// exitCodes maps each Kind to the process exit code spec.md §7 assigns it.
var exitCodes = map[Kind]int{
	Internal:        4,
	ConfigInvalid:   1,
	FileNotFound:    1,
	PathNotResolved: 1,
	NotAScalar:      1,
	NotAVersion:     1,
	VcsUnavailable:  2,
	VcsStateDirty:   2,
	VcsConflict:     2,
	PrApiFailure:    3,
	TemplateError:   1,
	FailSizeMatched: 1,
}

func (k Kind) String() string {
	switch k {
	case ConfigInvalid:
		return "ConfigInvalid"
	case FileNotFound:
		return "FileNotFound"
	case PathNotResolved:
		return "PathNotResolved"
	case NotAScalar:
		return "NotAScalar"
	case NotAVersion:
		return "NotAVersion"
	case VcsUnavailable:
		return "VcsUnavailable"
	case VcsStateDirty:
		return "VcsStateDirty"
	case VcsConflict:
		return "VcsConflict"
	case PrApiFailure:
		return "PrApiFailure"
	case TemplateError:
		return "TemplateError"
	case FailSizeMatched:
		return "FailSizeMatched"
	default:
		return "Internal"
	}
}

// ExitCode returns the process exit code for k.
func (k Kind) ExitCode() int { return exitCodes[k] }

// Error is a versio error: a Kind plus a message plus an optional
// underlying cause, chained with %w the way the standard library expects.
type Error struct {
	Kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// New builds a versio error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind to an existing error, preserving it as the cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf recovers the Kind of err if it (or something it wraps) is a
// *Error; otherwise it reports Internal.
func KindOf(err error) Kind {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return Internal
}
