package vcs

import "github.com/versioio/versio/internal/verr"

// Level is the total order None < Local < Remote < Smart spec.md §4.3
// defines for how much VCS capability a command may use.
type Level int

const (
	None Level = iota
	Local
	Remote
	Smart
)

func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case Local:
		return "local"
	case Remote:
		return "remote"
	case Smart:
		return "smart"
	default:
		return "unknown"
	}
}

// ParseLevel parses a --vcs-level flag value, including the "auto"/"max"
// aliases the CLI surface accepts.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "none":
		return None, nil
	case "local":
		return Local, nil
	case "remote":
		return Remote, nil
	case "smart", "max":
		return Smart, nil
	case "auto":
		return Smart, nil
	default:
		return None, verr.New(verr.ConfigInvalid, "unrecognized vcs level %q", s)
	}
}

// Range is a command's declared (min, max) preference or requirement
// over the Level total order.
type Range struct {
	Min Level
	Max Level
}

// Negotiate computes the effective level given a command's preferred
// and required ranges and the level actually reachable against this
// repository (negotiatedMax, e.g. None if there is no remote
// configured). Per spec.md §4.3:
// effective = max(required.Min, min(preferred.Max, required.Max, negotiatedMax))
// If negotiatedMax is below required.Min, the required minimum cannot
// be met and this errors with VcsUnavailable.
func Negotiate(preferred, required Range, negotiatedMax Level) (Level, error) {
	capped := preferred.Max
	if required.Max < capped {
		capped = required.Max
	}
	if negotiatedMax < capped {
		capped = negotiatedMax
	}

	effective := required.Min
	if capped > effective {
		effective = capped
	}

	if effective < required.Min {
		return None, verr.New(verr.VcsUnavailable, "required vcs level %s is not reachable (max available %s)", required.Min, negotiatedMax)
	}
	if negotiatedMax < required.Min {
		return None, verr.New(verr.VcsUnavailable, "required vcs level %s is not reachable (max available %s)", required.Min, negotiatedMax)
	}
	return effective, nil
}
