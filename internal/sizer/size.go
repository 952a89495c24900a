// Package sizer maps a commit (or a whole PR) to a Size per a project's
// SizePolicy, and applies a Size to a SemVer string.
package sizer

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/versioio/versio/internal/verr"
)

// Size is the ordinal severity of a change. The zero value is Empty,
// the bottom of the total order spec.md §3 defines:
// Empty < None < Patch < Minor < Major < Fail.
type Size int

const (
	Empty Size = iota
	None
	Patch
	Minor
	Major
	Fail
)

func (s Size) String() string {
	switch s {
	case Empty:
		return "empty"
	case None:
		return "none"
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	case Fail:
		return "fail"
	default:
		return fmt.Sprintf("Size(%d)", int(s))
	}
}

// Max returns the larger of two sizes per the total order.
func Max(a, b Size) Size {
	if a > b {
		return a
	}
	return b
}

// ParseSize parses a size name from config (sizes table entries), case
// insensitively.
func ParseSize(s string) (Size, error) {
	switch strings.ToLower(s) {
	case "empty":
		return Empty, nil
	case "none":
		return None, nil
	case "patch":
		return Patch, nil
	case "minor":
		return Minor, nil
	case "major":
		return Major, nil
	case "fail":
		return Fail, nil
	default:
		return Empty, verr.New(verr.ConfigInvalid, "unrecognized size %q", s)
	}
}

// Apply computes the next SemVer version after bumping by size. Empty
// and None are identity; Fail always errors here rather than at
// BuildPlan time, so a fail-pattern commit surfaces at Commit, not at
// plan computation — the plan itself still reports Fail as the size.
func Apply(size Size, version string) (string, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return "", verr.Wrap(verr.NotAVersion, err, "parsing version %q", version)
	}

	switch size {
	case Empty, None:
		return v.String(), nil
	case Patch:
		nv := v.IncPatch()
		return nv.String(), nil
	case Minor:
		nv := v.IncMinor()
		return nv.String(), nil
	case Major:
		nv := v.IncMajor()
		return nv.String(), nil
	case Fail:
		return "", verr.New(verr.FailSizeMatched, "size Fail cannot be applied to a version")
	default:
		return "", verr.New(verr.Internal, "unrecognized size %d", int(size))
	}
}
