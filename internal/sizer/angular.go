package sizer

import (
	"regexp"
	"strings"

	"github.com/versioio/versio/internal/changes"
)

// conventionalPattern matches "type(scope)!: subject" conventional
// commit summaries. No conventional-commit parsing library appears
// anywhere in the retrieved corpus (every peer release tool hand-rolls
// its own), so this follows that idiom directly.
var conventionalPattern = regexp.MustCompile(`^([A-Za-z]+)(?:\(([^)]+)\))?(!)?:\s*(.+)$`)

// angularSizes is the Angular preset table spec.md §4.5 names.
var angularSizes = map[string]Size{
	"feat":     Minor,
	"fix":      Patch,
	"perf":     Patch,
	"chore":    None,
	"docs":     None,
	"refactor": None,
	"test":     None,
	"build":    None,
	"ci":       None,
	"revert":   None,
	"style":    None,
}

// ParseConventional fills in Kind, Scope, and Breaking on c by parsing
// its Summary as a conventional commit, and scanning Message for a
// BREAKING CHANGE footer. It returns c unmodified if the summary does
// not match the conventional-commit shape.
func ParseConventional(c changes.CommitInfo) changes.CommitInfo {
	m := conventionalPattern.FindStringSubmatch(c.Summary)
	if m == nil {
		return c
	}
	c.Kind = strings.ToLower(m[1])
	c.Scope = m[2]
	c.Breaking = m[3] == "!" || strings.Contains(c.Message, "BREAKING CHANGE:")
	return c
}

// AngularSize returns the Angular-preset size for a parsed commit, or
// None if its Kind is unrecognized.
func AngularSize(c changes.CommitInfo) Size {
	if c.Breaking {
		return Major
	}
	if size, ok := angularSizes[c.Kind]; ok {
		return size
	}
	return None
}
