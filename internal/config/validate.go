package config

import (
	"fmt"
	"regexp"

	"github.com/versioio/versio/internal/verr"
)

var tagPrefixPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Warnings collects non-fatal validation results, e.g. a size rule
// referencing an undeclared label.
type Warnings []string

// validateStructure enforces spec.md §3's Config invariants: unique
// ids, unique non-empty tag prefixes matching the required pattern, an
// acyclic depends graph, and fills in c.ByID. Label-subset violations
// are non-fatal and are not collected here; see CheckLabels.
func (c *Config) validateStructure() error {
	seenIDs := map[ProjectId]bool{}
	seenPrefixes := map[string]bool{}

	for _, p := range c.Projects {
		if seenIDs[p.ID] {
			return verr.New(verr.ConfigInvalid, "duplicate project id %d", p.ID)
		}
		seenIDs[p.ID] = true
		c.ByID[p.ID] = p

		if p.TagPrefix != "" {
			if !tagPrefixPattern.MatchString(p.TagPrefix) {
				return verr.New(verr.ConfigInvalid, "project %q tag_prefix %q does not match %s", p.Name, p.TagPrefix, tagPrefixPattern.String())
			}
			if seenPrefixes[p.TagPrefix] {
				return verr.New(verr.ConfigInvalid, "duplicate tag_prefix %q", p.TagPrefix)
			}
			seenPrefixes[p.TagPrefix] = true
		}
	}

	for _, p := range c.Projects {
		for dep := range p.Depends {
			if _, ok := c.ByID[dep]; !ok {
				return verr.New(verr.ConfigInvalid, "project %q depends on unknown project id %d", p.Name, dep)
			}
		}
	}

	if cyclePath := findCycle(c); cyclePath != "" {
		return verr.New(verr.ConfigInvalid, "cycle in depends graph: %s", cyclePath)
	}

	return nil
}

// findCycle reports a human-readable description of the first depends
// cycle found, or "" if the graph is acyclic.
func findCycle(c *Config) string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[ProjectId]int{}
	var path []ProjectId

	var visit func(id ProjectId) string
	visit = func(id ProjectId) string {
		color[id] = gray
		path = append(path, id)
		p := c.ByID[id]
		for dep := range p.Depends {
			switch color[dep] {
			case gray:
				return cycleString(append(path, dep))
			case white:
				if s := visit(dep); s != "" {
					return s
				}
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return ""
	}

	for _, p := range c.Projects {
		if color[p.ID] == white {
			if s := visit(p.ID); s != "" {
				return s
			}
		}
	}
	return ""
}

func cycleString(path []ProjectId) string {
	s := ""
	for i, id := range path {
		if i > 0 {
			s += " -> "
		}
		s += fmt.Sprintf("%d", id)
	}
	return s
}

// CheckLabels returns a warning for every label referenced by a size
// rule key that no project declares (spec.md §3: "the union of labels
// used by size rules is a subset of declared labels; warnings
// otherwise"). versio's sizer keys rules by (type, scope), and scope
// doubles as a label filter when it matches a declared label name, so
// this walks the rule scopes passed in and checks each against the
// labels declared across all projects: a scope that matches no
// project's labels anywhere is reported.
func (c *Config) CheckLabels(usedScopes []string) Warnings {
	declared := map[string]bool{}
	for _, p := range c.Projects {
		for l := range p.Labels {
			declared[l] = true
		}
	}

	var warnings Warnings
	for _, scope := range usedScopes {
		if scope == "" {
			continue
		}
		if !declared[scope] {
			warnings = append(warnings, fmt.Sprintf("sizes rule references label %q, which no project declares", scope))
		}
	}
	return warnings
}
