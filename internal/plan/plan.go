// Package plan implements spec.md §4.6's BuildPlan: mapping discovered
// PR/commit groups to per-project size increments and changelogs, then
// propagating size through the project dependency graph to a fixpoint.
package plan

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/versioio/versio/internal/changelog"
	"github.com/versioio/versio/internal/changes"
	"github.com/versioio/versio/internal/config"
	"github.com/versioio/versio/internal/sizer"
)

// ProjectIncr is one project's computed size increment and changelog
// for a plan run.
type ProjectIncr struct {
	Project *config.Project
	Size    sizer.Size
	Log     *changelog.Changelog
}

// Plan is BuildPlan's result: the ordered per-project increments, plus
// the PRs that produced no effective size change anywhere.
type Plan struct {
	Incrs       []*ProjectIncr
	Ineffective []*changes.FullPr
}

// BuildPlan implements spec.md §4.6's pseudocode against an
// already-discovered Changes value and a project list.
func BuildPlan(cfg *config.Config, ch *changes.Changes) (*Plan, error) {
	accum := map[config.ProjectId]*ProjectIncr{}
	for _, p := range cfg.Projects {
		accum[p.ID] = &ProjectIncr{Project: p, Size: sizer.Empty, Log: changelog.NewChangelog()}
	}

	prTouchedAnything := map[int]bool{}

	groupNumbers := make([]int, 0, len(ch.Groups))
	for n := range ch.Groups {
		groupNumbers = append(groupNumbers, n)
	}
	sort.Ints(groupNumbers)

	for _, number := range groupNumbers {
		g := ch.Groups[number]
		for _, c := range g.IncludedCommits() {
			parsed := sizer.ParseConventional(c)
			for _, p := range cfg.Projects {
				if !commitMatchesProject(parsed, p) {
					continue
				}

				size, err := cfg.Sizes.Of(parsed)
				if err != nil {
					return nil, err
				}
				incr := accum[p.ID]
				incr.Size = sizer.Max(incr.Size, size)
				incr.Log.AddPr(g, size, parsed)
				if size > sizer.None {
					prTouchedAnything[number] = true
				}
			}
		}
	}

	propagateDependencies(cfg, accum)

	ineffective := make([]*changes.FullPr, 0)
	for _, number := range groupNumbers {
		if !prTouchedAnything[number] {
			ineffective = append(ineffective, ch.Groups[number])
		}
	}

	incrs := make([]*ProjectIncr, 0, len(accum))
	for _, incr := range accum {
		incrs = append(incrs, incr)
	}
	sortIncrs(incrs)

	return &Plan{Incrs: incrs, Ineffective: ineffective}, nil
}

// commitMatchesProject implements spec.md §4.5's inclusion rule: at
// least one changed file under the project's root (or a subs match),
// and the project's label filter accepts the commit.
func commitMatchesProject(c changes.CommitInfo, p *config.Project) bool {
	matched := false
	for _, f := range c.Files {
		if fileUnderRoot(f, p.Root) || p.SubRoot(f) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	var labels []string
	if c.Scope != "" {
		labels = append(labels, c.Scope)
	}
	return p.AcceptsLabel(labels)
}

func fileUnderRoot(file, root string) bool {
	if root == "" || root == "." {
		return true
	}
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(file))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// propagateDependencies repeats spec.md §4.6's fixpoint: whenever a
// depended-on project's size exceeds Empty and exceeds a dependent's
// current size, raise the dependent to match and log the propagation.
func propagateDependencies(cfg *config.Config, accum map[config.ProjectId]*ProjectIncr) {
	changed := true
	for changed {
		changed = false
		for _, b := range cfg.Projects {
			for a := range b.Depends {
				incrA, okA := accum[a]
				incrB, okB := accum[b.ID]
				if !okA || !okB {
					continue
				}
				if incrA.Size > sizer.Empty && incrA.Size > incrB.Size {
					incrB.Size = incrA.Size
					incrB.Log.AddDep(a, incrA.Project.Name)
					changed = true
				}
			}
		}
	}
}

// sortIncrs orders projects by earliest closed_at among contributing
// PRs, then discover_order, then ProjectId, matching spec.md §4.6.
func sortIncrs(incrs []*ProjectIncr) {
	sort.SliceStable(incrs, func(i, j int) bool {
		ti, oi := earliestPr(incrs[i])
		tj, oj := earliestPr(incrs[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		if oi != oj {
			return oi < oj
		}
		return incrs[i].Project.ID < incrs[j].Project.ID
	})
}

func earliestPr(incr *ProjectIncr) (closedAt time.Time, discoverOrder int) {
	first := true
	for _, e := range incr.Log.Entries {
		if e.Kind != changelog.PrEntry {
			continue
		}
		if first || e.Pr.ClosedAt.Before(closedAt) {
			closedAt = e.Pr.ClosedAt
			discoverOrder = e.Pr.DiscoverOrder
			first = false
		}
	}
	return closedAt, discoverOrder
}
