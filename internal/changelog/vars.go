package changelog

import (
	"strconv"
	"strings"
	"time"

	"github.com/versioio/versio/internal/config"
)

// ProjectVars is the `project.*` template namespace (spec.md §6).
type ProjectVars struct {
	ID                  int
	Name                string
	TagPrefix           string
	TagPrefixSeparator  string
	Version             string
	FullVersion         string
	Root                string
}

// ReleaseVars is the `release.*` template namespace.
type ReleaseVars struct {
	Date    string
	Version string
	Prs     []PrVar
	Deps    []DepVar
}

// PrVar is one pull-request (or pr_zero) entry as exposed to templates.
type PrVar struct {
	Title   string
	Name    string
	Size    string
	Href    string
	Link    bool
	Commits []CommitVar
}

// CommitVar is one commit as exposed to templates.
type CommitVar struct {
	Href      string
	Link      bool
	ShortHash string
	Size      string
	Summary   string
	Message   string
}

// DepVar is one dependency-propagation entry as exposed to templates.
type DepVar struct {
	ID   string
	Name string
}

// TemplateData is the full top-level namespace passed to Render.
type TemplateData struct {
	Project       ProjectVars
	Release       ReleaseVars
	OldContent    string
	ContentMarker string
}

// BuildProjectVars derives the project namespace for p at newVersion.
func BuildProjectVars(p *config.Project, newVersion string) ProjectVars {
	return ProjectVars{
		ID:                 int(p.ID),
		Name:               p.Name,
		TagPrefix:          p.TagPrefix,
		TagPrefixSeparator: config.TagSeparator,
		Version:            newVersion,
		FullVersion:        p.FullTagName(newVersion),
		Root:               p.Root,
	}
}

// BuildTemplateData assembles the data a Changelog renders with. now is
// injected by the caller (stamped once per plan build) rather than
// taken from the clock here, keeping rendering a pure function.
func BuildTemplateData(p *config.Project, newVersion string, cl *Changelog, oldContent string, now time.Time) TemplateData {
	dateStr := now.Format("2006-01-02")

	prCount := 0
	for _, e := range cl.Entries {
		if e.Kind == PrEntry && hasIncluded(e) {
			prCount++
		}
	}

	var prs []PrVar
	var deps []DepVar
	for _, e := range cl.Entries {
		switch e.Kind {
		case PrEntry:
			if !hasIncluded(e) {
				continue
			}
			var commits []CommitVar
			for _, c := range e.Commits {
				if !c.Commit.Included {
					continue
				}
				short := c.Commit.Oid
				if len(short) > 7 {
					short = short[:7]
				}
				commits = append(commits, CommitVar{
					Href:      c.Commit.URL,
					Link:      c.Commit.URL != "",
					ShortHash: string(short),
					Size:      c.Size.String(),
					Summary:   c.Commit.Summary,
					Message:   strings.TrimSpace(c.Commit.Message),
				})
			}

			name := prName(e.Pr.Number, prCount)
			prs = append(prs, PrVar{
				Title:   e.Pr.Title,
				Name:    name,
				Size:    e.Size.String(),
				Href:    e.Pr.URL,
				Link:    e.Pr.Number > 0 && e.Pr.URL != "",
				Commits: commits,
			})
		case DepEntry:
			deps = append(deps, DepVar{ID: projectIDString(e.DepProjectID), Name: e.DepName})
		}
	}

	return TemplateData{
		Project:       BuildProjectVars(p, newVersion),
		Release:       ReleaseVars{Date: dateStr, Version: newVersion, Prs: prs, Deps: deps},
		OldContent:    oldContent,
		ContentMarker: "CONTENT " + dateStr,
	}
}

func hasIncluded(e *ChangelogEntry) bool {
	for _, c := range e.Commits {
		if c.Commit.Included {
			return true
		}
	}
	return false
}

func prName(number, prCount int) string {
	if number != 0 {
		return prNumberLabel(number)
	}
	if prCount == 1 {
		return "Commits"
	}
	return "Other commits"
}

func prNumberLabel(number int) string {
	return "PR " + strconv.Itoa(number)
}

func projectIDString(id config.ProjectId) string { return strconv.Itoa(int(id)) }
