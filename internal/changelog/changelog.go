// Package changelog accumulates per-project release notes during plan
// synthesis (spec.md §4.7) and renders them with a text/template,
// supporting the builtin/file/http(s) template loader scheme SPEC_FULL.md
// §9 adds back from the original implementation.
package changelog

import (
	"github.com/versioio/versio/internal/changes"
	"github.com/versioio/versio/internal/config"
	"github.com/versioio/versio/internal/sizer"
)

// EntryKind distinguishes the two shapes a ChangelogEntry can take.
type EntryKind int

const (
	// PrEntry records a pull-request (or pr_zero) group's contribution.
	PrEntry EntryKind = iota
	// DepEntry records that a project's size was raised by propagation
	// from a dependency, not by its own commits.
	DepEntry
)

// ChangelogCommit is one commit listed under a PrEntry, annotated with
// whether it is a repeat appearance in the same project's log (spec.md
// §4.6's commit-dedup note).
type ChangelogCommit struct {
	Commit    changes.CommitInfo
	Size      sizer.Size
	Duplicate bool
}

// ChangelogEntry is either a Pr(FullPr, Size, commits) or a
// Dep(ProjectId, name) entry, per spec.md §4.7.
type ChangelogEntry struct {
	Kind EntryKind

	Pr      *changes.FullPr
	Size    sizer.Size
	Commits []ChangelogCommit

	DepProjectID config.ProjectId
	DepName      string
}

// Changelog is an ordered list of entries for one project, with
// identical Pr entries coalesced by pr.number.
type Changelog struct {
	Entries []*ChangelogEntry

	byPrNumber map[int]*ChangelogEntry
}

// NewChangelog returns an empty Changelog.
func NewChangelog() *Changelog {
	return &Changelog{byPrNumber: map[int]*ChangelogEntry{}}
}

// AddPr records one commit's contribution to this project's log under
// pr, coalescing with any existing entry for the same pr.Number and
// marking c as a duplicate if it already appears under that entry.
func (cl *Changelog) AddPr(pr *changes.FullPr, size sizer.Size, c changes.CommitInfo) {
	entry, ok := cl.byPrNumber[pr.Number]
	if !ok {
		entry = &ChangelogEntry{Kind: PrEntry, Pr: pr}
		cl.byPrNumber[pr.Number] = entry
		cl.Entries = append(cl.Entries, entry)
	}

	dup := false
	for _, existing := range entry.Commits {
		if existing.Commit.Oid == c.Oid {
			dup = true
			break
		}
	}
	entry.Size = sizer.Max(entry.Size, size)
	entry.Commits = append(entry.Commits, ChangelogCommit{Commit: c, Size: size, Duplicate: dup})
}

// AddDep appends a dependency-propagation entry.
func (cl *Changelog) AddDep(depID config.ProjectId, depName string) {
	cl.Entries = append(cl.Entries, &ChangelogEntry{Kind: DepEntry, DepProjectID: depID, DepName: depName})
}
