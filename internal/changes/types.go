// Package changes holds the shared commit/pull-request data model that
// flows between the VCS port, PR discovery, the sizer, the planner, and
// the changelog builder: spec.md §3's CommitInfo, FullPr, and Changes.
package changes

import "time"

// Oid is a VCS object id (a git commit hash), kept as an opaque string
// rather than a fixed-width byte array so the planner never needs to
// know which VCS backend produced it.
type Oid string

// CommitInfo is one commit. Kind, Scope and Breaking are filled in by
// sizer.ParseConventional; records straight from the VCS port or the PR
// API leave them empty.
type CommitInfo struct {
	Oid       Oid
	Summary   string
	Message   string
	Kind      string // conventional-commit type, e.g. "feat"; "" if unparseable
	Scope     string // conventional-commit scope, e.g. "api"; "" if absent
	Breaking  bool   // "!" after type/scope, or a BREAKING CHANGE: footer
	Files     []string
	Included  bool // false once excluded by squash-merge detection
	URL       string
	Timestamp time.Time
}

// FullPr is a discovered pull-request group. Number 0 is the synthetic
// "pr zero" group for commits with no associated PR.
type FullPr struct {
	Number        int
	Title         string
	URL           string
	HeadRef       string
	BaseOid       Oid
	HeadOid       Oid
	ClosedAt      time.Time
	Commits       []CommitInfo
	Excludes      map[Oid]bool
	DiscoverOrder int
	BestGuess     bool
}

// NewFullPr constructs a FullPr with its exclusion set initialized.
func NewFullPr(number int, title string, baseOid, headOid Oid, headRef string, closedAt time.Time, discoverOrder int) *FullPr {
	return &FullPr{
		Number:        number,
		Title:         title,
		HeadRef:       headRef,
		BaseOid:       baseOid,
		HeadOid:       headOid,
		ClosedAt:      closedAt,
		Excludes:      map[Oid]bool{},
		DiscoverOrder: discoverOrder,
	}
}

// Exclude marks oid as a squash-merge artifact of this PR: associated by
// metadata, but absent from the PR's own base..head range.
func (pr *FullPr) Exclude(oid Oid) { pr.Excludes[oid] = true }

// IsExcluded reports whether oid was excluded from this PR.
func (pr *FullPr) IsExcluded(oid Oid) bool { return pr.Excludes[oid] }

// IncludedCommits returns the commits of this PR that were not excluded.
func (pr *FullPr) IncludedCommits() []CommitInfo {
	out := make([]CommitInfo, 0, len(pr.Commits))
	for _, c := range pr.Commits {
		if !pr.IsExcluded(c.Oid) {
			out = append(out, c)
		}
	}
	return out
}

// Changes is the result of PR discovery: every commit considered, and
// the PR groups they were partitioned into.
type Changes struct {
	Commits map[Oid]bool
	Groups  map[int]*FullPr
}

// NewChanges returns an empty Changes value.
func NewChanges() *Changes {
	return &Changes{Commits: map[Oid]bool{}, Groups: map[int]*FullPr{}}
}

// Span is a (base, head) refspec pair queued for PR discovery.
type Span struct {
	Base Oid
	Head Oid
	Pr   *FullPr
}
