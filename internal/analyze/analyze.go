// Package analyze implements spec.md §4.8's diff: partitioning two
// sets of located project versions by project id into those only in
// the older set, those only in the newer set, and pairwise changes
// for ids present in both.
package analyze

import (
	"sort"

	"github.com/versioio/versio/internal/mark"
)

// AnnotatedMark pairs a located version mark with the project id and
// name it was read for, so callers can tell marks from different
// projects apart after they're merged into a single older/newer set.
type AnnotatedMark struct {
	ID   int
	Name string
	Mark mark.MarkedData
}

// NewAnnotatedMark constructs an AnnotatedMark.
func NewAnnotatedMark(id int, name string, m mark.MarkedData) AnnotatedMark {
	return AnnotatedMark{ID: id, Name: name, Mark: m}
}

// Change is the pairwise comparison of one project's mark across two
// snapshots, recording whether the project's name or version value
// moved between them.
type Change struct {
	Old         AnnotatedMark
	New         AnnotatedMark
	NameChange  bool
	ValueChange bool
}

// calcChange mirrors Change::calc: compare names and mark values.
func calcChange(old, newm AnnotatedMark) Change {
	return Change{
		Old:         old,
		New:         newm,
		NameChange:  old.Name != newm.Name,
		ValueChange: old.Mark.Mark.Value != newm.Mark.Mark.Value,
	}
}

// Name returns the (old, new) name pair if the project was renamed.
func (c Change) Name() (oldName, newName string, changed bool) {
	if !c.NameChange {
		return "", "", false
	}
	return c.Old.Name, c.New.Name, true
}

// Value returns the (old, new) version-string pair if it changed.
func (c Change) Value() (oldValue, newValue string, changed bool) {
	if !c.ValueChange {
		return "", "", false
	}
	return c.Old.Mark.Mark.Value, c.New.Mark.Mark.Value, true
}

// Analysis is the result of Analyze: projects only present in the
// older snapshot, only in the newer snapshot, and changes for
// projects present in both.
type Analysis struct {
	Older   []AnnotatedMark
	Newer   []AnnotatedMark
	Changes []Change
}

// Analyze partitions olds and news by id, matching spec.md §4.8
// verbatim: ids unique to olds go to Older, ids unique to news go to
// Newer, and ids in both are paired into Changes.
func Analyze(olds, news []AnnotatedMark) Analysis {
	newsByID := make(map[int]AnnotatedMark, len(news))
	for _, m := range news {
		newsByID[m.ID] = m
	}
	oldsByID := make(map[int]AnnotatedMark, len(olds))
	for _, m := range olds {
		oldsByID[m.ID] = m
	}

	var older []AnnotatedMark
	for _, m := range olds {
		if _, ok := newsByID[m.ID]; !ok {
			older = append(older, m)
		}
	}

	var newer []AnnotatedMark
	for _, m := range news {
		if _, ok := oldsByID[m.ID]; !ok {
			newer = append(newer, m)
		}
	}

	sharedIDs := make([]int, 0, len(oldsByID))
	for id := range oldsByID {
		if _, ok := newsByID[id]; ok {
			sharedIDs = append(sharedIDs, id)
		}
	}
	sort.Ints(sharedIDs)

	changes := make([]Change, 0, len(sharedIDs))
	for _, id := range sharedIDs {
		changes = append(changes, calcChange(oldsByID[id], newsByID[id]))
	}

	sort.Slice(older, func(i, j int) bool { return older[i].ID < older[j].ID })
	sort.Slice(newer, func(i, j int) bool { return newer[i].ID < newer[j].ID })

	return Analysis{Older: older, Newer: newer, Changes: changes}
}
