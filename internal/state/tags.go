package state

import "github.com/versioio/versio/internal/changes"

// TagEntry is one tag in the index, resolved to its target commit.
type TagEntry struct {
	Name string
	Oid  changes.Oid
}

// OldTags is a read-only, prefix-indexed view of a repository's existing
// tags, keyed by their tag_prefix (e.g. "v" or "myproject-"). It is
// rebuilt from scratch rather than mutated; SliceEarlier returns a new
// value rather than modifying the receiver.
type OldTags struct {
	byPrefix map[string][]TagEntry          // newest first
	notAfter map[changes.Oid]map[string]int // descendant oid -> prefix -> index into byPrefix[prefix]
}

// NewOldTags indexes entries (already sorted newest-first within a
// prefix by the caller) and builds the not_after lookup by walking
// ancestry with isAncestor.
func NewOldTags(entries []TagEntry, isAncestor func(ancestor, descendant changes.Oid) (bool, error)) (*OldTags, error) {
	ot := &OldTags{
		byPrefix: map[string][]TagEntry{},
		notAfter: map[changes.Oid]map[string]int{},
	}
	for _, e := range entries {
		prefix := tagPrefixOf(e.Name)
		ot.byPrefix[prefix] = append(ot.byPrefix[prefix], e)
	}

	// For every (descendant, prefix) pair we might be asked about, record
	// the newest tag of that prefix that is an ancestor of descendant.
	// Descendants of interest are exactly the tagged commits themselves;
	// callers asking about other oids fall through to a fresh scan in
	// NotAfter.
	for _, list := range ot.byPrefix {
		for _, e := range list {
			if _, err := ot.indexNotAfter(e.Oid, isAncestor); err != nil {
				return nil, err
			}
		}
	}
	return ot, nil
}

func (ot *OldTags) indexNotAfter(descendant changes.Oid, isAncestor func(ancestor, descendant changes.Oid) (bool, error)) (map[string]int, error) {
	if m, ok := ot.notAfter[descendant]; ok {
		return m, nil
	}
	m := map[string]int{}
	for prefix, list := range ot.byPrefix {
		for i, e := range list {
			anc, err := isAncestor(e.Oid, descendant)
			if err != nil {
				return nil, err
			}
			if anc {
				m[prefix] = i
				break
			}
		}
	}
	ot.notAfter[descendant] = m
	return m, nil
}

// Latest returns the newest tag of the given prefix, if any.
func (ot *OldTags) Latest(prefix string) (string, bool) {
	list := ot.byPrefix[prefix]
	if len(list) == 0 {
		return "", false
	}
	return list[0].Name, true
}

// NotAfter returns the newest tag of prefix that is an ancestor of (or
// equal to) oid, consulting the precomputed index when available and
// falling back to isAncestor otherwise.
func (ot *OldTags) NotAfter(prefix string, oid changes.Oid, isAncestor func(ancestor, descendant changes.Oid) (bool, error)) (string, bool, error) {
	m, ok := ot.notAfter[oid]
	if !ok {
		var err error
		m, err = ot.indexNotAfter(oid, isAncestor)
		if err != nil {
			return "", false, err
		}
	}
	idx, ok := m[prefix]
	if !ok {
		return "", false, nil
	}
	return ot.byPrefix[prefix][idx].Name, true, nil
}

// SliceEarlier returns a new OldTags retaining only tags whose commit is
// an ancestor of (or equal to) oid — the view PrevState uses.
func (ot *OldTags) SliceEarlier(oid changes.Oid, isAncestor func(ancestor, descendant changes.Oid) (bool, error)) (*OldTags, error) {
	var kept []TagEntry
	for _, list := range ot.byPrefix {
		for _, e := range list {
			anc, err := isAncestor(e.Oid, oid)
			if err != nil {
				return nil, err
			}
			if anc {
				kept = append(kept, e)
			}
		}
	}
	return NewOldTags(kept, isAncestor)
}

// tagPrefixOf strips the trailing "MAJOR.MINOR.PATCH"-shaped suffix
// from a tag name to recover its configured prefix. Since tag_prefix is
// just a literal string prepended to a SemVer, the prefix is whatever
// precedes the first digit that begins a valid SemVer run; callers that
// already know the prefix should use a map lookup instead of name
// parsing wherever possible.
func tagPrefixOf(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] >= '0' && name[i] <= '9' {
			if looksLikeSemverFrom(name[i:]) {
				return name[:i]
			}
		}
	}
	return name
}

func looksLikeSemverFrom(s string) bool {
	dots := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
		default:
			return dots >= 2
		}
	}
	return dots >= 2
}
