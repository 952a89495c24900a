// Package state implements spec.md §4.2's read/write split: StateRead
// abstracts "what does a file/tag look like at this point in history"
// for the config and scanner layers, and StateWrite buffers the file
// and tag operations a plan produces until Commit applies them as one
// VCS commit.
package state

import (
	"context"

	"github.com/versioio/versio/internal/changes"
	"github.com/versioio/versio/internal/vcs"
	"github.com/versioio/versio/internal/verr"
)

// StateRead is the abstraction Config uses to obtain file contents and
// tag information without caring whether it is looking at the live
// working tree or a historical slice.
type StateRead interface {
	CommitOid() (changes.Oid, bool) // false for the live working tree
	HasFile(path string) bool
	ReadFile(path string) ([]byte, error)
	LatestTag(prefix string) (string, bool)
}

// CurrentState reads the live working directory, backed by the full
// OldTags index.
type CurrentState struct {
	Vcs  vcs.Vcs
	Tags *OldTags
}

// NewCurrentState builds a CurrentState, indexing every tag repo
// currently holds.
func NewCurrentState(ctx context.Context, v vcs.Vcs, entries []TagEntry) (*CurrentState, error) {
	tags, err := NewOldTags(entries, func(a, d changes.Oid) (bool, error) {
		return v.IsAncestor(ctx, a, d)
	})
	if err != nil {
		return nil, err
	}
	return &CurrentState{Vcs: v, Tags: tags}, nil
}

// CommitOid implements StateRead.
func (s *CurrentState) CommitOid() (changes.Oid, bool) { return "", false }

// HasFile implements StateRead by stat'ing the working directory.
func (s *CurrentState) HasFile(path string) bool {
	return fileExists(s.Vcs.RootDir(), path)
}

// ReadFile implements StateRead by reading directly off disk.
func (s *CurrentState) ReadFile(path string) ([]byte, error) {
	return readWorkingFile(s.Vcs.RootDir(), path)
}

// LatestTag implements StateRead.
func (s *CurrentState) LatestTag(prefix string) (string, bool) {
	return s.Tags.Latest(prefix)
}

// PrevState is a historical slice of the repository at a fixed commit
// oid, with its tag index filtered to tags reachable from that oid.
type PrevState struct {
	Vcs   vcs.Vcs
	Oid   changes.Oid
	Slice vcs.SliceHandle
	Tags  *OldTags
}

// NewPrevState opens a slice at oid and filters current's tag index
// down to tags that are ancestors of (or equal to) oid.
func NewPrevState(ctx context.Context, v vcs.Vcs, current *OldTags, oid changes.Oid) (*PrevState, error) {
	slice, err := v.Slice(ctx, string(oid))
	if err != nil {
		return nil, err
	}
	tags, err := current.SliceEarlier(oid, func(a, d changes.Oid) (bool, error) {
		return v.IsAncestor(ctx, a, d)
	})
	if err != nil {
		return nil, err
	}
	return &PrevState{Vcs: v, Oid: oid, Slice: slice, Tags: tags}, nil
}

// CommitOid implements StateRead.
func (s *PrevState) CommitOid() (changes.Oid, bool) { return s.Oid, true }

// HasFile implements StateRead.
func (s *PrevState) HasFile(path string) bool { return s.Slice.HasBlob(path) }

// ReadFile implements StateRead.
func (s *PrevState) ReadFile(path string) ([]byte, error) {
	data, err := s.Slice.Blob(path)
	if err != nil {
		return nil, verr.Wrap(verr.FileNotFound, err, "reading %q at %s", path, s.Oid)
	}
	return data, nil
}

// LatestTag implements StateRead.
func (s *PrevState) LatestTag(prefix string) (string, bool) {
	return s.Tags.Latest(prefix)
}
