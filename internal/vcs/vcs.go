// Package vcs is the narrow port the planning engine consumes from a
// version-control backend (spec.md §4.3), plus a go-git-backed
// implementation.
package vcs

import (
	"context"

	"github.com/versioio/versio/internal/changes"
)

// CommitInfoBuf is the raw commit record a Vcs implementation produces,
// before the sizer has parsed its summary into conventional-commit
// structure.
type CommitInfoBuf = changes.CommitInfo

// GithubInfo identifies the GitHub remote a repository is configured
// against, resolved from its "origin" remote URL.
type GithubInfo struct {
	Owner string
	Repo  string
	Token string
}

// SliceHandle is a read-only view of the repository tree at a fixed
// refspec.
type SliceHandle interface {
	HasBlob(path string) bool
	Blob(path string) ([]byte, error)
}

// TagRef is one tag as reported by ListTags, resolved to the commit it
// points at (dereferencing annotated tags).
type TagRef struct {
	Name string
	Oid  changes.Oid
}

// Vcs is the minimum surface the planner requires of a version-control
// backend.
type Vcs interface {
	RootDir() string
	BranchName() (string, error)
	RevparseOid(ctx context.Context, refspec string) (changes.Oid, error)
	Slice(ctx context.Context, refspec string) (SliceHandle, error)

	// CommitsToHead walks topological ancestry from fromTag to HEAD,
	// newest first. includeFrom controls whether fromTag's own commit
	// is yielded.
	CommitsToHead(ctx context.Context, fromTag string, includeFrom bool) ([]CommitInfoBuf, error)
	CommitsBetween(ctx context.Context, baseOid, headOid changes.Oid) ([]CommitInfoBuf, error)
	IsAncestor(ctx context.Context, ancestor, descendant changes.Oid) (bool, error)
	ListTags(ctx context.Context) ([]TagRef, error)

	Fetch(ctx context.Context, level Level) error
	Pull(ctx context.Context, level Level) error
	Push(ctx context.Context, level Level) error

	// MakeChanges commits the buffered write-set and applies newTags,
	// returning whether anything was actually written.
	MakeChanges(ctx context.Context, files []FileChange, newTags []TagChange) (bool, error)

	GithubInfo(ctx context.Context) (*GithubInfo, error)
}

// FileChange is one file-level edit to apply as part of a single
// commit.
type FileChange struct {
	Path    string
	Content []byte
}

// TagKind distinguishes the three ways StateWrite can place a tag
// (spec.md §4.2).
type TagKind int

const (
	TagAtHead TagKind = iota
	TagAtHeadOrLast
	TagAtOid
)

// TagChange is one tag placement to apply as part of a commit.
type TagChange struct {
	Name string
	Kind TagKind
	Oid  changes.Oid // only meaningful when Kind == TagAtOid
}
