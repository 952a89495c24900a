package state

import (
	"context"
	"sort"

	"github.com/versioio/versio/internal/changes"
	"github.com/versioio/versio/internal/config"
	"github.com/versioio/versio/internal/mark"
	"github.com/versioio/versio/internal/vcs"
	"github.com/versioio/versio/internal/verr"
)

// opKind distinguishes the three file-level operations StateWrite can
// buffer (spec.md §4.2).
type opKind int

const (
	opOverwrite opKind = iota
	opAppend
	opMarkUpdate
)

type fileOp struct {
	kind      opKind
	projectID config.ProjectId
	path      string
	content   []byte // opOverwrite, opAppend
	picker    mark.Picker
	oldMark   mark.Mark
	newValue  string
}

type tagOp struct {
	name      string
	kind      vcs.TagKind
	oid       changes.Oid // TagAtOid only
	projectID config.ProjectId
}

// LastCommitFinder resolves the most recent commit that touched a
// project's root, consulted when a tag-at-head-or-last placement needs
// to fall back to "last" because the project had no file write this
// round (spec.md §4.2 step 4; the planner calls this line_commits).
type LastCommitFinder interface {
	LastCommitForProject(ctx context.Context, p *config.Project) (changes.Oid, error)
}

// StateWrite is the append-only buffer of pending file and tag
// operations spec.md §4.2 describes. It is not safe for concurrent use
// and must not be reused after Commit.
type StateWrite struct {
	Vcs     vcs.Vcs
	Read    StateRead
	Last    LastCommitFinder
	Hooks   HookRunner
	Projects map[config.ProjectId]*config.Project

	fileOps   []fileOp
	tagOps    []tagOp
	committed bool
}

// NewStateWrite builds an empty write-set.
func NewStateWrite(v vcs.Vcs, read StateRead, last LastCommitFinder, hooks HookRunner, projects map[config.ProjectId]*config.Project) *StateWrite {
	return &StateWrite{Vcs: v, Read: read, Last: last, Hooks: hooks, Projects: projects}
}

// WriteFile buffers an overwrite of path's full contents.
func (sw *StateWrite) WriteFile(projectID config.ProjectId, path string, content []byte) {
	sw.fileOps = append(sw.fileOps, fileOp{kind: opOverwrite, projectID: projectID, path: path, content: content})
}

// AppendFile buffers appending content to path.
func (sw *StateWrite) AppendFile(projectID config.ProjectId, path string, content []byte) {
	sw.fileOps = append(sw.fileOps, fileOp{kind: opAppend, projectID: projectID, path: path, content: content})
}

// UpdateMark buffers an in-place picker rewrite of a previously located
// Mark to newValue.
func (sw *StateWrite) UpdateMark(projectID config.ProjectId, path string, picker mark.Picker, oldMark mark.Mark, newValue string) {
	sw.fileOps = append(sw.fileOps, fileOp{kind: opMarkUpdate, projectID: projectID, path: path, picker: picker, oldMark: oldMark, newValue: newValue})
}

// TagHead buffers placing name at HEAD.
func (sw *StateWrite) TagHead(projectID config.ProjectId, name string) {
	sw.tagOps = append(sw.tagOps, tagOp{name: name, kind: vcs.TagAtHead, projectID: projectID})
}

// TagHeadOrLast buffers placing name at HEAD if projectID has a
// pending file write this round, otherwise at that project's most
// recent root-touching commit.
func (sw *StateWrite) TagHeadOrLast(projectID config.ProjectId, name string) {
	sw.tagOps = append(sw.tagOps, tagOp{name: name, kind: vcs.TagAtHeadOrLast, projectID: projectID})
}

// TagAtOid buffers placing name at a specific historical oid.
func (sw *StateWrite) TagAtOid(projectID config.ProjectId, name string, oid changes.Oid) {
	sw.tagOps = append(sw.tagOps, tagOp{name: name, kind: vcs.TagAtOid, oid: oid, projectID: projectID})
}

// Empty reports whether the write-set has nothing buffered.
func (sw *StateWrite) Empty() bool {
	return len(sw.fileOps) == 0 && len(sw.tagOps) == 0
}

// Commit drains the write-set: applies file operations in registration
// order, commits any resulting changes as one VCS commit, then places
// tags, running before-commit/after-commit/after-tag hooks around the
// corresponding phases. Commit is a no-op if the write-set was already
// committed (spec.md §4.2's reuse invariant).
func (sw *StateWrite) Commit(ctx context.Context) (bool, error) {
	if sw.committed {
		return false, nil
	}
	sw.committed = true

	touchedProjects := map[config.ProjectId]bool{}
	for _, op := range sw.fileOps {
		touchedProjects[op.projectID] = true
	}

	if err := sw.runHooks(ctx, touchedProjects, "before-commit"); err != nil {
		return false, err
	}

	files, err := sw.materializeFiles()
	if err != nil {
		return false, err
	}

	tags := make([]vcs.TagChange, 0, len(sw.tagOps))
	for _, t := range sw.tagOps {
		resolved := t.kind
		oid := t.oid
		if t.kind == vcs.TagAtHeadOrLast {
			if touchedProjects[t.projectID] {
				resolved = vcs.TagAtHead
			} else {
				p := sw.Projects[t.projectID]
				last, err := sw.Last.LastCommitForProject(ctx, p)
				if err != nil {
					return false, err
				}
				resolved = vcs.TagAtOid
				oid = last
			}
		}
		tags = append(tags, vcs.TagChange{Name: t.name, Kind: resolved, Oid: oid})
	}

	wrote, err := sw.Vcs.MakeChanges(ctx, files, tags)
	if err != nil {
		return false, err
	}

	if err := sw.runHooks(ctx, touchedProjects, "after-commit"); err != nil {
		return false, err
	}
	taggedProjects := map[config.ProjectId]bool{}
	for _, t := range sw.tagOps {
		taggedProjects[t.projectID] = true
	}
	if err := sw.runHooks(ctx, taggedProjects, "after-tag"); err != nil {
		return false, err
	}

	sw.fileOps = nil
	sw.tagOps = nil
	return wrote, nil
}

// materializeFiles applies every buffered file op in registration
// order, tracking per-path content starting from StateRead's view of
// the file (or empty, for an append to a not-yet-existing file), and
// returns the touched files in first-registration order.
func (sw *StateWrite) materializeFiles() ([]vcs.FileChange, error) {
	content := map[string][]byte{}
	order := []string{}

	get := func(path string) ([]byte, error) {
		if c, ok := content[path]; ok {
			return c, nil
		}
		if sw.Read != nil && sw.Read.HasFile(path) {
			c, err := sw.Read.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return c, nil
		}
		return nil, nil
	}

	for _, op := range sw.fileOps {
		if _, seen := content[op.path]; !seen {
			order = append(order, op.path)
		}
		switch op.kind {
		case opOverwrite:
			content[op.path] = op.content
		case opAppend:
			cur, err := get(op.path)
			if err != nil {
				return nil, err
			}
			content[op.path] = append(append([]byte{}, cur...), op.content...)
		case opMarkUpdate:
			cur, err := get(op.path)
			if err != nil {
				return nil, err
			}
			rewritten, err := op.picker.Rewrite(cur, op.oldMark, op.newValue)
			if err != nil {
				return nil, verr.Wrap(verr.Internal, err, "rewriting mark in %q", op.path)
			}
			content[op.path] = rewritten
		}
	}

	files := make([]vcs.FileChange, 0, len(order))
	for _, path := range order {
		files = append(files, vcs.FileChange{Path: path, Content: content[path]})
	}
	return files, nil
}

func (sw *StateWrite) runHooks(ctx context.Context, projects map[config.ProjectId]bool, phase string) error {
	if sw.Hooks == nil {
		return nil
	}
	ids := make([]int, 0, len(projects))
	for id := range projects {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, raw := range ids {
		id := config.ProjectId(raw)
		p := sw.Projects[id]
		if p == nil {
			continue
		}
		cmd, ok := p.Hooks[phase]
		if !ok || cmd == "" {
			continue
		}
		if err := sw.Hooks.Run(ctx, p, phase, cmd); err != nil {
			return err
		}
	}
	return nil
}
