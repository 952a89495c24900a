package mono

import (
	"context"

	"github.com/versioio/versio/internal/config"
	"github.com/versioio/versio/internal/plan"
	"github.com/versioio/versio/internal/sizer"
	"github.com/versioio/versio/internal/state"
	"github.com/versioio/versio/internal/verr"
)

// newStateWrite builds a StateWrite against the live repository, using
// LineCommitFinder for tag-at-head-or-last resolution (spec.md §4.2
// step 4 / §4.6's line_commits).
func (m *Mono) newStateWrite(ctx context.Context) (*state.StateWrite, error) {
	prevOid, err := m.prevOid(ctx)
	if err != nil {
		return nil, err
	}
	finder := &plan.LineCommitFinder{Vcs: m.Vcs, PrevTag: string(prevOid)}
	hooks := state.ShellHookRunner{}
	return state.NewStateWrite(m.Vcs, m.Current, finder, hooks, m.Config.ByID), nil
}

// Commit applies pl: for every project whose size exceeds None, bumps
// its version per spec.md §4.6/§9 and places the corresponding tag. A
// dry run builds the write-set but never calls StateWrite.Commit.
func (m *Mono) Commit(ctx context.Context, pl *plan.Plan, dryRun bool) (bool, error) {
	sw, err := m.newStateWrite(ctx)
	if err != nil {
		return false, err
	}

	for _, incr := range pl.Incrs {
		if !sizePassesThreshold(incr.Size) {
			continue
		}
		if err := m.queueBump(sw, incr.Project, incr.Size); err != nil {
			return false, err
		}
	}

	if dryRun || sw.Empty() {
		return false, nil
	}
	return sw.Commit(ctx)
}

// queueBump resolves p's current version, applies size, and buffers
// the resulting file/tag operations onto sw.
func (m *Mono) queueBump(sw *state.StateWrite, p *config.Project, size sizer.Size) error {
	current, md, err := p.CurrentVersion(m.Current)
	if err != nil {
		return err
	}
	newVersion, err := sizer.Apply(size, current)
	if err != nil {
		return err
	}

	switch src := p.Source.(type) {
	case config.FileSource:
		if md == nil {
			return verr.New(verr.Internal, "project %q: FileSource resolved no mark", p.Name)
		}
		sw.UpdateMark(p.ID, src.Path, src.Picker, md.Mark, newVersion)
	case config.TagsSource:
		// no file write for a pure tags project; nothing to buffer here
		// besides the tag itself, below.
	}

	sw.TagHeadOrLast(p.ID, p.FullTagName(newVersion))
	return nil
}

// SetByID overwrites a project's version to an explicit value, bypassing
// size computation (the `set` command's semantics). A dry run buffers
// the write-set but never calls StateWrite.Commit.
func (m *Mono) SetByID(ctx context.Context, id config.ProjectId, value string, dryRun bool) (bool, error) {
	p, err := m.Project(id)
	if err != nil {
		return false, err
	}
	sw, err := m.newStateWrite(ctx)
	if err != nil {
		return false, err
	}
	if err := m.queueSet(sw, p, value); err != nil {
		return false, err
	}
	if dryRun {
		return false, nil
	}
	return sw.Commit(ctx)
}

// SetByName is SetByID resolved through a unique project-name lookup.
func (m *Mono) SetByName(ctx context.Context, name, value string, dryRun bool) (bool, error) {
	p, err := m.ProjectByName(name)
	if err != nil {
		return false, err
	}
	sw, err := m.newStateWrite(ctx)
	if err != nil {
		return false, err
	}
	if err := m.queueSet(sw, p, value); err != nil {
		return false, err
	}
	if dryRun {
		return false, nil
	}
	return sw.Commit(ctx)
}

func (m *Mono) queueSet(sw *state.StateWrite, p *config.Project, value string) error {
	_, md, err := p.CurrentVersion(m.Current)
	if err != nil {
		return err
	}
	switch src := p.Source.(type) {
	case config.FileSource:
		if md == nil {
			return verr.New(verr.Internal, "project %q: FileSource resolved no mark", p.Name)
		}
		sw.UpdateMark(p.ID, src.Path, src.Picker, md.Mark, value)
	case config.TagsSource:
	}
	sw.TagHeadOrLast(p.ID, p.FullTagName(value))
	return nil
}
