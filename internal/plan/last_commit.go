package plan

import (
	"context"

	"github.com/versioio/versio/internal/changes"
	"github.com/versioio/versio/internal/config"
	"github.com/versioio/versio/internal/vcs"
	"github.com/versioio/versio/internal/verr"
)

// LineCommitFinder implements line_commits (spec.md §4.6): the most
// recent commit on the direct line history, since PrevTag, that
// touched a project's root. It implements state.LastCommitFinder.
type LineCommitFinder struct {
	Vcs      vcs.Vcs
	PrevTag  string
	fromHead []vcs.CommitInfoBuf // lazily populated, newest first
}

func (f *LineCommitFinder) commits(ctx context.Context) ([]vcs.CommitInfoBuf, error) {
	if f.fromHead != nil {
		return f.fromHead, nil
	}
	commits, err := f.Vcs.CommitsToHead(ctx, f.PrevTag, false)
	if err != nil {
		return nil, err
	}
	f.fromHead = commits
	return commits, nil
}

// LastCommitForProject implements state.LastCommitFinder.
func (f *LineCommitFinder) LastCommitForProject(ctx context.Context, p *config.Project) (changes.Oid, error) {
	commits, err := f.commits(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range commits {
		for _, file := range c.Files {
			if fileUnderRoot(file, p.Root) {
				return c.Oid, nil
			}
		}
	}
	if f.PrevTag != "" {
		return f.Vcs.RevparseOid(ctx, f.PrevTag)
	}
	return "", verr.New(verr.Internal, "no commit found on the line history touching project %q", p.Name)
}
