package vcs

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/versioio/versio/internal/changes"
	"github.com/versioio/versio/internal/verr"
)

// GitRepo is the go-git-backed Vcs implementation. The library handles
// everything local; Remote/Smart-level network operations go through
// go-git's own transport rather than shelling out, since go-git's
// fetch/push cover the credentialed cases this tool needs.
type GitRepo struct {
	repo *git.Repository
	root string
	auth *http.BasicAuth
}

// Open opens an existing git repository rooted at dir.
func Open(dir string) (*GitRepo, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, verr.Wrap(verr.VcsUnavailable, err, "opening git repository at %q", dir)
	}
	return &GitRepo{repo: repo, root: dir}, nil
}

// SetAuth configures credentials for Remote/Smart-level fetch/push.
func (g *GitRepo) SetAuth(username, password string) {
	g.auth = &http.BasicAuth{Username: username, Password: password}
}

// RootDir implements Vcs.
func (g *GitRepo) RootDir() string { return g.root }

// BranchName implements Vcs.
func (g *GitRepo) BranchName() (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", verr.Wrap(verr.VcsUnavailable, err, "resolving HEAD")
	}
	if !head.Name().IsBranch() {
		return "", verr.New(verr.VcsUnavailable, "HEAD is detached")
	}
	return head.Name().Short(), nil
}

// RevparseOid implements Vcs.
func (g *GitRepo) RevparseOid(ctx context.Context, refspec string) (changes.Oid, error) {
	hash, err := g.repo.ResolveRevision(plumbing.Revision(refspec))
	if err != nil {
		return "", verr.Wrap(verr.VcsUnavailable, err, "resolving %q", refspec)
	}
	return changes.Oid(hash.String()), nil
}

// gitSlice is the SliceHandle implementation backed by a resolved tree.
type gitSlice struct {
	tree *object.Tree
}

func (s *gitSlice) HasBlob(path string) bool {
	_, err := s.tree.File(path)
	return err == nil
}

func (s *gitSlice) Blob(path string) ([]byte, error) {
	f, err := s.tree.File(path)
	if err != nil {
		return nil, verr.Wrap(verr.FileNotFound, err, "reading %q", path)
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, verr.Wrap(verr.Internal, err, "reading blob contents for %q", path)
	}
	return []byte(contents), nil
}

// Slice implements Vcs.
func (g *GitRepo) Slice(ctx context.Context, refspec string) (SliceHandle, error) {
	hash, err := g.repo.ResolveRevision(plumbing.Revision(refspec))
	if err != nil {
		return nil, verr.Wrap(verr.VcsUnavailable, err, "resolving %q", refspec)
	}
	commit, err := g.repo.CommitObject(*hash)
	if err != nil {
		return nil, verr.Wrap(verr.Internal, err, "loading commit %s", hash)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, verr.Wrap(verr.Internal, err, "loading tree for commit %s", hash)
	}
	return &gitSlice{tree: tree}, nil
}

func commitInfoFromObject(c *object.Commit) CommitInfoBuf {
	summary := c.Message
	if idx := strings.IndexByte(summary, '\n'); idx >= 0 {
		summary = summary[:idx]
	}

	var files []string
	if stats, err := c.Stats(); err == nil {
		for _, s := range stats {
			files = append(files, s.Name)
		}
	}

	return CommitInfoBuf{
		Oid:       changes.Oid(c.Hash.String()),
		Summary:   summary,
		Message:   c.Message,
		Files:     files,
		Included:  true,
		Timestamp: c.Author.When,
	}
}

// CommitsToHead implements Vcs.
func (g *GitRepo) CommitsToHead(ctx context.Context, fromTag string, includeFrom bool) ([]CommitInfoBuf, error) {
	head, err := g.repo.Head()
	if err != nil {
		return nil, verr.Wrap(verr.VcsUnavailable, err, "resolving HEAD")
	}
	headCommit, err := g.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, verr.Wrap(verr.Internal, err, "loading HEAD commit")
	}

	boundary := map[plumbing.Hash]bool{}
	if fromTag != "" {
		fromHash, err := g.repo.ResolveRevision(plumbing.Revision(fromTag))
		if err != nil {
			return nil, verr.Wrap(verr.VcsUnavailable, err, "resolving %q", fromTag)
		}
		fromCommit, err := g.repo.CommitObject(*fromHash)
		if err != nil {
			return nil, verr.Wrap(verr.Internal, err, "loading commit for %q", fromTag)
		}
		iter := object.NewCommitIterBSF(fromCommit, nil, nil)
		err = iter.ForEach(func(c *object.Commit) error {
			if c.Hash == fromCommit.Hash && includeFrom {
				return nil
			}
			boundary[c.Hash] = true
			return nil
		})
		if err != nil {
			return nil, verr.Wrap(verr.Internal, err, "walking ancestry of %q", fromTag)
		}
	}

	var out []CommitInfoBuf
	iter := object.NewCommitIterBSF(headCommit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		if boundary[c.Hash] {
			return nil
		}
		out = append(out, commitInfoFromObject(c))
		return nil
	})
	if err != nil {
		return nil, verr.Wrap(verr.Internal, err, "walking ancestry of HEAD")
	}
	return out, nil
}

// CommitsBetween implements Vcs.
func (g *GitRepo) CommitsBetween(ctx context.Context, baseOid, headOid changes.Oid) ([]CommitInfoBuf, error) {
	head, err := g.repo.CommitObject(plumbing.NewHash(string(headOid)))
	if err != nil {
		return nil, verr.Wrap(verr.Internal, err, "loading commit %s", headOid)
	}
	base, err := g.repo.CommitObject(plumbing.NewHash(string(baseOid)))
	if err != nil {
		return nil, verr.Wrap(verr.Internal, err, "loading commit %s", baseOid)
	}

	excluded := map[plumbing.Hash]bool{base.Hash: true}
	baseIter := object.NewCommitIterBSF(base, nil, nil)
	if err := baseIter.ForEach(func(c *object.Commit) error {
		excluded[c.Hash] = true
		return nil
	}); err != nil {
		return nil, verr.Wrap(verr.Internal, err, "walking ancestry of %s", baseOid)
	}

	var out []CommitInfoBuf
	headIter := object.NewCommitIterBSF(head, nil, nil)
	err = headIter.ForEach(func(c *object.Commit) error {
		if excluded[c.Hash] {
			return nil
		}
		out = append(out, commitInfoFromObject(c))
		return nil
	})
	if err != nil {
		return nil, verr.Wrap(verr.Internal, err, "walking ancestry between %s and %s", baseOid, headOid)
	}
	return out, nil
}

// ListTags implements Vcs, dereferencing annotated tags to the commit
// they point at.
func (g *GitRepo) ListTags(ctx context.Context) ([]TagRef, error) {
	iter, err := g.repo.Tags()
	if err != nil {
		return nil, verr.Wrap(verr.Internal, err, "listing tags")
	}
	defer iter.Close()

	var out []TagRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		if tagObj, err := g.repo.TagObject(hash); err == nil {
			hash = tagObj.Target
		}
		if commit, err := g.repo.CommitObject(hash); err == nil {
			hash = commit.Hash
		}
		out = append(out, TagRef{Name: ref.Name().Short(), Oid: changes.Oid(hash.String())})
		return nil
	})
	if err != nil {
		return nil, verr.Wrap(verr.Internal, err, "walking tag refs")
	}
	return out, nil
}

// IsAncestor implements Vcs.
func (g *GitRepo) IsAncestor(ctx context.Context, ancestor, descendant changes.Oid) (bool, error) {
	ancestorHash := plumbing.NewHash(string(ancestor))
	descendantHash := plumbing.NewHash(string(descendant))
	if ancestorHash == descendantHash {
		return true, nil
	}
	descCommit, err := g.repo.CommitObject(descendantHash)
	if err != nil {
		return false, verr.Wrap(verr.Internal, err, "loading commit %s", descendant)
	}

	found := false
	iter := object.NewCommitIterBSF(descCommit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		if c.Hash == ancestorHash {
			found = true
			return storer.ErrStop
		}
		return nil
	})
	if err != nil && err != storer.ErrStop {
		return false, verr.Wrap(verr.Internal, err, "walking ancestry of %s", descendant)
	}
	return found, nil
}

func (g *GitRepo) requireLevel(level Level, min Level, op string) error {
	if level < min {
		return verr.New(verr.VcsUnavailable, "%s requires vcs level >= %s, have %s", op, min, level)
	}
	return nil
}

// Fetch implements Vcs.
func (g *GitRepo) Fetch(ctx context.Context, level Level) error {
	if err := g.requireLevel(level, Remote, "fetch"); err != nil {
		return err
	}
	err := g.repo.FetchContext(ctx, &git.FetchOptions{Auth: g.authOrNil()})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return verr.Wrap(verr.VcsUnavailable, err, "fetch")
	}
	return nil
}

// Pull implements Vcs.
func (g *GitRepo) Pull(ctx context.Context, level Level) error {
	if err := g.requireLevel(level, Remote, "pull"); err != nil {
		return err
	}
	wt, err := g.repo.Worktree()
	if err != nil {
		return verr.Wrap(verr.Internal, err, "opening worktree")
	}
	status, err := wt.Status()
	if err != nil {
		return verr.Wrap(verr.Internal, err, "checking worktree status")
	}
	if !status.IsClean() {
		return verr.New(verr.VcsStateDirty, "pull requires a clean working tree")
	}
	err = wt.PullContext(ctx, &git.PullOptions{Auth: g.authOrNil()})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		if err == git.ErrNonFastForwardUpdate {
			return verr.Wrap(verr.VcsConflict, err, "pull")
		}
		return verr.Wrap(verr.VcsUnavailable, err, "pull")
	}
	return nil
}

// Push implements Vcs.
func (g *GitRepo) Push(ctx context.Context, level Level) error {
	if err := g.requireLevel(level, Remote, "push"); err != nil {
		return err
	}
	err := g.repo.PushContext(ctx, &git.PushOptions{Auth: g.authOrNil()})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		if err == git.ErrNonFastForwardUpdate {
			return verr.Wrap(verr.VcsConflict, err, "push")
		}
		return verr.Wrap(verr.VcsUnavailable, err, "push")
	}
	return nil
}

func (g *GitRepo) authOrNil() *http.BasicAuth {
	return g.auth
}

// MakeChanges implements Vcs: applies file writes, commits them in one
// shot, then places tags, matching StateWrite.Commit's ordering
// (spec.md §4.2).
func (g *GitRepo) MakeChanges(ctx context.Context, files []FileChange, tags []TagChange) (bool, error) {
	wt, err := g.repo.Worktree()
	if err != nil {
		return false, verr.Wrap(verr.Internal, err, "opening worktree")
	}

	wrote := false
	for _, f := range files {
		full := filepath.Join(g.root, f.Path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return false, verr.Wrap(verr.Internal, err, "creating directory for %q", f.Path)
		}
		if err := os.WriteFile(full, f.Content, 0o644); err != nil {
			return false, verr.Wrap(verr.Internal, err, "writing %q", f.Path)
		}
		if _, err := wt.Add(f.Path); err != nil {
			return false, verr.Wrap(verr.Internal, err, "staging %q", f.Path)
		}
		wrote = true
	}

	var headHash plumbing.Hash
	if wrote {
		hash, err := wt.Commit("versio: apply version plan", &git.CommitOptions{})
		if err != nil {
			return false, verr.Wrap(verr.Internal, err, "committing version plan")
		}
		headHash = hash
	} else if head, err := g.repo.Head(); err == nil {
		headHash = head.Hash()
	}

	for _, tag := range tags {
		var target plumbing.Hash
		switch tag.Kind {
		case TagAtOid:
			target = plumbing.NewHash(string(tag.Oid))
		default:
			target = headHash
		}
		if _, err := g.repo.CreateTag(tag.Name, target, nil); err != nil {
			return false, verr.Wrap(verr.Internal, err, "creating tag %q", tag.Name)
		}
	}

	return wrote || len(tags) > 0, nil
}

var githubURLPattern = regexp.MustCompile(`github\.com[:/]([^/]+)/([^/.]+)(\.git)?$`)

// GithubInfo implements Vcs by inspecting the "origin" remote URL.
func (g *GitRepo) GithubInfo(ctx context.Context) (*GithubInfo, error) {
	remote, err := g.repo.Remote("origin")
	if err != nil {
		return nil, nil
	}
	for _, url := range remote.Config().URLs {
		m := githubURLPattern.FindStringSubmatch(strings.TrimSpace(url))
		if m != nil {
			return &GithubInfo{Owner: m[1], Repo: m[2]}, nil
		}
	}
	return nil, nil
}
