package mono

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/versioio/versio/internal/changes"
	"github.com/versioio/versio/internal/prdiscovery"
	"github.com/versioio/versio/internal/vcs"
)

func assertEqual(t *testing.T, got, want interface{}) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

const versioYaml = `
options:
  prev_tag: base
projects:
  - id: 1
    name: pkg
    root: .
    tag_prefix: pkg
    version:
      file: pkg.json
      json: version
`

// fakeSlice is a read-only snapshot of a historical tree, keyed by path.
type fakeSlice struct {
	files map[string][]byte
}

func (s *fakeSlice) HasBlob(path string) bool { _, ok := s.files[path]; return ok }
func (s *fakeSlice) Blob(path string) ([]byte, error) {
	return s.files[path], nil
}

// fakeVcs simulates a three-commit chain base -> C1 -> HEAD rooted at a
// real temp directory, so StateRead/StateWrite exercise real file I/O
// while history/ancestry/tag placement stay in memory.
type fakeVcs struct {
	root      string
	prevFiles map[string][]byte // .versio.yaml + pkg.json as they stood at "base"

	madeFiles []vcs.FileChange
	madeTags  []vcs.TagChange
}

func (f *fakeVcs) RootDir() string             { return f.root }
func (f *fakeVcs) BranchName() (string, error) { return "main", nil }

func (f *fakeVcs) RevparseOid(ctx context.Context, refspec string) (changes.Oid, error) {
	return changes.Oid(refspec), nil
}

func (f *fakeVcs) Slice(ctx context.Context, refspec string) (vcs.SliceHandle, error) {
	return &fakeSlice{files: f.prevFiles}, nil
}

func (f *fakeVcs) ListTags(ctx context.Context) ([]vcs.TagRef, error) { return nil, nil }

func (f *fakeVcs) CommitsToHead(ctx context.Context, fromTag string, includeFrom bool) ([]vcs.CommitInfoBuf, error) {
	return []vcs.CommitInfoBuf{
		{Oid: "C1", Summary: "feat(pkg): add thing", Files: []string{"pkg.json"}, Included: true},
	}, nil
}

func (f *fakeVcs) CommitsBetween(ctx context.Context, baseOid, headOid changes.Oid) ([]vcs.CommitInfoBuf, error) {
	return []vcs.CommitInfoBuf{
		{Oid: "C1", Summary: "feat(pkg): add thing", Files: []string{"pkg.json"}, Included: true},
	}, nil
}

// isAncestor treats "base" as an ancestor of "C1" and "HEAD", and "C1"
// as an ancestor of "HEAD"; equal oids are always ancestors.
func (f *fakeVcs) IsAncestor(ctx context.Context, ancestor, descendant changes.Oid) (bool, error) {
	if ancestor == descendant {
		return true, nil
	}
	chain := map[changes.Oid]int{"base": 0, "C1": 1, "HEAD": 2}
	ai, aok := chain[ancestor]
	di, dok := chain[descendant]
	if !aok || !dok {
		return false, nil
	}
	return ai < di, nil
}

func (f *fakeVcs) Fetch(ctx context.Context, level vcs.Level) error { return nil }
func (f *fakeVcs) Pull(ctx context.Context, level vcs.Level) error  { return nil }
func (f *fakeVcs) Push(ctx context.Context, level vcs.Level) error  { return nil }

func (f *fakeVcs) MakeChanges(ctx context.Context, files []vcs.FileChange, tags []vcs.TagChange) (bool, error) {
	for _, fc := range files {
		if err := os.WriteFile(filepath.Join(f.root, fc.Path), fc.Content, 0o644); err != nil {
			return false, err
		}
	}
	f.madeFiles = files
	f.madeTags = tags
	return len(files) > 0 || len(tags) > 0, nil
}

func (f *fakeVcs) GithubInfo(ctx context.Context) (*vcs.GithubInfo, error) { return nil, nil }

// fakePrApi reports one PR (#7, base..HEAD) discovering commit C1.
type fakePrApi struct{}

func (fakePrApi) CommitsSince(ctx context.Context, base, head changes.Oid) ([]prdiscovery.CommitNode, error) {
	if base != "base" || head != "HEAD" {
		return nil, nil
	}
	return []prdiscovery.CommitNode{
		{
			Oid:     "C1",
			Summary: "feat(pkg): add thing",
			Message: "feat(pkg): add thing",
			Files:   []string{"pkg.json"},
			AssociatedPrs: []prdiscovery.AssociatedPr{
				{Number: 7, State: "MERGED", BaseRefOid: "base", HeadRefOid: "HEAD"},
			},
		},
	}, nil
}

func newTestMono(t *testing.T) (*Mono, *fakeVcs) {
	t.Helper()
	dir := t.TempDir()
	assertNoError(t, os.WriteFile(filepath.Join(dir, ".versio.yaml"), []byte(versioYaml), 0o644))
	assertNoError(t, os.WriteFile(filepath.Join(dir, "pkg.json"), []byte(`{"version":"1.0.0"}`), 0o644))

	v := &fakeVcs{
		root: dir,
		prevFiles: map[string][]byte{
			".versio.yaml": []byte(versioYaml),
			"pkg.json":     []byte(`{"version":"0.9.0"}`),
		},
	}

	m, err := Open(context.Background(), v, fakePrApi{})
	assertNoError(t, err)
	return m, v
}

func TestOpenLoadsLiveConfig(t *testing.T) {
	m, _ := newTestMono(t)
	assertEqual(t, len(m.Config.Projects), 1)
	assertEqual(t, m.Config.Projects[0].Name, "pkg")
}

func TestBuildPlanDiscoversPrAndSizesProject(t *testing.T) {
	m, _ := newTestMono(t)
	pl, err := m.BuildPlan(context.Background())
	assertNoError(t, err)

	if len(pl.Incrs) != 1 {
		t.Fatalf("expected one project increment, got %d", len(pl.Incrs))
	}
	assertEqual(t, pl.Incrs[0].Size.String(), "minor")
}

func TestKeyedFilesReportsConventionalKind(t *testing.T) {
	m, _ := newTestMono(t)
	files, err := m.KeyedFiles(context.Background())
	assertNoError(t, err)

	if len(files) != 1 {
		t.Fatalf("expected one keyed file, got %d", len(files))
	}
	assertEqual(t, files[0].Kind, "feat")
	assertEqual(t, files[0].File, "pkg.json")
}

func TestDiffDetectsValueChange(t *testing.T) {
	m, _ := newTestMono(t)
	a, err := m.Diff(context.Background())
	assertNoError(t, err)

	if len(a.Changes) != 1 {
		t.Fatalf("expected one change, got %d", len(a.Changes))
	}
	oldV, newV, changed := a.Changes[0].Value()
	if !changed {
		t.Fatalf("expected a value change")
	}
	assertEqual(t, oldV, "0.9.0")
	assertEqual(t, newV, "1.0.0")
}

func TestCommitBumpsVersionAndTagsHead(t *testing.T) {
	m, v := newTestMono(t)
	pl, err := m.BuildPlan(context.Background())
	assertNoError(t, err)

	wrote, err := m.Commit(context.Background(), pl, false)
	assertNoError(t, err)
	assertEqual(t, wrote, true)

	data, err := os.ReadFile(filepath.Join(v.root, "pkg.json"))
	assertNoError(t, err)
	assertEqual(t, string(data), `{"version":"1.1.0"}`)

	if len(v.madeTags) != 1 || v.madeTags[0].Name != "pkg-1.1.0" {
		t.Fatalf("expected tag pkg-1.1.0, got %+v", v.madeTags)
	}
	assertEqual(t, v.madeTags[0].Kind, vcs.TagAtHead)
}

func TestCommitDryRunDoesNotWrite(t *testing.T) {
	m, v := newTestMono(t)
	pl, err := m.BuildPlan(context.Background())
	assertNoError(t, err)

	wrote, err := m.Commit(context.Background(), pl, true)
	assertNoError(t, err)
	assertEqual(t, wrote, false)

	data, err := os.ReadFile(filepath.Join(v.root, "pkg.json"))
	assertNoError(t, err)
	assertEqual(t, string(data), `{"version":"1.0.0"}`)
}

func TestSetByIDOverwritesVersionDirectly(t *testing.T) {
	m, v := newTestMono(t)
	wrote, err := m.SetByID(context.Background(), 1, "9.9.9", false)
	assertNoError(t, err)
	assertEqual(t, wrote, true)

	data, err := os.ReadFile(filepath.Join(v.root, "pkg.json"))
	assertNoError(t, err)
	assertEqual(t, string(data), `{"version":"9.9.9"}`)
}

func TestSetByIDDryRunDoesNotWrite(t *testing.T) {
	m, v := newTestMono(t)
	wrote, err := m.SetByID(context.Background(), 1, "9.9.9", true)
	assertNoError(t, err)
	assertEqual(t, wrote, false)

	data, err := os.ReadFile(filepath.Join(v.root, "pkg.json"))
	assertNoError(t, err)
	assertEqual(t, string(data), `{"version":"1.0.0"}`)
}

func TestGetByIDPrevIsUnimplemented(t *testing.T) {
	m, _ := newTestMono(t)
	_, err := m.GetByID(1, true)
	if err == nil {
		t.Fatalf("expected get --prev to return an error")
	}
}
