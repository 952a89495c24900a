package state

import (
	"context"
	"testing"

	"github.com/versioio/versio/internal/changes"
	"github.com/versioio/versio/internal/config"
	"github.com/versioio/versio/internal/mark"
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

func assertBool(t *testing.T, got, want bool) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// linearAncestry builds an isAncestor func over a simple parent chain,
// where chain[i] is an ancestor of chain[i+1:].
func linearAncestry(chain []changes.Oid) func(a, d changes.Oid) (bool, error) {
	index := map[changes.Oid]int{}
	for i, o := range chain {
		index[o] = i
	}
	return func(a, d changes.Oid) (bool, error) {
		ai, aok := index[a]
		di, dok := index[d]
		if !aok || !dok {
			return false, nil
		}
		return ai <= di, nil
	}
}

func TestOldTagsLatestAndNotAfter(t *testing.T) {
	chain := []changes.Oid{"c1", "c2", "c3", "c4"}
	isAnc := linearAncestry(chain)

	entries := []TagEntry{
		{Name: "v1.1.0", Oid: "c3"},
		{Name: "v1.0.0", Oid: "c1"},
	}
	tags, err := NewOldTags(entries, isAnc)
	assertNoError(t, err)

	latest, ok := tags.Latest("v")
	assertBool(t, ok, true)
	// byPrefix ordering is caller-supplied, newest first.
	assertEqual(t, latest, "v1.1.0")

	name, ok, err := tags.NotAfter("v", "c4", isAnc)
	assertNoError(t, err)
	assertBool(t, ok, true)
	assertEqual(t, name, "v1.1.0")

	name, ok, err = tags.NotAfter("v", "c2", isAnc)
	assertNoError(t, err)
	assertBool(t, ok, true)
	assertEqual(t, name, "v1.0.0")
}

func TestSliceEarlierMatchesNotAfter(t *testing.T) {
	chain := []changes.Oid{"c1", "c2", "c3", "c4", "c5"}
	isAnc := linearAncestry(chain)

	entries := []TagEntry{
		{Name: "v1.2.0", Oid: "c5"},
		{Name: "v1.1.0", Oid: "c3"},
		{Name: "v1.0.0", Oid: "c1"},
	}
	tags, err := NewOldTags(entries, isAnc)
	assertNoError(t, err)

	for _, probe := range chain {
		sliced, err := tags.SliceEarlier(probe, isAnc)
		assertNoError(t, err)

		sliceLatest, sliceOk := sliced.Latest("v")
		directName, directOk, err := tags.NotAfter("v", probe, isAnc)
		assertNoError(t, err)

		assertBool(t, sliceOk, directOk)
		if directOk {
			assertEqual(t, sliceLatest, directName)
		}
	}
}

// fakeVcs implements vcs.Vcs minimally for StateWrite.Commit tests.
type fakeVcs struct {
	root        string
	madeFiles   []vcs.FileChange
	madeTags    []vcs.TagChange
	ancestryFor map[changes.Oid]map[changes.Oid]bool
}

func (f *fakeVcs) RootDir() string                                   { return f.root }
func (f *fakeVcs) BranchName() (string, error)                       { return "main", nil }
func (f *fakeVcs) RevparseOid(context.Context, string) (changes.Oid, error) {
	return "", nil
}
func (f *fakeVcs) Slice(context.Context, string) (vcs.SliceHandle, error) { return nil, nil }
func (f *fakeVcs) CommitsToHead(context.Context, string, bool) ([]vcs.CommitInfoBuf, error) {
	return nil, nil
}
func (f *fakeVcs) CommitsBetween(context.Context, changes.Oid, changes.Oid) ([]vcs.CommitInfoBuf, error) {
	return nil, nil
}
func (f *fakeVcs) IsAncestor(ctx context.Context, a, d changes.Oid) (bool, error) {
	return f.ancestryFor[d][a], nil
}
func (f *fakeVcs) ListTags(context.Context) ([]vcs.TagRef, error) { return nil, nil }
func (f *fakeVcs) Fetch(context.Context, vcs.Level) error { return nil }
func (f *fakeVcs) Pull(context.Context, vcs.Level) error  { return nil }
func (f *fakeVcs) Push(context.Context, vcs.Level) error  { return nil }
func (f *fakeVcs) MakeChanges(ctx context.Context, files []vcs.FileChange, tags []vcs.TagChange) (bool, error) {
	f.madeFiles = files
	f.madeTags = tags
	return len(files) > 0 || len(tags) > 0, nil
}
func (f *fakeVcs) GithubInfo(context.Context) (*vcs.GithubInfo, error) { return nil, nil }

type fakeRead struct {
	files map[string][]byte
}

func (r *fakeRead) CommitOid() (changes.Oid, bool) { return "", false }
func (r *fakeRead) HasFile(path string) bool       { _, ok := r.files[path]; return ok }
func (r *fakeRead) ReadFile(path string) ([]byte, error) {
	return r.files[path], nil
}
func (r *fakeRead) LatestTag(string) (string, bool) { return "", false }

type fakeLastCommit struct {
	oid changes.Oid
}

func (f *fakeLastCommit) LastCommitForProject(ctx context.Context, p *config.Project) (changes.Oid, error) {
	return f.oid, nil
}

func TestStateWriteAppliesOpsInRegistrationOrder(t *testing.T) {
	v := &fakeVcs{root: "/repo"}
	read := &fakeRead{files: map[string][]byte{"pkg.json": []byte(`{"version":"1.0.0"}`)}}
	projects := map[config.ProjectId]*config.Project{1: {ID: 1, Name: "pkg", Root: "."}}
	sw := NewStateWrite(v, read, &fakeLastCommit{}, nil, projects)

	sw.WriteFile(1, "README.md", []byte("hello\n"))
	sw.AppendFile(1, "README.md", []byte("world\n"))

	wrote, err := sw.Commit(context.Background())
	assertNoError(t, err)
	assertBool(t, wrote, true)

	if len(v.madeFiles) != 1 {
		t.Fatalf("expected exactly one file change, got %d", len(v.madeFiles))
	}
	assertEqual(t, string(v.madeFiles[0].Content), "hello\nworld\n")
}

func TestStateWriteMarkUpdateUsesBaseContent(t *testing.T) {
	v := &fakeVcs{root: "/repo"}
	read := &fakeRead{files: map[string][]byte{"pkg.json": []byte(`{"version":"1.0.0"}`)}}
	projects := map[config.ProjectId]*config.Project{1: {ID: 1, Name: "pkg", Root: "."}}
	sw := NewStateWrite(v, read, &fakeLastCommit{}, nil, projects)

	picker := &stubPicker{}
	sw.UpdateMark(1, "pkg.json", picker, mark.Mark{Value: "1.0.0", ByteOffset: 12}, "1.1.0")

	_, err := sw.Commit(context.Background())
	assertNoError(t, err)
	assertEqual(t, string(v.madeFiles[0].Content), `{"version":"1.1.0"}`)
}

func TestStateWriteHeadOrLastFallsBackWhenNoWrite(t *testing.T) {
	v := &fakeVcs{root: "/repo"}
	projects := map[config.ProjectId]*config.Project{2: {ID: 2, Name: "other", Root: "other"}}
	sw := NewStateWrite(v, &fakeRead{files: map[string][]byte{}}, &fakeLastCommit{oid: "deadbeef"}, nil, projects)

	sw.TagHeadOrLast(2, "other-v1.0.0")

	_, err := sw.Commit(context.Background())
	assertNoError(t, err)

	if len(v.madeTags) != 1 {
		t.Fatalf("expected one tag placement")
	}
	assertEqual(t, v.madeTags[0].Kind, vcs.TagAtOid)
	assertEqual(t, v.madeTags[0].Oid, changes.Oid("deadbeef"))
}

func TestStateWriteHeadOrLastUsesHeadWhenProjectWrote(t *testing.T) {
	v := &fakeVcs{root: "/repo"}
	projects := map[config.ProjectId]*config.Project{3: {ID: 3, Name: "pkg", Root: "."}}
	sw := NewStateWrite(v, &fakeRead{files: map[string][]byte{}}, &fakeLastCommit{oid: "should-not-be-used"}, nil, projects)

	sw.WriteFile(3, "VERSION", []byte("1.2.0\n"))
	sw.TagHeadOrLast(3, "pkg-v1.2.0")

	_, err := sw.Commit(context.Background())
	assertNoError(t, err)

	assertEqual(t, v.madeTags[0].Kind, vcs.TagAtHead)
}

func TestStateWriteCommitIsNoOpAfterFirstCommit(t *testing.T) {
	v := &fakeVcs{root: "/repo"}
	projects := map[config.ProjectId]*config.Project{1: {ID: 1, Name: "pkg", Root: "."}}
	sw := NewStateWrite(v, &fakeRead{files: map[string][]byte{}}, &fakeLastCommit{}, nil, projects)
	sw.WriteFile(1, "a.txt", []byte("x"))

	wrote1, err := sw.Commit(context.Background())
	assertNoError(t, err)
	assertBool(t, wrote1, true)

	wrote2, err := sw.Commit(context.Background())
	assertNoError(t, err)
	assertBool(t, wrote2, false)
}

// stubPicker is a mark.Picker stand-in that rewrites by naive splice,
// used only to exercise StateWrite's materialization path.
type stubPicker struct{}

func (stubPicker) Find(data []byte) (mark.Mark, error) { return mark.Mark{}, nil }
func (stubPicker) Scan(nd mark.NamedData) (*mark.MarkedData, error) {
	return nil, nil
}
func (stubPicker) Rewrite(data []byte, m mark.Mark, newValue string) ([]byte, error) {
	out := make([]byte, 0, len(data))
	out = append(out, data[:m.ByteOffset]...)
	out = append(out, newValue...)
	out = append(out, data[m.ByteOffset+len(m.Value):]...)
	return out, nil
}
