package changelog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/versioio/versio/internal/changes"
	"github.com/versioio/versio/internal/config"
	"github.com/versioio/versio/internal/sizer"
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

func assertTrue(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Fatal(msg)
	}
}

func TestAddPrCoalescesByNumber(t *testing.T) {
	cl := NewChangelog()
	pr := changes.NewFullPr(42, "add feature", "base", "head", "feature", time.Time{}, 0)

	cl.AddPr(pr, sizer.Minor, changes.CommitInfo{Oid: "A", Summary: "feat: a", Included: true})
	cl.AddPr(pr, sizer.Patch, changes.CommitInfo{Oid: "B", Summary: "fix: b", Included: true})

	assertEqual(t, len(cl.Entries), 1)
	entry := cl.Entries[0]
	assertEqual(t, entry.Size, sizer.Minor)
	assertEqual(t, len(entry.Commits), 2)
}

func TestAddPrMarksDuplicateCommit(t *testing.T) {
	cl := NewChangelog()
	pr := changes.NewFullPr(1, "", "base", "head", "", time.Time{}, 0)
	c := changes.CommitInfo{Oid: "A", Summary: "feat: a", Included: true}

	cl.AddPr(pr, sizer.Minor, c)
	cl.AddPr(pr, sizer.Minor, c)

	entry := cl.Entries[0]
	assertTrue(t, !entry.Commits[0].Duplicate, "first occurrence should not be marked duplicate")
	assertTrue(t, entry.Commits[1].Duplicate, "second occurrence of the same commit should be marked duplicate")
}

func TestSpliceRoundTripsWithExtractOldContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CHANGELOG.md")

	rendered := "## v1.2.0\n- added a feature\n"
	spliced := Splice(rendered, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))

	full := "# Changelog\n\n" + spliced + "\nolder content below\n"
	assertNoError(t, os.WriteFile(path, []byte(full), 0o644))

	old, err := ExtractOldContent(path)
	assertNoError(t, err)
	assertEqual(t, old, rendered[:len(rendered)-1]) // trailing newline consumed by line splitting
}

func TestExtractOldContentMissingFile(t *testing.T) {
	old, err := ExtractOldContent(filepath.Join(t.TempDir(), "does-not-exist.md"))
	assertNoError(t, err)
	assertEqual(t, old, "")
}

func TestLoadTemplateBuiltinHTML(t *testing.T) {
	src, err := LoadTemplate(context.Background(), "builtin:html", "")
	assertNoError(t, err)
	assertTrue(t, len(src) > 0, "expected non-empty builtin html template")
}

func TestLoadTemplateBuiltinJSON(t *testing.T) {
	src, err := LoadTemplate(context.Background(), "builtin:json", "")
	assertNoError(t, err)
	assertTrue(t, len(src) > 0, "expected non-empty builtin json template")
}

func TestLoadTemplateUnknownScheme(t *testing.T) {
	_, err := LoadTemplate(context.Background(), "ftp://example.com/tmpl", "")
	if err == nil {
		t.Fatal("expected an error for an unrecognized template protocol")
	}
}

func TestRenderBuiltinJSONProducesPrEntry(t *testing.T) {
	src, err := LoadTemplate(context.Background(), "builtin:json", "")
	assertNoError(t, err)
	r, err := NewRenderer("json", src)
	assertNoError(t, err)

	cl := NewChangelog()
	pr := changes.NewFullPr(7, "fix bug", "base", "head", "", time.Time{}, 0)
	cl.AddPr(pr, sizer.Patch, changes.CommitInfo{Oid: "abcdef1234", Summary: "fix: bug", Included: true})

	proj := &config.Project{ID: 1, Name: "demo", Root: "."}
	data := BuildTemplateData(proj, "1.0.1", cl, "", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))

	out, err := r.Render(data)
	assertNoError(t, err)
	assertTrue(t, len(out) > 0, "expected non-empty rendered output")
}
