package plan

import (
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

func newProject(id config.ProjectId, name, root string, depends ...config.ProjectId) *config.Project {
	deps := map[config.ProjectId]bool{}
	for _, d := range depends {
		deps[d] = true
	}
	return &config.Project{ID: id, Name: name, Root: root, Depends: deps}
}

func basicConfig() *config.Config {
	return &config.Config{
		Projects: []*config.Project{
			newProject(1, "api", "api"),
			newProject(2, "web", "web", 1),
		},
		Sizes: sizer.NewPolicy(),
	}
}

func TestBuildPlanSizesByIncludedCommits(t *testing.T) {
	cfg := basicConfig()

	pr := changes.NewFullPr(10, "add endpoint", "base", "head", "", time.Now(), 0)
	pr.Commits = []changes.CommitInfo{
		{Oid: "A", Summary: "feat(api): add endpoint", Files: []string{"api/main.go"}, Included: true},
		{Oid: "B", Summary: "fix(api): typo", Files: []string{"api/main.go"}, Included: true},
	}

	ch := changes.NewChanges()
	ch.Groups[10] = pr
	ch.Commits["A"] = true
	ch.Commits["B"] = true

	p, err := BuildPlan(cfg, ch)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	var apiIncr, webIncr *ProjectIncr
	for _, incr := range p.Incrs {
		switch incr.Project.ID {
		case 1:
			apiIncr = incr
		case 2:
			webIncr = incr
		}
	}

	assertEqual(t, apiIncr.Size, sizer.Minor)
	// web depends on api; api's Minor size propagates.
	assertEqual(t, webIncr.Size, sizer.Minor)

	foundDep := false
	for _, e := range webIncr.Log.Entries {
		if e.DepName == "api" {
			foundDep = true
		}
	}
	if !foundDep {
		t.Fatalf("expected web's changelog to record a dependency-propagation entry from api")
	}
}

func TestBuildPlanIgnoresUnrelatedProjectFiles(t *testing.T) {
	cfg := basicConfig()

	pr := changes.NewFullPr(11, "web only", "base", "head", "", time.Now(), 0)
	pr.Commits = []changes.CommitInfo{
		{Oid: "C", Summary: "feat(web): add page", Files: []string{"web/index.html"}, Included: true},
	}
	ch := changes.NewChanges()
	ch.Groups[11] = pr

	p, err := BuildPlan(cfg, ch)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	for _, incr := range p.Incrs {
		if incr.Project.ID == 1 {
			assertEqual(t, incr.Size, sizer.Empty)
		}
		if incr.Project.ID == 2 {
			assertEqual(t, incr.Size, sizer.Minor)
		}
	}
}

func TestBuildPlanCommitContributesToMultipleProjects(t *testing.T) {
	cfg := &config.Config{
		Projects: []*config.Project{
			newProject(1, "root", "."),
			newProject(2, "sub", "sub"),
		},
		Sizes: sizer.NewPolicy(),
	}

	pr := changes.NewFullPr(20, "touch both", "base", "head", "", time.Now(), 0)
	pr.Commits = []changes.CommitInfo{
		{Oid: "D", Summary: "fix: shared change", Files: []string{"sub/file.go"}, Included: true},
	}
	ch := changes.NewChanges()
	ch.Groups[20] = pr

	p, err := BuildPlan(cfg, ch)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	for _, incr := range p.Incrs {
		assertEqual(t, incr.Size, sizer.Patch)
		assertEqual(t, len(incr.Log.Entries), 1)
	}
}

func TestBuildPlanIneffectivePrs(t *testing.T) {
	cfg := basicConfig()

	pr := changes.NewFullPr(30, "docs only", "base", "head", "", time.Now(), 0)
	pr.Commits = []changes.CommitInfo{
		{Oid: "E", Summary: "docs(api): update readme", Files: []string{"api/README.md"}, Included: true},
	}
	ch := changes.NewChanges()
	ch.Groups[30] = pr

	p, err := BuildPlan(cfg, ch)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	if len(p.Ineffective) != 1 || p.Ineffective[0].Number != 30 {
		t.Fatalf("expected PR 30 to be reported ineffective, got %+v", p.Ineffective)
	}
}

func TestBuildPlanIsDeterministic(t *testing.T) {
	cfg := basicConfig()
	buildChanges := func() *changes.Changes {
		pr := changes.NewFullPr(1, "x", "base", "head", "", time.Now(), 0)
		pr.Commits = []changes.CommitInfo{
			{Oid: "A", Summary: "feat(api): x", Files: []string{"api/a.go"}, Included: true},
		}
		ch := changes.NewChanges()
		ch.Groups[1] = pr
		return ch
	}

	p1, err := BuildPlan(cfg, buildChanges())
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	p2, err := BuildPlan(cfg, buildChanges())
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	assertEqual(t, len(p1.Incrs), len(p2.Incrs))
	for i := range p1.Incrs {
		assertEqual(t, p1.Incrs[i].Project.ID, p2.Incrs[i].Project.ID)
		assertEqual(t, p1.Incrs[i].Size, p2.Incrs[i].Size)
	}
}
