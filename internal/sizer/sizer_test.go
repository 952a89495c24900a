package sizer

import (
	"testing"

	"github.com/versioio/versio/internal/changes"
)

func assertEqual(t *testing.T, a, b string) {
	t.Helper()
	if a != b {
		t.Fatalf("assertEqual: expected %q == %q", a, b)
	}
}

func TestSizeTotalOrder(t *testing.T) {
	order := []Size{Empty, None, Patch, Minor, Major, Fail}
	for i := 1; i < len(order); i++ {
		if !(order[i-1] < order[i]) {
			t.Fatalf("expected %v < %v", order[i-1], order[i])
		}
	}
}

func TestApply(t *testing.T) {
	cases := []struct {
		size Size
		in   string
		want string
	}{
		{Empty, "1.2.3", "1.2.3"},
		{None, "1.2.3", "1.2.3"},
		{Patch, "1.2.3", "1.2.4"},
		{Minor, "1.2.3", "1.3.0"},
		{Major, "1.2.3", "2.0.0"},
	}
	for _, c := range cases {
		got, err := Apply(c.size, c.in)
		if err != nil {
			t.Fatalf("Apply(%v, %q): %v", c.size, c.in, err)
		}
		assertEqual(t, got, c.want)
	}
}

func TestApplyFailErrors(t *testing.T) {
	if _, err := Apply(Fail, "1.2.3"); err == nil {
		t.Fatalf("expected Apply(Fail, ...) to error")
	}
}

func TestAngularDefaults(t *testing.T) {
	p := NewPolicy()

	feat := changes.CommitInfo{Summary: "feat: add widget"}
	size, err := p.Of(feat)
	if err != nil || size != Minor {
		t.Fatalf("feat: got (%v, %v), want Minor", size, err)
	}

	fix := changes.CommitInfo{Summary: "fix: correct thing"}
	size, err = p.Of(fix)
	if err != nil || size != Patch {
		t.Fatalf("fix: got (%v, %v), want Patch", size, err)
	}

	breaking := changes.CommitInfo{Summary: "feat!: redo api"}
	size, err = p.Of(breaking)
	if err != nil || size != Major {
		t.Fatalf("feat!: got (%v, %v), want Major", size, err)
	}

	chore := changes.CommitInfo{Summary: "chore: bump deps"}
	size, err = p.Of(chore)
	if err != nil || size != None {
		t.Fatalf("chore: got (%v, %v), want None", size, err)
	}
}

func TestPolicyOverlayMostSpecificWins(t *testing.T) {
	p := NewPolicy()
	p.SetRule("fix", "", Minor)
	p.SetRule("fix", "api", Major)

	general, err := p.Of(changes.CommitInfo{Summary: "fix(core): tweak"})
	if err != nil || general != Minor {
		t.Fatalf("fix(core): got (%v, %v), want Minor", general, err)
	}

	specific, err := p.Of(changes.CommitInfo{Summary: "fix(api): tweak"})
	if err != nil || specific != Major {
		t.Fatalf("fix(api): got (%v, %v), want Major", specific, err)
	}
}

func TestFailPattern(t *testing.T) {
	p := NewPolicy()
	p.Fail = []string{"*"}

	size, err := p.Of(changes.CommitInfo{Summary: "chore: something"})
	if err != nil || size != Fail {
		t.Fatalf("got (%v, %v), want Fail", size, err)
	}
}
