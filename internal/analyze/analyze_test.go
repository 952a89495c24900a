package analyze

import (
	"testing"

	"github.com/versioio/versio/internal/mark"
)

func assertEqual(t *testing.T, got, want interface{}) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func marked(value string) mark.MarkedData {
	return mark.MarkedData{Mark: mark.Mark{Value: value}}
}

func TestAnalyzePartitionsOlderAndNewer(t *testing.T) {
	olds := []AnnotatedMark{
		NewAnnotatedMark(1, "api", marked("1.0.0")),
		NewAnnotatedMark(2, "retired", marked("2.0.0")),
	}
	news := []AnnotatedMark{
		NewAnnotatedMark(1, "api", marked("1.1.0")),
		NewAnnotatedMark(3, "added", marked("0.1.0")),
	}

	a := Analyze(olds, news)

	if len(a.Older) != 1 || a.Older[0].ID != 2 {
		t.Fatalf("expected project 2 in Older, got %+v", a.Older)
	}
	if len(a.Newer) != 1 || a.Newer[0].ID != 3 {
		t.Fatalf("expected project 3 in Newer, got %+v", a.Newer)
	}
	if len(a.Changes) != 1 || a.Changes[0].Old.ID != 1 {
		t.Fatalf("expected one change for project 1, got %+v", a.Changes)
	}
}

func TestChangeDetectsValueChangeOnly(t *testing.T) {
	old := NewAnnotatedMark(1, "api", marked("1.0.0"))
	newm := NewAnnotatedMark(1, "api", marked("1.1.0"))

	a := Analyze([]AnnotatedMark{old}, []AnnotatedMark{newm})
	assertEqual(t, len(a.Changes), 1)

	c := a.Changes[0]
	assertEqual(t, c.NameChange, false)
	assertEqual(t, c.ValueChange, true)

	_, _, nameChanged := c.Name()
	assertEqual(t, nameChanged, false)

	oldVal, newVal, valueChanged := c.Value()
	assertEqual(t, valueChanged, true)
	assertEqual(t, oldVal, "1.0.0")
	assertEqual(t, newVal, "1.1.0")
}

func TestChangeDetectsNameChange(t *testing.T) {
	old := NewAnnotatedMark(1, "api", marked("1.0.0"))
	newm := NewAnnotatedMark(1, "apiv2", marked("1.0.0"))

	a := Analyze([]AnnotatedMark{old}, []AnnotatedMark{newm})
	c := a.Changes[0]
	assertEqual(t, c.NameChange, true)
	assertEqual(t, c.ValueChange, false)

	oldName, newName, changed := c.Name()
	assertEqual(t, changed, true)
	assertEqual(t, oldName, "api")
	assertEqual(t, newName, "apiv2")
}

func TestAnalyzeEmptyInputsProduceEmptyAnalysis(t *testing.T) {
	a := Analyze(nil, nil)
	assertEqual(t, len(a.Older), 0)
	assertEqual(t, len(a.Newer), 0)
	assertEqual(t, len(a.Changes), 0)
}

func TestAnalyzeChangesAreSortedByID(t *testing.T) {
	olds := []AnnotatedMark{
		NewAnnotatedMark(3, "c", marked("1.0.0")),
		NewAnnotatedMark(1, "a", marked("1.0.0")),
		NewAnnotatedMark(2, "b", marked("1.0.0")),
	}
	news := []AnnotatedMark{
		NewAnnotatedMark(3, "c", marked("1.0.1")),
		NewAnnotatedMark(1, "a", marked("1.0.1")),
		NewAnnotatedMark(2, "b", marked("1.0.1")),
	}

	a := Analyze(olds, news)
	if len(a.Changes) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(a.Changes))
	}
	for i, want := range []int{1, 2, 3} {
		assertEqual(t, a.Changes[i].Old.ID, want)
	}
}
