package vcs

import "testing"

func TestLevelTotalOrder(t *testing.T) {
	order := []Level{None, Local, Remote, Smart}
	for i := 1; i < len(order); i++ {
		if !(order[i-1] < order[i]) {
			t.Fatalf("expected %v < %v", order[i-1], order[i])
		}
	}
}

func TestNegotiatePrefersNegotiatedCap(t *testing.T) {
	got, err := Negotiate(Range{Min: None, Max: Smart}, Range{Min: None, Max: Smart}, Remote)
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if got != Remote {
		t.Fatalf("expected Remote, got %v", got)
	}
}

func TestNegotiateRequiredMinWins(t *testing.T) {
	got, err := Negotiate(Range{Min: None, Max: Local}, Range{Min: Remote, Max: Smart}, Smart)
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if got != Remote {
		t.Fatalf("expected Remote (required.Min), got %v", got)
	}
}

func TestNegotiateFailsWhenRequiredMinUnreachable(t *testing.T) {
	_, err := Negotiate(Range{Min: None, Max: Smart}, Range{Min: Remote, Max: Smart}, Local)
	if err == nil {
		t.Fatalf("expected an error when the required minimum level is unreachable")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"none": None, "local": Local, "remote": Remote, "smart": Smart, "max": Smart, "auto": Smart,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = (%v, %v), want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("bogus"); err == nil {
		t.Fatalf("expected an error for an unrecognized level")
	}
}
