package link

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/sceneforge/internal/tracker"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		input string
		want  Reference
	}{
		{"a", Reference{Scope: ScopeScalar, Name: "a"}},
		{"p.x", Reference{Scope: ScopeAxis, Name: "p", Axis: tracker.AxisX}},
		{"p.y", Reference{Scope: ScopeAxis, Name: "p", Axis: tracker.AxisY}},
		{".x", Reference{Scope: ScopeScalar, Name: ".x"}},
		{"p.z", Reference{Scope: ScopeScalar, Name: "p.z"}},
	}

	for _, tt := range tests {
		got := ParseRef(tt.input)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseRef(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
		if got.String() != tt.input {
			t.Errorf("ParseRef(%q).String() = %q", tt.input, got.String())
		}
	}
}

func TestScanRefs(t *testing.T) {
	segments, err := ScanRefs(" [a] * 2 + [p.x] - [a]")
	if err != nil {
		t.Fatalf("ScanRefs() error = %v", err)
	}

	got := Substitute(segments, func(r Reference) string { return "<" + r.String() + ">" })
	if got != " <a> * 2 + <p.x> - <a>" {
		t.Errorf("Substitute() = %q", got)
	}

	want := []Reference{
		{Scope: ScopeScalar, Name: "a"},
		{Scope: ScopeAxis, Name: "p", Axis: tracker.AxisX},
	}
	if diff := cmp.Diff(want, Refs(segments)); diff != "" {
		t.Errorf("Refs() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanRefsErrors(t *testing.T) {
	for _, input := range []string{"[a", "a]", "[]", "[[a]]", "[a[b]]"} {
		if _, err := ScanRefs(input); err == nil {
			t.Errorf("ScanRefs(%q) expected error", input)
		}
	}
}

func TestSplitAssignment(t *testing.T) {
	target, rhs, err := splitAssignment("  [p.y]  = [a] * 2")
	if err != nil {
		t.Fatalf("splitAssignment() error = %v", err)
	}
	if target.String() != "p.y" || rhs != " [a] * 2" {
		t.Errorf("splitAssignment() = %q, %q", target.String(), rhs)
	}

	for _, input := range []string{"b = [a]", "[b] [a]", "[] = 1", "[b = 1", "[b]] = 1"} {
		if _, _, err := splitAssignment(input); err == nil {
			t.Errorf("splitAssignment(%q) expected error", input)
		}
	}
}
