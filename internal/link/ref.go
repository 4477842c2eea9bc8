package link

import (
	"fmt"
	"strings"

	"github.com/dshills/sceneforge/internal/tracker"
)

// Scope says whether a reference names a scalar tracker or a point axis.
type Scope int

const (
	// ScopeScalar references a scalar tracker by name.
	ScopeScalar Scope = iota
	// ScopeAxis references one axis of a point tracker.
	ScopeAxis
)

// Reference is a parsed [name] or [name.x] token.
type Reference struct {
	Scope Scope
	Name  string
	Axis  tracker.Axis
}

// ParseRef interprets the text between brackets.
func ParseRef(s string) Reference {
	for _, axis := range []tracker.Axis{tracker.AxisX, tracker.AxisY} {
		suffix := "." + string(axis)
		if len(s) > len(suffix) && strings.HasSuffix(s, suffix) {
			return Reference{Scope: ScopeAxis, Name: strings.TrimSuffix(s, suffix), Axis: axis}
		}
	}
	return Reference{Scope: ScopeScalar, Name: s}
}

// String returns the canonical ref text without brackets.
func (r Reference) String() string {
	if r.Scope == ScopeAxis {
		return r.Name + "." + string(r.Axis)
	}
	return r.Name
}

// Segment is a run of literal expression text or a single reference.
type Segment struct {
	Text string
	Ref  *Reference
}

// ScanRefs splits text into literal segments and bracketed references.
// Brackets must be balanced, non-empty and not nested.
func ScanRefs(text string) ([]Segment, error) {
	var segments []Segment
	var lit strings.Builder

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '[':
			end := strings.IndexAny(text[i+1:], "[]")
			if end < 0 || text[i+1+end] != ']' {
				return nil, fmt.Errorf("unclosed '[' at %d", i)
			}
			name := text[i+1 : i+1+end]
			if name == "" {
				return nil, fmt.Errorf("empty reference at %d", i)
			}
			if lit.Len() > 0 {
				segments = append(segments, Segment{Text: lit.String()})
				lit.Reset()
			}
			ref := ParseRef(name)
			segments = append(segments, Segment{Ref: &ref})
			i += end + 1
		case ']':
			return nil, fmt.Errorf("unexpected ']' at %d", i)
		default:
			lit.WriteByte(text[i])
		}
	}
	if lit.Len() > 0 {
		segments = append(segments, Segment{Text: lit.String()})
	}
	return segments, nil
}

// Refs returns the distinct references in segments, in first-seen order.
func Refs(segments []Segment) []Reference {
	seen := make(map[string]bool)
	var refs []Reference
	for _, seg := range segments {
		if seg.Ref == nil || seen[seg.Ref.String()] {
			continue
		}
		seen[seg.Ref.String()] = true
		refs = append(refs, *seg.Ref)
	}
	return refs
}

// Substitute renders segments with each reference replaced by value(ref).
func Substitute(segments []Segment, value func(Reference) string) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Ref != nil {
			b.WriteString(value(*seg.Ref))
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

// splitAssignment parses "[target] = rhs" with optional surrounding
// whitespace and returns the target and everything after the first '='.
func splitAssignment(text string) (Reference, string, error) {
	s := strings.TrimLeft(text, " \t\r\n")
	if !strings.HasPrefix(s, "[") {
		return Reference{}, "", fmt.Errorf("left side must be a [name] reference")
	}
	end := strings.IndexAny(s[1:], "[]")
	if end < 0 || s[1+end] != ']' || end == 0 {
		return Reference{}, "", fmt.Errorf("malformed target reference")
	}
	target := ParseRef(s[1 : 1+end])
	rest := strings.TrimLeft(s[2+end:], " \t\r\n")
	if !strings.HasPrefix(rest, "=") {
		return Reference{}, "", fmt.Errorf("expected '=' after target")
	}
	return target, rest[1:], nil
}
