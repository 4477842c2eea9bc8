package expr

import (
	"errors"
	"math"
	"testing"
)

func TestNativeEvaluate(t *testing.T) {
	tests := []struct {
		input string
		b     Bindings
		want  float64
	}{
		{"1 + 2", nil, 3},
		{"2 * 3 + 4", nil, 10},
		{"2 * (3 + 4)", nil, 14},
		{"10 / 4", nil, 2.5},
		{"7 % 3", nil, 1},
		{"2 ^ 3 ^ 2", nil, 512},
		{"2 ** 3", nil, 8},
		{"-2 ^ 2", nil, -4},
		{"(-2) ^ 2", nil, 4},
		{"2 ^ -1", nil, 0.5},
		{"--3", nil, 3},
		{"+4", nil, 4},
		{"1e3 + .5", nil, 1000.5},
		{"2.5E-1", nil, 0.25},
		{"t", Bindings{"t": 5}, 5},
		{"t * 2 + 1", Bindings{"t": 3}, 7},
		{"sin(pi / 2)", nil, 1},
		{"max(1, 7, 3)", nil, 7},
		{"min(4, -1)", nil, -1},
		{"atan2(1, 1) * 4", nil, math.Pi},
		{"sqrt(16) + abs(-2)", nil, 6},
		{"round(2.5) + floor(1.9) + ceil(0.1)", nil, 5},
		{"sign(-3)", nil, -1},
		{"hypot(3, 4)", nil, 5},
		{"tau / 2", nil, math.Pi},
	}

	engine := NewNative()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Eval(engine, tt.input, tt.b)
			if err != nil {
				t.Fatalf("Eval(%q) error = %v", tt.input, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Eval(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNativeSyntaxErrors(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"1 +",
		"(1 + 2",
		"1 2",
		"* 3",
		"sin(1,",
		"2(3)",
		"1e",
		"a $ b",
		"1 + )",
	}

	engine := NewNative()
	for _, input := range inputs {
		err := engine.Parse(input)
		if err == nil {
			t.Errorf("Parse(%q) expected error", input)
			continue
		}
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("Parse(%q) error = %T, want *SyntaxError", input, err)
		}
		if _, err := engine.Compile(input); err == nil {
			t.Errorf("Compile(%q) expected error", input)
		}
	}
}

func TestNativeEvalErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"x + 1", ErrUnknownIdent},
		{"nope(1)", ErrUnknownFunc},
		{"sin(1, 2)", ErrArity},
		{"max()", ErrArity},
	}

	engine := NewNative()
	for _, tt := range tests {
		c, err := engine.Compile(tt.input)
		if err != nil {
			t.Fatalf("Compile(%q) error = %v", tt.input, err)
		}
		_, err = c.Evaluate(nil)
		if !errors.Is(err, tt.want) {
			t.Errorf("Evaluate(%q) error = %v, want %v", tt.input, err, tt.want)
		}
	}
}

func TestNativeDivisionByZero(t *testing.T) {
	got, err := Eval(NewNative(), "1 / 0", nil)
	if err != nil {
		t.Fatalf("Eval error = %v", err)
	}
	if !math.IsInf(got, 1) {
		t.Errorf("1/0 = %v, want +Inf", got)
	}
}

func TestCompiledReuse(t *testing.T) {
	c, err := NewNative().Compile("t * t")
	if err != nil {
		t.Fatalf("Compile error = %v", err)
	}
	for _, v := range []float64{1, 2, 3} {
		got, err := c.Evaluate(Bindings{"t": v})
		if err != nil {
			t.Fatalf("Evaluate error = %v", err)
		}
		if got != v*v {
			t.Errorf("Evaluate(t=%v) = %v, want %v", v, got, v*v)
		}
	}
}

func TestBindingsShadowConstants(t *testing.T) {
	got, err := Eval(NewNative(), "e", Bindings{"e": 2})
	if err != nil {
		t.Fatalf("Eval error = %v", err)
	}
	if got != 2 {
		t.Errorf("e = %v, want binding value 2", got)
	}
}

func TestDeepNesting(t *testing.T) {
	input := ""
	for i := 0; i < 1000; i++ {
		input += "("
	}
	input += "1"
	for i := 0; i < 1000; i++ {
		input += ")"
	}
	if err := NewNative().Parse(input); err == nil {
		t.Error("expected nesting error")
	}
}

func TestFormatNumberRoundTrips(t *testing.T) {
	for _, v := range []float64{0, 1, -2.5, 1e-7, 123456789.125, math.Pi} {
		got, err := Eval(NewNative(), FormatNumber(v), nil)
		if err != nil {
			t.Fatalf("Eval(%q) error = %v", FormatNumber(v), err)
		}
		if got != v {
			t.Errorf("FormatNumber(%v) evaluated to %v", v, got)
		}
	}
}

func TestLexerTokens(t *testing.T) {
	l := NewLexer("sin(t) ^ 2")
	want := []TokenType{IDENT, LPAREN, IDENT, RPAREN, CARET, NUMBER, EOF}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w {
			t.Fatalf("token %d = %s, want %s", i, tok.Type, w)
		}
	}
}

func TestFunctionsSorted(t *testing.T) {
	names := Functions()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Functions() not sorted at %d: %q > %q", i, names[i-1], names[i])
		}
	}
}
