package player

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/dshills/sceneforge/internal/anim"
	"github.com/dshills/sceneforge/internal/ledger"
	"github.com/dshills/sceneforge/internal/scene"
)

func newScene(t *testing.T) *scene.Scene {
	t.Helper()
	sc := scene.New(scene.WithSteps(2))
	sc.Name = "demo"
	if _, err := sc.Registry.AddValueTracker("x", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Registry.AddValueTracker("y", 0); err != nil {
		t.Fatal(err)
	}
	if err := sc.Registry.ConnectTrackers("[y] = [x] * 2;"); err != nil {
		t.Fatal(err)
	}
	grow, err := sc.Factory.NewHandle(ledger.HandleRecord{ID: "grow", TargetID: "x", Type: anim.TypeValue, Params: map[string]any{"to": 5}})
	if err != nil {
		t.Fatal(err)
	}
	zero, err := sc.Factory.NewHandle(ledger.HandleRecord{ID: "zero", TargetID: "x", Type: anim.TypeSet, Params: map[string]any{"to": 0}})
	if err != nil {
		t.Fatal(err)
	}
	sc.Ledger.AddLabeledAnimations("intro", grow)
	sc.Ledger.AddAnimations(zero)
	return sc
}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	return s
}

func screenText(s tcell.Screen) string {
	width, height := s.Size()
	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := s.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
			if r == 0 {
				r = ' '
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestHandleKey(t *testing.T) {
	sc := newScene(t)
	p := New(sc, newScreen(t))

	tests := []struct {
		name   string
		ev     *tcell.EventKey
		active int
		quit   bool
	}{
		{"animate", key('n'), 1, false},
		{"space", key(' '), 0, false},
		{"reverse", key('p'), 1, false},
		{"backspace", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), 0, false},
		{"reset", key('r'), 0, false},
		{"finish", key('f'), 0, false},
		{"unbound", key('z'), 0, false},
		{"quit", key('q'), 0, true},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), 0, true},
	}
	for _, tt := range tests {
		if got := p.handleKey(tt.ev); got != tt.quit {
			t.Errorf("%s: handleKey() = %v, want %v", tt.name, got, tt.quit)
		}
		if got := sc.Ledger.ActiveIndex(); got != tt.active {
			t.Errorf("%s: ActiveIndex() = %d, want %d", tt.name, got, tt.active)
		}
	}
}

func TestStatus(t *testing.T) {
	sc := newScene(t)
	p := New(sc, newScreen(t))
	p.handleKey(key('n'))
	if got, want := p.Status(), "animate, next 2/2"; got != want {
		t.Errorf("Status() = %q, want %q", got, want)
	}
}

func TestSelectAndMove(t *testing.T) {
	sc := newScene(t)
	p := New(sc, newScreen(t))

	p.handleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	if p.Selected() != 0 {
		t.Errorf("Selected() = %d after up at top, want 0", p.Selected())
	}
	p.handleKey(key('>'))
	if p.Selected() != 1 {
		t.Errorf("Selected() = %d after move down, want 1", p.Selected())
	}
	if diff := cmp.Diff([][]string{{"zero"}, {"grow"}}, sc.Ledger.Order()); diff != "" {
		t.Errorf("Order() mismatch (-want +got):\n%s", diff)
	}
	p.handleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	if p.Selected() != 1 {
		t.Errorf("Selected() = %d after down at bottom, want 1", p.Selected())
	}
	p.handleKey(key('<'))
	if diff := cmp.Diff([][]string{{"grow"}, {"zero"}}, sc.Ledger.Order()); diff != "" {
		t.Errorf("Order() mismatch (-want +got):\n%s", diff)
	}
}

func TestDraw(t *testing.T) {
	sc := newScene(t)
	s := newScreen(t)
	p := New(sc, s)
	if err := p.Init(); err != nil {
		t.Fatal(err)
	}
	defer s.Fini()
	s.SetSize(80, 20)

	p.draw()
	text := screenText(s)
	for _, want := range []string{
		"sceneforge: demo",
		"x = 1",
		"y = 2",
		"[y] = [x] * 2;",
		"Ledger (next 1/2)",
		"> 1 intro: grow",
		"2 zero",
		"q quit",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("screen missing %q:\n%s", want, text)
		}
	}
}

func TestLoop(t *testing.T) {
	sc := newScene(t)
	s := newScreen(t)
	p := New(sc, s, WithTick(time.Millisecond))
	if err := p.Init(); err != nil {
		t.Fatal(err)
	}
	defer s.Fini()
	s.SetSize(80, 20)

	s.InjectKey(tcell.KeyRune, 'n', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Loop(ctx); err != nil {
		t.Fatalf("Loop() error = %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("Loop() ran until the deadline instead of quitting")
	}
	if sc.Ledger.ActiveIndex() != 1 {
		t.Errorf("ActiveIndex() = %d, want 1", sc.Ledger.ActiveIndex())
	}
	if !strings.Contains(screenText(s), "next 2/2") {
		t.Errorf("screen not redrawn after animate:\n%s", screenText(s))
	}
}

func TestLoopTicksTweens(t *testing.T) {
	sc := newScene(t)
	s := newScreen(t)
	p := New(sc, s, WithTick(time.Millisecond))
	if err := p.Init(); err != nil {
		t.Fatal(err)
	}
	defer s.Fini()

	sc.Ledger.Animate()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := p.Loop(ctx); err != nil {
		t.Fatalf("Loop() error = %v", err)
	}
	x, _ := sc.Registry.Tracker("x")
	if x.Value() != 5 {
		t.Errorf("x = %v after ticking, want 5", x.Value())
	}
}

func TestHeadless(t *testing.T) {
	sc := newScene(t)
	var buf bytes.Buffer
	if err := Headless(&buf, sc, 0); err != nil {
		t.Fatalf("Headless() error = %v", err)
	}

	sections := strings.Split(buf.String(), "== ")
	if len(sections) != 4 {
		t.Fatalf("Headless() wrote %d sections, want 3:\n%s", len(sections)-1, buf.String())
	}
	checks := []struct {
		heading string
		values  []string
	}{
		{"initial", []string{"x = 1", "y = 2"}},
		{"step 1/2", []string{"x = 5", "y = 10"}},
		{"step 2/2", []string{"x = 0", "y = 0"}},
	}
	for i, c := range checks {
		sec := sections[i+1]
		if !strings.HasPrefix(sec, c.heading) {
			t.Errorf("section %d = %q, want heading %q", i, sec, c.heading)
		}
		for _, v := range c.values {
			if !strings.Contains(sec, v) {
				t.Errorf("section %q missing %q", c.heading, v)
			}
		}
	}
}
