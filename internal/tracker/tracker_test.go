package tracker

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/sceneforge/internal/expr"
)

func TestEpsilonLaw(t *testing.T) {
	tr := New("a", 1)
	calls := 0
	if err := tr.AddUpdater("u", func(float64) { calls++ }, "t"); err != nil {
		t.Fatalf("AddUpdater() error = %v", err)
	}
	calls = 0

	tr.SetValue(1.0005)
	if calls != 0 {
		t.Errorf("SetValue within epsilon fired %d updaters, want 0", calls)
	}
	if tr.Value() != 1 {
		t.Errorf("Value() = %v, want unchanged 1", tr.Value())
	}

	tr.SetValue(1.5)
	if calls != 1 {
		t.Errorf("SetValue beyond epsilon fired %d updaters, want 1", calls)
	}
}

func TestWithEpsilon(t *testing.T) {
	tr := New("a", 0, WithEpsilon(0.5))
	var got []float64
	_ = tr.AddUpdater("u", func(v float64) { got = append(got, v) }, "")

	tr.SetValue(0.4)
	tr.SetValue(1)

	if diff := cmp.Diff([]float64{0, 1}, got); diff != "" {
		t.Errorf("updates mismatch (-want +got):\n%s", diff)
	}
}

func TestAddUpdaterFiresOnce(t *testing.T) {
	tr := New("a", 5)
	var got []float64
	if err := tr.AddUpdater("u", func(v float64) { got = append(got, v) }, "t"); err != nil {
		t.Fatalf("AddUpdater() error = %v", err)
	}
	if diff := cmp.Diff([]float64{5}, got); diff != "" {
		t.Errorf("initial call mismatch (-want +got):\n%s", diff)
	}
}

func TestAddUpdaterTransform(t *testing.T) {
	tr := New("a", 2)
	var got []float64
	if err := tr.AddUpdater("u", func(v float64) { got = append(got, v) }, "t * 10 + 1"); err != nil {
		t.Fatalf("AddUpdater() error = %v", err)
	}
	tr.SetValue(3)

	if diff := cmp.Diff([]float64{21, 31}, got); diff != "" {
		t.Errorf("transformed values mismatch (-want +got):\n%s", diff)
	}
}

func TestAddUpdaterRejectsBadTransform(t *testing.T) {
	tests := []string{"t +", "unknown * t", "nofunc(t)"}

	for _, transform := range tests {
		tr := New("a", 1)
		called := false
		err := tr.AddUpdater("u", func(float64) { called = true }, transform)
		if !errors.Is(err, ErrInvalidTransform) {
			t.Errorf("AddUpdater(%q) error = %v, want ErrInvalidTransform", transform, err)
		}
		if called {
			t.Errorf("AddUpdater(%q) invoked callback on failure", transform)
		}
		if len(tr.UpdaterIDs()) != 0 {
			t.Errorf("AddUpdater(%q) left updaters %v", transform, tr.UpdaterIDs())
		}
	}
}

func TestAddUpdaterNilCallback(t *testing.T) {
	tr := New("a", 1)
	if err := tr.AddUpdater("u", nil, ""); !errors.Is(err, ErrNilCallback) {
		t.Errorf("AddUpdater(nil) error = %v, want ErrNilCallback", err)
	}
}

func TestUpdaterOrder(t *testing.T) {
	tr := New("a", 0)
	var order []string
	for _, id := range []string{"first", "second", "third"} {
		id := id
		_ = tr.AddUpdater(id, func(float64) { order = append(order, id) }, "")
	}
	// Overwriting keeps the original slot.
	_ = tr.AddUpdater("first", func(float64) { order = append(order, "first*") }, "")

	order = nil
	tr.SetValue(1)

	if diff := cmp.Diff([]string{"first*", "second", "third"}, order); diff != "" {
		t.Errorf("firing order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"first", "second", "third"}, tr.UpdaterIDs()); diff != "" {
		t.Errorf("UpdaterIDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveUpdater(t *testing.T) {
	tr := New("a", 0)
	calls := 0
	_ = tr.AddUpdater("u", func(float64) { calls++ }, "")
	tr.RemoveUpdater("u")
	tr.RemoveUpdater("missing")

	calls = 0
	tr.SetValue(10)
	if calls != 0 {
		t.Errorf("removed updater fired %d times", calls)
	}
	if tr.HasUpdater("u") {
		t.Error("HasUpdater(u) = true after removal")
	}
}

func TestRemoveUpdaterDuringPropagation(t *testing.T) {
	tr := New("a", 0)
	secondCalls := 0
	_ = tr.AddUpdater("first", func(v float64) {
		if v > 0 {
			tr.RemoveUpdater("second")
		}
	}, "")
	_ = tr.AddUpdater("second", func(float64) { secondCalls++ }, "")

	secondCalls = 0
	tr.SetValue(1)
	if secondCalls != 0 {
		t.Errorf("updater removed mid-pass fired %d times", secondCalls)
	}
}

// limitEngine compiles every transform to identity but fails evaluation
// above a limit.
type limitEngine struct{ limit float64 }

func (e limitEngine) Parse(string) error { return nil }

func (e limitEngine) Compile(string) (expr.Compiled, error) { return e, nil }

func (e limitEngine) Evaluate(b expr.Bindings) (float64, error) {
	if b["t"] > e.limit {
		return 0, errors.New("over limit")
	}
	return b["t"], nil
}

func TestSkipFailingTransform(t *testing.T) {
	tr := New("a", 1, WithEngine(limitEngine{limit: 10}))
	var first, second []float64
	_ = tr.AddUpdater("first", func(v float64) { first = append(first, v) }, "")
	_ = tr.AddUpdater("second", func(v float64) { second = append(second, v) }, "")

	tr.SetValue(20)
	tr.SetValue(5)

	if diff := cmp.Diff([]float64{1, 5}, first); diff != "" {
		t.Errorf("first updates mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 5}, second); diff != "" {
		t.Errorf("second updates mismatch (-want +got):\n%s", diff)
	}
	if tr.Value() != 5 {
		t.Errorf("Value() = %v, want 5", tr.Value())
	}
}

func TestTransformAccessor(t *testing.T) {
	tr := New("a", 1)
	_ = tr.AddUpdater("u", func(float64) {}, "")
	src, ok := tr.Transform("u")
	if !ok || src != IdentityTransform {
		t.Errorf("Transform(u) = %q, %v; want %q, true", src, ok, IdentityTransform)
	}
	tr.ClearUpdaters()
	if len(tr.UpdaterIDs()) != 0 {
		t.Error("ClearUpdaters left updaters")
	}
}

func TestPointTracker(t *testing.T) {
	p := NewPoint("p", Point{X: 1, Y: 2})
	if p.X().ID() != "p.x" || p.Y().ID() != "p.y" {
		t.Errorf("axis ids = %q, %q", p.X().ID(), p.Y().ID())
	}
	if p.Axis(AxisY) != p.Y() || p.Axis("z") != nil {
		t.Error("Axis() lookup mismatch")
	}

	var xs []float64
	_ = p.X().AddUpdater("u", func(v float64) { xs = append(xs, v) }, "")
	p.Set(Point{X: 3, Y: 4})

	if diff := cmp.Diff(Point{X: 3, Y: 4}, p.Point()); diff != "" {
		t.Errorf("Point() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 3}, xs); diff != "" {
		t.Errorf("x updates mismatch (-want +got):\n%s", diff)
	}
}

func TestCascadeDefersUntilSettled(t *testing.T) {
	c := NewCascade()
	a := New("a", 0, WithCascade(c))
	b := New("b", 0, WithCascade(c))

	var log []string
	_ = a.AddUpdater("drive-b", func(v float64) {
		log = append(log, "a")
		b.SetValue(v * 2)
		ran := c.Defer(func() { log = append(log, "deferred") })
		if ran {
			t.Error("Defer ran immediately inside a cascade")
		}
	}, "")
	_ = b.AddUpdater("watch", func(float64) { log = append(log, "b") }, "")

	log = nil
	a.SetValue(1)

	if diff := cmp.Diff([]string{"a", "b", "deferred"}, log); diff != "" {
		t.Errorf("cascade order mismatch (-want +got):\n%s", diff)
	}
	if c.Active() || c.Pending() != 0 {
		t.Errorf("cascade not settled: active=%v pending=%d", c.Active(), c.Pending())
	}
}

func TestCascadeIdleRunsImmediately(t *testing.T) {
	c := NewCascade()
	ran := false
	if !c.Defer(func() { ran = true }) || !ran {
		t.Error("Defer on idle cascade should run immediately")
	}

	var nilCascade *Cascade
	if nilCascade.Active() || nilCascade.Depth() != 0 {
		t.Error("nil cascade should be idle")
	}
}
