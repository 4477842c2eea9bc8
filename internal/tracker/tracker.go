package tracker

import (
	"fmt"
	"math"

	"github.com/dshills/sceneforge/internal/expr"
)

// DefaultEpsilon is the smallest change that propagates to updaters.
const DefaultEpsilon = 0.001

// IdentityTransform is the transform used when none is given.
const IdentityTransform = "t"

// UpdateFunc receives a tracker's transformed value.
type UpdateFunc func(value float64)

// Option configures a Tracker.
type Option func(*Tracker)

// WithEpsilon sets the change threshold below which SetValue is a no-op.
// Non-positive values make every assignment propagate.
func WithEpsilon(eps float64) Option {
	return func(t *Tracker) {
		t.epsilon = eps
	}
}

// WithEngine sets the engine that compiles updater transforms.
func WithEngine(e expr.Engine) Option {
	return func(t *Tracker) {
		if e != nil {
			t.engine = e
		}
	}
}

// WithCascade attaches the tracker to a shared cascade.
func WithCascade(c *Cascade) Option {
	return func(t *Tracker) {
		t.cascade = c
	}
}

type updater struct {
	callback  UpdateFunc
	transform expr.Compiled
	source    string
}

// Tracker is an observable scalar value with ordered, named updaters.
type Tracker struct {
	id      string
	value   float64
	epsilon float64
	engine  expr.Engine
	cascade *Cascade

	updaters map[string]*updater
	order    []string
}

// New creates a tracker with the given id and initial value.
func New(id string, initial float64, opts ...Option) *Tracker {
	t := &Tracker{
		id:       id,
		value:    initial,
		epsilon:  DefaultEpsilon,
		engine:   expr.NewNative(),
		updaters: make(map[string]*updater),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the tracker's identifier.
func (t *Tracker) ID() string {
	return t.id
}

// Value returns the current value.
func (t *Tracker) Value() float64 {
	return t.value
}

// Epsilon returns the change threshold.
func (t *Tracker) Epsilon() float64 {
	return t.epsilon
}

// SetValue stores v and notifies updaters in registration order, unless v
// is within epsilon of the current value. An updater whose transform fails
// to evaluate for v is skipped for this change.
func (t *Tracker) SetValue(v float64) {
	if math.Abs(v-t.value) < t.epsilon {
		return
	}
	t.value = v

	t.cascade.enter()
	defer t.cascade.leave()

	ids := make([]string, len(t.order))
	copy(ids, t.order)
	for _, id := range ids {
		// Updaters removed earlier in this pass must not fire.
		u, ok := t.updaters[id]
		if !ok {
			continue
		}
		out, err := u.transform.Evaluate(expr.Bindings{"t": v})
		if err != nil {
			continue
		}
		u.callback(out)
	}
}

// AddUpdater registers callback under id, bound through transform (empty
// means "t"). The transform is compiled and evaluated once against the
// current value; on failure the tracker is left unchanged. On success the
// updater replaces any previous one with the same id, keeping its position,
// and callback is invoked once with the current transformed value.
func (t *Tracker) AddUpdater(id string, callback UpdateFunc, transform string) error {
	if callback == nil {
		return ErrNilCallback
	}
	if transform == "" {
		transform = IdentityTransform
	}

	compiled, err := t.engine.Compile(transform)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidTransform, transform, err)
	}
	initial, err := compiled.Evaluate(expr.Bindings{"t": t.value})
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidTransform, transform, err)
	}

	if _, exists := t.updaters[id]; !exists {
		t.order = append(t.order, id)
	}
	t.updaters[id] = &updater{callback: callback, transform: compiled, source: transform}

	t.cascade.enter()
	defer t.cascade.leave()
	callback(initial)
	return nil
}

// RemoveUpdater deletes the updater registered under id, if any.
func (t *Tracker) RemoveUpdater(id string) {
	if _, ok := t.updaters[id]; !ok {
		return
	}
	delete(t.updaters, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// HasUpdater reports whether an updater is registered under id.
func (t *Tracker) HasUpdater(id string) bool {
	_, ok := t.updaters[id]
	return ok
}

// UpdaterIDs returns updater ids in registration order.
func (t *Tracker) UpdaterIDs() []string {
	ids := make([]string, len(t.order))
	copy(ids, t.order)
	return ids
}

// Transform returns the source transform of the updater under id.
func (t *Tracker) Transform(id string) (string, bool) {
	u, ok := t.updaters[id]
	if !ok {
		return "", false
	}
	return u.source, true
}

// ClearUpdaters removes every updater.
func (t *Tracker) ClearUpdaters() {
	t.updaters = make(map[string]*updater)
	t.order = nil
}
