package anim

import (
	"fmt"

	"github.com/dshills/sceneforge/internal/ledger"
	"github.com/dshills/sceneforge/internal/link"
	"github.com/dshills/sceneforge/internal/tracker"
)

// Built-in animation types.
const (
	TypeValue = "value"
	TypePoint = "point"
	TypeSet   = "set"
)

// Builder creates the playable for a record.
type Builder func(rec ledger.HandleRecord) (ledger.Playable, error)

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithDefaultSteps sets the frame count for records without a steps param.
func WithDefaultSteps(n int) FactoryOption {
	return func(f *Factory) {
		if n >= 0 {
			f.steps = n
		}
	}
}

// Factory builds playables for ledger records, resolving targets in a
// registry. Every tween it builds is added to its clock.
type Factory struct {
	registry *link.Registry
	clock    *Clock
	steps    int
	builders map[string]Builder
}

// NewFactory creates a factory with the built-in value, point and set types.
func NewFactory(registry *link.Registry, clock *Clock, opts ...FactoryOption) *Factory {
	if clock == nil {
		clock = NewClock()
	}
	f := &Factory{
		registry: registry,
		clock:    clock,
		steps:    DefaultSteps,
		builders: make(map[string]Builder),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.Register(TypeValue, "", f.buildValue)
	f.Register(TypePoint, "", f.buildPoint)
	f.Register(TypeSet, "", f.buildSet)
	return f
}

// Clock returns the clock that steps the factory's tweens.
func (f *Factory) Clock() *Clock {
	return f.clock
}

func builderKey(typ, category string) string {
	if category == "" {
		return typ
	}
	return typ + "/" + category
}

// Register installs b for records of the given type and category. An empty
// category is the fallback for the type.
func (f *Factory) Register(typ, category string, b Builder) {
	f.builders[builderKey(typ, category)] = b
}

// Build implements ledger.Factory.
func (f *Factory) Build(rec ledger.HandleRecord) (ledger.Playable, error) {
	b, ok := f.builders[builderKey(rec.Type, rec.Category)]
	if !ok {
		b, ok = f.builders[rec.Type]
	}
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, rec.Type)
	}
	return b(rec)
}

// NewHandle builds a ledger handle for rec.
func (f *Factory) NewHandle(rec ledger.HandleRecord) (*ledger.Handle, error) {
	p, err := f.Build(rec)
	if err != nil {
		return nil, err
	}
	return &ledger.Handle{
		ID:       rec.ID,
		TargetID: rec.TargetID,
		Type:     rec.Type,
		Category: rec.Category,
		Label:    rec.Label,
		Params:   rec.Params,
		Playable: p,
	}, nil
}

func (f *Factory) options(rec ledger.HandleRecord, instant bool) ([]TweenOption, error) {
	steps := f.steps
	if instant {
		steps = 0
	} else if v, ok, err := paramFloat(rec.Params, "steps"); err != nil {
		return nil, err
	} else if ok {
		if v < 0 || v != float64(int(v)) {
			return nil, fmt.Errorf("%w: steps must be a non-negative integer, got %v", ErrBadParam, v)
		}
		steps = int(v)
	}

	easing := Linear
	if raw, ok := rec.Params["easing"]; ok {
		name, _ := raw.(string)
		e, found := EasingByName(name)
		if !found {
			return nil, fmt.Errorf("%w: unknown easing %v", ErrBadParam, raw)
		}
		easing = e
	}
	return []TweenOption{WithSteps(steps), WithEasing(easing)}, nil
}

func (f *Factory) scalarTween(rec ledger.HandleRecord, instant bool) (ledger.Playable, error) {
	target, ok := f.registry.Lookup(rec.TargetID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, rec.TargetID)
	}
	to, ok, err := paramFloat(rec.Params, "to")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing to", ErrBadParam)
	}
	from, ok, err := paramFloat(rec.Params, "from")
	if err != nil {
		return nil, err
	}
	if !ok {
		from = target.Value()
	}
	opts, err := f.options(rec, instant)
	if err != nil {
		return nil, err
	}
	t := NewTween(target, from, to, opts...)
	f.clock.Add(t)
	return t, nil
}

func (f *Factory) buildValue(rec ledger.HandleRecord) (ledger.Playable, error) {
	return f.scalarTween(rec, false)
}

func (f *Factory) buildSet(rec ledger.HandleRecord) (ledger.Playable, error) {
	return f.scalarTween(rec, true)
}

func (f *Factory) buildPoint(rec ledger.HandleRecord) (ledger.Playable, error) {
	target, ok := f.registry.PointTracker(rec.TargetID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, rec.TargetID)
	}
	to, ok, err := paramPoint(rec.Params, "to")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing to", ErrBadParam)
	}
	from, ok, err := paramPoint(rec.Params, "from")
	if err != nil {
		return nil, err
	}
	if !ok {
		from = target.Point()
	}
	opts, err := f.options(rec, false)
	if err != nil {
		return nil, err
	}
	t := NewPointTween(target, from, to, opts...)
	f.clock.Add(t)
	return t, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// paramFloat reads a numeric param. Decoded documents give ints or floats
// depending on the codec, so both are accepted.
func paramFloat(params map[string]any, key string) (float64, bool, error) {
	raw, ok := params[key]
	if !ok {
		return 0, false, nil
	}
	v, ok := toFloat(raw)
	if !ok {
		return 0, false, fmt.Errorf("%w: %s must be a number, got %T", ErrBadParam, key, raw)
	}
	return v, true, nil
}

// paramPoint reads a point param written as {x, y} or [x, y].
func paramPoint(params map[string]any, key string) (tracker.Point, bool, error) {
	raw, ok := params[key]
	if !ok {
		return tracker.Point{}, false, nil
	}
	bad := fmt.Errorf("%w: %s must be {x, y} or [x, y]", ErrBadParam, key)
	switch v := raw.(type) {
	case tracker.Point:
		return v, true, nil
	case map[string]any:
		x, okX := toFloat(v["x"])
		y, okY := toFloat(v["y"])
		if !okX || !okY {
			return tracker.Point{}, false, bad
		}
		return tracker.Point{X: x, Y: y}, true, nil
	case []any:
		if len(v) != 2 {
			return tracker.Point{}, false, bad
		}
		x, okX := toFloat(v[0])
		y, okY := toFloat(v[1])
		if !okX || !okY {
			return tracker.Point{}, false, bad
		}
		return tracker.Point{X: x, Y: y}, true, nil
	}
	return tracker.Point{}, false, bad
}
