package link

import (
	"fmt"
	"strings"

	"github.com/dshills/sceneforge/internal/expr"
	"github.com/dshills/sceneforge/internal/logging"
	"github.com/dshills/sceneforge/internal/tracker"
)

// UpdaterPrefix prefixes the updater id a link attaches to its dependencies.
const UpdaterPrefix = "link-"

// Option configures a Registry.
type Option func(*Registry)

// WithEngine sets the expression engine for links and updater transforms.
func WithEngine(e expr.Engine) Option {
	return func(r *Registry) {
		if e != nil {
			r.engine = e
		}
	}
}

// WithEpsilon sets the change threshold for trackers created by the registry.
func WithEpsilon(eps float64) Option {
	return func(r *Registry) {
		r.epsilon = eps
	}
}

// WithLogger sets the registry logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) {
		r.logger = logging.OrNull(l).WithComponent("link")
	}
}

// EventType identifies a registry change.
type EventType int

// Registry change types.
const (
	TrackerAdded EventType = iota
	TrackerRemoved
	LinkAdded
	LinkRemoved
)

// Event describes a registry change. Name is the tracker name for tracker
// events and the expression text for link events.
type Event struct {
	Type  EventType
	Name  string
	Point bool
}

// Link is an active expression link.
type Link struct {
	Expression   string
	Target       Reference
	Dependencies []Reference

	segments []Segment
}

// Registry owns scalar and point trackers and the links between them.
// One registry serves one editing session; it is not safe for concurrent use.
type Registry struct {
	engine  expr.Engine
	epsilon float64
	logger  *logging.Logger
	cascade *tracker.Cascade

	scalars     map[string]*tracker.Tracker
	scalarOrder []string
	points      map[string]*tracker.PointTracker
	pointOrder  []string

	links     map[string]*Link
	linkOrder []string
	graph     map[string]map[string]struct{}
	targets   map[string]string

	watchers []func(Event)
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		engine:  expr.NewNative(),
		epsilon: tracker.DefaultEpsilon,
		logger:  logging.NullLogger,
		cascade: tracker.NewCascade(),
		scalars: make(map[string]*tracker.Tracker),
		points:  make(map[string]*tracker.PointTracker),
		links:   make(map[string]*Link),
		graph:   make(map[string]map[string]struct{}),
		targets: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Engine returns the registry's expression engine.
func (r *Registry) Engine() expr.Engine {
	return r.engine
}

// Cascade returns the cascade shared by the registry's trackers.
func (r *Registry) Cascade() *tracker.Cascade {
	return r.cascade
}

// Watch registers fn to be called after every registry change.
func (r *Registry) Watch(fn func(Event)) {
	r.watchers = append(r.watchers, fn)
}

func (r *Registry) emit(ev Event) {
	for _, fn := range r.watchers {
		fn(ev)
	}
}

func (r *Registry) trackerOptions() []tracker.Option {
	return []tracker.Option{
		tracker.WithEngine(r.engine),
		tracker.WithEpsilon(r.epsilon),
		tracker.WithCascade(r.cascade),
	}
}

// ValidateName reports whether name can be used for a tracker.
func ValidateName(name string) error {
	if name == "" || strings.TrimSpace(name) != name {
		return fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, "[]=;.") {
		return fmt.Errorf("%w %q: must not contain any of [ ] = ; .", ErrInvalidName, name)
	}
	return nil
}

func (r *Registry) checkName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, ok := r.scalars[name]; ok {
		return fmt.Errorf("%w: %q", ErrNameTaken, name)
	}
	if _, ok := r.points[name]; ok {
		return fmt.Errorf("%w: %q", ErrNameTaken, name)
	}
	return nil
}

// AddValueTracker creates a scalar tracker.
func (r *Registry) AddValueTracker(name string, initial float64) (*tracker.Tracker, error) {
	if err := r.checkName(name); err != nil {
		return nil, err
	}
	t := tracker.New(name, initial, r.trackerOptions()...)
	r.scalars[name] = t
	r.scalarOrder = append(r.scalarOrder, name)
	r.emit(Event{Type: TrackerAdded, Name: name})
	return t, nil
}

// AddPointTracker creates a point tracker.
func (r *Registry) AddPointTracker(name string, initial tracker.Point) (*tracker.PointTracker, error) {
	if err := r.checkName(name); err != nil {
		return nil, err
	}
	p := tracker.NewPoint(name, initial, r.trackerOptions()...)
	r.points[name] = p
	r.pointOrder = append(r.pointOrder, name)
	r.emit(Event{Type: TrackerAdded, Name: name, Point: true})
	return p, nil
}

// Tracker returns the scalar tracker with the given name.
func (r *Registry) Tracker(name string) (*tracker.Tracker, bool) {
	t, ok := r.scalars[name]
	return t, ok
}

// PointTracker returns the point tracker with the given name.
func (r *Registry) PointTracker(name string) (*tracker.PointTracker, bool) {
	p, ok := r.points[name]
	return p, ok
}

// Resolve returns the tracker a reference names.
func (r *Registry) Resolve(ref Reference) (*tracker.Tracker, bool) {
	if ref.Scope == ScopeAxis {
		p, ok := r.points[ref.Name]
		if !ok {
			return nil, false
		}
		t := p.Axis(ref.Axis)
		return t, t != nil
	}
	t, ok := r.scalars[ref.Name]
	return t, ok
}

// Lookup resolves ref text such as "a" or "p.x".
func (r *Registry) Lookup(ref string) (*tracker.Tracker, bool) {
	return r.Resolve(ParseRef(ref))
}

// Has reports whether name is used in either namespace.
func (r *Registry) Has(name string) bool {
	_, scalar := r.scalars[name]
	_, point := r.points[name]
	return scalar || point
}

// Names returns scalar tracker names in creation order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.scalarOrder...)
}

// PointNames returns point tracker names in creation order.
func (r *Registry) PointNames() []string {
	return append([]string(nil), r.pointOrder...)
}

// Links returns active links in creation order.
func (r *Registry) Links() []Link {
	out := make([]Link, 0, len(r.linkOrder))
	for _, key := range r.linkOrder {
		l := r.links[key]
		out = append(out, Link{
			Expression:   l.Expression,
			Target:       l.Target,
			Dependencies: append([]Reference(nil), l.Dependencies...),
		})
	}
	return out
}

// Expressions returns the text of active links in creation order.
func (r *Registry) Expressions() []string {
	return append([]string(nil), r.linkOrder...)
}

// IsActive reports whether expression is an active link.
func (r *Registry) IsActive(expression string) bool {
	_, ok := r.links[strings.TrimSpace(expression)]
	return ok
}

// Dependencies returns a copy of the dependency graph.
func (r *Registry) Dependencies() map[string][]string {
	out := make(map[string][]string, len(r.graph))
	for target, deps := range r.graph {
		list := make([]string, 0, len(deps))
		for d := range deps {
			list = append(list, d)
		}
		sortStrings(list)
		out[target] = list
	}
	return out
}

// Remove deletes a tracker and every link that targets or depends on it.
// For a point tracker both axes are included. Unknown names are ignored.
func (r *Registry) Remove(name string) {
	r.cascade.Defer(func() { r.remove(name) })
}

func (r *Registry) remove(name string) {
	_, isScalar := r.scalars[name]
	_, isPoint := r.points[name]
	if !isScalar && !isPoint {
		return
	}

	identity := map[string]bool{name: true}
	if isPoint {
		identity[name+"."+string(tracker.AxisX)] = true
		identity[name+"."+string(tracker.AxisY)] = true
	}

	for _, key := range append([]string(nil), r.linkOrder...) {
		l := r.links[key]
		if l == nil {
			continue
		}
		hit := identity[l.Target.String()]
		for _, dep := range l.Dependencies {
			if identity[dep.String()] {
				hit = true
			}
		}
		if hit {
			r.removeExpression(key)
		}
	}

	for id := range identity {
		delete(r.graph, id)
	}
	if isScalar {
		delete(r.scalars, name)
		r.scalarOrder = removeString(r.scalarOrder, name)
	} else {
		delete(r.points, name)
		r.pointOrder = removeString(r.pointOrder, name)
	}
	r.logger.Debug("removed tracker %q", name)
	r.emit(Event{Type: TrackerRemoved, Name: name, Point: isPoint})
}

// Clear removes every link and then every tracker.
func (r *Registry) Clear() {
	r.cascade.Defer(r.clear)
}

func (r *Registry) clear() {
	for _, key := range append([]string(nil), r.linkOrder...) {
		r.removeExpression(key)
	}
	removed := make([]Event, 0, len(r.scalarOrder)+len(r.pointOrder))
	for _, name := range r.scalarOrder {
		removed = append(removed, Event{Type: TrackerRemoved, Name: name})
	}
	for _, name := range r.pointOrder {
		removed = append(removed, Event{Type: TrackerRemoved, Name: name, Point: true})
	}

	r.scalars = make(map[string]*tracker.Tracker)
	r.scalarOrder = nil
	r.points = make(map[string]*tracker.PointTracker)
	r.pointOrder = nil
	r.graph = make(map[string]map[string]struct{})
	r.targets = make(map[string]string)

	for _, ev := range removed {
		r.emit(ev)
	}
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
