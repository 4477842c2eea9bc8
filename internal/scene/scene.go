package scene

import (
	"errors"
	"fmt"

	"github.com/dshills/sceneforge/internal/anim"
	"github.com/dshills/sceneforge/internal/expr"
	"github.com/dshills/sceneforge/internal/ledger"
	"github.com/dshills/sceneforge/internal/link"
	"github.com/dshills/sceneforge/internal/logging"
	"github.com/dshills/sceneforge/internal/tracker"
)

// Option configures a Scene.
type Option func(*options)

type options struct {
	engine  expr.Engine
	epsilon float64
	steps   int
	logger  *logging.Logger
}

// WithEngine sets the expression engine used by the registry.
func WithEngine(e expr.Engine) Option {
	return func(o *options) {
		o.engine = e
	}
}

// WithEpsilon sets the tracker change threshold.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		o.epsilon = eps
	}
}

// WithSteps sets the default frame count for tweens.
func WithSteps(n int) Option {
	return func(o *options) {
		o.steps = n
	}
}

// WithLogger sets the logger shared by the scene's components.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Scene is one editing session: a registry, a ledger and the factory and
// clock that bring ledger records to life.
type Scene struct {
	Name     string
	Registry *link.Registry
	Ledger   *ledger.Ledger
	Factory  *anim.Factory
	Clock    *anim.Clock

	logger *logging.Logger
}

// New creates an empty scene.
func New(opts ...Option) *Scene {
	o := options{
		epsilon: tracker.DefaultEpsilon,
		steps:   anim.DefaultSteps,
	}
	for _, opt := range opts {
		opt(&o)
	}
	logger := logging.OrNull(o.logger)

	regOpts := []link.Option{link.WithEpsilon(o.epsilon), link.WithLogger(logger)}
	if o.engine != nil {
		regOpts = append(regOpts, link.WithEngine(o.engine))
	}
	reg := link.NewRegistry(regOpts...)
	clock := anim.NewClock()

	return &Scene{
		Registry: reg,
		Ledger:   ledger.New(ledger.WithLogger(logger)),
		Factory:  anim.NewFactory(reg, clock, anim.WithDefaultSteps(o.steps)),
		Clock:    clock,
		logger:   logger.WithComponent("scene"),
	}
}

// Apply replaces the scene contents with doc. The registry is loaded first
// so animations can resolve their targets. Errors from individual links
// and animations are collected; everything else still loads and the
// returned error wraps ErrPartialLoad.
func (s *Scene) Apply(doc *Document) error {
	if doc == nil {
		return nil
	}
	if doc.Version > CurrentVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	regErr := s.Registry.Load(doc.Trackers)
	if errors.Is(regErr, link.ErrCascadeActive) {
		return regErr
	}

	s.Name = doc.Name
	s.Clock.Clear()
	ledErr := s.Ledger.LoadRecords(doc.Animations, s.Factory, doc.Groups...)

	if err := errors.Join(regErr, ledErr); err != nil {
		s.logger.Warn("scene %q loaded with errors: %v", doc.Name, err)
		return fmt.Errorf("%w: %w", ErrPartialLoad, err)
	}
	s.logger.Info("loaded scene %q: %d trackers, %d points, %d links, %d groups",
		doc.Name, len(doc.Trackers.Trackers), len(doc.Trackers.PointTrackers),
		len(doc.Trackers.Links), s.Ledger.Len())
	return nil
}

// Document captures the scene in its persisted form.
func (s *Scene) Document() *Document {
	return &Document{
		Version:    CurrentVersion,
		Name:       s.Name,
		Trackers:   s.Registry.Snapshot(),
		Animations: s.Ledger.Records(),
		Groups:     nonEmpty(s.Ledger.Labels()),
	}
}

// nonEmpty returns nil when every label is empty so documents without
// group labels omit the field.
func nonEmpty(labels []string) []string {
	for _, l := range labels {
		if l != "" {
			return labels
		}
	}
	return nil
}

// Open reads the document at path into a new scene. When the document was
// read but some entries failed, the scene is returned together with an
// error wrapping ErrPartialLoad.
func Open(path string, opts ...Option) (*Scene, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := New(opts...)
	if err := s.Apply(doc); err != nil {
		return s, err
	}
	return s, nil
}

// Reload replaces the scene contents with the document at path.
func (s *Scene) Reload(path string) error {
	doc, err := ReadFile(path)
	if err != nil {
		return err
	}
	return s.Apply(doc)
}

// Save writes the scene to path.
func (s *Scene) Save(path string) error {
	return WriteFile(path, s.Document())
}

// Step advances the scene's tweens one frame and reports whether any are
// still running.
func (s *Scene) Step() bool {
	return s.Clock.Tick() > 0
}
