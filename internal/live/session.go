package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/sceneforge/internal/link"
	"github.com/dshills/sceneforge/internal/logging"
	"github.com/dshills/sceneforge/internal/scene"
	"github.com/dshills/sceneforge/internal/tracker"
)

// UpdaterPrefix prefixes the updater id a session attaches to each tracker.
const UpdaterPrefix = "live-"

// DefaultTick is the interval at which running tweens are stepped.
const DefaultTick = 33 * time.Millisecond

// ErrSessionClosed is returned when submitting work to a stopped session.
var ErrSessionClosed = errors.New("session closed")

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithTick sets the tween step interval. Zero disables stepping.
func WithTick(d time.Duration) SessionOption {
	return func(s *Session) {
		s.tick = d
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(l *logging.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logging.OrNull(l).WithComponent("live")
	}
}

// WithPublisher sets the function that receives every pushed message. It is
// called on the session goroutine and must not block.
func WithPublisher(fn func(msg any)) SessionOption {
	return func(s *Session) {
		s.publish = fn
	}
}

// Session serializes all access to one scene.
type Session struct {
	scene   *scene.Scene
	tick    time.Duration
	logger  *logging.Logger
	publish func(msg any)

	cmds    chan func()
	stopped chan struct{}
}

// NewSession wraps sc. Tracker changes are pushed through the publisher
// from the moment the session is created.
func NewSession(sc *scene.Scene, opts ...SessionOption) *Session {
	s := &Session{
		scene:   sc,
		tick:    DefaultTick,
		logger:  logging.NullLogger,
		publish: func(any) {},
		cmds:    make(chan func()),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	reg := sc.Registry
	reg.Watch(s.onRegistryEvent)
	for _, name := range reg.Names() {
		s.attach(name)
	}
	for _, name := range reg.PointNames() {
		s.attachPoint(name)
	}
	return s
}

func (s *Session) attach(id string) {
	t, ok := s.scene.Registry.Lookup(id)
	if !ok {
		return
	}
	s.watchTracker(t)
}

func (s *Session) attachPoint(name string) {
	p, ok := s.scene.Registry.PointTracker(name)
	if !ok {
		return
	}
	s.watchTracker(p.X())
	s.watchTracker(p.Y())
}

func (s *Session) watchTracker(t *tracker.Tracker) {
	id := t.ID()
	_ = t.AddUpdater(UpdaterPrefix+id, func(v float64) {
		s.publish(TrackerMessage{Type: TypeTracker, ID: id, Value: v})
	}, tracker.IdentityTransform)
}

func (s *Session) onRegistryEvent(ev link.Event) {
	switch ev.Type {
	case link.TrackerAdded:
		if ev.Point {
			s.attachPoint(ev.Name)
		} else {
			s.attach(ev.Name)
		}
	case link.TrackerRemoved:
		s.publish(RemovedMessage{Type: TypeRemoved, ID: ev.Name})
	}
}

// Run processes submitted work and steps tweens until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.stopped)

	var tick <-chan time.Time
	if s.tick > 0 {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.cmds:
			fn()
		case <-tick:
			if s.scene.Clock.Active() {
				s.scene.Step()
			}
		}
	}
}

// Do runs fn on the session goroutine and waits for it to return.
func (s *Session) Do(ctx context.Context, fn func(sc *scene.Scene)) error {
	done := make(chan struct{})
	work := func() {
		defer close(done)
		fn(s.scene)
	}

	select {
	case s.cmds <- work:
	case <-s.stopped:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Execute runs a client command.
func (s *Session) Execute(ctx context.Context, cmd Command) link.Result {
	var res link.Result
	err := s.Do(ctx, func(sc *scene.Scene) {
		res = s.execute(sc, cmd)
	})
	if err != nil {
		return link.ResultOf(err)
	}
	return res
}

func (s *Session) execute(sc *scene.Scene, cmd Command) link.Result {
	reg := sc.Registry
	switch cmd.Op {
	case OpSet:
		t, ok := reg.Lookup(cmd.ID)
		if !ok {
			return fail("tracker %q not found", cmd.ID)
		}
		if cmd.Value == nil {
			return fail("set requires a value")
		}
		t.SetValue(*cmd.Value)
		return succeed("set %s", cmd.ID)

	case OpConnect:
		return link.ResultOf(reg.ConnectTrackers(cmd.Expression))

	case OpDisconnect:
		if !reg.IsActive(cmd.Expression) {
			return fail("expression %q not active", cmd.Expression)
		}
		reg.RemoveExpression(cmd.Expression)
		return succeed("removed link")

	case OpRemove:
		if !reg.Has(cmd.ID) {
			return fail("tracker %q not found", cmd.ID)
		}
		reg.Remove(cmd.ID)
		return succeed("removed %s", cmd.ID)

	case OpAnimate:
		sc.Ledger.Animate()
	case OpReverse:
		sc.Ledger.ReverseAnimate()
	case OpReset:
		sc.Ledger.ResetAll()
	case OpFinish:
		sc.Ledger.FinishAll()
	default:
		return fail("unknown op %q", cmd.Op)
	}

	s.publish(s.ledgerState(sc))
	return succeed("%s", cmd.Op)
}

func (s *Session) ledgerState(sc *scene.Scene) LedgerMessage {
	return LedgerMessage{
		Type:   TypeLedger,
		Active: sc.Ledger.ActiveIndex(),
		Groups: sc.Ledger.Order(),
		Labels: sc.Ledger.Labels(),
	}
}

// Document returns the current scene document.
func (s *Session) Document(ctx context.Context) (*scene.Document, error) {
	var doc *scene.Document
	err := s.Do(ctx, func(sc *scene.Scene) {
		doc = sc.Document()
	})
	return doc, err
}

// Reload replaces the scene with the document at path and pushes the new
// document to clients.
func (s *Session) Reload(ctx context.Context, path string) error {
	var loadErr error
	err := s.Do(ctx, func(sc *scene.Scene) {
		loadErr = sc.Reload(path)
		s.publish(SceneMessage{Type: TypeScene, Scene: sc.Document()})
	})
	if err != nil {
		return err
	}
	if loadErr != nil {
		s.logger.Warn("reload %s: %v", path, loadErr)
	}
	return loadErr
}

func fail(format string, args ...any) link.Result {
	return link.Result{Success: false, Msg: fmt.Sprintf(format, args...)}
}

func succeed(format string, args ...any) link.Result {
	return link.Result{Success: true, Msg: fmt.Sprintf(format, args...)}
}
