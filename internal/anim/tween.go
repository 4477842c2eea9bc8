package anim

import "github.com/dshills/sceneforge/internal/tracker"

// DefaultSteps is the frame count used when a tween does not set one.
const DefaultSteps = 30

// TweenOption configures a Tween or PointTween.
type TweenOption func(*tweenConfig)

type tweenConfig struct {
	steps  int
	easing Easing
}

// WithSteps sets the number of frames. Zero makes the tween instant.
func WithSteps(n int) TweenOption {
	return func(c *tweenConfig) {
		c.steps = n
	}
}

// WithEasing sets the easing curve.
func WithEasing(e Easing) TweenOption {
	return func(c *tweenConfig) {
		if e != nil {
			c.easing = e
		}
	}
}

func buildConfig(opts []TweenOption) tweenConfig {
	c := tweenConfig{steps: DefaultSteps, easing: Linear}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Tween moves a scalar tracker from one value to another.
type Tween struct {
	motion
	target   *tracker.Tracker
	from, to float64

	origin    float64
	hasOrigin bool
}

// NewTween creates a tween over target.
func NewTween(target *tracker.Tracker, from, to float64, opts ...TweenOption) *Tween {
	c := buildConfig(opts)
	t := &Tween{target: target, from: from, to: to}
	t.motion = newMotion(c.steps, c.easing, func(p float64) {
		t.target.SetValue(t.from + (t.to-t.from)*p)
	})
	return t
}

// Target returns the driven tracker.
func (t *Tween) Target() *tracker.Tracker { return t.target }

// Play restarts the tween from its first frame.
func (t *Tween) Play() {
	if t.state == Idle && !t.hasOrigin {
		t.origin = t.target.Value()
		t.hasOrigin = true
	}
	t.play()
}

// Reverse plays back toward the first frame.
func (t *Tween) Reverse() { t.reverse() }

// Complete jumps to the last frame.
func (t *Tween) Complete() { t.complete() }

// Pause holds the current frame.
func (t *Tween) Pause() { t.pause() }

// Resume continues a paused tween.
func (t *Tween) Resume() { t.resumePlayback() }

// SeekToEnd moves to the last frame without finishing.
func (t *Tween) SeekToEnd() { t.seekToEnd() }

// Reset restores the value the tracker had before the tween first played.
func (t *Tween) Reset() {
	t.reset()
	if t.hasOrigin {
		t.target.SetValue(t.origin)
		t.hasOrigin = false
	}
}

// Revert undoes the tween's effect on the tracker.
func (t *Tween) Revert() { t.Reset() }

// Step advances one frame and reports whether the tween is still running.
func (t *Tween) Step() bool { return t.step() }

// Active reports whether the tween is playing or reversing.
func (t *Tween) Active() bool { return t.active() }

// Progress returns the linear progress in [0, 1].
func (t *Tween) Progress() float64 { return t.progress() }

// State returns the playback state.
func (t *Tween) State() State { return t.state }

// PointTween moves a point tracker from one point to another.
type PointTween struct {
	motion
	target   *tracker.PointTracker
	from, to tracker.Point

	origin    tracker.Point
	hasOrigin bool
}

// NewPointTween creates a tween over target.
func NewPointTween(target *tracker.PointTracker, from, to tracker.Point, opts ...TweenOption) *PointTween {
	c := buildConfig(opts)
	t := &PointTween{target: target, from: from, to: to}
	t.motion = newMotion(c.steps, c.easing, func(p float64) {
		t.target.Set(tracker.Point{
			X: t.from.X + (t.to.X-t.from.X)*p,
			Y: t.from.Y + (t.to.Y-t.from.Y)*p,
		})
	})
	return t
}

// Target returns the driven point tracker.
func (t *PointTween) Target() *tracker.PointTracker { return t.target }

// Play restarts the tween from its first frame.
func (t *PointTween) Play() {
	if t.state == Idle && !t.hasOrigin {
		t.origin = t.target.Point()
		t.hasOrigin = true
	}
	t.play()
}

// Reverse plays back toward the first frame.
func (t *PointTween) Reverse() { t.reverse() }

// Complete jumps to the last frame.
func (t *PointTween) Complete() { t.complete() }

// Pause holds the current frame.
func (t *PointTween) Pause() { t.pause() }

// Resume continues a paused tween.
func (t *PointTween) Resume() { t.resumePlayback() }

// SeekToEnd moves to the last frame without finishing.
func (t *PointTween) SeekToEnd() { t.seekToEnd() }

// Reset restores the point the tracker had before the tween first played.
func (t *PointTween) Reset() {
	t.reset()
	if t.hasOrigin {
		t.target.Set(t.origin)
		t.hasOrigin = false
	}
}

// Revert undoes the tween's effect on the tracker.
func (t *PointTween) Revert() { t.Reset() }

// Step advances one frame and reports whether the tween is still running.
func (t *PointTween) Step() bool { return t.step() }

// Active reports whether the tween is playing or reversing.
func (t *PointTween) Active() bool { return t.active() }

// Progress returns the linear progress in [0, 1].
func (t *PointTween) Progress() float64 { return t.progress() }

// State returns the playback state.
func (t *PointTween) State() State { return t.state }
