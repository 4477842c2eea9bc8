package tracker

// Cascade tracks in-flight update propagation across a set of trackers and
// queues work that must wait until propagation settles.
type Cascade struct {
	depth    int
	draining bool
	deferred []func()
}

// NewCascade creates an idle cascade.
func NewCascade() *Cascade {
	return &Cascade{}
}

// Active reports whether an update is currently propagating.
func (c *Cascade) Active() bool {
	return c != nil && c.depth > 0
}

// Depth returns the current nesting depth of propagation.
func (c *Cascade) Depth() int {
	if c == nil {
		return 0
	}
	return c.depth
}

// Defer runs fn immediately when idle, otherwise queues it to run after the
// outermost propagation returns. It reports whether fn ran immediately.
// Queued functions run in the order they were deferred.
func (c *Cascade) Defer(fn func()) bool {
	if !c.Active() {
		fn()
		return true
	}
	c.deferred = append(c.deferred, fn)
	return false
}

// Pending returns the number of queued functions.
func (c *Cascade) Pending() int {
	if c == nil {
		return 0
	}
	return len(c.deferred)
}

func (c *Cascade) enter() {
	if c != nil {
		c.depth++
	}
}

func (c *Cascade) leave() {
	if c == nil {
		return
	}
	c.depth--
	if c.depth > 0 || c.draining {
		return
	}

	// Deferred work may set values and start new cascades; those nest under
	// this drain and append to the queue rather than draining recursively.
	c.draining = true
	defer func() { c.draining = false }()
	for len(c.deferred) > 0 {
		fn := c.deferred[0]
		c.deferred = c.deferred[1:]
		fn()
	}
	c.deferred = nil
}
