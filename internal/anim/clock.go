package anim

// Stepper is a motion a Clock can advance.
type Stepper interface {
	Step() bool
	Active() bool
}

// Clock steps every registered motion once per tick.
type Clock struct {
	items  []Stepper
	frames uint64
}

// NewClock creates an empty clock.
func NewClock() *Clock {
	return &Clock{}
}

// Add registers s. Adding the same motion twice has no effect.
func (c *Clock) Add(s Stepper) {
	for _, existing := range c.items {
		if existing == s {
			return
		}
	}
	c.items = append(c.items, s)
}

// Remove unregisters s.
func (c *Clock) Remove(s Stepper) {
	for i, existing := range c.items {
		if existing == s {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Clear unregisters every motion.
func (c *Clock) Clear() {
	c.items = nil
}

// Len returns the number of registered motions.
func (c *Clock) Len() int {
	return len(c.items)
}

// Frames returns the number of ticks so far.
func (c *Clock) Frames() uint64 {
	return c.frames
}

// Active reports whether any registered motion is running.
func (c *Clock) Active() bool {
	for _, s := range c.items {
		if s.Active() {
			return true
		}
	}
	return false
}

// Tick advances every running motion one frame and returns how many are
// still running afterwards.
func (c *Clock) Tick() int {
	c.frames++
	running := 0
	for _, s := range c.items {
		if s.Active() && s.Step() {
			running++
		}
	}
	return running
}

// Settle ticks until nothing is running or limit ticks have passed, and
// returns the number of ticks taken.
func (c *Clock) Settle(limit int) int {
	n := 0
	for n < limit && c.Active() {
		c.Tick()
		n++
	}
	return n
}
