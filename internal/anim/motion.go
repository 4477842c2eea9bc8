package anim

// State is the playback state of a motion.
type State int

// Motion states.
const (
	Idle State = iota
	Playing
	Reversing
	Paused
	Finished
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Reversing:
		return "reversing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// motion is the frame counter shared by every tween. apply receives eased
// progress in [0, 1] and writes it to the target.
type motion struct {
	steps  int
	frame  int
	state  State
	resume State
	easing Easing
	apply  func(p float64)
}

func newMotion(steps int, easing Easing, apply func(float64)) motion {
	if steps < 0 {
		steps = 0
	}
	if easing == nil {
		easing = Linear
	}
	return motion{steps: steps, easing: easing, apply: apply}
}

func (m *motion) progress() float64 {
	if m.steps == 0 {
		if m.frame > 0 {
			return 1
		}
		return 0
	}
	return float64(m.frame) / float64(m.steps)
}

func (m *motion) render() {
	m.apply(m.easing(m.progress()))
}

func (m *motion) seek(frame int) {
	m.frame = frame
	m.render()
}

// end is the frame count that means "at the destination"; an instant motion
// uses frame 1 so progress can tell the two ends apart.
func (m *motion) end() int {
	if m.steps == 0 {
		return 1
	}
	return m.steps
}

func (m *motion) play() {
	m.seek(0)
	m.state = Playing
	if m.steps == 0 {
		m.seek(m.end())
		m.state = Finished
	}
}

func (m *motion) reverse() {
	if m.frame == 0 {
		m.state = Idle
		return
	}
	m.state = Reversing
	if m.steps == 0 {
		m.seek(0)
		m.state = Idle
	}
}

func (m *motion) complete() {
	m.seek(m.end())
	m.state = Finished
}

func (m *motion) pause() {
	if m.state == Playing || m.state == Reversing {
		m.resume = m.state
		m.state = Paused
	}
}

// resumePlayback continues a paused motion in its previous direction.
func (m *motion) resumePlayback() {
	if m.state == Paused {
		m.state = m.resume
	}
}

// seekToEnd moves to the destination without entering the finished state.
func (m *motion) seekToEnd() {
	m.seek(m.end())
	if m.state != Idle {
		m.state = Paused
		m.resume = Playing
	}
}

func (m *motion) reset() {
	m.frame = 0
	m.state = Idle
}

// step advances one frame and reports whether the motion is still running.
func (m *motion) step() bool {
	switch m.state {
	case Playing:
		m.seek(m.frame + 1)
		if m.frame >= m.end() {
			m.state = Finished
			return false
		}
		return true
	case Reversing:
		m.seek(m.frame - 1)
		if m.frame <= 0 {
			m.state = Idle
			return false
		}
		return true
	}
	return false
}

func (m *motion) active() bool {
	return m.state == Playing || m.state == Reversing
}
