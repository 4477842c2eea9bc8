package ledger

// Playable is the capability the ledger requires of every animation.
type Playable interface {
	// Play starts the animation, restarting it if it already ran.
	Play()
	// Reverse plays the animation backwards from its current state.
	Reverse()
	// Complete jumps to the finished state.
	Complete()
	// Pause stops the animation where it is.
	Pause()
	// SeekToEnd moves to the end without firing completion.
	SeekToEnd()
	// Reset returns the animation to its pre-play state.
	Reset()
}

// Reverter is implemented by playables that must undo their effect on the
// scene when removed from the ledger.
type Reverter interface {
	Revert()
}

// Direction selects the neighbour MoveGroup swaps with.
type Direction int

const (
	// Up swaps a group with the one before it.
	Up Direction = iota
	// Down swaps a group with the one after it.
	Down
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// ParseDirection converts "up" or "down" to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return Up, true
	case "down":
		return Down, true
	}
	return 0, false
}
