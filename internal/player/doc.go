// Package player presents a scene in the terminal and steps its ledger from
// the keyboard.
//
// The screen lists the scene's trackers with their current values, the
// active links and the ledger groups, marking the group the next step will
// play. Keys:
//
//	n, space       play the active group
//	p, backspace   reverse the previous group
//	r              reset every animation
//	f              finish every animation
//	up, down       select a group
//	<, >           move the selected group earlier or later
//	q, esc         quit
//
// A ticker advances running tweens. All scene access happens on the
// goroutine that called Run.
//
// Headless renders the same state as plain text for non-terminal output.
package player
