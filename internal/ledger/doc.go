// Package ledger sequences animations for a scene.
//
// The Ledger keeps a lookup of animation handles and an ordered list of
// groups, each a set of handles meant to play together. A circular cursor
// (the active index) walks the groups:
//
//	l := ledger.New()
//	l.AddAnimations(fadeIn)          // group 0
//	l.AddAnimations(move, scale)     // group 1
//
//	l.Animate()        // plays group 0, active index -> 1
//	l.Animate()        // plays group 1, wraps to 0
//	l.ReverseAnimate() // at 0: finishes everything, reverses group 0
//
// # Playables
//
// Handles carry an opaque Playable supplied by the rendering layer. The
// ledger has no notion of time or progress; each group is one discrete step
// and the Playable decides what "play" means.
//
// # Persistence
//
// Records returns the serializable form of the groups. LoadRecords rebuilds
// a ledger from records through a Factory; the ledger itself never
// constructs playables.
package ledger
