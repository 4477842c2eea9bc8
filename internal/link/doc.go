// Package link owns the named trackers of a scene and the expression links
// between them.
//
// A link is declared as text:
//
//	[target] = <expression>;
//
// where target and every reference inside the expression are written
// [name] for scalar trackers or [name.x] / [name.y] for point axes. The
// trailing semicolon is required. Once connected, the target is recomputed
// whenever any referenced tracker changes: each reference is replaced by
// its current value and the resulting arithmetic is evaluated by the
// registry's expr.Engine. Non-finite or failing results leave the target
// untouched.
//
// The registry keeps a dependency graph of target -> references and refuses
// any link that would make it cyclic. Every rejection leaves the registry
// exactly as it was.
//
// Structural changes requested while an update is propagating (for example
// removing a tracker from inside one of its dependents' callbacks) are
// deferred until the propagation completes.
package link
