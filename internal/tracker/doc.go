// Package tracker provides observable numeric values.
//
// A [Tracker] holds one float64 and an ordered set of named updaters. Each
// updater is a callback bound through a transform expression written in
// terms of t, the tracker's value: an updater registered with "t*2"
// receives twice the value on every change. Setting a value that differs
// from the current one by less than the tracker's epsilon is a no-op.
//
// A [PointTracker] pairs two trackers addressed as "<id>.x" and "<id>.y".
//
// # Cascades
//
// Updaters run synchronously inside SetValue, so one change can ripple
// through any number of dependent trackers within a single call. Trackers
// that share a [Cascade] know when such a ripple is in flight, which lets
// owners defer structural changes until it has settled.
//
// Trackers are not safe for concurrent use.
package tracker
