// Package anim provides the playables that drive trackers over time.
//
// A Tween moves a scalar tracker between two values in a fixed number of
// frames; a PointTween does the same for a point tracker. Neither advances
// on its own: a Clock steps every registered motion once per tick, and the
// player or live server decides when ticks happen.
//
// Factory turns ledger records back into playables by looking up the
// record's type and category, so a scene document can be reloaded without
// the ledger knowing anything about tweens.
package anim
