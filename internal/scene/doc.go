// Package scene ties one tracker registry and one animation ledger into an
// editing session, and reads and writes scene documents.
//
// A scene document holds the registry snapshot (trackers, point trackers and
// link expressions) and the ledger records. Documents are stored as YAML
// (.yaml, .yml) or JSON (.json), chosen by file extension:
//
//	version: 1
//	name: orbit
//	trackers:
//	  trackers:
//	    - {id: theta, value: 0}
//	  pointTrackers:
//	    - {id: moon, value: {x: 1, y: 0}}
//	  links:
//	    - "[moon.x] = cos([theta]);"
//	    - "[moon.y] = sin([theta]);"
//	animations:
//	  - - {id: spin, targetId: theta, type: value, params: {to: 6.283}}
//
// Watcher reports edits to a scene file so a running session can reload it.
package scene
