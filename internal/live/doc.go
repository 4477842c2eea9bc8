// Package live serves a scene over a websocket.
//
// A Session owns the scene and runs every operation on one goroutine, so the
// registry and ledger never see concurrent calls. Server exposes the session
// over HTTP:
//
//	GET /ws          websocket; tracker changes and ledger state are pushed,
//	                 commands are accepted as JSON
//	GET /api/scene   the current scene document as JSON
//
// Commands look like {"op": "set", "id": "theta", "value": 1.2} or
// {"op": "connect", "expression": "[y] = [x] * 2;"}; every command is
// answered with {"type": "reply", "success": ..., "msg": ...}.
package live
