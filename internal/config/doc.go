// Package config loads sceneforge settings.
//
// Settings come from three sources, lowest priority first: built-in
// defaults, a TOML file (with optional @include directives) and
// SCENEFORGE_* environment variables:
//
//	[log]
//	level = "debug"
//
//	[expr]
//	engine = "lua"
//	timeout = "50ms"
//
//	[tracker]
//	epsilon = 0.001
//
//	[store]
//	path = "scenes.db"
//
//	[live]
//	addr = "localhost:7341"
//	max_clients = 32
//
//	[player]
//	tick = "33ms"
//	steps = 30
//
//	[scene]
//	watch = true
//	debounce = "150ms"
//
// A missing file is not an error. Unknown keys are. Validate reports every
// bad value at once.
package config
