package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/sceneforge/internal/config/loader"
	"github.com/dshills/sceneforge/internal/expr"
	"github.com/dshills/sceneforge/internal/expr/luaexpr"
	"github.com/dshills/sceneforge/internal/logging"
	"github.com/dshills/sceneforge/internal/tracker"
)

// Expression engines.
const (
	EngineNative = "native"
	EngineLua    = "lua"
)

// MaxIncludeDepth bounds nested @include directives.
const MaxIncludeDepth = 8

// Duration is a time.Duration written as a string such as "150ms".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText writes the duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// ExprConfig selects the expression engine.
type ExprConfig struct {
	Engine  string   `toml:"engine"`
	Timeout Duration `toml:"timeout"`
}

// TrackerConfig holds tracker settings.
type TrackerConfig struct {
	Epsilon float64 `toml:"epsilon"`
}

// StoreConfig locates the scene database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// LiveConfig configures the websocket server.
type LiveConfig struct {
	Addr       string `toml:"addr"`
	MaxClients int    `toml:"max_clients"`
}

// PlayerConfig configures the terminal player.
type PlayerConfig struct {
	Tick  Duration `toml:"tick"`
	Steps int      `toml:"steps"`
}

// SceneConfig configures scene file watching.
type SceneConfig struct {
	Watch    bool     `toml:"watch"`
	Debounce Duration `toml:"debounce"`
}

// Config is the complete settings tree.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Expr    ExprConfig    `toml:"expr"`
	Tracker TrackerConfig `toml:"tracker"`
	Store   StoreConfig   `toml:"store"`
	Live    LiveConfig    `toml:"live"`
	Player  PlayerConfig  `toml:"player"`
	Scene   SceneConfig   `toml:"scene"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info"},
		Expr:    ExprConfig{Engine: EngineNative, Timeout: Duration{luaexpr.DefaultTimeout}},
		Tracker: TrackerConfig{Epsilon: tracker.DefaultEpsilon},
		Store:   StoreConfig{Path: "sceneforge.db"},
		Live:    LiveConfig{Addr: "localhost:7341", MaxClients: 32},
		Player:  PlayerConfig{Tick: Duration{33 * time.Millisecond}, Steps: 30},
		Scene:   SceneConfig{Debounce: Duration{150 * time.Millisecond}},
	}
}

type loadOptions struct {
	fs      loader.FileSystem
	environ []string
	useEnv  bool
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithFS reads files through fsys.
func WithFS(fsys loader.FileSystem) LoadOption {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithEnviron reads overrides from environ instead of the process
// environment.
func WithEnviron(environ []string) LoadOption {
	return func(o *loadOptions) {
		o.environ = environ
	}
}

// WithoutEnv ignores environment overrides.
func WithoutEnv() LoadOption {
	return func(o *loadOptions) {
		o.useEnv = false
	}
}

// Load builds the settings from defaults, the TOML file at path and the
// environment, then validates them. An empty path skips the file.
func Load(path string, opts ...LoadOption) (*Config, error) {
	o := loadOptions{fs: loader.DefaultFS(), useEnv: true}
	for _, opt := range opts {
		opt(&o)
	}

	var data map[string]any
	if path != "" {
		var err error
		data, err = loader.NewTOMLLoaderWithFS(o.fs, path).LoadWithIncludes(path, MaxIncludeDepth)
		if err != nil {
			return nil, err
		}
	}
	if o.useEnv {
		env := loader.NewEnvLoader(loader.DefaultEnvPrefix)
		if o.environ != nil {
			env = loader.NewEnvLoaderFrom(loader.DefaultEnvPrefix, o.environ)
		}
		vars, err := env.Load()
		if err != nil {
			return nil, err
		}
		data = loader.DeepMerge(data, vars)
	}

	cfg := Default()
	if err := cfg.apply(data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML settings over the defaults and validates them.
func Parse(data []byte) (*Config, error) {
	m, err := loader.Parse("<input>", data)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := cfg.apply(m); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply decodes a merged settings map onto c. The map is re-encoded so the
// strict decoder can reject unknown keys.
func (c *Config) apply(data map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	b, err := toml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s", ErrUnknownSetting, strict.String())
		}
		return fmt.Errorf("decode settings: %w", err)
	}
	return nil
}

// Validate reports every setting with a bad value.
func (c *Config) Validate() error {
	var errs []error
	bad := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if !logging.ValidLevel(c.Log.Level) {
		bad("log.level", "must be debug, info, warn or error", c.Log.Level)
	}
	if c.Expr.Engine != EngineNative && c.Expr.Engine != EngineLua {
		bad("expr.engine", "must be native or lua", c.Expr.Engine)
	}
	if c.Expr.Timeout.Duration <= 0 {
		bad("expr.timeout", "must be positive", c.Expr.Timeout)
	}
	if c.Tracker.Epsilon < 0 || math.IsNaN(c.Tracker.Epsilon) || math.IsInf(c.Tracker.Epsilon, 0) {
		bad("tracker.epsilon", "must be a finite non-negative number", c.Tracker.Epsilon)
	}
	if c.Store.Path == "" {
		bad("store.path", "must not be empty", c.Store.Path)
	}
	if c.Live.Addr == "" {
		bad("live.addr", "must not be empty", c.Live.Addr)
	}
	if c.Live.MaxClients <= 0 {
		bad("live.max_clients", "must be positive", c.Live.MaxClients)
	}
	if c.Player.Tick.Duration <= 0 {
		bad("player.tick", "must be positive", c.Player.Tick)
	}
	if c.Player.Steps < 0 {
		bad("player.steps", "must not be negative", c.Player.Steps)
	}
	if c.Scene.Debounce.Duration < 0 {
		bad("scene.debounce", "must not be negative", c.Scene.Debounce)
	}
	return errors.Join(errs...)
}

// Engine constructs the configured expression engine.
func (c *Config) Engine() expr.Engine {
	if c.Expr.Engine == EngineLua {
		return luaexpr.New(luaexpr.WithTimeout(c.Expr.Timeout.Duration))
	}
	return expr.NewNative()
}

// Logger constructs the process logger at the configured level.
func (c *Config) Logger() *logging.Logger {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Log.Level)
	return logging.New(cfg)
}
