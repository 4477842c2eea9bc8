// Package luaexpr implements expr.Engine on top of gopher-lua.
//
// Expression text is compiled as the body of "return (<text>)", so any Lua
// expression is accepted. Each compiled function runs with a private
// environment that holds only the math library (exposed as bare globals
// such as sin and sqrt) and the evaluation bindings; base, io, os, string
// and package libraries are never reachable. Evaluation is bounded by a
// context timeout because Lua expressions can contain function literals.
//
// gopher-lua's LState is not goroutine-safe; an Engine serializes all use of
// its state with a mutex.
package luaexpr

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/dshills/sceneforge/internal/expr"
)

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 50 * time.Millisecond

// Errors returned by the Lua engine.
var (
	// ErrEngineClosed is returned when using a closed engine.
	ErrEngineClosed = errors.New("lua engine is closed")
)

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the per-evaluation timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// Engine evaluates expressions with gopher-lua.
type Engine struct {
	mu      sync.Mutex
	L       *lua.LState
	base    *lua.LTable
	meta    *lua.LTable
	timeout time.Duration
	closed  bool
}

var _ expr.Engine = (*Engine)(nil)

// New creates a Lua-backed engine.
func New(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs:        true,
		IncludeGoStackTrace: false,
	})
	lua.OpenMath(L)

	e.L = L
	e.base = buildBase(L)
	e.meta = L.NewTable()
	L.SetField(e.meta, "__index", e.base)
	return e
}

// buildBase copies the math library into a flat table and adds the
// functions the native engine has but Lua 5.1 lacks.
func buildBase(L *lua.LState) *lua.LTable {
	base := L.NewTable()
	if mathTbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		mathTbl.ForEach(func(k, v lua.LValue) {
			base.RawSet(k, v)
		})
		base.RawSetString("ln", mathTbl.RawGetString("log"))
		base.RawSetString("mod", mathTbl.RawGetString("fmod"))
	}
	base.RawSetString("e", lua.LNumber(math.E))
	base.RawSetString("tau", lua.LNumber(2*math.Pi))

	extras := map[string]func(float64) float64{
		"round": func(x float64) float64 { return math.Floor(x + 0.5) },
		"trunc": math.Trunc,
		"cbrt":  math.Cbrt,
		"log2":  math.Log2,
		"sign": func(x float64) float64 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			}
			return x
		},
	}
	for name, fn := range extras {
		fn := fn
		base.RawSetString(name, L.NewFunction(func(L *lua.LState) int {
			L.Push(lua.LNumber(fn(float64(L.CheckNumber(1)))))
			return 1
		}))
	}
	base.RawSetString("hypot", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(math.Hypot(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)))))
		return 1
	}))

	return base
}

// Parse implements expr.Engine.
func (e *Engine) Parse(text string) error {
	_, err := compileChunk(text)
	return err
}

// Compile implements expr.Engine.
func (e *Engine) Compile(text string) (expr.Compiled, error) {
	proto, err := compileChunk(text)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	return &compiled{engine: e, fn: e.L.NewFunctionFromProto(proto)}, nil
}

func compileChunk(text string) (*lua.FunctionProto, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &expr.SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	chunk, err := parse.Parse(strings.NewReader("return ("+text+")"), "<expr>")
	if err != nil {
		return nil, &expr.SyntaxError{Pos: 0, Msg: err.Error()}
	}
	proto, err := lua.Compile(chunk, "<expr>")
	if err != nil {
		return nil, &expr.SyntaxError{Pos: 0, Msg: err.Error()}
	}
	return proto, nil
}

// Close releases the Lua state.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.L.Close()
	e.closed = true
	return nil
}

type compiled struct {
	engine *Engine
	fn     *lua.LFunction
}

func (c *compiled) Evaluate(b expr.Bindings) (result float64, err error) {
	e := c.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, ErrEngineClosed
	}

	env := e.L.NewTable()
	for name, v := range b {
		env.RawSetString(name, lua.LNumber(v))
	}
	e.L.SetMetatable(env, e.meta)
	c.fn.Env = env

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	top := e.L.GetTop()
	defer e.L.SetTop(top)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	e.L.Push(c.fn)
	if err := e.L.PCall(0, 1, nil); err != nil {
		return 0, fmt.Errorf("evaluating expression: %w", err)
	}

	ret := e.L.Get(-1)
	num, ok := ret.(lua.LNumber)
	if !ok {
		return 0, &expr.EvalError{Name: ret.Type().String(), Err: expr.ErrNotNumber}
	}
	return float64(num), nil
}
