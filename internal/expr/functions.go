package expr

import (
	"math"
	"sort"
)

var constants = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
	"PI":  math.Pi,
	"E":   math.E,
}

type function struct {
	minArgs int
	maxArgs int // -1 for variadic
	call    func(args []float64) float64
}

func (f function) accepts(n int) bool {
	return n >= f.minArgs && (f.maxArgs < 0 || n <= f.maxArgs)
}

func unary(fn func(float64) float64) function {
	return function{minArgs: 1, maxArgs: 1, call: func(a []float64) float64 { return fn(a[0]) }}
}

func binary(fn func(float64, float64) float64) function {
	return function{minArgs: 2, maxArgs: 2, call: func(a []float64) float64 { return fn(a[0], a[1]) }}
}

var functions = map[string]function{
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"asin":  unary(math.Asin),
	"acos":  unary(math.Acos),
	"atan":  unary(math.Atan),
	"sinh":  unary(math.Sinh),
	"cosh":  unary(math.Cosh),
	"tanh":  unary(math.Tanh),
	"sqrt":  unary(math.Sqrt),
	"cbrt":  unary(math.Cbrt),
	"abs":   unary(math.Abs),
	"exp":   unary(math.Exp),
	"log":   unary(math.Log),
	"ln":    unary(math.Log),
	"log10": unary(math.Log10),
	"log2":  unary(math.Log2),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"round": unary(roundHalfUp),
	"trunc": unary(math.Trunc),
	"sign":  unary(sign),
	"atan2": binary(math.Atan2),
	"pow":   binary(math.Pow),
	"mod":   binary(math.Mod),
	"hypot": binary(math.Hypot),
	"min":   {minArgs: 1, maxArgs: -1, call: minOf},
	"max":   {minArgs: 1, maxArgs: -1, call: maxOf},
}

// Functions returns the names of the callable functions, sorted.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Constants returns the named constants.
func Constants() map[string]float64 {
	out := make(map[string]float64, len(constants))
	for k, v := range constants {
		out[k] = v
	}
	return out
}

// roundHalfUp rounds .5 toward +Inf, matching round(-2.5) == -2.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return x
	}
}

func minOf(a []float64) float64 {
	m := a[0]
	for _, v := range a[1:] {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(a []float64) float64 {
	m := a[0]
	for _, v := range a[1:] {
		m = math.Max(m, v)
	}
	return m
}
