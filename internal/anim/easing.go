package anim

import "math"

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(p float64) float64

// Built-in easings.
var (
	Linear    Easing = func(p float64) float64 { return p }
	EaseIn    Easing = func(p float64) float64 { return p * p }
	EaseOut   Easing = func(p float64) float64 { return 1 - (1-p)*(1-p) }
	EaseInOut Easing = func(p float64) float64 {
		if p < 0.5 {
			return 2 * p * p
		}
		return 1 - math.Pow(-2*p+2, 2)/2
	}
)

var easings = map[string]Easing{
	"":       Linear,
	"linear": Linear,
	"in":     EaseIn,
	"out":    EaseOut,
	"inout":  EaseInOut,
}

// EasingByName returns the easing registered under name.
func EasingByName(name string) (Easing, bool) {
	e, ok := easings[name]
	return e, ok
}
