package tracker

import "errors"

// Errors returned by tracker operations.
var (
	// ErrInvalidTransform indicates an updater transform that does not
	// compile or does not evaluate against the current value.
	ErrInvalidTransform = errors.New("invalid updater transform")

	// ErrNilCallback indicates AddUpdater was given a nil callback.
	ErrNilCallback = errors.New("nil updater callback")
)
