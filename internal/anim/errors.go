package anim

import "errors"

// Factory errors.
var (
	ErrUnknownType    = errors.New("unknown animation type")
	ErrTargetNotFound = errors.New("animation target not found")
	ErrBadParam       = errors.New("invalid animation parameter")
)
