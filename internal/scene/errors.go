package scene

import "errors"

// Scene errors.
var (
	ErrUnknownFormat      = errors.New("unknown scene format")
	ErrUnsupportedVersion = errors.New("unsupported scene version")
	ErrPartialLoad        = errors.New("scene loaded with errors")
)
