package expr

import (
	"errors"
	"fmt"
)

// Errors returned by evaluation.
var (
	// ErrUnknownIdent indicates an identifier with no binding or constant.
	ErrUnknownIdent = errors.New("unknown identifier")

	// ErrUnknownFunc indicates a call to a function that does not exist.
	ErrUnknownFunc = errors.New("unknown function")

	// ErrArity indicates a function called with the wrong number of arguments.
	ErrArity = errors.New("wrong number of arguments")

	// ErrNotNumber indicates an expression that did not produce a number.
	ErrNotNumber = errors.New("result is not a number")
)

// SyntaxError describes a parse failure.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

// EvalError wraps an evaluation failure with the offending name.
type EvalError struct {
	Name string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Name)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}
