package link

import (
	"errors"
	"fmt"
)

// Registry errors.
var (
	// ErrNameTaken indicates a tracker name already used as a scalar or point.
	ErrNameTaken = errors.New("tracker name already in use")

	// ErrInvalidName indicates a tracker name that cannot be referenced.
	ErrInvalidName = errors.New("invalid tracker name")

	// ErrNotFound indicates an unknown tracker or link.
	ErrNotFound = errors.New("not found")

	// ErrCascadeActive indicates an operation that cannot be deferred was
	// requested while an update was propagating.
	ErrCascadeActive = errors.New("update cascade in progress")
)

// Link rejection kinds. Each is also an errors.Is target for *LinkError.
var (
	ErrSyntax        = errors.New("syntax error")
	ErrAlreadyActive = errors.New("expression already active")
	ErrReference     = errors.New("reference error")
	ErrCycle         = errors.New("circular dependency")
	ErrEvalSyntax    = errors.New("mathematical syntax error")
	ErrAttach        = errors.New("failed to add updater")
)

// LinkError reports why ConnectTrackers rejected an expression.
type LinkError struct {
	Kind       error
	Expression string
	Msg        string
}

func (e *LinkError) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
}

func (e *LinkError) Unwrap() error {
	return e.Kind
}

func linkErr(kind error, expression, format string, args ...any) *LinkError {
	return &LinkError{Kind: kind, Expression: expression, Msg: fmt.Sprintf(format, args...)}
}

// Result is the {success, msg} form of a link operation outcome.
type Result struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

// ResultOf converts an error from ConnectTrackers into a Result.
func ResultOf(err error) Result {
	if err == nil {
		return Result{Success: true, Msg: "link established"}
	}
	return Result{Success: false, Msg: err.Error()}
}
