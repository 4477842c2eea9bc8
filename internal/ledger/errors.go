package ledger

import "errors"

// Ledger errors. Stepping operations never return errors; these are only
// produced while rebuilding a ledger from records.
var (
	ErrNilFactory  = errors.New("nil playable factory")
	ErrNilPlayable = errors.New("factory returned nil playable")
)
