// Package expr provides the arithmetic expression engines used by trackers
// and links.
//
// The engine boundary is deliberately small: an [Engine] compiles text into
// a [Compiled] expression, and a compiled expression evaluates against a set
// of numeric [Bindings]. [Engine.Parse] checks syntax without producing
// anything evaluable and is used to validate link expressions before they
// are committed.
//
// # Grammar
//
// The native engine accepts:
//
//	expr    = sum
//	sum     = product { ("+" | "-") product }
//	product = unary { ("*" | "/" | "%") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ "^" unary ]
//	primary = number | ident | ident "(" [ expr { "," expr } ] ")" | "(" expr ")"
//
// Numbers may carry a fraction and an exponent (1, 2.5, .5, 1e-3). The
// identifiers pi, e and tau are constants; any other identifier is looked
// up in the bindings at evaluation time. The functions available are listed
// by [Functions].
//
// An alternate engine backed by gopher-lua lives in package luaexpr.
package expr
