package expr

import (
	"math"
	"strconv"
	"strings"
)

type node interface {
	eval(b Bindings) (float64, error)
	String() string
}

type numberLiteral struct {
	Token Token
	Value float64
}

func (n *numberLiteral) eval(Bindings) (float64, error) { return n.Value, nil }
func (n *numberLiteral) String() string                 { return n.Token.Literal }

type identifier struct {
	Token Token
	Name  string
}

func (n *identifier) eval(b Bindings) (float64, error) {
	if v, ok := b[n.Name]; ok {
		return v, nil
	}
	if v, ok := constants[n.Name]; ok {
		return v, nil
	}
	return 0, &EvalError{Name: n.Name, Err: ErrUnknownIdent}
}

func (n *identifier) String() string { return n.Name }

type prefixExpression struct {
	Token    Token
	Operator string
	Right    node
}

func (n *prefixExpression) eval(b Bindings) (float64, error) {
	v, err := n.Right.eval(b)
	if err != nil {
		return 0, err
	}
	if n.Operator == "-" {
		return -v, nil
	}
	return v, nil
}

func (n *prefixExpression) String() string {
	return "(" + n.Operator + n.Right.String() + ")"
}

type infixExpression struct {
	Token    Token
	Left     node
	Operator string
	Right    node
}

func (n *infixExpression) eval(b Bindings) (float64, error) {
	left, err := n.Left.eval(b)
	if err != nil {
		return 0, err
	}
	right, err := n.Right.eval(b)
	if err != nil {
		return 0, err
	}
	switch n.Token.Type {
	case PLUS:
		return left + right, nil
	case MINUS:
		return left - right, nil
	case ASTERISK:
		return left * right, nil
	case SLASH:
		return left / right, nil
	case PERCENT:
		return math.Mod(left, right), nil
	case CARET:
		return math.Pow(left, right), nil
	}
	return 0, &EvalError{Name: n.Operator, Err: ErrUnknownFunc}
}

func (n *infixExpression) String() string {
	return "(" + n.Left.String() + " " + n.Operator + " " + n.Right.String() + ")"
}

type callExpression struct {
	Token     Token
	Function  string
	Arguments []node
}

func (n *callExpression) eval(b Bindings) (float64, error) {
	fn, ok := functions[n.Function]
	if !ok {
		return 0, &EvalError{Name: n.Function, Err: ErrUnknownFunc}
	}
	if !fn.accepts(len(n.Arguments)) {
		return 0, &EvalError{Name: n.Function, Err: ErrArity}
	}
	args := make([]float64, len(n.Arguments))
	for i, a := range n.Arguments {
		v, err := a.eval(b)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	return fn.call(args), nil
}

func (n *callExpression) String() string {
	parts := make([]string, len(n.Arguments))
	for i, a := range n.Arguments {
		parts[i] = a.String()
	}
	return n.Function + "(" + strings.Join(parts, ", ") + ")"
}

// FormatNumber renders v the way expressions expect literals: shortest
// round-tripping form, with exponents when needed.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
