package expr

import (
	"fmt"
	"strconv"
)

const (
	_ int = iota
	LOWEST
	SUM     // + -
	PRODUCT // * / %
	PREFIX  // -X
	POWER   // X ^ Y
	CALL    // fn(X)
)

var precedences = map[TokenType]int{
	PLUS:     SUM,
	MINUS:    SUM,
	ASTERISK: PRODUCT,
	SLASH:    PRODUCT,
	PERCENT:  PRODUCT,
	CARET:    POWER,
	LPAREN:   CALL,
}

// maxDepth bounds nesting so hostile input cannot exhaust the stack.
const maxDepth = 256

type (
	prefixParseFn func() node
	infixParseFn  func(node) node
)

type parser struct {
	l *Lexer

	curToken  Token
	peekToken Token

	errors []*SyntaxError
	depth  int

	prefixParseFns map[TokenType]prefixParseFn
	infixParseFns  map[TokenType]infixParseFn
}

func newParser(l *Lexer) *parser {
	p := &parser{l: l}

	p.prefixParseFns = map[TokenType]prefixParseFn{
		IDENT:  p.parseIdentifier,
		NUMBER: p.parseNumberLiteral,
		PLUS:   p.parsePrefixExpression,
		MINUS:  p.parsePrefixExpression,
		LPAREN: p.parseGroupedExpression,
	}

	p.infixParseFns = map[TokenType]infixParseFn{
		PLUS:     p.parseInfixExpression,
		MINUS:    p.parseInfixExpression,
		ASTERISK: p.parseInfixExpression,
		SLASH:    p.parseInfixExpression,
		PERCENT:  p.parseInfixExpression,
		CARET:    p.parsePowerExpression,
		LPAREN:   p.parseCallExpression,
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// parse turns text into an AST, reporting the first syntax error.
func parse(text string) (node, error) {
	p := newParser(NewLexer(text))
	if p.curTokenIs(EOF) {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	root := p.parseExpression(LOWEST)
	if len(p.errors) == 0 && !p.peekTokenIs(EOF) {
		p.errorf(p.peekToken.Position, "unexpected %s", describe(p.peekToken))
	}
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return root, nil
}

func (p *parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *parser) parseExpression(precedence int) node {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		p.errorf(p.curToken.Position, "expression nested too deeply")
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorf(p.curToken.Position, "unexpected %s", describe(p.curToken))
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *parser) parseIdentifier() node {
	return &identifier{Token: p.curToken, Name: p.curToken.Literal}
}

func (p *parser) parseNumberLiteral() node {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf(p.curToken.Position, "could not parse %q as number", p.curToken.Literal)
		return nil
	}
	return &numberLiteral{Token: p.curToken, Value: value}
}

func (p *parser) parsePrefixExpression() node {
	expression := &prefixExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *parser) parseInfixExpression(left node) node {
	expression := &infixExpression{Token: p.curToken, Left: left, Operator: p.curToken.Literal}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

// parsePowerExpression is right-associative and lets a signed exponent
// follow the operator: 2^-1, 2^3^2 == 2^(3^2).
func (p *parser) parsePowerExpression(left node) node {
	expression := &infixExpression{Token: Token{Type: CARET, Literal: "^", Position: p.curToken.Position}, Left: left, Operator: "^"}
	p.nextToken()
	expression.Right = p.parseExpression(POWER - 1)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *parser) parseGroupedExpression() node {
	open := p.curToken
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if !p.peekTokenIs(RPAREN) {
		p.errorf(open.Position, "unclosed parenthesis")
		return nil
	}
	p.nextToken()
	return exp
}

func (p *parser) parseCallExpression(fn node) node {
	ident, ok := fn.(*identifier)
	if !ok {
		p.errorf(p.curToken.Position, "only functions can be called")
		return nil
	}
	exp := &callExpression{Token: p.curToken, Function: ident.Name}
	args, ok := p.parseExpressionList(RPAREN)
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

func (p *parser) parseExpressionList(end TokenType) ([]node, bool) {
	var args []node

	if p.peekTokenIs(end) {
		p.nextToken()
		return args, true
	}

	p.nextToken()
	arg := p.parseExpression(LOWEST)
	if arg == nil {
		return nil, false
	}
	args = append(args, arg)

	for p.peekTokenIs(COMMA) {
		p.nextToken()
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return args, true
}

func (p *parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

func (p *parser) peekTokenIs(t TokenType) bool {
	return p.peekToken.Type == t
}

func (p *parser) expectPeek(t TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken.Position, "expected %s, got %s", t, describe(p.peekToken))
	return false
}

func (p *parser) errorf(pos int, format string, args ...any) {
	p.errors = append(p.errors, &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func describe(tok Token) string {
	switch tok.Type {
	case EOF:
		return "end of expression"
	case ILLEGAL:
		return fmt.Sprintf("character %q", tok.Literal)
	default:
		return fmt.Sprintf("%q", tok.Literal)
	}
}
