package expr

// TokenType identifies a lexical token.
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	IDENT  // sin, t, pi
	NUMBER // 1, 2.5, 1e-3

	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	CARET    // ^

	COMMA  // ,
	LPAREN // (
	RPAREN // )
)

// Token is a lexical token with its byte offset in the input.
type Token struct {
	Type     TokenType
	Literal  string
	Position int
}

// Lexer splits expression text into tokens.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
}

// NewLexer creates a lexer over input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken returns the next token, or EOF at the end of input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.position
	var tok Token

	switch l.ch {
	case '+':
		tok = newToken(PLUS, l.ch, pos)
	case '-':
		tok = newToken(MINUS, l.ch, pos)
	case '*':
		// ** is accepted as an alias for ^.
		if l.peekChar() == '*' {
			l.readChar()
			tok = Token{Type: CARET, Literal: "**", Position: pos}
		} else {
			tok = newToken(ASTERISK, l.ch, pos)
		}
	case '/':
		tok = newToken(SLASH, l.ch, pos)
	case '%':
		tok = newToken(PERCENT, l.ch, pos)
	case '^':
		tok = newToken(CARET, l.ch, pos)
	case ',':
		tok = newToken(COMMA, l.ch, pos)
	case '(':
		tok = newToken(LPAREN, l.ch, pos)
	case ')':
		tok = newToken(RPAREN, l.ch, pos)
	case 0:
		// A NUL byte inside the input is not the end of it.
		if l.position < len(l.input) {
			tok = newToken(ILLEGAL, l.ch, pos)
		} else {
			return Token{Type: EOF, Position: pos}
		}
	default:
		if isLetter(l.ch) {
			return Token{Type: IDENT, Literal: l.readIdentifier(), Position: pos}
		}
		if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
			lit, ok := l.readNumber()
			if !ok {
				return Token{Type: ILLEGAL, Literal: lit, Position: pos}
			}
			return Token{Type: NUMBER, Literal: lit, Position: pos}
		}
		tok = newToken(ILLEGAL, l.ch, pos)
	}

	l.readChar()
	return tok
}

func newToken(tokenType TokenType, ch byte, position int) Token {
	return Token{Type: tokenType, Literal: string(ch), Position: position}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber consumes digits, an optional fraction and an optional exponent.
// It reports false for a dangling exponent such as "1e".
func (l *Lexer) readNumber() (string, bool) {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return l.input[position:l.position], false
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position], true
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func (t TokenType) String() string {
	switch t {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case IDENT:
		return "IDENT"
	case NUMBER:
		return "NUMBER"
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case ASTERISK:
		return "*"
	case SLASH:
		return "/"
	case PERCENT:
		return "%"
	case CARET:
		return "^"
	case COMMA:
		return ","
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	default:
		return "UNKNOWN"
	}
}
