package lexer

import (
	"strconv"

	"github.com/Nick80835/boredom2/pkg/diag"
)

// Lexer scans source lines into a flat raw token stream. Each line is
// lexed independently: no token spans a line boundary, and comments
// consume to end of line.
type Lexer struct {
	lines   []string
	lineIdx int
	charIdx int
}

// New creates a lexer over the given source lines
func New(lines []string) *Lexer {
	return &Lexer{lines: lines}
}

// Tokenize lexes all lines and runs the post-processing pass,
// returning the token stream the parser consumes
func Tokenize(lines []string) ([]Token, error) {
	l := New(lines)
	raw := make([]Token, 0, 64)

	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}

		raw = append(raw, tok)
		if tok.Type == EOF {
			break
		}
	}

	return PostProcess(raw)
}

// Next returns the next raw token, including Whitespace and Comment
// tokens, which PostProcess later removes
func (l *Lexer) Next() (Token, error) {
	if !l.charInBounds() {
		l.charIdx = 0
		l.lineIdx++

		for l.lineInBounds() && len(l.currentLine()) == 0 {
			l.lineIdx++
		}
	}
	if !l.lineInBounds() {
		return NewToken(EOF, "", l.lineIdx), nil
	}

	c := l.currentChar()

	switch {
	case isDigit(c):
		return l.consumeInteger()
	case isIdentStart(c):
		return l.consumeIdentifier(), nil
	case c == '"':
		return l.consumeString()
	case isSpace(c):
		return l.consumeWhitespace(), nil
	case c == '#':
		return l.consumeComment(), nil
	}

	if typ, ok := symbolTypes[c]; ok {
		l.charIdx++
		return NewToken(typ, string(c), l.lineIdx+1), nil
	}

	return Token{}, diag.Errorf(diag.Parse, l.lineIdx+1, "unknown character %q", string(c))
}

func (l *Lexer) lineInBounds() bool {
	return l.lineIdx < len(l.lines)
}

func (l *Lexer) charInBounds() bool {
	return l.lineInBounds() && l.charIdx < len(l.currentLine())
}

func (l *Lexer) currentLine() string {
	return l.lines[l.lineIdx]
}

func (l *Lexer) currentChar() byte {
	return l.currentLine()[l.charIdx]
}

func (l *Lexer) consumeInteger() (Token, error) {
	start := l.charIdx
	for l.charInBounds() && isDigit(l.currentChar()) {
		l.charIdx++
	}

	digits := l.currentLine()[start:l.charIdx]
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return Token{}, diag.Errorf(diag.Parse, l.lineIdx+1, "integer literal %s out of range", digits)
	}

	tok := NewToken(IntegerLit, digits, l.lineIdx+1)
	tok.Int = uint32(n)

	return tok, nil
}

func (l *Lexer) consumeIdentifier() Token {
	start := l.charIdx
	for l.charInBounds() && isIdentPart(l.currentChar()) {
		l.charIdx++
	}

	return NewToken(RawIdent, l.currentLine()[start:l.charIdx], l.lineIdx+1)
}

func (l *Lexer) consumeString() (Token, error) {
	l.charIdx++ // step past the opening quote
	start := l.charIdx

	for l.charInBounds() && l.currentChar() != '"' {
		l.charIdx++
	}
	if !l.charInBounds() {
		return Token{}, diag.Errorf(diag.Parse, l.lineIdx+1, "unterminated string literal")
	}

	content := l.currentLine()[start:l.charIdx]
	l.charIdx++ // step past the closing quote

	return NewToken(StringLit, content, l.lineIdx+1), nil
}

func (l *Lexer) consumeWhitespace() Token {
	for l.charInBounds() && isSpace(l.currentChar()) {
		l.charIdx++
	}

	return NewToken(Whitespace, "", l.lineIdx+1)
}

func (l *Lexer) consumeComment() Token {
	l.charIdx = len(l.currentLine())

	return NewToken(Comment, "", l.lineIdx+1)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
