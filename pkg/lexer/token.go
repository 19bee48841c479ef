package lexer

import (
	"fmt"
)

type TokenType int

const (
	EOF TokenType = iota

	// raw-only tokens, removed or rewritten by PostProcess
	RawIdent
	Whitespace
	Comment
	Bang // '!', only meaningful as the first half of '!='

	// literals and identifiers
	IntegerLit
	StringLit
	Ident
	BoolTrue
	BoolFalse

	// keywords
	If
	While
	Else
	Alloc
	Set
	Print
	ReadLine
	Jump
	Call
	Ret
	Sub
	Pop      // '.pop', coalesced
	PopFront // '.popfront', coalesced

	// punctuation
	ScopeOpen   // {
	ScopeClose  // }
	ParensOpen  // (
	ParensClose // )
	ArrayOpen   // [
	ArrayClose  // ]
	IndexBar    // |
	Question    // ?
	Dot         // .
	Comma       // ,
	LineEnd     // ;
	LabelMark   // :
	Assign      // =
	Arrow       // ->, coalesced

	// operators
	Equals
	NotEquals
	MoreThan
	LessThan
	MoreThanOrEquals
	LessThanOrEquals
	Plus
	Minus
	PlusEquals
	MinusEquals
)

// Keywords maps reserved identifiers to their token types. pop and
// popfront are intentionally absent: they are only special directly
// after '.', which PostProcess handles.
var Keywords = map[string]TokenType{
	"if":     If,
	"while":  While,
	"else":   Else,
	"alloc":  Alloc,
	"set":    Set,
	"print":  Print,
	"readln": ReadLine,
	"jump":   Jump,
	"call":   Call,
	"ret":    Ret,
	"sub":    Sub,
	"true":   BoolTrue,
	"false":  BoolFalse,
}

// Token is one lexical unit. Lexeme holds identifier names and string
// literal contents; Int holds the parsed integer literal value.
type Token struct {
	Type   TokenType
	Lexeme string
	Int    uint32
	Line   int // 1-based source line
}

// NewToken creates a new Token instance
func NewToken(tokenType TokenType, lexeme string, line int) Token {
	return Token{
		Type:   tokenType,
		Lexeme: lexeme,
		Line:   line,
	}
}

var tokenNames = map[TokenType]string{
	EOF:              "$",
	RawIdent:         "rawident",
	Whitespace:       "whitespace",
	Comment:          "comment",
	Bang:             "!",
	IntegerLit:       "integer",
	StringLit:        "string",
	Ident:            "identifier",
	BoolTrue:         "true",
	BoolFalse:        "false",
	If:               "if",
	While:            "while",
	Else:             "else",
	Alloc:            "alloc",
	Set:              "set",
	Print:            "print",
	ReadLine:         "readln",
	Jump:             "jump",
	Call:             "call",
	Ret:              "ret",
	Sub:              "sub",
	Pop:              ".pop",
	PopFront:         ".popfront",
	ScopeOpen:        "{",
	ScopeClose:       "}",
	ParensOpen:       "(",
	ParensClose:      ")",
	ArrayOpen:        "[",
	ArrayClose:       "]",
	IndexBar:         "|",
	Question:         "?",
	Dot:              ".",
	Comma:            ",",
	LineEnd:          ";",
	LabelMark:        ":",
	Assign:           "=",
	Arrow:            "->",
	Equals:           "==",
	NotEquals:        "!=",
	MoreThan:         ">",
	LessThan:         "<",
	MoreThanOrEquals: ">=",
	LessThanOrEquals: "<=",
	Plus:             "+",
	Minus:            "-",
	PlusEquals:       "+=",
	MinusEquals:      "-=",
}

// String returns a string representation of the TokenType
func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// String returns a string representation of the Token
func (t Token) String() string {
	switch t.Type {
	case IntegerLit:
		return fmt.Sprintf("T{%s, %d, line %d}", t.Type, t.Int, t.Line)
	case StringLit, Ident, RawIdent:
		return fmt.Sprintf("T{%s, %q, line %d}", t.Type, t.Lexeme, t.Line)
	default:
		return fmt.Sprintf("T{%s, line %d}", t.Type, t.Line)
	}
}

// symbolTypes maps single boundary characters to their token types
var symbolTypes = map[byte]TokenType{
	'{': ScopeOpen,
	'}': ScopeClose,
	'(': ParensOpen,
	')': ParensClose,
	'[': ArrayOpen,
	']': ArrayClose,
	'|': IndexBar,
	'?': Question,
	'.': Dot,
	',': Comma,
	';': LineEnd,
	':': LabelMark,
	'=': Assign,
	'!': Bang,
	'>': MoreThan,
	'<': LessThan,
	'+': Plus,
	'-': Minus,
}
