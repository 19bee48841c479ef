package lexer_test

import (
	"testing"

	"github.com/Nick80835/boredom2/pkg/diag"
	"github.com/Nick80835/boredom2/pkg/lexer"
)

func tokenTypes(t *testing.T, src ...string) []lexer.TokenType {
	t.Helper()

	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	types := make([]lexer.TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestTokenStream(t *testing.T) {
	types := tokenTypes(t,
		"alloc x = 10;",
		"while x > 0 {",
		"	x -= 1;",
		"	if x == 5 {",
		"		print x;",
		"	}",
		"}",
	)

	expected := []lexer.TokenType{
		lexer.Alloc, lexer.Ident, lexer.Assign, lexer.IntegerLit, lexer.LineEnd,
		lexer.While, lexer.Ident, lexer.MoreThan, lexer.IntegerLit, lexer.ScopeOpen,
		lexer.Ident, lexer.MinusEquals, lexer.IntegerLit, lexer.LineEnd,
		lexer.If, lexer.Ident, lexer.Equals, lexer.IntegerLit, lexer.ScopeOpen,
		lexer.Print, lexer.Ident, lexer.LineEnd,
		lexer.ScopeClose,
		lexer.ScopeClose,
		lexer.EOF,
	}

	if len(types) != len(expected) {
		t.Fatalf("token count: expected %d, got %d (%v)", len(expected), len(types), types)
	}
	for i, want := range expected {
		if types[i] != want {
			t.Errorf("token %d: expected %s, got %s", i, want, types[i])
		}
	}
}

func TestCoalescing(t *testing.T) {
	tests := []struct {
		input       string
		expected    []lexer.TokenType
		description string
	}{
		{"a == b", []lexer.TokenType{lexer.Ident, lexer.Equals, lexer.Ident, lexer.EOF}, "equals"},
		{"a != b", []lexer.TokenType{lexer.Ident, lexer.NotEquals, lexer.Ident, lexer.EOF}, "not equals"},
		{"a >= b", []lexer.TokenType{lexer.Ident, lexer.MoreThanOrEquals, lexer.Ident, lexer.EOF}, "more or equal"},
		{"a <= b", []lexer.TokenType{lexer.Ident, lexer.LessThanOrEquals, lexer.Ident, lexer.EOF}, "less or equal"},
		{"x += 2", []lexer.TokenType{lexer.Ident, lexer.PlusEquals, lexer.IntegerLit, lexer.EOF}, "plus equals"},
		{"x -= 2", []lexer.TokenType{lexer.Ident, lexer.MinusEquals, lexer.IntegerLit, lexer.EOF}, "minus equals"},
		{"call f -> out", []lexer.TokenType{lexer.Call, lexer.Ident, lexer.Arrow, lexer.Ident, lexer.EOF}, "call redirect"},
		{"a = = b", []lexer.TokenType{lexer.Ident, lexer.Assign, lexer.Assign, lexer.Ident, lexer.EOF}, "spaced pair stays split"},
		{"a - > b", []lexer.TokenType{lexer.Ident, lexer.Minus, lexer.MoreThan, lexer.Ident, lexer.EOF}, "spaced arrow stays split"},
	}

	for _, test := range tests {
		types := tokenTypes(t, test.input)
		if len(types) != len(test.expected) {
			t.Errorf("%s: expected %d tokens, got %v", test.description, len(test.expected), types)
			continue
		}
		for i, want := range test.expected {
			if types[i] != want {
				t.Errorf("%s: token %d: expected %s, got %s", test.description, i, want, types[i])
			}
		}
	}
}

func TestContextualPop(t *testing.T) {
	// pop/popfront are only special directly after '.'
	types := tokenTypes(t, "alloc pop = a.pop + b.popfront;")
	expected := []lexer.TokenType{
		lexer.Alloc, lexer.Ident, lexer.Assign,
		lexer.Ident, lexer.Pop, lexer.Plus, lexer.Ident, lexer.PopFront,
		lexer.LineEnd, lexer.EOF,
	}

	for i, want := range expected {
		if types[i] != want {
			t.Errorf("token %d: expected %s, got %s", i, want, types[i])
		}
	}

	// with whitespace between, the dot and identifier stay separate
	types = tokenTypes(t, "a . pop")
	expected = []lexer.TokenType{lexer.Ident, lexer.Dot, lexer.Ident, lexer.EOF}
	for i, want := range expected {
		if types[i] != want {
			t.Errorf("spaced: token %d: expected %s, got %s", i, want, types[i])
		}
	}
}

func TestStringAndCommentHandling(t *testing.T) {
	tokens, err := lexer.Tokenize([]string{
		`print "hello ; world"; # trailing comment`,
		"# whole line comment",
		`print "x";`,
	})
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	if tokens[1].Type != lexer.StringLit || tokens[1].Lexeme != "hello ; world" {
		t.Errorf("expected string literal %q, got %v", "hello ; world", tokens[1])
	}
	if tokens[3].Type != lexer.Print {
		t.Errorf("comment did not consume to end of line: %v", tokens[3])
	}
	if tokens[3].Line != 3 {
		t.Errorf("expected line 3, got %d", tokens[3].Line)
	}
}

func TestIntegerLiteralValue(t *testing.T) {
	tokens, err := lexer.Tokenize([]string{"alloc x = 4294967295;"})
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if tokens[3].Type != lexer.IntegerLit || tokens[3].Int != 4294967295 {
		t.Errorf("expected integer 4294967295, got %v", tokens[3])
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		input       string
		description string
	}{
		{"alloc x = @;", "unknown character"},
		{`print "unterminated`, "unterminated string"},
		{"alloc x = 99999999999;", "integer overflow"},
		{"if x > 0 {", "unclosed scope"},
		{"}", "unmatched scope close"},
	}

	for _, test := range tests {
		_, err := lexer.Tokenize([]string{test.input})
		if err == nil {
			t.Errorf("%s: expected error, got none", test.description)
			continue
		}
		if kind, ok := diag.KindOf(err); !ok || kind != diag.Parse {
			t.Errorf("%s: expected parse error, got %v", test.description, err)
		}
	}
}
