package lexer

import (
	"github.com/Nick80835/boredom2/pkg/diag"
)

// PostProcess rewrites the raw token stream into the form the parser
// consumes: whitespace and comments are dropped, adjacent symbol pairs
// are coalesced into their two-character operators, reserved
// identifiers become keyword tokens, and pop/popfront directly after
// '.' become access tokens. Coalescing checks the *raw* previous
// token, so "= =" with whitespace between stays two Assign tokens.
func PostProcess(raw []Token) ([]Token, error) {
	out := make([]Token, 0, len(raw))

	for i, tok := range raw {
		switch tok.Type {
		case Whitespace, Comment:
			continue

		case Assign:
			if i > 0 {
				if coalesced, ok := assignPair(raw[i-1].Type); ok {
					out = out[:len(out)-1]
					out = append(out, NewToken(coalesced, coalesced.String(), tok.Line))
					continue
				}
			}
			out = append(out, tok)

		case MoreThan:
			if i > 0 && raw[i-1].Type == Minus {
				out = out[:len(out)-1]
				out = append(out, NewToken(Arrow, "->", tok.Line))
				continue
			}
			out = append(out, tok)

		case RawIdent:
			if i > 0 && raw[i-1].Type == Dot {
				if access, ok := dotAccess(tok.Lexeme); ok {
					out = out[:len(out)-1]
					out = append(out, NewToken(access, tok.Lexeme, tok.Line))
					continue
				}
			}
			if kw, ok := Keywords[tok.Lexeme]; ok {
				out = append(out, NewToken(kw, tok.Lexeme, tok.Line))
				continue
			}
			tok.Type = Ident
			out = append(out, tok)

		default:
			out = append(out, tok)
		}
	}

	if err := checkScopeBalance(out); err != nil {
		return nil, err
	}

	return out, nil
}

// assignPair returns the coalesced operator for a '<sym>=' pair
func assignPair(prev TokenType) (TokenType, bool) {
	switch prev {
	case Assign:
		return Equals, true
	case Bang:
		return NotEquals, true
	case MoreThan:
		return MoreThanOrEquals, true
	case LessThan:
		return LessThanOrEquals, true
	case Plus:
		return PlusEquals, true
	case Minus:
		return MinusEquals, true
	default:
		return 0, false
	}
}

// dotAccess returns the access token for an identifier following '.'
func dotAccess(name string) (TokenType, bool) {
	switch name {
	case "pop":
		return Pop, true
	case "popfront":
		return PopFront, true
	default:
		return 0, false
	}
}

// checkScopeBalance verifies that every '{' has a matching '}'
func checkScopeBalance(tokens []Token) error {
	var opens []Token

	for _, tok := range tokens {
		switch tok.Type {
		case ScopeOpen:
			opens = append(opens, tok)
		case ScopeClose:
			if len(opens) == 0 {
				return diag.Errorf(diag.Parse, tok.Line, "unmatched '}'")
			}
			opens = opens[:len(opens)-1]
		}
	}

	if len(opens) > 0 {
		return diag.Errorf(diag.Parse, opens[len(opens)-1].Line, "unclosed '{'")
	}

	return nil
}
