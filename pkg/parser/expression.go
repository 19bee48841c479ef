package parser

import (
	"github.com/Nick80835/boredom2/pkg/ast"
	"github.com/Nick80835/boredom2/pkg/diag"
	"github.com/Nick80835/boredom2/pkg/lexer"
)

// parseExpression scans a flat token run once, left to right, building
// parallel operand and operator lists. There is no precedence: the
// engine folds the lists pairwise in order. A single-token run
// collapses to the bare value with no Expression wrapper.
func parseExpression(toks []lexer.Token, line int) (ast.Value, error) {
	if len(toks) == 0 {
		return ast.Value{}, diag.Errorf(diag.Parse, line, "empty expression")
	}

	var operands []ast.Value
	var operators []ast.Operator

	pushOperand := func(v ast.Value, tok lexer.Token) error {
		if len(operands) != len(operators) {
			return diag.Errorf(diag.Parse, tok.Line, "expected an operator before '%s'", tok.Type)
		}
		operands = append(operands, v)
		return nil
	}
	pushOperator := func(op ast.Operator, tok lexer.Token) error {
		if len(operands) != len(operators)+1 {
			return diag.Errorf(diag.Parse, tok.Line, "operator '%s' has no left operand", tok.Type)
		}
		operators = append(operators, op)
		return nil
	}
	// the access tokens rewrite the previous operand in place
	replaceLast := func(op ast.Operator, rhs ast.Value, tok lexer.Token) error {
		if len(operands) != len(operators)+1 {
			return diag.Errorf(diag.Parse, tok.Line, "'%s' has no operand to apply to", tok.Type)
		}
		prev := operands[len(operands)-1]
		operands[len(operands)-1] = ast.Expression([]ast.Value{prev, rhs}, []ast.Operator{op})
		return nil
	}

	i := 0
	for i < len(toks) {
		tok := toks[i]

		switch tok.Type {
		case lexer.IntegerLit:
			if err := pushOperand(ast.Integer(tok.Int), tok); err != nil {
				return ast.Value{}, err
			}
			i++

		case lexer.StringLit:
			if err := pushOperand(ast.StringLit(tok.Lexeme), tok); err != nil {
				return ast.Value{}, err
			}
			i++

		case lexer.BoolTrue, lexer.BoolFalse:
			if err := pushOperand(ast.Boolean(tok.Type == lexer.BoolTrue), tok); err != nil {
				return ast.Value{}, err
			}
			i++

		case lexer.Ident:
			if err := pushOperand(ast.Variable(tok.Lexeme), tok); err != nil {
				return ast.Value{}, err
			}
			i++

		case lexer.ParensOpen:
			j, err := matchForward(toks, i, lexer.ParensOpen, lexer.ParensClose)
			if err != nil {
				return ast.Value{}, err
			}
			sub, err := parseExpression(toks[i+1:j], tok.Line)
			if err != nil {
				return ast.Value{}, err
			}
			if err := pushOperand(sub, tok); err != nil {
				return ast.Value{}, err
			}
			i = j + 1

		case lexer.ArrayOpen:
			j, err := matchForward(toks, i, lexer.ArrayOpen, lexer.ArrayClose)
			if err != nil {
				return ast.Value{}, err
			}
			arr, err := parseArrayLiteral(toks[i+1:j], tok.Line)
			if err != nil {
				return ast.Value{}, err
			}
			if err := pushOperand(arr, tok); err != nil {
				return ast.Value{}, err
			}
			i = j + 1

		case lexer.IndexBar:
			j, err := matchIndexBar(toks, i)
			if err != nil {
				return ast.Value{}, err
			}
			idx, err := parseExpression(toks[i+1:j], tok.Line)
			if err != nil {
				return ast.Value{}, err
			}
			if err := replaceLast(ast.ArrayAccess, idx, tok); err != nil {
				return ast.Value{}, err
			}
			i = j + 1

		case lexer.Question:
			if err := replaceLast(ast.LenAccess, ast.Null(), tok); err != nil {
				return ast.Value{}, err
			}
			i++

		case lexer.Pop:
			if err := replaceLast(ast.PopAccess, ast.Null(), tok); err != nil {
				return ast.Value{}, err
			}
			i++

		case lexer.PopFront:
			if err := replaceLast(ast.PopFrontAccess, ast.Null(), tok); err != nil {
				return ast.Value{}, err
			}
			i++

		case lexer.Plus, lexer.Minus, lexer.Equals, lexer.NotEquals,
			lexer.MoreThan, lexer.LessThan, lexer.MoreThanOrEquals, lexer.LessThanOrEquals:
			if err := pushOperator(binaryOperator(tok.Type), tok); err != nil {
				return ast.Value{}, err
			}
			i++

		default:
			return ast.Value{}, diag.Errorf(diag.Parse, tok.Line, "unexpected token '%s' in expression", tok.Type)
		}
	}

	if len(operands) != len(operators)+1 {
		last := toks[len(toks)-1]
		return ast.Value{}, diag.Errorf(diag.Parse, last.Line, "expression ends with a dangling operator")
	}

	return collapse(operands, operators), nil
}

// parseArrayLiteral splits the bracket body on top-level commas and
// parses each element as an expression. The body may nest parens and
// brackets, but assignment, comparison, line-end and block-open tokens
// inside it are fatal.
func parseArrayLiteral(toks []lexer.Token, line int) (ast.Value, error) {
	for _, tok := range toks {
		switch tok.Type {
		case lexer.Assign, lexer.Equals, lexer.NotEquals,
			lexer.MoreThan, lexer.LessThan, lexer.MoreThanOrEquals, lexer.LessThanOrEquals,
			lexer.LineEnd, lexer.ScopeOpen:
			return ast.Value{}, diag.Errorf(diag.Parse, tok.Line, "incomplete array")
		}
	}

	elems := []ast.Value{}
	if len(toks) == 0 {
		return ast.Array(elems), nil
	}

	depth := 0
	start := 0
	for i, tok := range toks {
		switch tok.Type {
		case lexer.ParensOpen, lexer.ArrayOpen:
			depth++
		case lexer.ParensClose, lexer.ArrayClose:
			depth--
		case lexer.Comma:
			if depth == 0 {
				elem, err := parseExpression(toks[start:i], tok.Line)
				if err != nil {
					return ast.Value{}, err
				}
				elems = append(elems, elem)
				start = i + 1
			}
		}
	}

	elem, err := parseExpression(toks[start:], line)
	if err != nil {
		return ast.Value{}, err
	}
	elems = append(elems, elem)

	return ast.Array(elems), nil
}

// matchForward finds the close matching the open at openIdx, tracking
// nesting depth of that bracket pair only
func matchForward(toks []lexer.Token, openIdx int, open, close lexer.TokenType) (int, error) {
	depth := 0
	for j := openIdx; j < len(toks); j++ {
		switch toks[j].Type {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return j, nil
			}
		}
	}

	return 0, diag.Errorf(diag.Parse, toks[openIdx].Line, "unclosed '%s'", open)
}

// matchIndexBar finds the '|' closing the index expression opened at
// openIdx: the next '|' at paren/bracket depth zero. Chained indexing
// (`a|i||j|`) falls out of this rule; nesting an index expression
// inside another requires parentheses.
func matchIndexBar(toks []lexer.Token, openIdx int) (int, error) {
	depth := 0
	for j := openIdx + 1; j < len(toks); j++ {
		switch toks[j].Type {
		case lexer.ParensOpen, lexer.ArrayOpen:
			depth++
		case lexer.ParensClose, lexer.ArrayClose:
			depth--
		case lexer.IndexBar:
			if depth == 0 {
				return j, nil
			}
		}
	}

	return 0, diag.Errorf(diag.Parse, toks[openIdx].Line, "unterminated index access")
}

// binaryOperator maps an operator token to its ast operator
func binaryOperator(t lexer.TokenType) ast.Operator {
	switch t {
	case lexer.Plus:
		return ast.Add
	case lexer.Minus:
		return ast.Sub
	case lexer.Equals:
		return ast.Equals
	case lexer.NotEquals:
		return ast.NotEquals
	case lexer.MoreThan:
		return ast.MoreThan
	case lexer.LessThan:
		return ast.LessThan
	case lexer.MoreThanOrEquals:
		return ast.MoreThanOrEquals
	default:
		return ast.LessThanOrEquals
	}
}

// splitCondition rewrites a parsed condition into the (left, op, right)
// triple an If/While instruction carries. The expression is split at
// its first comparison operator; with no comparison present the
// condition becomes `expr == true`.
func splitCondition(cond ast.Value) (ast.Value, ast.Operator, ast.Value) {
	if cond.Kind == ast.KindExpression {
		for k, op := range cond.Operators {
			if op.IsComparison() {
				left := collapse(cond.Operands[:k+1], cond.Operators[:k])
				right := collapse(cond.Operands[k+1:], cond.Operators[k+1:])
				return left, op, right
			}
		}
	}

	return cond, ast.Equals, ast.Boolean(true)
}

// collapse returns the bare value for a single-operand run, otherwise
// an Expression over the lists
func collapse(operands []ast.Value, operators []ast.Operator) ast.Value {
	if len(operands) == 1 {
		return operands[0]
	}

	return ast.Expression(operands, operators)
}
