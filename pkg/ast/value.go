package ast

import (
	"fmt"
	"strings"
)

type ValueKind int

const (
	KindNull ValueKind = iota
	KindInteger
	KindString
	KindBool
	KindVariable
	KindArray
	KindExpression
	KindReturn
)

type Operator int

// Binary operators applied pairwise, left to right, inside an
// Expression. The access operators take Null as their right operand
// except ArrayAccess, whose right operand is the index expression.
const (
	Add Operator = iota
	Sub
	Equals
	NotEquals
	MoreThan
	LessThan
	MoreThanOrEquals
	LessThanOrEquals
	ArrayAccess
	LenAccess
	PopAccess
	PopFrontAccess
)

// String returns the surface syntax of the operator
func (o Operator) String() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Equals:
		return "=="
	case NotEquals:
		return "!="
	case MoreThan:
		return ">"
	case LessThan:
		return "<"
	case MoreThanOrEquals:
		return ">="
	case LessThanOrEquals:
		return "<="
	case ArrayAccess:
		return "|..|"
	case LenAccess:
		return "?"
	case PopAccess:
		return ".pop"
	case PopFrontAccess:
		return ".popfront"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// IsComparison reports whether the operator yields a boolean
func (o Operator) IsComparison() bool {
	switch o {
	case Equals, NotEquals, MoreThan, LessThan, MoreThanOrEquals, LessThanOrEquals:
		return true
	default:
		return false
	}
}

// Value is one node of the expression model: a literal, a variable
// reference, an array literal, a left-to-right expression, or one of
// the two sentinels (Return, Null).
type Value struct {
	Kind ValueKind

	Int  uint32 // integer literal
	Str  string // string literal, or variable name for KindVariable
	Bool bool   // bool literal

	Elems []Value // array literal elements

	// Expression: len(Operands) == len(Operators) + 1, enforced by
	// the parser. Folded left to right, no precedence.
	Operands  []Value
	Operators []Operator
}

// Integer creates an integer literal value
func Integer(n uint32) Value {
	return Value{Kind: KindInteger, Int: n}
}

// StringLit creates a string literal value
func StringLit(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Boolean creates a bool literal value
func Boolean(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// Variable creates a variable reference
func Variable(name string) Value {
	return Value{Kind: KindVariable, Str: name}
}

// Array creates an array literal from its element values
func Array(elems []Value) Value {
	return Value{Kind: KindArray, Elems: elems}
}

// Expression creates a left-to-right expression over operands and the
// operators applied pairwise between them
func Expression(operands []Value, operators []Operator) Value {
	return Value{Kind: KindExpression, Operands: operands, Operators: operators}
}

// ReturnValue creates the sentinel referring to the last subroutine's
// produced value
func ReturnValue() Value {
	return Value{Kind: KindReturn}
}

// Null creates the sentinel operand used by the access operators
func Null() Value {
	return Value{Kind: KindNull}
}

// String renders the value roughly as it appeared in source
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInteger:
		return fmt.Sprintf("%d", v.Int)
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindVariable:
		return v.Str
	case KindArray:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindExpression:
		var b strings.Builder
		for i, op := range v.Operands {
			if i > 0 {
				b.WriteString(" " + v.Operators[i-1].String() + " ")
			}
			b.WriteString(op.String())
		}
		return "(" + b.String() + ")"
	case KindReturn:
		return "<ret>"
	default:
		return fmt.Sprintf("value(%d)", int(v.Kind))
	}
}
