package interpreter

import (
	"fmt"
	"strconv"
	"strings"
)

type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindString
	KindBool
	KindArray
)

// String returns a human-readable name for the value kind
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "integer"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a resolved runtime value. Addr is the store index the value
// was read from, or -1 for values with no backing cell; only the
// pop-class operators ever use it to write back.
type Value struct {
	Kind ValueKind

	Int  uint32
	Str  string
	Bool bool
	Arr  []Value

	Addr int
}

func newInt(n uint32) Value {
	return Value{Kind: KindInt, Int: n, Addr: -1}
}

func newString(s string) Value {
	return Value{Kind: KindString, Str: s, Addr: -1}
}

func newBool(b bool) Value {
	return Value{Kind: KindBool, Bool: b, Addr: -1}
}

func newArray(elems []Value) Value {
	return Value{Kind: KindArray, Arr: elems, Addr: -1}
}

func nullValue() Value {
	return Value{Kind: KindNull, Addr: -1}
}

// String renders the value's textual form: integers decimal, bools
// true/false, strings verbatim, arrays bracketed and comma-separated
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatUint(uint64(v.Int), 10)
	case KindString:
		return v.Str
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindArray:
		parts := make([]string, len(v.Arr))
		for i, e := range v.Arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "null"
	}
}
