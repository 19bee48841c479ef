package interpreter

import (
	"strconv"

	"github.com/Nick80835/boredom2/pkg/ast"
	"github.com/Nick80835/boredom2/pkg/diag"
)

// applyOperator encodes the full cross-type operator table. The rules
// are asymmetric and type-pair specific: there is no generic coercion.
// Any pair/operator combination the table does not define is a fatal
// type mismatch naming both operands and the operator.
func (i *Interpreter) applyOperator(left, right Value, op ast.Operator, line int) (Value, error) {
	switch {
	case left.Kind == KindBool && right.Kind == KindBool:
		// bool ordering: false < true
		if res, ok := compareOrdered(op, !left.Bool && right.Bool, left.Bool == right.Bool); ok {
			return newBool(res), nil
		}

	case left.Kind == KindInt && right.Kind == KindInt:
		switch op {
		case ast.Add:
			return newInt(left.Int + right.Int), nil
		case ast.Sub:
			return newInt(left.Int - right.Int), nil
		}
		if res, ok := compareOrdered(op, left.Int < right.Int, left.Int == right.Int); ok {
			return newBool(res), nil
		}

	case left.Kind == KindInt && right.Kind == KindBool:
		switch op {
		case ast.Equals:
			return newBool((left.Int != 0) == right.Bool), nil
		case ast.NotEquals:
			return newBool((left.Int != 0) != right.Bool), nil
		}

	case left.Kind == KindString && right.Kind == KindInt:
		switch op {
		case ast.Add:
			return newString(left.Str + strconv.FormatUint(uint64(right.Int), 10)), nil
		case ast.ArrayAccess:
			idx := int(right.Int)
			if idx >= len(left.Str) {
				return Value{}, diag.Errorf(diag.IndexOutOfRange, line, "index %d out of range for string of length %d", idx, len(left.Str))
			}
			// a picked character stays addressed to the original cell
			ch := newString(left.Str[idx : idx+1])
			ch.Addr = left.Addr
			return ch, nil
		}

	case left.Kind == KindString && right.Kind == KindBool:
		switch op {
		case ast.Add:
			return newString(left.Str + boolText(right.Bool)), nil
		case ast.Equals:
			return newBool((left.Str != "") == right.Bool), nil
		case ast.NotEquals:
			return newBool((left.Str != "") != right.Bool), nil
		}

	case left.Kind == KindString && right.Kind == KindString:
		switch op {
		case ast.Add:
			return newString(left.Str + right.Str), nil
		// equality is by content, ordering by length
		case ast.Equals:
			return newBool(left.Str == right.Str), nil
		case ast.NotEquals:
			return newBool(left.Str != right.Str), nil
		}
		if res, ok := compareOrdered(op, len(left.Str) < len(right.Str), len(left.Str) == len(right.Str)); ok {
			return newBool(res), nil
		}

	case left.Kind == KindString && right.Kind == KindNull:
		switch op {
		case ast.LenAccess:
			return newInt(uint32(len(left.Str))), nil
		case ast.PopAccess:
			return i.popString(left, false, line)
		case ast.PopFrontAccess:
			return i.popString(left, true, line)
		}

	case left.Kind == KindArray && right.Kind == KindInt:
		switch op {
		case ast.Add:
			return appendElement(left, right), nil
		case ast.ArrayAccess:
			idx := int(right.Int)
			if idx >= len(left.Arr) {
				return Value{}, diag.Errorf(diag.IndexOutOfRange, line, "index %d out of range for array of length %d", idx, len(left.Arr))
			}
			elem := left.Arr[idx]
			elem.Addr = left.Addr
			return elem, nil
		}

	case left.Kind == KindArray && (right.Kind == KindBool || right.Kind == KindString):
		if op == ast.Add {
			return appendElement(left, right), nil
		}

	case left.Kind == KindArray && right.Kind == KindNull:
		switch op {
		case ast.LenAccess:
			return newInt(uint32(len(left.Arr))), nil
		case ast.PopAccess:
			return i.popArray(left, false, line)
		case ast.PopFrontAccess:
			return i.popArray(left, true, line)
		}
	}

	return Value{}, diag.Errorf(diag.TypeMismatch, line,
		"cannot apply '%s' to %s %s and %s %s", op, left.Kind, left, right.Kind, right)
}

// popString removes and returns the last (or first) character,
// mutating the original cell through the resolved value's address
func (i *Interpreter) popString(left Value, front bool, line int) (Value, error) {
	if len(left.Str) == 0 {
		return Value{}, diag.Errorf(diag.IndexOutOfRange, line, "pop from empty string")
	}

	var picked, rest string
	if front {
		picked, rest = left.Str[:1], left.Str[1:]
	} else {
		picked, rest = left.Str[len(left.Str)-1:], left.Str[:len(left.Str)-1]
	}

	if left.Addr >= 0 {
		i.store[left.Addr].Str = rest
	}
	return newString(picked), nil
}

// popArray removes and returns the last (or first) element, mutating
// the original cell through the resolved value's address
func (i *Interpreter) popArray(left Value, front bool, line int) (Value, error) {
	if len(left.Arr) == 0 {
		return Value{}, diag.Errorf(diag.IndexOutOfRange, line, "pop from empty array")
	}

	var picked Value
	var rest []Value
	if front {
		picked, rest = left.Arr[0], left.Arr[1:]
	} else {
		picked, rest = left.Arr[len(left.Arr)-1], left.Arr[:len(left.Arr)-1]
	}

	if left.Addr >= 0 {
		i.store[left.Addr].Arr = rest
	}
	picked.Addr = -1
	return picked, nil
}

// appendElement returns a new array with the element appended; the
// original is left untouched
func appendElement(arr, elem Value) Value {
	out := make([]Value, len(arr.Arr), len(arr.Arr)+1)
	copy(out, arr.Arr)
	elem.Addr = -1
	return newArray(append(out, elem))
}

// compareOrdered evaluates a comparison operator against a strict
// ordering, reporting ok=false for non-comparison operators
func compareOrdered(op ast.Operator, less, equal bool) (bool, bool) {
	switch op {
	case ast.Equals:
		return equal, true
	case ast.NotEquals:
		return !equal, true
	case ast.MoreThan:
		return !less && !equal, true
	case ast.LessThan:
		return less, true
	case ast.MoreThanOrEquals:
		return !less, true
	case ast.LessThanOrEquals:
		return less || equal, true
	default:
		return false, false
	}
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
