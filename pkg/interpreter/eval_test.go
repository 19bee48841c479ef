package interpreter

import (
	"testing"

	"github.com/Nick80835/boredom2/pkg/ast"
	"github.com/Nick80835/boredom2/pkg/diag"
)

func TestOperatorTable(t *testing.T) {
	tests := []struct {
		left, right Value
		op          ast.Operator
		want        Value
		description string
	}{
		{newBool(false), newBool(true), ast.LessThan, newBool(true), "false orders below true"},
		{newBool(true), newBool(true), ast.Equals, newBool(true), "bool equality"},

		{newInt(2), newInt(3), ast.Add, newInt(5), "int addition"},
		{newInt(2), newInt(3), ast.Sub, newInt(4294967295), "int subtraction wraps"},
		{newInt(2), newInt(3), ast.LessThanOrEquals, newBool(true), "int comparison"},

		{newInt(1), newBool(true), ast.Equals, newBool(true), "nonzero int equals true"},
		{newInt(0), newBool(true), ast.NotEquals, newBool(true), "zero int differs from true"},

		{newString("a"), newInt(7), ast.Add, newString("a7"), "string int append"},
		{newString("abc"), newInt(2), ast.ArrayAccess, newString("c"), "string index"},
		{newString("a"), newBool(false), ast.Add, newString("afalse"), "string bool append"},
		{newString("x"), newBool(true), ast.Equals, newBool(true), "non-empty string is truthy"},
		{newString("ab"), newString("cd"), ast.Add, newString("abcd"), "string concat"},
		{newString("ab"), newString("ab"), ast.Equals, newBool(true), "string equality by content"},
		{newString("ab"), newString("c"), ast.MoreThan, newBool(true), "string ordering by length"},
		{newString("abc"), nullValue(), ast.LenAccess, newInt(3), "string length"},

		{newArray([]Value{newInt(1)}), newInt(0), ast.ArrayAccess, newInt(1), "array index"},
		{newArray([]Value{newInt(1)}), nullValue(), ast.LenAccess, newInt(1), "array length"},
	}

	it := New(nil)
	for _, test := range tests {
		got, err := it.applyOperator(test.left, test.right, test.op, 1)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.description, err)
			continue
		}
		got.Addr = -1
		if got.Kind != test.want.Kind || got.Int != test.want.Int ||
			got.Str != test.want.Str || got.Bool != test.want.Bool {
			t.Errorf("%s: expected %s, got %s", test.description, test.want, got)
		}
	}
}

func TestOperatorTableRejections(t *testing.T) {
	tests := []struct {
		left, right Value
		op          ast.Operator
		description string
	}{
		{newBool(true), newInt(1), ast.Add, "bool plus int"},
		{newBool(true), newBool(false), ast.Add, "bool plus bool"},
		{newInt(1), newString("a"), ast.Add, "int plus string"},
		{newInt(1), newBool(true), ast.MoreThan, "int bool ordering"},
		{newString("a"), newString("b"), ast.ArrayAccess, "string indexed by string"},
		{newArray(nil), newArray(nil), ast.Add, "array plus array"},
		{nullValue(), newInt(1), ast.Add, "null operand"},
	}

	it := New(nil)
	for _, test := range tests {
		_, err := it.applyOperator(test.left, test.right, test.op, 1)
		if err == nil {
			t.Errorf("%s: expected type mismatch, got none", test.description)
			continue
		}
		if kind, ok := diag.KindOf(err); !ok || kind != diag.TypeMismatch {
			t.Errorf("%s: expected type mismatch, got %v", test.description, err)
		}
	}
}

func TestPopWritesThroughAddress(t *testing.T) {
	it := New(nil)
	it.store = append(it.store, newArray([]Value{newInt(1), newInt(2)}))

	cell := it.store[0]
	cell.Addr = 0

	got, err := it.applyOperator(cell, nullValue(), ast.PopAccess, 1)
	if err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if got.Kind != KindInt || got.Int != 2 {
		t.Errorf("popped value: expected 2, got %s", got)
	}
	if len(it.store[0].Arr) != 1 {
		t.Errorf("cell: expected 1 element left, got %d", len(it.store[0].Arr))
	}
}

func TestPopWithoutAddressLeavesValue(t *testing.T) {
	it := New(nil)

	// a literal has no cell behind it, pop still produces the element
	lit := newArray([]Value{newInt(1), newInt(2)})
	got, err := it.applyOperator(lit, nullValue(), ast.PopFrontAccess, 1)
	if err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if got.Kind != KindInt || got.Int != 1 {
		t.Errorf("popped value: expected 1, got %s", got)
	}
}
