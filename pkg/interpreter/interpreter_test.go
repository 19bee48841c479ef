package interpreter_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Nick80835/boredom2/pkg/diag"
	"github.com/Nick80835/boredom2/pkg/interpreter"
	"github.com/Nick80835/boredom2/pkg/lexer"
	"github.com/Nick80835/boredom2/pkg/parser"
)

func runProgram(t *testing.T, src []string, opts ...interpreter.Option) (*interpreter.Interpreter, string, error) {
	t.Helper()

	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	program, err := parser.New(tokens).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var buf bytes.Buffer
	all := append([]interpreter.Option{interpreter.WithWriter(&buf)}, opts...)
	it := interpreter.New(program, all...)
	err = it.Run()

	return it, buf.String(), err
}

func expectOutput(t *testing.T, src []string, want string) {
	t.Helper()

	_, out, err := runProgram(t, src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != want {
		t.Errorf("output: expected %q, got %q", want, out)
	}
}

func TestForwardJump(t *testing.T) {
	expectOutput(t, []string{
		"jump skip;",
		`print "a";`,
		": skip;",
		`print "b";`,
	}, "b")
}

func TestBackwardJump(t *testing.T) {
	expectOutput(t, []string{
		"alloc i = 0;",
		": top;",
		"print i;",
		"i += 1;",
		"if i < 3 {",
		"	jump top;",
		"}",
	}, "012")
}

func TestCompoundAssignment(t *testing.T) {
	expectOutput(t, []string{
		"alloc x = 5;",
		"x += 3;",
		"print x;",
	}, "8")
}

func TestLeftToRightEvaluation(t *testing.T) {
	expectOutput(t, []string{"print 2 + 3 - 1;"}, "4")
}

func TestWhileLoop(t *testing.T) {
	expectOutput(t, []string{
		"alloc i = 3;",
		"while i > 0 {",
		"	print i;",
		"	i -= 1;",
		"}",
	}, "321")
}

func TestWhileFalseSkipsBody(t *testing.T) {
	expectOutput(t, []string{
		"while false {",
		`	print "x";`,
		"}",
		`print "done";`,
	}, "done")
}

func TestIfBranching(t *testing.T) {
	expectOutput(t, []string{
		"if 1 == 1 {",
		`	print "t";`,
		"}",
		"if 1 == 2 {",
		`	print "f";`,
		"}",
	}, "t")
}

func TestBareConditionVariable(t *testing.T) {
	expectOutput(t, []string{
		"alloc flag = true;",
		"if flag {",
		`	print "y";`,
		"}",
	}, "y")
}

func TestScopeTruncation(t *testing.T) {
	it, out, err := runProgram(t, []string{
		"alloc x = 1;",
		"{",
		"	alloc y = 2;",
		"	print y;",
		"}",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "2" {
		t.Errorf("output: expected %q, got %q", "2", out)
	}

	if it.StoreLen() != 1 {
		t.Errorf("store length: expected 1, got %d", it.StoreLen())
	}
	if _, ok := it.Binding("x"); !ok {
		t.Error("x should survive the block")
	}
	if _, ok := it.Binding("y"); ok {
		t.Error("y should be reclaimed with its block")
	}
}

func TestBlockShadowReleased(t *testing.T) {
	// the same name can be allocated again once its block closed
	expectOutput(t, []string{
		"{",
		"	alloc v = 1;",
		"}",
		"{",
		"	alloc v = 2;",
		"	print v;",
		"}",
	}, "2")
}

func TestArrayPopMutation(t *testing.T) {
	expectOutput(t, []string{
		"alloc a = [1, 2, 3];",
		"alloc b = a.pop;",
		"print b;",
		`print " ";`,
		"print a;",
	}, "3 [1, 2]")
}

func TestArrayPopFront(t *testing.T) {
	expectOutput(t, []string{
		"alloc a = [1, 2, 3];",
		"print a.popfront;",
		`print "-";`,
		"print a;",
	}, "1-[2, 3]")
}

func TestArrayAppendLeavesOriginal(t *testing.T) {
	expectOutput(t, []string{
		"alloc a = [1];",
		"alloc b = a + 2;",
		"print a?;",
		"print b?;",
		"print b|1|;",
	}, "122")
}

func TestChainedIndexAccess(t *testing.T) {
	expectOutput(t, []string{
		"alloc a = [[1, 2], [3, 4]];",
		"print a|1||0|;",
	}, "3")
}

func TestStringOperations(t *testing.T) {
	tests := []struct {
		stmt        string
		want        string
		description string
	}{
		{`print "ab" + "cd";`, "abcd", "concatenation"},
		{`print "x" + 5;`, "x5", "int append"},
		{`print "x" + true;`, "xtrue", "bool append"},
		{`print "abc"?;`, "3", "length"},
		{`print "abc"|1|;`, "b", "index"},
		{`print "ab" == "ab";`, "true", "equality by content"},
		{`print "abc" > "zz";`, "true", "ordering by length"},
		{`print "" == false;`, "true", "emptiness against bool"},
	}

	for _, test := range tests {
		_, out, err := runProgram(t, []string{test.stmt})
		if err != nil {
			t.Errorf("%s: Run failed: %v", test.description, err)
			continue
		}
		if out != test.want {
			t.Errorf("%s: expected %q, got %q", test.description, test.want, out)
		}
	}
}

func TestStringPopMutation(t *testing.T) {
	expectOutput(t, []string{
		`alloc s = "abc";`,
		"print s.popfront;",
		`print "-";`,
		"print s;",
	}, "a-bc")
}

func TestPrintNewlineEscape(t *testing.T) {
	expectOutput(t, []string{`print "a\nb";`}, "a\nb")
}

func TestIntegerWrapping(t *testing.T) {
	expectOutput(t, []string{
		"print 0 - 1;",
		`print " ";`,
		"print 4294967295 + 1;",
	}, "4294967295 0")
}

func TestSubroutineReturnValue(t *testing.T) {
	expectOutput(t, []string{
		"sub double {",
		"	ret n + n;",
		"}",
		"alloc n = 5;",
		"call double -> out;",
		"print out;",
	}, "10")
}

func TestSubroutineUnwindsNestedBlocks(t *testing.T) {
	it, out, err := runProgram(t, []string{
		"alloc base = 1;",
		"sub f {",
		"	alloc y = 2;",
		"	{",
		"		alloc z = 3;",
		"		ret z;",
		"	}",
		"}",
		"call f -> out;",
		"print out;",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "3" {
		t.Errorf("output: expected %q, got %q", "3", out)
	}

	// only base and out remain once the callee's scopes unwound
	if it.StoreLen() != 2 {
		t.Errorf("store length: expected 2, got %d", it.StoreLen())
	}
	for _, name := range []string{"y", "z"} {
		if _, ok := it.Binding(name); ok {
			t.Errorf("%s should not survive the return", name)
		}
	}
}

func TestImplicitReturnProducesFalse(t *testing.T) {
	expectOutput(t, []string{
		"sub f {",
		`	print "side";`,
		"}",
		"call f -> out;",
		"print out;",
	}, "sidefalse")
}

func TestBareReturnProducesFalse(t *testing.T) {
	expectOutput(t, []string{
		"sub f {",
		"	ret;",
		"}",
		"call f -> out;",
		"print out;",
	}, "false")
}

func TestDefinitionSkippedInline(t *testing.T) {
	// straight-line flow steps over a definition without entering it
	expectOutput(t, []string{
		`print "a";`,
		"sub f {",
		`	print "never";`,
		"}",
		`print "b";`,
	}, "ab")
}

func TestNestedSubroutineCalls(t *testing.T) {
	expectOutput(t, []string{
		"sub inner {",
		"	ret 2;",
		"}",
		"sub outer {",
		"	call inner -> x;",
		"	ret x + 1;",
		"}",
		"call outer -> y;",
		"print y;",
	}, "3")
}

func TestInfiniteLoopBounded(t *testing.T) {
	_, _, err := runProgram(t, []string{
		"while true {",
		"}",
	}, interpreter.WithMaxSteps(500))

	if !errors.Is(err, interpreter.ErrMaxStepsExceeded) {
		t.Fatalf("expected ErrMaxStepsExceeded, got %v", err)
	}
}

func TestReadLineTyping(t *testing.T) {
	in := interpreter.NewReaderInput(strings.NewReader("41\nhello\n"))
	_, out, err := runProgram(t, []string{
		"readln a;",
		"readln b;",
		"print a + 1;",
		`print "-";`,
		"print b;",
	}, interpreter.WithInput(in))

	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "42-hello" {
		t.Errorf("output: expected %q, got %q", "42-hello", out)
	}
}

func TestReadLineExhausted(t *testing.T) {
	in := interpreter.NewReaderInput(strings.NewReader(""))
	_, _, err := runProgram(t, []string{"readln a;"}, interpreter.WithInput(in))
	if err == nil {
		t.Fatal("expected error on exhausted input, got none")
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		src         []string
		kind        diag.Kind
		description string
	}{
		{[]string{"print nope;"}, diag.UnboundVariable, "unbound variable"},
		{[]string{"alloc x = 1;", "alloc x = 2;"}, diag.DuplicateAllocation, "duplicate allocation"},
		{[]string{"print true + 1;"}, diag.TypeMismatch, "bool plus int"},
		{[]string{"print [1] - [2];"}, diag.TypeMismatch, "array subtraction"},
		{[]string{"alloc a = [1];", "print a|5|;"}, diag.IndexOutOfRange, "array index out of range"},
		{[]string{"alloc a = [];", "print a.pop;"}, diag.IndexOutOfRange, "pop from empty array"},
		{[]string{`alloc s = "";`, "print s.pop;"}, diag.IndexOutOfRange, "pop from empty string"},
		{[]string{"if [1] {", "}"}, diag.TypeMismatch, "array as condition"},
		{[]string{"ret 1;"}, diag.Parse, "ret outside a subroutine"},
	}

	for _, test := range tests {
		_, _, err := runProgram(t, test.src)
		if err == nil {
			t.Errorf("%s: expected error, got none", test.description)
			continue
		}
		if kind, ok := diag.KindOf(err); !ok || kind != test.kind {
			t.Errorf("%s: expected %s error, got %v", test.description, test.kind, err)
		}
	}
}

func TestResetClearsState(t *testing.T) {
	tokens, err := lexer.Tokenize([]string{"alloc x = 1;", "print x;"})
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	program, err := parser.New(tokens).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var buf bytes.Buffer
	it := interpreter.New(program, interpreter.WithWriter(&buf))

	if err := it.Run(); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	it.Reset()
	if err := it.Run(); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if buf.String() != "11" {
		t.Errorf("output: expected %q, got %q", "11", buf.String())
	}
}
