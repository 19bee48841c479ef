package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Nick80835/boredom2/pkg/ast"
	"github.com/Nick80835/boredom2/pkg/diag"
)

// coreStep executes the instruction under the pointer, returning
// (halted, error). One instruction per call, no suspension points.
func coreStep(i *Interpreter) (bool, error) {
	pc := i.ip
	if pc < 0 || pc >= len(i.program) {
		return true, nil
	}

	in := i.program[pc]

	switch in.Kind {
	case ast.Empty:
		i.ip = pc + 1
		return false, nil

	case ast.EOF:
		return true, nil

	case ast.Block:
		i.scopeStarts.Push(len(i.store))
		i.loopStack.Push(pc)
		if n := len(i.returnStack); n > 0 {
			i.returnStack[n-1].depth++
		}
		i.ip = pc + 1
		return false, nil

	case ast.BlockEnd:
		i.truncate(i.scopeStarts.Pop())
		loopIdx := i.loopStack.Pop()
		if n := len(i.returnStack); n > 0 && i.returnStack[n-1].depth > 0 {
			i.returnStack[n-1].depth--
		}
		// loop back when the block was opened by a while
		if loopIdx > 0 && i.program[loopIdx-1].Kind == ast.While {
			i.ip = loopIdx - 1
		} else {
			i.ip = pc + 1
		}
		return false, nil

	case ast.Alloc:
		val, err := i.resolve(*in.Arg2, in.Line)
		if err != nil {
			return false, err
		}
		if err := i.allocate(in.Arg1.Str, val, in.Line); err != nil {
			return false, err
		}
		i.ip = pc + 1
		return false, nil

	case ast.Set:
		val, err := i.resolve(*in.Arg2, in.Line)
		if err != nil {
			return false, err
		}
		i.bind(in.Arg1.Str, val)
		i.ip = pc + 1
		return false, nil

	case ast.DebugPrintCall:
		val, err := i.resolve(*in.Arg1, in.Line)
		if err != nil {
			return false, err
		}
		fmt.Fprint(i.out, printable(val))
		i.ip = pc + 1
		return false, nil

	case ast.ReadLineCall:
		line, err := i.in.ReadLine()
		if err != nil {
			return false, fmt.Errorf("readln at line %d: %w", in.Line, err)
		}
		i.bind(in.Arg1.Str, parseInput(line))
		i.ip = pc + 1
		return false, nil

	case ast.Jump:
		i.ip = in.BodyIdx
		return false, nil

	case ast.If, ast.While:
		left, err := i.resolve(*in.Arg1, in.Line)
		if err != nil {
			return false, err
		}
		right, err := i.resolve(*in.Arg2, in.Line)
		if err != nil {
			return false, err
		}
		res, err := i.applyOperator(left, right, in.Op, in.Line)
		if err != nil {
			return false, err
		}
		if res.Kind != KindBool {
			return false, diag.Errorf(diag.TypeMismatch, in.Line, "condition evaluated to %s, not bool", res.Kind)
		}

		if res.Bool {
			i.ip = pc + 1
		} else {
			// jump past the block, including its open and close markers
			i.ip = pc + i.program[pc+1].BodyExtent + 2
		}
		return false, nil

	case ast.SubroutineDefine:
		// never entered by straight-line flow
		i.ip = pc + i.program[pc+1].BodyExtent + 2
		return false, nil

	case ast.SubroutineCall:
		i.scopeStarts.Push(len(i.store))
		i.returnStack = append(i.returnStack, callFrame{resume: pc + 1})
		i.ip = in.BodyIdx
		return false, nil

	case ast.SubroutineReturn:
		if len(i.returnStack) == 0 {
			return false, diag.Errorf(diag.Parse, in.Line, "ret outside of a subroutine")
		}

		val, err := i.resolve(*in.Arg1, in.Line)
		if err != nil {
			return false, err
		}
		val.Addr = -1
		i.retVal = val

		frame := i.returnStack[len(i.returnStack)-1]
		i.returnStack = i.returnStack[:len(i.returnStack)-1]

		// unwind the call's own scope plus every block still open
		// inside the callee
		for range frame.depth {
			i.loopStack.Pop()
		}
		boundary := 0
		for range frame.depth + 1 {
			boundary = i.scopeStarts.Pop()
		}
		i.truncate(boundary)

		i.ip = frame.resume
		return false, nil

	default:
		return false, diag.Errorf(diag.Parse, in.Line, "unhandled instruction %s at %d", in.Kind, pc)
	}
}

// printable renders a value for print output: no trailing separator,
// and literal "\n" sequences in strings become real newlines
func printable(v Value) string {
	if v.Kind == KindString {
		return strings.ReplaceAll(v.Str, `\n`, "\n")
	}
	return v.String()
}

// parseInput types a readln line: all-digit lines that fit u32 bind as
// integers, everything else as a string
func parseInput(line string) Value {
	if line != "" {
		if n, err := strconv.ParseUint(line, 10, 32); err == nil {
			return newInt(uint32(n))
		}
	}
	return newString(line)
}
