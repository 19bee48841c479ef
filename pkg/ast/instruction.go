package ast

import (
	"fmt"
	"strings"
)

type Statement int

// Statement kinds form the execution engine's transition table. Empty
// is the root no-op at index 0.
const (
	Empty Statement = iota
	Block
	BlockEnd
	Alloc
	Set
	DebugPrintCall
	ReadLineCall
	Jump
	If
	While
	SubroutineDefine
	SubroutineCall
	SubroutineReturn
	EOF
)

// String returns a human-readable name for the statement kind
func (s Statement) String() string {
	switch s {
	case Empty:
		return "empty"
	case Block:
		return "block"
	case BlockEnd:
		return "blockend"
	case Alloc:
		return "alloc"
	case Set:
		return "set"
	case DebugPrintCall:
		return "print"
	case ReadLineCall:
		return "readln"
	case Jump:
		return "jump"
	case If:
		return "if"
	case While:
		return "while"
	case SubroutineDefine:
		return "sub"
	case SubroutineCall:
		return "call"
	case SubroutineReturn:
		return "ret"
	case EOF:
		return "eof"
	default:
		return fmt.Sprintf("stmt(%d)", int(s))
	}
}

// Instruction is one entry in the flat, index-addressed program array.
// There is no nested tree: indices are the only addressing mechanism.
type Instruction struct {
	Kind Statement

	Arg1 *Value // statement operand (condition left side, alloc/set name, ...)
	Arg2 *Value // second operand (condition right side, assigned expression)

	Op Operator // comparison operator for If/While

	// BodyIdx is the first instruction inside an opened block for
	// block-opening kinds, and the resolved target index for Jump and
	// SubroutineCall (backpatched). -1 when unset.
	BodyIdx int

	// BodyExtent is index(BlockEnd) - index(Block), assigned exactly
	// once when the matching close is parsed. -1 when unset.
	BodyExtent int

	// ElseTarget is reserved for future else-chaining; never set.
	ElseTarget int

	Line int // 1-based source line
}

// NewInstruction creates an instruction of the given kind with all
// index fields unset
func NewInstruction(kind Statement, line int) Instruction {
	return Instruction{
		Kind:       kind,
		BodyIdx:    -1,
		BodyExtent: -1,
		ElseTarget: -1,
		Line:       line,
	}
}

// WithArgs creates an instruction carrying one or two operand values
func WithArgs(kind Statement, line int, arg1 Value, arg2 *Value) Instruction {
	ins := NewInstruction(kind, line)
	ins.Arg1 = &arg1
	ins.Arg2 = arg2

	return ins
}

// NewScope creates a Block instruction whose body starts at bodyIdx
func NewScope(line, bodyIdx int) Instruction {
	ins := NewInstruction(Block, line)
	ins.BodyIdx = bodyIdx

	return ins
}

// String renders the instruction for program listings
func (i Instruction) String() string {
	var b strings.Builder
	b.WriteString(i.Kind.String())

	if i.Kind == If || i.Kind == While {
		fmt.Fprintf(&b, " %s %s %s", i.Arg1, i.Op, i.Arg2)
	} else {
		if i.Arg1 != nil {
			b.WriteString(" " + i.Arg1.String())
		}
		if i.Arg2 != nil {
			b.WriteString(" " + i.Arg2.String())
		}
	}

	if i.BodyIdx >= 0 {
		fmt.Fprintf(&b, " body=%d", i.BodyIdx)
	}
	if i.BodyExtent >= 0 {
		fmt.Fprintf(&b, " extent=%d", i.BodyExtent)
	}

	return b.String()
}
