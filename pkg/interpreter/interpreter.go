package interpreter

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/Nick80835/boredom2/pkg/ast"
	"github.com/Nick80835/boredom2/pkg/diag"
	"github.com/Nick80835/boredom2/pkg/stack"
)

var ErrMaxStepsExceeded = errors.New("maximum steps exceeded")

// LineReader supplies readln with one line of input per call
type LineReader interface {
	ReadLine() (string, error)
}

// callFrame records where a subroutine call resumes and how many
// blocks are still open inside the callee, so ret can unwind the right
// number of scopes no matter where it appears.
type callFrame struct {
	resume int
	depth  int
}

// Interpreter walks the flat instruction array. All state is owned by
// the single execution loop: the insertion-ordered value store, the
// name map for the visible scope chain, and the three control stacks.
type Interpreter struct {
	program []ast.Instruction
	ip      int
	halted  bool

	store []Value        // insertion-ordered cells, indexed by address
	names map[string]int // name -> store address

	scopeStarts *stack.Stack[int] // store length snapshot per entered block
	loopStack   *stack.Stack[int] // index of each entered block's opener
	returnStack []callFrame

	retVal Value // last subroutine's produced value

	out io.Writer
	in  LineReader

	maxSteps int // 0 = unlimited
	steps    int
}

type Option func(*Interpreter)

// WithWriter sets the output writer for print statements
func WithWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithInput sets the line reader readln consumes from
func WithInput(r LineReader) Option {
	return func(i *Interpreter) { i.in = r }
}

// WithMaxSteps bounds the number of executed instructions; exceeding
// it returns ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// New creates an interpreter over a parsed program
func New(program []ast.Instruction, opts ...Option) *Interpreter {
	it := &Interpreter{
		program:     append([]ast.Instruction(nil), program...),
		names:       make(map[string]int),
		scopeStarts: stack.NewStack[int](),
		loopStack:   stack.NewStack[int](),
		retVal:      newBool(false),
	}

	for _, o := range opts {
		o(it)
	}

	if it.out == nil {
		it.out = os.Stdout
	}
	if it.in == nil {
		it.in = NewReaderInput(os.Stdin)
	}

	return it
}

// Reset clears all runtime state
func (i *Interpreter) Reset() {
	i.ip = 0
	i.halted = false
	i.store = i.store[:0]
	i.names = make(map[string]int)
	i.scopeStarts = stack.NewStack[int]()
	i.loopStack = stack.NewStack[int]()
	i.returnStack = i.returnStack[:0]
	i.retVal = newBool(false)
	i.steps = 0
}

// Step executes a single instruction, returning (halted, error)
func (i *Interpreter) Step() (bool, error) {
	if i.halted {
		return true, nil
	}
	if i.maxSteps > 0 && i.steps >= i.maxSteps {
		return false, ErrMaxStepsExceeded
	}

	halted, err := coreStep(i)
	i.steps++

	if halted {
		i.halted = true
	}
	return halted, err
}

// Run executes until the EOF instruction or the first error
func (i *Interpreter) Run() error {
	for {
		halted, err := i.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// PC returns the current instruction pointer
func (i *Interpreter) PC() int {
	return i.ip
}

// Halted reports whether the program reached its EOF instruction
func (i *Interpreter) Halted() bool {
	return i.halted
}

// StoreLen returns the number of live store cells
func (i *Interpreter) StoreLen() int {
	return len(i.store)
}

// Binding returns the current value bound to a name, if any
func (i *Interpreter) Binding(name string) (Value, bool) {
	addr, ok := i.names[name]
	if !ok {
		return Value{}, false
	}
	return i.store[addr], true
}

// resolve evaluates a parsed value against the current store. Values
// read from a cell are tagged with that cell's address so the mutating
// accessors can write back in place.
func (i *Interpreter) resolve(v ast.Value, line int) (Value, error) {
	switch v.Kind {
	case ast.KindNull:
		return nullValue(), nil

	case ast.KindInteger:
		return newInt(v.Int), nil

	case ast.KindString:
		return newString(v.Str), nil

	case ast.KindBool:
		return newBool(v.Bool), nil

	case ast.KindVariable:
		addr, ok := i.names[v.Str]
		if !ok {
			return Value{}, diag.Errorf(diag.UnboundVariable, line, "variable %q is not bound", v.Str)
		}
		cell := i.store[addr]
		cell.Addr = addr
		return cell, nil

	case ast.KindArray:
		elems := make([]Value, len(v.Elems))
		for k, e := range v.Elems {
			resolved, err := i.resolve(e, line)
			if err != nil {
				return Value{}, err
			}
			resolved.Addr = -1
			elems[k] = resolved
		}
		return newArray(elems), nil

	case ast.KindExpression:
		acc, err := i.resolve(v.Operands[0], line)
		if err != nil {
			return Value{}, err
		}
		for k, op := range v.Operators {
			rhs, err := i.resolve(v.Operands[k+1], line)
			if err != nil {
				return Value{}, err
			}
			acc, err = i.applyOperator(acc, rhs, op, line)
			if err != nil {
				return Value{}, err
			}
		}
		return acc, nil

	case ast.KindReturn:
		ret := i.retVal
		ret.Addr = -1
		return ret, nil

	default:
		return Value{}, diag.Errorf(diag.TypeMismatch, line, "unresolvable value %s", v)
	}
}

// bind writes a value under a name, creating a new cell for unbound
// names (set semantics)
func (i *Interpreter) bind(name string, v Value) {
	v.Addr = -1
	if addr, ok := i.names[name]; ok {
		i.store[addr] = v
		return
	}

	i.store = append(i.store, v)
	i.names[name] = len(i.store) - 1
}

// allocate binds a fresh cell, failing if the name is already bound
// anywhere in the visible scope chain (alloc semantics)
func (i *Interpreter) allocate(name string, v Value, line int) error {
	if _, ok := i.names[name]; ok {
		return diag.Errorf(diag.DuplicateAllocation, line, "variable %q is already allocated", name)
	}

	v.Addr = -1
	i.store = append(i.store, v)
	i.names[name] = len(i.store) - 1
	return nil
}

// truncate drops every cell at or above the scope-start boundary and
// prunes the name map to match. This is the only memory reclamation
// mechanism.
func (i *Interpreter) truncate(boundary int) {
	for name, addr := range i.names {
		if addr >= boundary {
			delete(i.names, name)
		}
	}
	i.store = i.store[:boundary]
}

// readerInput is the default LineReader over a buffered stream
type readerInput struct {
	s *bufio.Scanner
}

// NewReaderInput wraps an io.Reader as a LineReader
func NewReaderInput(r io.Reader) LineReader {
	return &readerInput{s: bufio.NewScanner(r)}
}

// ReadLine returns the next input line, or io.EOF when exhausted
func (r *readerInput) ReadLine() (string, error) {
	if r.s.Scan() {
		return r.s.Text(), nil
	}
	if err := r.s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
