package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Nick80835/boredom2/pkg/ast"
	"github.com/Nick80835/boredom2/pkg/color"
	"github.com/Nick80835/boredom2/pkg/interpreter"
	"github.com/Nick80835/boredom2/pkg/lexer"
	"github.com/Nick80835/boredom2/pkg/parser"

	"github.com/charmbracelet/log"
	"github.com/danswartzendruber/liner"
	"github.com/goforj/godump"
	"golang.org/x/term"
)

// Runner drives one source file through lexer, parser and interpreter.
type Runner struct {
	Verbose     bool   // Print the instruction listing before running
	NoColor     bool   // Disable colored output
	DumpProgram bool   // Dump the parsed program structure
	MaxSteps    int    // Interpreter step bound, 0 = unlimited
	SourceFile  string // Path to the source file

	Out io.Writer // Program output, defaults to stdout
	In  io.Reader // Program input, defaults to stdin
}

// Run reads the source file as lines, lexes, parses and interprets it.
// The first error from any stage aborts the whole run.
func (r *Runner) Run() error {
	log.Info("interpreting file", "file", r.SourceFile)

	input, err := os.ReadFile(r.SourceFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", r.SourceFile, err)
	}
	lines := strings.Split(strings.ReplaceAll(string(input), "\r\n", "\n"), "\n")

	tokens, err := lexer.Tokenize(lines)
	if err != nil {
		return err
	}

	program, err := parser.New(tokens).Parse()
	if err != nil {
		return err
	}

	if r.Verbose {
		r.listProgram(program)
	}
	if r.DumpProgram {
		godump.Dump(program)
	}

	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	in, cleanup := r.inputSource()
	defer cleanup()

	it := interpreter.New(program,
		interpreter.WithWriter(out),
		interpreter.WithInput(in),
		interpreter.WithMaxSteps(r.MaxSteps),
	)

	return it.Run()
}

// listProgram prints the flat instruction array, one indexed line each
func (r *Runner) listProgram(program []ast.Instruction) {
	fmt.Println(color.GreenText("=== Parsed Program ==="))

	for i, ins := range program {
		fmt.Printf("%s: %s\n",
			color.CyanText(strconv.Itoa(i)),
			color.YellowText(ins.String()))
	}
}

// inputSource picks where readln reads from: an explicit reader when
// set (tests), a line editor when stdin is a terminal, and plain
// buffered stdin otherwise
func (r *Runner) inputSource() (interpreter.LineReader, func()) {
	if r.In != nil {
		return interpreter.NewReaderInput(r.In), func() {}
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		state := liner.NewLiner()
		return &linerInput{state: state}, func() { state.Close() }
	}

	return interpreter.NewReaderInput(os.Stdin), func() {}
}

// linerInput adapts a liner line editor to the interpreter's input
type linerInput struct {
	state *liner.State
}

// ReadLine reads one edited line from the terminal
func (l *linerInput) ReadLine() (string, error) {
	s, err := l.state.Prompt("")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", fmt.Errorf("input aborted")
		}
		return "", err
	}

	return s, nil
}
