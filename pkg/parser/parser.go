package parser

import (
	"github.com/Nick80835/boredom2/pkg/ast"
	"github.com/Nick80835/boredom2/pkg/diag"
	"github.com/Nick80835/boredom2/pkg/lexer"
	"github.com/Nick80835/boredom2/pkg/stack"
)

// openScope tracks an unclosed block during the forward scan. isSub
// marks subroutine bodies, which get an implicit `ret false` if they
// close without an explicit ret.
type openScope struct {
	blockIdx int
	isSub    bool
}

// Parser consumes the post-processed token stream once, producing the
// flat instruction array plus the label and subroutine tables. Forward
// references are kept in per-name pending lists and patched in a
// finalization pass.
type Parser struct {
	tokens []lexer.Token
	pos    int

	instrs []ast.Instruction
	scopes *stack.Stack[openScope]

	labels map[string]int // label name -> instruction index
	subs   map[string]int // subroutine name -> first body instruction index

	pendingJumps map[string][]int // label name -> unresolved Jump indices
	pendingCalls map[string][]int // sub name -> unresolved SubroutineCall indices
}

// New creates a parser over a post-processed token stream
func New(tokens []lexer.Token) *Parser {
	return &Parser{
		tokens:       tokens,
		scopes:       stack.NewStack[openScope](),
		labels:       make(map[string]int),
		subs:         make(map[string]int),
		pendingJumps: make(map[string][]int),
		pendingCalls: make(map[string][]int),
	}
}

// Parse runs the single forward scan and the finalization pass,
// returning the executable instruction sequence
func (p *Parser) Parse() ([]ast.Instruction, error) {
	p.emit(ast.NewInstruction(ast.Empty, 0)) // root no-op at index 0

	for {
		tok := p.current()

		switch tok.Type {
		case lexer.EOF:
			p.emit(ast.NewInstruction(ast.EOF, tok.Line))
			if err := p.finalize(); err != nil {
				return nil, err
			}
			return p.instrs, nil

		case lexer.ScopeOpen:
			p.advance()
			p.emitBlock(tok.Line, false)

		case lexer.ScopeClose:
			p.advance()
			if err := p.closeScope(tok.Line); err != nil {
				return nil, err
			}

		case lexer.Alloc, lexer.Set:
			if err := p.parseAssignment(tok); err != nil {
				return nil, err
			}

		case lexer.Ident:
			if err := p.parseCompoundAssignment(tok); err != nil {
				return nil, err
			}

		case lexer.If, lexer.While:
			if err := p.parseConditional(tok); err != nil {
				return nil, err
			}

		case lexer.Print:
			if err := p.parsePrint(tok); err != nil {
				return nil, err
			}

		case lexer.ReadLine:
			if err := p.parseReadLine(tok); err != nil {
				return nil, err
			}

		case lexer.LabelMark:
			if err := p.parseLabel(tok); err != nil {
				return nil, err
			}

		case lexer.Jump:
			if err := p.parseJump(tok); err != nil {
				return nil, err
			}

		case lexer.Sub:
			if err := p.parseSubroutine(tok); err != nil {
				return nil, err
			}

		case lexer.Call:
			if err := p.parseCall(tok); err != nil {
				return nil, err
			}

		case lexer.Ret:
			if err := p.parseReturn(tok); err != nil {
				return nil, err
			}

		case lexer.Else:
			return nil, diag.Errorf(diag.Parse, tok.Line, "else blocks are not supported")

		default:
			return nil, diag.Errorf(diag.Parse, tok.Line, "unexpected token '%s'", tok.Type)
		}
	}
}

// Labels returns the label table (name -> instruction index)
func (p *Parser) Labels() map[string]int {
	return p.labels
}

// Subroutines returns the subroutine table (name -> first body
// instruction index)
func (p *Parser) Subroutines() map[string]int {
	return p.subs
}

func (p *Parser) parseAssignment(tok lexer.Token) error {
	kind := ast.Alloc
	if tok.Type == lexer.Set {
		kind = ast.Set
	}
	p.advance()

	name, err := p.expect(lexer.Ident)
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.Assign); err != nil {
		return err
	}

	run, err := p.collectUntil(tok.Line, lexer.LineEnd)
	if err != nil {
		return err
	}
	val, err := parseExpression(run, tok.Line)
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.LineEnd); err != nil {
		return err
	}

	p.emit(ast.WithArgs(kind, tok.Line, ast.Variable(name.Lexeme), &val))
	return nil
}

// parseCompoundAssignment handles `NAME += <expr>` and `NAME -= <expr>`
// by splicing the variable and the bare operator into the expression
// token run, so it resolves exactly like `set NAME = NAME <op> <expr>`.
func (p *Parser) parseCompoundAssignment(tok lexer.Token) error {
	p.advance()

	opTok := p.current()
	var op lexer.TokenType
	switch opTok.Type {
	case lexer.PlusEquals:
		op = lexer.Plus
	case lexer.MinusEquals:
		op = lexer.Minus
	default:
		return diag.Errorf(diag.Parse, tok.Line, "unexpected token '%s' after '%s'", opTok.Type, tok.Lexeme)
	}
	p.advance()

	rest, err := p.collectUntil(tok.Line, lexer.LineEnd)
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.LineEnd); err != nil {
		return err
	}

	run := make([]lexer.Token, 0, len(rest)+2)
	run = append(run, tok, lexer.NewToken(op, op.String(), tok.Line))
	run = append(run, rest...)

	val, err := parseExpression(run, tok.Line)
	if err != nil {
		return err
	}

	p.emit(ast.WithArgs(ast.Set, tok.Line, ast.Variable(tok.Lexeme), &val))
	return nil
}

func (p *Parser) parseConditional(tok lexer.Token) error {
	kind := ast.If
	if tok.Type == lexer.While {
		kind = ast.While
	}
	p.advance()

	run, err := p.collectUntil(tok.Line, lexer.ScopeOpen)
	if err != nil {
		return err
	}
	cond, err := parseExpression(run, tok.Line)
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.ScopeOpen); err != nil {
		return err
	}

	arg1, op, arg2 := splitCondition(cond)

	ins := ast.NewInstruction(kind, tok.Line)
	ins.Arg1 = &arg1
	ins.Arg2 = &arg2
	ins.Op = op
	ins.BodyIdx = len(p.instrs) + 1 // the block that follows
	p.emit(ins)

	p.emitBlock(tok.Line, false)
	return nil
}

func (p *Parser) parsePrint(tok lexer.Token) error {
	p.advance()

	run, err := p.collectUntil(tok.Line, lexer.LineEnd)
	if err != nil {
		return err
	}
	val, err := parseExpression(run, tok.Line)
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.LineEnd); err != nil {
		return err
	}

	p.emit(ast.WithArgs(ast.DebugPrintCall, tok.Line, val, nil))
	return nil
}

func (p *Parser) parseReadLine(tok lexer.Token) error {
	p.advance()

	name, err := p.expect(lexer.Ident)
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.LineEnd); err != nil {
		return err
	}

	p.emit(ast.WithArgs(ast.ReadLineCall, tok.Line, ast.Variable(name.Lexeme), nil))
	return nil
}

func (p *Parser) parseLabel(tok lexer.Token) error {
	p.advance()

	name, err := p.expect(lexer.Ident)
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.LineEnd); err != nil {
		return err
	}

	if _, dup := p.labels[name.Lexeme]; dup {
		return diag.Errorf(diag.Parse, tok.Line, "label %q is already defined", name.Lexeme)
	}

	// a label emits no instruction: it names the next index
	p.labels[name.Lexeme] = len(p.instrs)
	return nil
}

func (p *Parser) parseJump(tok lexer.Token) error {
	p.advance()

	name, err := p.expect(lexer.Ident)
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.LineEnd); err != nil {
		return err
	}

	idx := len(p.instrs)
	p.emit(ast.WithArgs(ast.Jump, tok.Line, ast.Variable(name.Lexeme), nil))
	p.pendingJumps[name.Lexeme] = append(p.pendingJumps[name.Lexeme], idx)
	return nil
}

func (p *Parser) parseSubroutine(tok lexer.Token) error {
	p.advance()

	name, err := p.expect(lexer.Ident)
	if err != nil {
		return err
	}
	if _, dup := p.subs[name.Lexeme]; dup {
		return diag.Errorf(diag.Parse, tok.Line, "subroutine %q is already defined", name.Lexeme)
	}
	if _, err := p.expect(lexer.ScopeOpen); err != nil {
		return err
	}

	defineIdx := len(p.instrs)
	p.emit(ast.WithArgs(ast.SubroutineDefine, tok.Line, ast.Variable(name.Lexeme), nil))

	// calls land on the first body instruction, past the block opener
	p.subs[name.Lexeme] = defineIdx + 2

	p.emitBlock(tok.Line, true)
	return nil
}

func (p *Parser) parseCall(tok lexer.Token) error {
	p.advance()

	name, err := p.expect(lexer.Ident)
	if err != nil {
		return err
	}

	idx := len(p.instrs)
	p.emit(ast.WithArgs(ast.SubroutineCall, tok.Line, ast.Variable(name.Lexeme), nil))
	p.pendingCalls[name.Lexeme] = append(p.pendingCalls[name.Lexeme], idx)

	// `call NAME -> VAR` captures the produced value right after the call
	if p.current().Type == lexer.Arrow {
		p.advance()
		out, err := p.expect(lexer.Ident)
		if err != nil {
			return err
		}
		ret := ast.ReturnValue()
		p.emit(ast.WithArgs(ast.Set, tok.Line, ast.Variable(out.Lexeme), &ret))
	}

	if _, err := p.expect(lexer.LineEnd); err != nil {
		return err
	}
	return nil
}

func (p *Parser) parseReturn(tok lexer.Token) error {
	p.advance()

	val := ast.Boolean(false) // `ret;` produces false
	if p.current().Type != lexer.LineEnd {
		run, err := p.collectUntil(tok.Line, lexer.LineEnd)
		if err != nil {
			return err
		}
		val, err = parseExpression(run, tok.Line)
		if err != nil {
			return err
		}
	}
	if _, err := p.expect(lexer.LineEnd); err != nil {
		return err
	}

	p.emit(ast.WithArgs(ast.SubroutineReturn, tok.Line, val, nil))
	return nil
}

// emitBlock opens a scope: the Block instruction's body starts right
// after it, and its extent is filled in when the close is parsed
func (p *Parser) emitBlock(line int, isSub bool) {
	idx := len(p.instrs)
	p.emit(ast.NewScope(line, idx+1))
	p.scopes.Push(openScope{blockIdx: idx, isSub: isSub})
}

func (p *Parser) closeScope(line int) error {
	if p.scopes.Size() == 0 {
		return diag.Errorf(diag.Parse, line, "unmatched '}'")
	}
	sc := p.scopes.Pop()

	// a subroutine body always returns; synthesize `ret false` when
	// the body does not end with an explicit ret
	if sc.isSub && p.instrs[len(p.instrs)-1].Kind != ast.SubroutineReturn {
		p.emit(ast.WithArgs(ast.SubroutineReturn, line, ast.Boolean(false), nil))
	}

	p.instrs[sc.blockIdx].BodyExtent = len(p.instrs) - sc.blockIdx
	p.emit(ast.NewInstruction(ast.BlockEnd, line))
	return nil
}

// finalize patches every pending jump and call target. Any name still
// without a definition is a fatal error.
func (p *Parser) finalize() error {
	for name, idxs := range p.pendingJumps {
		target, ok := p.labels[name]
		if !ok {
			return diag.Errorf(diag.UnresolvedReference, p.instrs[idxs[0]].Line, "label %q is never defined", name)
		}
		for _, i := range idxs {
			p.instrs[i].BodyIdx = target
		}
	}

	for name, idxs := range p.pendingCalls {
		target, ok := p.subs[name]
		if !ok {
			return diag.Errorf(diag.UnresolvedReference, p.instrs[idxs[0]].Line, "subroutine %q is never defined", name)
		}
		for _, i := range idxs {
			p.instrs[i].BodyIdx = target
		}
	}

	return nil
}

func (p *Parser) emit(ins ast.Instruction) {
	p.instrs = append(p.instrs, ins)
}

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.NewToken(lexer.EOF, "", 0)
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() {
	p.pos++
}

func (p *Parser) expect(typ lexer.TokenType) (lexer.Token, error) {
	tok := p.current()
	if tok.Type != typ {
		return tok, diag.Errorf(diag.Parse, tok.Line, "expected '%s', found '%s'", typ, tok.Type)
	}
	p.advance()
	return tok, nil
}

// collectUntil gathers the statement's expression token run up to the
// terminator, which is left for the caller to consume. Terminators
// never nest inside expressions (arrays reject them outright), so a
// flat scan suffices.
func (p *Parser) collectUntil(line int, terminator lexer.TokenType) ([]lexer.Token, error) {
	start := p.pos
	for {
		tok := p.current()
		if tok.Type == terminator {
			return p.tokens[start:p.pos], nil
		}
		if tok.Type == lexer.EOF {
			return nil, diag.Errorf(diag.Parse, line, "statement is missing its '%s'", terminator)
		}
		p.advance()
	}
}
