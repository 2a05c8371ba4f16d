package parser

import (
	"context"
)

type Parser struct {
	file      string
	startLine int
	ctx       context.Context
	src       []byte
	sc        *Scanner
	ts        *TokenStream
	cancelled *ParseError

	// jsxFailed is raised when a speculative JSX parse hits a tag-level
	// error and has to be abandoned.
	jsxFailed bool

	memos map[memoKey]memoEntry
}

type memoRule uint8

const (
	ruleParenOrFunction memoRule = iota
	ruleNamedFunction
)

// memoKey identifies a speculative rule by where it starts. The same rule
// at the same offset under the same mode frame yields the same node.
type memoKey struct {
	rule  memoRule
	pos   int
	frame Frame
	depth int
}

type memoEntry struct {
	node *Node
	end  Checkpoint
}

// memo runs parse once per start position. Nested speculative rules would
// otherwise be re-parsed on every rewind of an enclosing attempt.
func (p *Parser) memo(rule memoRule, parse func() *Node) *Node {
	start := p.ts.Checkpoint()
	key := memoKey{rule: rule, pos: start.pos, frame: start.state.Top(), depth: start.state.Size()}
	if e, ok := p.memos[key]; ok {
		p.ts.Restore(e.end)
		return e.node
	}
	n := parse()
	if p.memos == nil {
		p.memos = make(map[memoKey]memoEntry)
	}
	p.memos[key] = memoEntry{node: n, end: p.ts.Checkpoint()}
	return n
}

type Option func(*Parser)

func WithFile(file string) Option {
	return func(p *Parser) {
		p.file = file
	}
}

func WithStartLine(line int) Option {
	return func(p *Parser) {
		p.startLine = line
	}
}

func newParser(ctx context.Context, src []byte, opts ...Option) *Parser {
	if ctx == nil {
		ctx = context.Background()
	}
	p := &Parser{ctx: ctx, src: src, startLine: 1}
	for _, opt := range opts {
		opt(p)
	}
	p.sc = NewScanner(src, p.file, p.startLine)
	p.ts = NewTokenStream(p.sc)
	return p
}

// Parse builds a concrete syntax tree for a whole program. It never fails:
// malformed input yields ERROR and missing nodes inside the tree. If ctx
// is cancelled the tree is partial and its diagnostics say so.
func Parse(ctx context.Context, src []byte, opts ...Option) *Tree {
	p := newParser(ctx, src, opts...)
	root := p.parseProgram()
	return p.tree(root)
}

// ParseExpression parses src as a single expression.
func ParseExpression(ctx context.Context, src []byte, opts ...Option) *Tree {
	p := newParser(ctx, src, opts...)
	expr := p.parseExpressions()
	if p.ts.Peek(ExpectOperator).Kind != TokenEOF {
		root := p.startNode(KindError)
		root.AddChild(expr)
		for p.ts.Peek(ExpectOperator).Kind != TokenEOF {
			root.AddChild(p.consume(KindToken))
		}
		root = p.finishNode(root)
		root.Error = newError(ErrUnexpectedToken, root.Span, "unexpected input after expression")
		expr = root
	}
	return p.tree(expr)
}

// Tokenize returns every token of src, trivia included, as the parser
// sees them.
func Tokenize(src []byte, opts ...Option) []Token {
	return Parse(context.Background(), src, opts...).Tokens()
}

func (p *Parser) tree(root *Node) *Tree {
	t := &Tree{
		Root:      root,
		Source:    p.src,
		File:      p.file,
		StartLine: p.startLine,
		cancelled: p.cancelled,
	}
	if eof := p.ts.Peek(ExpectValue); eof.Kind == TokenEOF {
		t.Trailing = eof.Leading
	}
	return t
}

func (p *Parser) peek() Token {
	return p.ts.Peek(ExpectValue)
}

func (p *Parser) peekOp() Token {
	return p.ts.Peek(ExpectOperator)
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) checkOp(kind TokenKind) bool {
	return p.peekOp().Kind == kind
}

func (p *Parser) checkContextual(word string) bool {
	tok := p.peek()
	return tok.Kind == TokenIdent && tok.Literal == word
}

// isCancelled polls the context. Once it reports cancellation the parser
// unwinds without consuming more input.
func (p *Parser) isCancelled() bool {
	if p.cancelled != nil {
		return true
	}
	select {
	case <-p.ctx.Done():
		pos := p.ts.Position()
		p.cancelled = newError(ErrCancelled, Span{Start: pos, End: pos}, "parse cancelled: "+p.ctx.Err().Error())
		return true
	default:
		return false
	}
}

func (p *Parser) parseProgram() *Node {
	n := p.startNode(KindProgram)
	p.parseStatements(n, false)
	return p.finishNode(n)
}

// parseStatements fills n until EOF, or until a closing brace when
// inBlock is set.
func (p *Parser) parseStatements(n *Node, inBlock bool) {
	for {
		tok := p.peek()
		if tok.Kind == TokenEOF || inBlock && tok.Kind == TokenRBrace {
			return
		}
		if p.isCancelled() {
			return
		}
		progress := p.mustProgress(n)
		n.AddChild(p.parseStatement())
		progress()
	}
}
