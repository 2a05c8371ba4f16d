package parser

// TokenStream sits between the scanner and the parser. It owns the cursor
// and the mode stack, memoizes scans, and supports constant time
// checkpoints for speculative parsing.
type TokenStream struct {
	sc      *Scanner
	pos     int
	state   ScannerState
	peekCtx Context
	cache   map[cacheKey]scanResult
}

type cacheKey struct {
	pos   int
	frame Frame
	ctx   Context
}

type scanResult struct {
	tok Token
	tr  transition
}

type Checkpoint struct {
	pos     int
	state   ScannerState
	peekCtx Context
}

func NewTokenStream(sc *Scanner) *TokenStream {
	return &TokenStream{
		sc:    sc,
		state: rootState(),
		cache: make(map[cacheKey]scanResult),
	}
}

func (s *TokenStream) scan(pos int, state ScannerState, ctx Context) (Token, transition) {
	frame := state.Top()
	if frame.Mode != ModeNormal {
		ctx = ExpectValue
	}
	key := cacheKey{pos: pos, frame: frame, ctx: ctx}
	if r, ok := s.cache[key]; ok {
		return r.tok, r.tr
	}
	tok, tr := s.sc.Scan(pos, state, ctx)
	s.cache[key] = scanResult{tok: tok, tr: tr}
	return tok, tr
}

// Peek returns the next token as seen under ctx without consuming it. The
// following Advance consumes exactly this token.
func (s *TokenStream) Peek(ctx Context) Token {
	s.peekCtx = ctx
	tok, _ := s.scan(s.pos, s.state, ctx)
	return tok
}

// PeekN looks n tokens past the next one. Tokens after the first are
// scanned under the context their predecessor suggests.
func (s *TokenStream) PeekN(n int, ctx Context) Token {
	la := s.lookahead(ctx)
	tok := la.next()
	for i := 0; i < n; i++ {
		tok = la.next()
	}
	return tok
}

func (s *TokenStream) Advance() Token {
	tok, tr := s.scan(s.pos, s.state, s.peekCtx)
	if tok.Kind == TokenEOF {
		return tok
	}
	s.pos = tok.Span.End.Offset
	s.state = s.state.apply(tr)
	return tok
}

func (s *TokenStream) Checkpoint() Checkpoint {
	return Checkpoint{pos: s.pos, state: s.state, peekCtx: s.peekCtx}
}

func (s *TokenStream) Restore(cp Checkpoint) {
	s.pos = cp.pos
	s.state = cp.state
	s.peekCtx = cp.peekCtx
}

// Reset moves the cursor to pos with the given mode stack.
func (s *TokenStream) Reset(pos int, state ScannerState) {
	s.pos = pos
	s.state = state
}

// Offset is the end of the last consumed token.
func (s *TokenStream) Offset() int {
	return s.pos
}

func (s *TokenStream) Position() Position {
	return s.sc.Position(s.pos)
}

func (s *TokenStream) State() ScannerState {
	return s.state
}

// TernaryMark reports whether the upcoming '?' starts a conditional.
func (s *TokenStream) TernaryMark() bool {
	tok := s.Peek(ExpectOperator)
	return tok.Kind == TokenQuestion && s.sc.TernaryMark(tok.Span.Start.Offset)
}

type lookahead struct {
	s     *TokenStream
	pos   int
	state ScannerState
	ctx   Context
}

func (s *TokenStream) lookahead(ctx Context) *lookahead {
	return &lookahead{s: s, pos: s.pos, state: s.state, ctx: ctx}
}

func (l *lookahead) next() Token {
	tok, tr := l.s.scan(l.pos, l.state, l.ctx)
	if tok.Kind == TokenEOF {
		return tok
	}
	l.pos = tok.Span.End.Offset
	l.state = l.state.apply(tr)
	l.ctx = contextAfter(tok)
	return tok
}

// contextAfter guesses what may follow tok when no parser is driving.
func contextAfter(tok Token) Context {
	switch tok.Kind {
	case TokenIdent, TokenNumber, TokenTrue, TokenFalse, TokenRParen, TokenRBracket,
		TokenRBrace, TokenRegexFlags:
		return ExpectOperator
	case TokenDoubleQuote, TokenSingleQuote:
		if tok.Mode == ModeString {
			return ExpectOperator
		}
	case TokenBacktick:
		if tok.Mode == ModeTemplate {
			return ExpectOperator
		}
	case TokenRegexSlash:
		if tok.Mode == ModeRegex {
			return ExpectOperator
		}
	}
	if tok.Kind.IsReservedIdentifier() {
		return ExpectOperator
	}
	return ExpectValue
}
