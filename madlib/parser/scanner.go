package parser

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// Scanner turns source bytes into tokens. It keeps no cursor of its own:
// every call to Scan names the offset, the active mode stack and the
// parser's expectation, so the same scanner can serve any number of
// speculative parses.
type Scanner struct {
	src       []byte
	file      string
	startLine int
	lines     []int
}

func NewScanner(src []byte, file string, startLine int) *Scanner {
	if startLine < 1 {
		startLine = 1
	}
	lines := []int{0}
	for i, b := range src {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &Scanner{src: src, file: file, startLine: startLine, lines: lines}
}

func (s *Scanner) Source() []byte {
	return s.src
}

func (s *Scanner) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.src) {
		offset = len(s.src)
	}
	line := sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > offset }) - 1
	return Position{
		File:   s.file,
		Offset: offset,
		Line:   s.startLine + line,
		Column: offset - s.lines[line] + 1,
	}
}

func (s *Scanner) span(start, end int) Span {
	return Span{Start: s.Position(start), End: s.Position(end)}
}

// Scan produces the token that starts at offset pos, including the trivia
// in front of it, and the change it makes to the mode stack.
func (s *Scanner) Scan(pos int, state ScannerState, ctx Context) (Token, transition) {
	c := &cursor{sc: s, pos: pos}
	frame := state.Top()
	leading := c.trivia(frame.Mode)

	var tok Token
	var tr transition
	switch frame.Mode {
	case ModeString:
		tok, tr = c.scanString(frame)
	case ModeTemplate:
		tok, tr = c.scanTemplate()
	case ModeRegex:
		tok, tr = c.scanRegex()
	case ModeRegexFlags:
		tok, tr = c.scanRegexFlags()
	case ModeJSXTag:
		tok, tr = c.scanJSXTag(frame)
	case ModeJSXString:
		tok, tr = c.scanJSXString(frame)
	case ModeJSXText:
		tok, tr = c.scanJSXText()
	default:
		tok, tr = c.scanNormal(frame, ctx)
	}
	tok.Mode = frame.Mode
	tok.Leading = leading
	return tok, tr
}

// Next scans one token and returns the mode stack that follows it.
func (s *Scanner) Next(pos int, state ScannerState, ctx Context) (Token, ScannerState) {
	tok, tr := s.Scan(pos, state, ctx)
	return tok, state.apply(tr)
}

// TernaryMark reports whether the '?' at offset pos opens a conditional
// expression.
func (s *Scanner) TernaryMark(pos int) bool {
	if pos >= len(s.src) || s.src[pos] != '?' {
		return false
	}
	next := byteAt(s.src, pos+1)
	if next == '?' {
		return false
	}
	if next == '.' {
		return isDigit(byteAt(s.src, pos+2))
	}
	return true
}

type cursor struct {
	sc  *Scanner
	pos int
}

func byteAt(src []byte, i int) byte {
	if i < 0 || i >= len(src) {
		return 0
	}
	return src[i]
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.sc.src)
}

func (c *cursor) peek() byte {
	return byteAt(c.sc.src, c.pos)
}

func (c *cursor) peekN(n int) byte {
	return byteAt(c.sc.src, c.pos+n)
}

func (c *cursor) peekRune() (rune, int) {
	if c.eof() {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRune(c.sc.src[c.pos:])
}

func (c *cursor) advanceRune() {
	_, size := c.peekRune()
	if size == 0 {
		return
	}
	c.pos += size
}

func (c *cursor) hasPrefix(p string) bool {
	if c.pos+len(p) > len(c.sc.src) {
		return false
	}
	return string(c.sc.src[c.pos:c.pos+len(p)]) == p
}

func (c *cursor) token(kind TokenKind, start int) Token {
	return Token{
		Kind:    kind,
		Span:    c.sc.span(start, c.pos),
		Literal: string(c.sc.src[start:c.pos]),
	}
}

func (c *cursor) missing(kind TokenKind, errKind ErrorKind, msg string) Token {
	sp := c.sc.span(c.pos, c.pos)
	return Token{
		Kind:    kind,
		Span:    sp,
		Missing: true,
		Err:     newError(errKind, sp, msg),
	}
}

func (c *cursor) malformed(tok Token, errKind ErrorKind, msg string) Token {
	tok.Err = newError(errKind, tok.Span, msg)
	return tok
}

func (c *cursor) trivia(mode Mode) []Token {
	var out []Token
	for !c.eof() {
		start := c.pos
		switch mode {
		case ModeNormal, ModeJSXTag:
			switch {
			case c.skipSpace():
				out = append(out, c.token(TokenWhitespace, start))
			case c.hasPrefix("//"):
				for !c.eof() && c.peek() != '\n' {
					c.advanceRune()
				}
				out = append(out, c.token(TokenComment, start))
			case c.hasPrefix("/*"):
				out = append(out, c.blockComment(start))
			case c.hasPrefix("<!--"):
				out = append(out, c.htmlComment(start))
			default:
				return out
			}
		case ModeJSXText:
			switch {
			case c.skipSpace():
				out = append(out, c.token(TokenWhitespace, start))
			case c.hasPrefix("<!--"):
				out = append(out, c.htmlComment(start))
			default:
				return out
			}
		default:
			return out
		}
	}
	return out
}

func (c *cursor) skipSpace() bool {
	start := c.pos
	for !c.eof() {
		r, size := c.peekRune()
		if !isSpace(r) {
			break
		}
		c.pos += size
	}
	return c.pos > start
}

func (c *cursor) blockComment(start int) Token {
	c.pos += 2
	for !c.eof() {
		if c.hasPrefix("*/") {
			c.pos += 2
			return c.token(TokenComment, start)
		}
		c.advanceRune()
	}
	return c.malformed(c.token(TokenComment, start), ErrUnterminatedComment, "unterminated block comment")
}

func (c *cursor) htmlComment(start int) Token {
	c.pos += 4
	for !c.eof() {
		if c.hasPrefix("-->") {
			c.pos += 3
			return c.token(TokenHTMLComment, start)
		}
		c.advanceRune()
	}
	return c.malformed(c.token(TokenHTMLComment, start), ErrUnterminatedComment, "unterminated HTML comment")
}

func (c *cursor) scanNormal(frame Frame, ctx Context) (Token, transition) {
	start := c.pos
	if c.eof() {
		return c.token(TokenEOF, start), transition{}
	}

	ch := c.peek()
	switch {
	case isDigit(ch), ch == '.' && ctx == ExpectValue && isDigit(c.peekN(1)):
		return c.scanNumber(), transition{}
	case ch == '"':
		c.pos++
		return c.token(TokenDoubleQuote, start), transition{op: transPush, frame: Frame{Mode: ModeString, Quote: '"'}}
	case ch == '\'':
		c.pos++
		return c.token(TokenSingleQuote, start), transition{op: transPush, frame: Frame{Mode: ModeString, Quote: '\''}}
	case ch == '`':
		c.pos++
		return c.token(TokenBacktick, start), transition{op: transPush, frame: Frame{Mode: ModeTemplate}}
	case ch == '/':
		c.pos++
		if ctx == ExpectValue {
			return c.token(TokenRegexSlash, start), transition{op: transPush, frame: Frame{Mode: ModeRegex}}
		}
		return c.token(TokenSlash, start), transition{}
	case ch == '<' && ctx == ExpectValue:
		c.pos++
		return c.token(TokenLT, start), transition{op: transPush, frame: Frame{Mode: ModeJSXTag}}
	case ch == '{':
		c.pos++
		frame.Depth++
		return c.token(TokenLBrace, start), transition{op: transReplace, frame: frame}
	case ch == '}':
		c.pos++
		if frame.Depth > 0 {
			frame.Depth--
			return c.token(TokenRBrace, start), transition{op: transReplace, frame: frame}
		}
		if frame.Embedded {
			return c.token(TokenRBrace, start), transition{op: transPop}
		}
		return c.token(TokenRBrace, start), transition{}
	}

	if r, _ := c.peekRune(); isIdentStart(r) || c.hasPrefix("\\u") {
		tok := c.scanIdentifier()
		if kind, ok := keywords[tok.Literal]; ok {
			tok.Kind = kind
		}
		return tok, transition{}
	}
	return c.scanOperator(), transition{}
}

func (c *cursor) scanOperator() Token {
	start := c.pos
	ch := c.peek()
	two := func(next byte, double, single TokenKind) Token {
		if c.peekN(1) == next {
			c.pos += 2
			return c.token(double, start)
		}
		c.pos++
		return c.token(single, start)
	}

	switch ch {
	case '(':
		c.pos++
		return c.token(TokenLParen, start)
	case ')':
		c.pos++
		return c.token(TokenRParen, start)
	case '[':
		c.pos++
		return c.token(TokenLBracket, start)
	case ']':
		c.pos++
		return c.token(TokenRBracket, start)
	case ',':
		c.pos++
		return c.token(TokenComma, start)
	case ';':
		c.pos++
		return c.token(TokenSemicolon, start)
	case '?':
		c.pos++
		return c.token(TokenQuestion, start)
	case '^':
		c.pos++
		return c.token(TokenBitXor, start)
	case '%':
		c.pos++
		return c.token(TokenPercent, start)
	case '-':
		c.pos++
		return c.token(TokenMinus, start)
	case '.':
		if c.hasPrefix("...") {
			c.pos += 3
			return c.token(TokenEllipsis, start)
		}
		c.pos++
		return c.token(TokenDot, start)
	case ':':
		return two('=', TokenMutate, TokenColon)
	case '=':
		if c.peekN(1) == '>' {
			c.pos += 2
			return c.token(TokenArrow, start)
		}
		return two('=', TokenEQ, TokenAssign)
	case '!':
		return two('=', TokenNE, TokenNot)
	case '&':
		return two('&', TokenAnd, TokenBitAnd)
	case '|':
		return two('|', TokenOr, TokenBitOr)
	case '+':
		return two('+', TokenConcat, TokenPlus)
	case '*':
		return two('*', TokenStarStar, TokenStar)
	case '<':
		if c.peekN(1) == '<' {
			c.pos += 2
			return c.token(TokenShl, start)
		}
		return two('=', TokenLE, TokenLT)
	case '>':
		if c.hasPrefix(">>>") {
			c.pos += 3
			return c.token(TokenUShr, start)
		}
		if c.peekN(1) == '>' {
			c.pos += 2
			return c.token(TokenShr, start)
		}
		return two('=', TokenGE, TokenGT)
	}

	c.advanceRune()
	return c.token(TokenError, start)
}

func (c *cursor) scanIdentifier() Token {
	start := c.pos
	valid := true
	for !c.eof() {
		if c.hasPrefix("\\u") {
			if !c.unicodeEscape() {
				valid = false
			}
			continue
		}
		r, size := c.peekRune()
		if c.pos == start && !isIdentStart(r) || c.pos > start && !isIdentPart(r) {
			break
		}
		c.pos += size
	}
	tok := c.token(TokenIdent, start)
	if !valid {
		return c.malformed(tok, ErrInvalidEscape, "invalid unicode escape in identifier")
	}
	return tok
}

// unicodeEscape consumes \uXXXX or \u{X...} and reports whether it was
// well formed.
func (c *cursor) unicodeEscape() bool {
	c.pos += 2
	if c.peek() == '{' {
		c.pos++
		n := 0
		for isHexDigit(c.peek()) {
			c.pos++
			n++
		}
		if n == 0 || c.peek() != '}' {
			return false
		}
		c.pos++
		return true
	}
	for i := 0; i < 4; i++ {
		if !isHexDigit(c.peek()) {
			return false
		}
		c.pos++
	}
	return true
}

func (c *cursor) scanNumber() Token {
	start := c.pos
	valid := true

	if c.peek() == '0' {
		var digit func(byte) bool
		switch c.peekN(1) {
		case 'x', 'X':
			digit = isHexDigit
		case 'b', 'B':
			digit = isBinaryDigit
		case 'o', 'O':
			digit = isOctalDigit
		}
		if digit != nil {
			c.pos += 2
			if !c.digits(digit) {
				valid = false
			}
			if c.peek() == 'n' {
				c.pos++
			}
			return c.finishNumber(start, valid)
		}
	}

	integer := false
	if isDigit(c.peek()) {
		integer = true
		if !c.digits(isDigit) {
			valid = false
		}
		if c.peek() == 'n' {
			c.pos++
			return c.finishNumber(start, valid)
		}
	}
	if c.peek() == '.' && isDigit(c.peekN(1)) {
		c.pos++
		if !c.digits(isDigit) {
			valid = false
		}
	} else if !integer {
		valid = false
	}
	if ch := c.peek(); ch == 'e' || ch == 'E' {
		if isDigit(c.peekN(1)) || c.peekN(1) == '-' && isDigit(c.peekN(2)) {
			c.pos++
			if c.peek() == '-' {
				c.pos++
			}
			if !c.digits(isDigit) {
				valid = false
			}
		}
	}
	return c.finishNumber(start, valid)
}

// digits consumes a run of digits with single underscores between them.
func (c *cursor) digits(digit func(byte) bool) bool {
	if !digit(c.peek()) {
		return false
	}
	valid := true
	for {
		ch := c.peek()
		switch {
		case digit(ch):
			c.pos++
		case ch == '_':
			c.pos++
			if !digit(c.peek()) {
				valid = false
			}
		default:
			return valid
		}
	}
}

func (c *cursor) finishNumber(start int, valid bool) Token {
	// An identifier character glued to a literal belongs to the literal.
	for !c.eof() {
		r, size := c.peekRune()
		if !isIdentPart(r) {
			break
		}
		c.pos += size
		valid = false
	}
	tok := c.token(TokenNumber, start)
	if !valid {
		return c.malformed(tok, ErrInvalidNumericLiteral, "invalid numeric literal")
	}
	return tok
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isOctalDigit(ch byte) bool {
	return ch >= '0' && ch <= '7'
}

func isBinaryDigit(ch byte) bool {
	return ch == '0' || ch == '1'
}

func isSpace(r rune) bool {
	switch r {
	case '\uFEFF', '\u2060', '\u200B', '\u2028', '\u2029':
		return true
	}
	return unicode.IsSpace(r) || unicode.Is(unicode.Zs, r)
}

const bannedIdentChars = "~`\"'@#.,|^&<=>+-*/\\%?!:;()[]{}"

func isIdentPart(r rune) bool {
	if r == utf8.RuneError || r < 0x20 || r == 0x7f || isSpace(r) || unicode.IsControl(r) {
		return false
	}
	if r < utf8.RuneSelf {
		for i := 0; i < len(bannedIdentChars); i++ {
			if bannedIdentChars[i] == byte(r) {
				return false
			}
		}
	}
	return true
}

func isIdentStart(r rune) bool {
	return isIdentPart(r) && !(r >= '0' && r <= '9')
}
