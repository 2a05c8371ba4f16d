package parser

func (c *cursor) scanString(frame Frame) (Token, transition) {
	start := c.pos
	ch := c.peek()
	switch {
	case c.eof(), ch == '\n', ch == '\r':
		return c.missing(quoteKind(frame.Quote), ErrUnterminatedString, "unterminated string literal"), transition{op: transPop}
	case ch == frame.Quote:
		c.pos++
		return c.token(quoteKind(frame.Quote), start), transition{op: transPop}
	case ch == '\\':
		return c.scanEscape(), transition{}
	}
	for !c.eof() {
		ch := c.peek()
		if ch == frame.Quote || ch == '\\' || ch == '\n' || ch == '\r' {
			break
		}
		c.advanceRune()
	}
	return c.token(TokenStringFragment, start), transition{}
}

func quoteKind(q byte) TokenKind {
	if q == '\'' {
		return TokenSingleQuote
	}
	return TokenDoubleQuote
}

func (c *cursor) scanTemplate() (Token, transition) {
	start := c.pos
	switch {
	case c.eof():
		return c.missing(TokenBacktick, ErrUnterminatedTemplate, "unterminated template literal"), transition{op: transPop}
	case c.peek() == '`':
		c.pos++
		return c.token(TokenBacktick, start), transition{op: transPop}
	case c.peek() == '\\':
		return c.scanEscape(), transition{}
	case c.hasPrefix("${"):
		c.pos += 2
		return c.token(TokenDollarBrace, start), transition{op: transPush, frame: Frame{Mode: ModeNormal, Embedded: true}}
	}
	for !c.eof() {
		if c.peek() == '`' || c.peek() == '\\' || c.hasPrefix("${") {
			break
		}
		c.advanceRune()
	}
	return c.token(TokenTemplateChars, start), transition{}
}

func (c *cursor) scanEscape() Token {
	start := c.pos
	c.pos++
	if c.eof() {
		return c.malformed(c.token(TokenEscapeSequence, start), ErrInvalidEscape, "incomplete escape sequence")
	}

	valid := true
	switch ch := c.peek(); {
	case ch == '\r':
		c.pos++
		if c.peek() == '\n' {
			c.pos++
		}
	case ch == 'x':
		c.pos++
		for i := 0; i < 2; i++ {
			if !isHexDigit(c.peek()) {
				valid = false
				break
			}
			c.pos++
		}
	case ch == 'u':
		c.pos--
		valid = c.unicodeEscape()
	case isOctalDigit(ch):
		for i := 0; i < 3 && isOctalDigit(c.peek()); i++ {
			c.pos++
		}
	default:
		c.advanceRune()
	}

	tok := c.token(TokenEscapeSequence, start)
	if !valid {
		return c.malformed(tok, ErrInvalidEscape, "invalid escape sequence")
	}
	return tok
}

// scanRegex produces the pattern or the closing slash. A pattern that runs
// into a line break is unterminated and swallows the rest of the input.
func (c *cursor) scanRegex() (Token, transition) {
	start := c.pos
	if c.eof() {
		return c.missing(TokenRegexSlash, ErrUnterminatedRegex, "unterminated regular expression"), transition{op: transPop}
	}
	if c.peek() == '/' {
		c.pos++
		tok := c.token(TokenRegexSlash, start)
		if ch := c.peek(); ch >= 'a' && ch <= 'z' {
			return tok, transition{op: transReplace, frame: Frame{Mode: ModeRegexFlags}}
		}
		return tok, transition{op: transPop}
	}

	inClass := false
	for !c.eof() {
		ch := c.peek()
		if ch == '\n' || ch == '\r' {
			c.pos = len(c.sc.src)
			break
		}
		switch {
		case ch == '\\':
			c.pos++
			c.advanceRune()
			continue
		case ch == '[':
			inClass = true
		case ch == ']':
			inClass = false
		case ch == '/' && !inClass:
			return c.token(TokenRegexPattern, start), transition{}
		}
		c.advanceRune()
	}
	return c.token(TokenRegexPattern, start), transition{}
}

func (c *cursor) scanRegexFlags() (Token, transition) {
	start := c.pos
	for ch := c.peek(); ch >= 'a' && ch <= 'z'; ch = c.peek() {
		c.pos++
	}
	return c.token(TokenRegexFlags, start), transition{op: transPop}
}

func (c *cursor) scanJSXTag(frame Frame) (Token, transition) {
	start := c.pos
	if c.eof() {
		return c.token(TokenEOF, start), transition{}
	}

	switch ch := c.peek(); ch {
	case '>':
		c.pos++
		if frame.Closing {
			return c.token(TokenGT, start), transition{op: transPop}
		}
		return c.token(TokenGT, start), transition{op: transReplace, frame: Frame{Mode: ModeJSXText}}
	case '/':
		if c.peekN(1) == '>' {
			c.pos += 2
			return c.token(TokenJSXSelfClose, start), transition{op: transPop}
		}
	case '<':
		c.pos++
		return c.token(TokenLT, start), transition{op: transPush, frame: Frame{Mode: ModeJSXTag}}
	case '{':
		c.pos++
		return c.token(TokenLBrace, start), transition{op: transPush, frame: Frame{Mode: ModeNormal, Embedded: true}}
	case '"', '\'':
		c.pos++
		return c.token(quoteKind(ch), start), transition{op: transPush, frame: Frame{Mode: ModeJSXString, Quote: ch}}
	case '=':
		c.pos++
		return c.token(TokenAssign, start), transition{}
	case '.':
		c.pos++
		return c.token(TokenDot, start), transition{}
	case ':':
		c.pos++
		return c.token(TokenColon, start), transition{}
	}

	if isASCIIIdentStart(c.peek()) {
		end := c.pos
		for isASCIIIdentPart(byteAt(c.sc.src, end)) {
			end++
		}
		if byteAt(c.sc.src, end) == '-' {
			for isASCIIIdentPart(byteAt(c.sc.src, end)) || byteAt(c.sc.src, end) == '-' {
				end++
			}
			c.pos = end
			return c.token(TokenJSXIdent, start), transition{}
		}
	}
	if r, _ := c.peekRune(); isIdentStart(r) {
		return c.scanIdentifier(), transition{}
	}
	c.advanceRune()
	return c.token(TokenError, start), transition{}
}

func (c *cursor) scanJSXString(frame Frame) (Token, transition) {
	start := c.pos
	switch {
	case c.eof():
		return c.missing(quoteKind(frame.Quote), ErrUnterminatedString, "unterminated string literal"), transition{op: transPop}
	case c.peek() == frame.Quote:
		c.pos++
		return c.token(quoteKind(frame.Quote), start), transition{op: transPop}
	case c.peek() == '&':
		if n := c.charRefLen(); n > 0 {
			c.pos += n
			return c.token(TokenHTMLCharRef, start), transition{}
		}
	}
	for !c.eof() && c.peek() != frame.Quote {
		if c.pos > start && c.peek() == '&' && c.charRefLen() > 0 {
			break
		}
		c.advanceRune()
	}
	return c.token(TokenStringFragment, start), transition{}
}

func (c *cursor) scanJSXText() (Token, transition) {
	start := c.pos
	if c.eof() {
		return c.token(TokenEOF, start), transition{}
	}

	switch c.peek() {
	case '{':
		c.pos++
		return c.token(TokenLBrace, start), transition{op: transPush, frame: Frame{Mode: ModeNormal, Embedded: true}}
	case '<':
		if c.peekN(1) == '/' {
			c.pos += 2
			return c.token(TokenJSXCloseOpen, start), transition{op: transReplace, frame: Frame{Mode: ModeJSXTag, Closing: true}}
		}
		c.pos++
		return c.token(TokenLT, start), transition{op: transPush, frame: Frame{Mode: ModeJSXTag}}
	case '&':
		if n := c.charRefLen(); n > 0 {
			c.pos += n
			return c.token(TokenHTMLCharRef, start), transition{}
		}
		c.pos++
		return c.token(TokenError, start), transition{}
	case '}', '>':
		c.pos++
		return c.token(TokenError, start), transition{}
	}

	// A run that opens with "//" is text up to the end of the line.
	if c.hasPrefix("//") {
		for !c.eof() && c.peek() != '\n' {
			c.advanceRune()
		}
		return c.token(TokenJSXText, start), transition{}
	}

	end := c.pos
	for !c.eof() {
		ch := c.peek()
		if ch == '{' || ch == '}' || ch == '<' || ch == '>' || ch == '\n' || ch == '&' {
			break
		}
		c.advanceRune()
		if ch != ' ' && ch != '\t' && ch != '\r' {
			end = c.pos
		}
	}
	c.pos = end
	return c.token(TokenJSXText, start), transition{}
}

// charRefLen returns the length of the HTML character reference at the
// cursor, or 0 when there is none.
func (c *cursor) charRefLen() int {
	src := c.sc.src
	i := c.pos + 1
	n := 0
	switch {
	case byteAt(src, i) == '#' && (byteAt(src, i+1) == 'x' || byteAt(src, i+1) == 'X'):
		i += 2
		for n < 6 && isHexDigit(byteAt(src, i)) {
			i++
			n++
		}
	case byteAt(src, i) == '#':
		i++
		for n < 5 && isDigit(byteAt(src, i)) {
			i++
			n++
		}
	default:
		for n < 30 && isASCIILetter(byteAt(src, i)) {
			i++
			n++
		}
	}
	if n == 0 || byteAt(src, i) != ';' {
		return 0
	}
	return i + 1 - c.pos
}

func isASCIILetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isASCIIIdentStart(ch byte) bool {
	return isASCIILetter(ch) || ch == '_' || ch == '$'
}

func isASCIIIdentPart(ch byte) bool {
	return isASCIIIdentStart(ch) || isDigit(ch)
}
