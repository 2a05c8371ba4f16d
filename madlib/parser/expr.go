package parser

// parseExpressions parses an expression or a comma-separated sequence.
func (p *Parser) parseExpressions() *Node {
	first := p.parseExpression(PrecAssign)
	if !p.checkOp(TokenComma) {
		return first
	}
	n := p.startNode(KindSequenceExpression)
	n.AddChild(first)
	for p.checkOp(TokenComma) {
		n.AddChild(p.consume(KindToken))
		n.AddChild(p.parseExpression(PrecAssign))
	}
	return p.finishNode(n)
}

// parseExpression parses an expression whose operators all bind at least
// as tightly as minPrec.
func (p *Parser) parseExpression(minPrec Precedence) *Node {
	return p.parseInfix(p.parseUnary(), minPrec)
}

func (p *Parser) parseInfix(left *Node, minPrec Precedence) *Node {
	for {
		tok := p.peekOp()
		switch tok.Kind {
		case TokenQuestion:
			if minPrec > PrecTernary || !p.ts.TernaryMark() {
				return left
			}
			left = p.parseTernaryExpr(left)
		case TokenAssign, TokenMutate:
			if minPrec > PrecAssign {
				return left
			}
			left = p.parseAssignment(left)
		default:
			info, ok := binaryOperator(tok.Kind)
			if !ok || info.prec < minPrec {
				return left
			}
			n := p.startNode(KindBinaryExpression)
			n.AddField("left", left)
			n.AddField("operator", p.consume(KindToken))
			n.AddField("right", p.parseExpression(info.rightBindingPower()))
			left = p.finishNode(n)
		}
	}
}

func (p *Parser) parseTernaryExpr(condition *Node) *Node {
	n := p.startNode(KindTernaryExpression)
	n.AddField("condition", condition)
	n.AddChild(p.consume(KindToken))
	n.AddField("consequence", p.parseExpression(PrecAssign))
	n.AddChild(p.expect(TokenColon, ExpectOperator))
	n.AddField("alternative", p.parseExpression(PrecTernary))
	return p.finishNode(n)
}

func (p *Parser) parseAssignment(left *Node) *Node {
	kind := KindAssignmentExpression
	var target *Node
	if p.peekOp().Kind == TokenMutate {
		kind = KindExplicitMutationOperator
		target = p.mutationTarget(left)
	} else {
		target = p.assignmentTarget(left)
	}
	n := p.startNode(kind)
	n.AddField("left", target)
	n.AddChild(p.consume(KindToken))
	n.AddField("right", p.parseExpression(PrecAssign))
	return p.finishNode(n)
}

func (p *Parser) assignmentTarget(left *Node) *Node {
	switch left.Kind {
	case KindIdentifier, KindMemberExpression, KindSubscriptExpression, KindParenthesizedExpression:
		return left
	case KindRecord, KindList:
		return p.toPattern(left)
	}
	return p.wrapError(ErrInvalidAssignmentTarget, "invalid assignment target", left)
}

func (p *Parser) mutationTarget(left *Node) *Node {
	switch left.Kind {
	case KindIdentifier, KindMemberExpression, KindSubscriptExpression, KindParenthesizedExpression:
		return left
	}
	return p.wrapError(ErrInvalidAssignmentTarget, "invalid mutation target", left)
}

func (p *Parser) parseUnary() *Node {
	if tok := p.peek(); tok.Kind == TokenNot || tok.Kind == TokenMinus {
		n := p.startNode(KindUnaryExpression)
		n.AddField("operator", p.consume(KindToken))
		n.AddField("argument", p.parseUnary())
		return p.finishNode(n)
	}
	return p.parsePostfixSuffix(p.parsePrimary())
}

func (p *Parser) parsePostfixSuffix(expr *Node) *Node {
	for {
		switch p.peekOp().Kind {
		case TokenDot:
			n := p.startNode(KindMemberExpression)
			n.AddField("record", expr)
			n.AddChild(p.consume(KindToken))
			n.AddField("property", p.parsePropertyName())
			expr = p.finishNode(n)
		case TokenLBracket:
			n := p.startNode(KindSubscriptExpression)
			n.AddField("record", expr)
			n.AddChild(p.consume(KindToken))
			n.AddField("index", p.parseExpressions())
			n.AddChild(p.expect(TokenRBracket, ExpectOperator))
			expr = p.finishNode(n)
		case TokenLParen:
			n := p.startNode(KindCallExpression)
			n.AddField("function", expr)
			n.AddField("arguments", p.parseArguments())
			expr = p.finishNode(n)
		case TokenBacktick:
			n := p.startNode(KindCallExpression)
			n.AddField("function", expr)
			n.AddField("arguments", p.parseTemplate())
			expr = p.finishNode(n)
		default:
			return expr
		}
	}
}

func (p *Parser) parsePropertyName() *Node {
	if isPropertyNameToken(p.peek()) {
		return p.name(asProperty)
	}
	return p.missing(KindPropertyIdentifier, TokenIdent, ExpectValue)
}

func (p *Parser) canStartExpression(tok Token) bool {
	switch tok.Kind {
	case TokenIdent, TokenNumber, TokenTrue, TokenFalse, TokenDoubleQuote, TokenSingleQuote,
		TokenBacktick, TokenRegexSlash, TokenLParen, TokenLBrace, TokenLBracket, TokenLT,
		TokenNot, TokenMinus:
		return true
	}
	return tok.Kind.IsReservedIdentifier()
}

func (p *Parser) parsePrimary() *Node {
	tok := p.peek()
	switch tok.Kind {
	case TokenNumber:
		return p.consume(KindNumber)
	case TokenTrue:
		return p.consume(KindTrue)
	case TokenFalse:
		return p.consume(KindFalse)
	case TokenDoubleQuote, TokenSingleQuote:
		return p.parseString()
	case TokenBacktick:
		return p.parseTemplate()
	case TokenRegexSlash:
		return p.parseRegex()
	case TokenLParen:
		return p.parseParenOrFunction()
	case TokenLBrace:
		return p.parseRecord()
	case TokenLBracket:
		return p.parseList()
	case TokenLT:
		return p.parseJSXOrRelational()
	}
	if isNameToken(tok) {
		return p.parseIdentifierExpression()
	}
	return p.missingOrSkip(KindIdentifier, TokenIdent)
}

func (p *Parser) parseIdentifierExpression() *Node {
	switch p.ts.PeekN(1, ExpectValue).Kind {
	case TokenArrow:
		n := p.startNode(KindArrowFunction)
		n.AddField("parameter", p.name(asIdentifier))
		n.AddChild(p.consume(KindToken))
		n.AddField("body", p.parseArrowBody())
		return p.finishNode(n)
	case TokenLParen:
		if fn := p.tryNamedFunction(); fn != nil {
			return fn
		}
	}
	return p.name(asIdentifier)
}

// tryNamedFunction parses `name(params) { body }`, or restores the stream
// and returns nil when the input is something else, usually a call.
func (p *Parser) tryNamedFunction() *Node {
	return p.memo(ruleNamedFunction, p.parseNamedFunction)
}

func (p *Parser) parseNamedFunction() *Node {
	save := p.ts.Checkpoint()
	n := p.startNode(KindFunctionExpression)
	n.AddField("name", p.name(asIdentifier))
	params, ok := p.tryFormalParameters()
	if ok && p.checkOp(TokenLBrace) {
		n.AddField("parameters", params)
		n.AddField("body", p.parseBlock())
		return p.finishNode(n)
	}
	p.ts.Restore(save)
	return nil
}

// parseParenOrFunction decides between an arrow function, an anonymous
// function expression and a parenthesized expression.
func (p *Parser) parseParenOrFunction() *Node {
	return p.memo(ruleParenOrFunction, p.parseParenOrFunctionOnce)
}

func (p *Parser) parseParenOrFunctionOnce() *Node {
	save := p.ts.Checkpoint()
	if params, ok := p.tryFormalParameters(); ok {
		switch p.peekOp().Kind {
		case TokenArrow:
			n := p.startNode(KindArrowFunction)
			n.AddField("parameters", params)
			n.AddChild(p.consume(KindToken))
			n.AddField("body", p.parseArrowBody())
			return p.finishNode(n)
		case TokenLBrace:
			n := p.startNode(KindFunctionExpression)
			n.AddField("parameters", params)
			n.AddField("body", p.parseBlock())
			return p.finishNode(n)
		}
	}
	p.ts.Restore(save)
	return p.parseParenthesized()
}

func (p *Parser) parseArrowBody() *Node {
	if p.check(TokenLBrace) && p.classifyBrace(braceArrowBody) == braceBlock {
		return p.parseBlock()
	}
	return p.parseExpression(PrecAssign)
}

func (p *Parser) parseParenthesized() *Node {
	n := p.startNode(KindParenthesizedExpression)
	n.AddChild(p.expect(TokenLParen, ExpectValue))
	n.AddChild(p.parseExpressions())
	n.AddChild(p.expect(TokenRParen, ExpectOperator))
	return p.finishNode(n)
}

func (p *Parser) parseArguments() *Node {
	n := p.startNode(KindArguments)
	n.AddChild(p.consume(KindToken))
	p.parseCommaList(n, TokenRParen, false, p.parseElement)
	n.AddChild(p.expect(TokenRParen, ExpectOperator))
	return p.finishNode(n)
}

// parseElement parses a list element or call argument.
func (p *Parser) parseElement() *Node {
	if p.check(TokenEllipsis) {
		return p.parseSpreadElement()
	}
	return p.parseExpression(PrecAssign)
}

func (p *Parser) parseSpreadElement() *Node {
	n := p.startNode(KindSpreadElement)
	n.AddChild(p.consume(KindToken))
	n.AddChild(p.parseExpression(PrecAssign))
	return p.finishNode(n)
}

func (p *Parser) parseList() *Node {
	n := p.startNode(KindList)
	n.AddChild(p.consume(KindToken))
	p.parseCommaList(n, TokenRBracket, true, p.parseElement)
	n.AddChild(p.expect(TokenRBracket, ExpectOperator))
	return p.finishNode(n)
}

func (p *Parser) parseRecord() *Node {
	n := p.startNode(KindRecord)
	n.AddChild(p.consume(KindToken))
	p.parseCommaList(n, TokenRBrace, true, p.parseRecordEntry)
	n.AddChild(p.expect(TokenRBrace, ExpectOperator))
	return p.finishNode(n)
}

func (p *Parser) parseRecordEntry() *Node {
	tok := p.peek()
	switch tok.Kind {
	case TokenEllipsis:
		return p.parseSpreadElement()
	case TokenDoubleQuote, TokenSingleQuote, TokenNumber:
		n := p.startNode(KindPair)
		n.AddField("key", p.parsePropertyKey())
		n.AddChild(p.expect(TokenColon, ExpectOperator))
		n.AddField("value", p.parseExpression(PrecAssign))
		return p.finishNode(n)
	}
	if !isPropertyNameToken(tok) {
		return p.missingOrSkip(KindPair, TokenIdent)
	}

	switch p.ts.PeekN(1, ExpectValue).Kind {
	case TokenColon:
		n := p.startNode(KindPair)
		n.AddField("key", p.name(asProperty))
		n.AddChild(p.consume(KindToken))
		n.AddField("value", p.parseExpression(PrecAssign))
		return p.finishNode(n)
	case TokenLParen:
		return p.parseMethodDefinition()
	case TokenAssign:
		if isNameToken(tok) {
			// Only valid once the record turns out to be a pattern.
			entry := p.parseRecordAssignmentPattern()
			return p.wrapError(ErrUnexpectedToken, "initializer is only allowed in a destructuring pattern", entry)
		}
	}
	if isNameToken(tok) {
		return p.name(asShorthand)
	}
	n := p.startNode(KindPair)
	n.AddField("key", p.name(asProperty))
	n.AddChild(p.expect(TokenColon, ExpectOperator))
	n.AddField("value", p.parseExpression(PrecAssign))
	return p.finishNode(n)
}

func (p *Parser) parsePropertyKey() *Node {
	switch tok := p.peek(); tok.Kind {
	case TokenDoubleQuote, TokenSingleQuote:
		return p.parseString()
	case TokenNumber:
		return p.consume(KindNumber)
	}
	return p.parsePropertyName()
}

func (p *Parser) parseMethodDefinition() *Node {
	n := p.startNode(KindMethodDefinition)
	n.AddField("name", p.name(asProperty))
	n.AddField("parameters", p.parseFormalParameters())
	n.AddField("body", p.parseBlock())
	return p.finishNode(n)
}

func (p *Parser) parseString() *Node {
	n := p.startNode(KindString)
	n.AddChild(p.consume(KindToken))
	for {
		switch p.peek().Kind {
		case TokenStringFragment:
			n.AddChild(p.consume(KindStringFragment))
		case TokenEscapeSequence:
			n.AddChild(p.consume(KindEscapeSequence))
		case TokenHTMLCharRef:
			n.AddChild(p.consume(KindHTMLCharacterReference))
		case TokenDoubleQuote, TokenSingleQuote:
			n.AddChild(p.consume(KindToken))
			return p.finishNode(n)
		default:
			return p.finishNode(n)
		}
	}
}

func (p *Parser) parseTemplate() *Node {
	n := p.startNode(KindTemplateString)
	n.AddChild(p.consume(KindToken))
	for {
		switch p.peek().Kind {
		case TokenTemplateChars:
			n.AddChild(p.consume(KindStringFragment))
		case TokenEscapeSequence:
			n.AddChild(p.consume(KindEscapeSequence))
		case TokenDollarBrace:
			n.AddChild(p.parseTemplateSubstitution())
		case TokenBacktick:
			n.AddChild(p.consume(KindToken))
			return p.finishNode(n)
		default:
			return p.finishNode(n)
		}
	}
}

func (p *Parser) parseTemplateSubstitution() *Node {
	n := p.startNode(KindTemplateSubstitution)
	n.AddChild(p.consume(KindToken))
	size := p.ts.State().Size()
	n.AddChild(p.parseExpressions())
	p.closeEmbedded(n, size)
	return p.finishNode(n)
}

// closeEmbedded consumes the '}' that ends an embedded expression frame of
// the given stack size. Anything left before it is wrapped in an ERROR.
func (p *Parser) closeEmbedded(n *Node, size int) {
	var junk []*Node
	for {
		tok := p.peekOp()
		st := p.ts.State()
		if tok.Kind == TokenRBrace && st.Size() == size && st.Top().Depth == 0 {
			break
		}
		if tok.Kind == TokenEOF || st.Size() < size {
			break
		}
		junk = append(junk, p.consume(KindToken))
	}
	if len(junk) > 0 {
		n.AddChild(p.wrapError(ErrUnexpectedToken, "unexpected tokens in embedded expression", junk...))
	}
	n.AddChild(p.expect(TokenRBrace, ExpectOperator))
}

func (p *Parser) parseRegex() *Node {
	n := p.startNode(KindRegex)
	n.AddChild(p.consume(KindToken))
	if p.check(TokenRegexPattern) {
		n.AddField("pattern", p.consume(KindRegexPattern))
	}
	n.AddChild(p.expect(TokenRegexSlash, ExpectValue))
	if p.check(TokenRegexFlags) {
		n.AddField("flags", p.consume(KindRegexFlags))
	}
	return p.finishNode(n)
}

type braceKind int

const (
	braceBlock braceKind = iota
	braceRecord
	bracePattern
)

type braceContext int

const (
	braceStatement braceContext = iota
	braceArrowBody
)

// classifyBrace decides what the '{' at the cursor opens. A statement
// position brace followed, after its match, by '=' is a destructuring
// declaration; one that starts with `key:` or `...` is a record; anything
// else is a block.
func (p *Parser) classifyBrace(ctx braceContext) braceKind {
	if ctx == braceStatement && p.closerFollowedByAssign(TokenRBrace) {
		return bracePattern
	}
	la := p.ts.lookahead(ExpectValue)
	la.next()
	first := la.next()
	switch {
	case first.Kind == TokenEllipsis:
		return braceRecord
	case first.Kind == TokenDoubleQuote || first.Kind == TokenSingleQuote:
		for tok := la.next(); tok.Kind != TokenEOF; tok = la.next() {
			if tok.Kind == first.Kind {
				break
			}
		}
		if la.next().Kind == TokenColon {
			return braceRecord
		}
	case isPropertyNameToken(first) || first.Kind == TokenNumber:
		if la.next().Kind == TokenColon {
			return braceRecord
		}
	}
	return braceBlock
}

func (p *Parser) bracketedPatternAhead() bool {
	return p.closerFollowedByAssign(TokenRBracket)
}

// closerFollowedByAssign skims from the opening bracket at the cursor to
// its match and reports whether the match is close followed by '='.
func (p *Parser) closerFollowedByAssign(close TokenKind) bool {
	la := p.ts.lookahead(ExpectValue)
	depth := 0
	for {
		tok := la.next()
		switch tok.Kind {
		case TokenEOF:
			return false
		case TokenLBrace, TokenLBracket, TokenLParen, TokenDollarBrace:
			depth++
		case TokenRBrace, TokenRBracket, TokenRParen:
			depth--
			if depth == 0 {
				return tok.Kind == close && la.next().Kind == TokenAssign
			}
		}
	}
}
