package parser

// tryFormalParameters parses a parameter list speculatively. The caller
// restores its checkpoint when ok is false.
func (p *Parser) tryFormalParameters() (params *Node, ok bool) {
	if !p.check(TokenLParen) {
		return nil, false
	}
	params = p.parseFormalParameters()
	return params, !params.HasError()
}

func (p *Parser) parseFormalParameters() *Node {
	n := p.startNode(KindFormalParameters)
	n.AddChild(p.expect(TokenLParen, ExpectValue))
	p.parseCommaList(n, TokenRParen, false, p.parsePatternOrDefault)
	n.AddChild(p.expect(TokenRParen, ExpectOperator))
	return p.finishNode(n)
}

func (p *Parser) parsePatternOrDefault() *Node {
	pat := p.parsePattern()
	if !p.checkOp(TokenAssign) || pat.Kind == KindRestPattern {
		return pat
	}
	n := p.startNode(KindAssignmentPattern)
	n.AddField("left", pat)
	n.AddChild(p.consume(KindToken))
	n.AddField("right", p.parseExpression(PrecAssign))
	return p.finishNode(n)
}

func (p *Parser) parsePattern() *Node {
	switch tok := p.peek(); {
	case tok.Kind == TokenLBrace:
		return p.parseRecordPattern()
	case tok.Kind == TokenLBracket:
		return p.parseListPattern()
	case tok.Kind == TokenEllipsis:
		return p.parseRestPattern()
	case isNameToken(tok):
		return p.parseLHSExpression()
	}
	return p.missingOrSkip(KindIdentifier, TokenIdent)
}

// parseLHSExpression parses an identifier followed by member and
// subscript accesses. Calls are not part of a pattern, which keeps failed
// speculative parses cheap.
func (p *Parser) parseLHSExpression() *Node {
	expr := p.name(asIdentifier)
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
		default:
			return expr
		}
	}
}

func (p *Parser) parseRestPattern() *Node {
	n := p.startNode(KindRestPattern)
	n.AddChild(p.consume(KindToken))
	switch tok := p.peek(); {
	case tok.Kind == TokenLBrace:
		n.AddChild(p.parseRecordPattern())
	case tok.Kind == TokenLBracket:
		n.AddChild(p.parseListPattern())
	case isNameToken(tok):
		n.AddChild(p.parseLHSExpression())
	default:
		n.AddChild(p.missing(KindIdentifier, TokenIdent, ExpectValue))
	}
	return p.finishNode(n)
}

func (p *Parser) parseListPattern() *Node {
	n := p.startNode(KindListPattern)
	n.AddChild(p.consume(KindToken))
	p.parseCommaList(n, TokenRBracket, true, p.parsePatternOrDefault)
	n.AddChild(p.expect(TokenRBracket, ExpectOperator))
	return p.finishNode(n)
}

func (p *Parser) parseRecordPattern() *Node {
	n := p.startNode(KindRecordPattern)
	n.AddChild(p.consume(KindToken))
	p.parseCommaList(n, TokenRBrace, true, p.parseRecordPatternEntry)
	n.AddChild(p.expect(TokenRBrace, ExpectOperator))
	return p.finishNode(n)
}

func (p *Parser) parseRecordPatternEntry() *Node {
	tok := p.peek()
	switch tok.Kind {
	case TokenEllipsis:
		return p.parseRestPattern()
	case TokenDoubleQuote, TokenSingleQuote, TokenNumber:
		n := p.startNode(KindPairPattern)
		n.AddField("key", p.parsePropertyKey())
		n.AddChild(p.expect(TokenColon, ExpectOperator))
		n.AddField("value", p.parsePatternOrDefault())
		return p.finishNode(n)
	case TokenLBrace, TokenLBracket:
		return p.parseRecordAssignmentPattern()
	}
	if !isPropertyNameToken(tok) {
		return p.missingOrSkip(KindShorthandPropertyIdentifierPattern, TokenIdent)
	}

	next := p.ts.PeekN(1, ExpectValue).Kind
	switch {
	case next == TokenColon:
		n := p.startNode(KindPairPattern)
		n.AddField("key", p.name(asProperty))
		n.AddChild(p.consume(KindToken))
		n.AddField("value", p.parsePatternOrDefault())
		return p.finishNode(n)
	case next == TokenAssign && isNameToken(tok):
		return p.parseRecordAssignmentPattern()
	case isNameToken(tok):
		return p.name(asShorthandPattern)
	}
	n := p.startNode(KindPairPattern)
	n.AddField("key", p.name(asProperty))
	n.AddChild(p.expect(TokenColon, ExpectOperator))
	n.AddField("value", p.parsePatternOrDefault())
	return p.finishNode(n)
}

// parseRecordAssignmentPattern parses `name = default` inside a record
// pattern, or inside a record that may later become one.
func (p *Parser) parseRecordAssignmentPattern() *Node {
	n := p.startNode(KindRecordAssignmentPattern)
	if isNameToken(p.peek()) {
		n.AddField("left", p.name(asShorthandPattern))
	} else {
		n.AddField("left", p.parsePattern())
	}
	n.AddChild(p.expect(TokenAssign, ExpectOperator))
	n.AddField("right", p.parseExpression(PrecAssign))
	return p.finishNode(n)
}
